package core

import (
	"sync"

	"github.com/egortrue/Chatter/internal/domain"
)

// subscription pairs the room a member is joined to with the receiving
// end of that room's feed.
type subscription struct {
	roomID domain.RoomID
	rcv    *Receiver
}

// memberSession holds member meta plus at most one subscription.
type memberSession struct {
	meta *domain.Member

	mu  sync.Mutex
	sub *subscription
}

func NewMemberSession(meta *domain.Member) MemberSession {
	return &memberSession{meta: meta}
}

func (m *memberSession) Meta() *domain.Member { return m.meta }

func (m *memberSession) Subscribed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sub != nil
}

func (m *memberSession) Current() (domain.RoomID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sub == nil {
		return "", false
	}
	return m.sub.roomID, true
}

// Bind stores the subscription. ErrAlreadySubscribed when one is held:
// a member must leave before joining elsewhere. The caller rolls the
// room side back on failure.
func (m *memberSession) Bind(roomID domain.RoomID, rcv *Receiver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sub != nil {
		return ErrAlreadySubscribed
	}
	m.sub = &subscription{roomID: roomID, rcv: rcv}
	return nil
}

// Release drops the subscription for roomID and returns its receiver.
// ErrNotSubscribed when none is held or it points at another room.
func (m *memberSession) Release(roomID domain.RoomID) (*Receiver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sub == nil || m.sub.roomID != roomID {
		return nil, ErrNotSubscribed
	}
	rcv := m.sub.rcv
	m.sub = nil
	return rcv, nil
}
