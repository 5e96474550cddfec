package core

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/egortrue/Chatter/internal/domain"
)

// roomService is a threadsafe in-memory room. The member counter is an
// atomic, so join/leave never contend with the history lock.
type roomService struct {
	meta    *domain.Room
	members atomic.Int64
	feed    *Feed

	histMu  sync.RWMutex
	history []domain.Message
}

func NewRoomService(meta *domain.Room, backlog int) RoomService {
	return &roomService{meta: meta, feed: NewFeed(backlog)}
}

func (r *roomService) Room() *domain.Room { return r.meta }

func (r *roomService) MemberCount() int { return int(r.members.Load()) }

func (r *roomService) Info() RoomInfo {
	return RoomInfo{
		ID:          r.meta.ID,
		Name:        r.meta.Name,
		MemberCount: r.MemberCount(),
		Private:     r.meta.Private(),
	}
}

// Subscribe validates the password, bumps the member counter and hands
// out a fresh feed receiver. Counter and receiver belong together: a
// caller that cannot keep the receiver must give it back via
// Unsubscribe.
func (r *roomService) Subscribe(password *string) (*Receiver, error) {
	if !r.meta.PasswordMatches(password) {
		return nil, ErrWrongPassword
	}
	r.members.Add(1)
	rcv := r.feed.Subscribe()
	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Int("members", r.MemberCount()).Msg("subscribed")
	return rcv, nil
}

// Unsubscribe undoes Subscribe. A zero counter yields ErrNotSubscribed:
// that is a consistency signal, the real guard is the unique
// subscription ownership on the member side. The receiver is closed
// either way so it never leaks.
func (r *roomService) Unsubscribe(rcv *Receiver) error {
	if rcv != nil {
		rcv.Close()
	}
	for {
		n := r.members.Load()
		if n <= 0 {
			return ErrNotSubscribed
		}
		if r.members.CompareAndSwap(n, n-1) {
			break
		}
	}
	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Int("members", r.MemberCount()).Msg("unsubscribed")
	return nil
}

// Post appends msg to the history and fans it out on the feed. Zero
// receivers is fine, the history still grows.
func (r *roomService) Post(msg domain.Message) {
	r.histMu.Lock()
	r.history = append(r.history, msg)
	r.histMu.Unlock()

	res := r.feed.Publish(msg)
	log.Debug().Str("module", "core.room").Str("room", string(r.meta.ID)).Int("delivered", res.Delivered).Int("dropped", res.Dropped).Msg("posted")
}

// History returns an independent snapshot; callers never observe later
// appends through it.
func (r *roomService) History() []domain.Message {
	r.histMu.RLock()
	defer r.histMu.RUnlock()
	out := make([]domain.Message, len(r.history))
	copy(out, r.history)
	return out
}
