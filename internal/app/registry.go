package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/egortrue/Chatter/internal/core"
	"github.com/egortrue/Chatter/internal/domain"
)

// Registry is the in-memory core.Broker. It owns both directories; the
// directory locks cover map access only, every room and member carries
// its own synchronization, so operations on unrelated keys never
// serialize. Operations touching both a room and a member take them in
// room-then-member order.
type Registry struct {
	backlog int
	pump    Pump

	roomsMu sync.RWMutex
	rooms   map[domain.RoomID]core.RoomService

	membersMu sync.RWMutex
	members   map[domain.MemberID]core.MemberSession
}

// Pump receives the subscription handle of every successful join and
// owns the per-member delivery goroutine from then on.
type Pump interface {
	Start(member *domain.Member, roomID domain.RoomID, rcv *core.Receiver)
}

type Option func(*Registry)

// WithBacklog sets the feed backlog for rooms created by this registry.
func WithBacklog(n int) Option {
	return func(r *Registry) { r.backlog = n }
}

// WithPump attaches the push pump started on every successful join.
func WithPump(p Pump) Option {
	return func(r *Registry) { r.pump = p }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		backlog: core.DefaultFeedBacklog,
		rooms:   make(map[domain.RoomID]core.RoomService),
		members: make(map[domain.MemberID]core.MemberSession),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Login registers a new member. Display names are unique among live
// members.
func (r *Registry) Login(name, addr string) (domain.MemberID, error) {
	r.membersMu.Lock()
	defer r.membersMu.Unlock()
	for _, m := range r.members {
		if m.Meta().Name == name {
			return "", core.ErrAlreadyLoggedIn
		}
	}
	member, err := domain.NewMember(name, addr)
	if err != nil {
		return "", err
	}
	r.members[member.ID] = core.NewMemberSession(member)
	log.Info().Str("module", "app.registry").Str("member", string(member.ID)).Str("name", name).Msg("member logged in")
	return member.ID, nil
}

// CreateRoom registers a new room with a zero counter, empty history
// and a fresh feed. Room names are unique.
func (r *Registry) CreateRoom(name domain.RoomName, password *string) (domain.RoomID, error) {
	r.roomsMu.Lock()
	defer r.roomsMu.Unlock()
	for _, room := range r.rooms {
		if room.Room().Name == name {
			return "", core.ErrRoomExists
		}
	}
	meta, err := domain.NewRoom(name, password)
	if err != nil {
		return "", err
	}
	r.rooms[meta.ID] = core.NewRoomService(meta, r.backlog)
	log.Info().Str("module", "app.registry").Str("room", string(meta.ID)).Str("name", string(name)).Bool("private", meta.Private()).Msg("room created")
	return meta.ID, nil
}

// ListRooms returns a snapshot of the room directory. Consistent at
// iteration time, not linearized against concurrent creates.
func (r *Registry) ListRooms() []core.RoomInfo {
	r.roomsMu.RLock()
	defer r.roomsMu.RUnlock()
	out := make([]core.RoomInfo, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room.Info())
	}
	return out
}

// Join subscribes a member to a room. Checked in order: room exists,
// member exists, member is free, password matches. The counter
// increment and the subscription store are a pair: a bind that loses a
// race to a concurrent join gets a compensating decrement.
func (r *Registry) Join(memberID domain.MemberID, roomID domain.RoomID, password *string) error {
	room, err := r.room(roomID)
	if err != nil {
		return err
	}
	member, err := r.member(memberID)
	if err != nil {
		return err
	}
	if member.Subscribed() {
		return core.ErrAlreadySubscribed
	}
	rcv, err := room.Subscribe(password)
	if err != nil {
		return err
	}
	if err := member.Bind(roomID, rcv); err != nil {
		_ = room.Unsubscribe(rcv)
		return err
	}
	if r.pump != nil {
		r.pump.Start(member.Meta(), roomID, rcv)
	}
	log.Info().Str("module", "app.registry").Str("member", string(memberID)).Str("room", string(roomID)).Msg("joined")
	return nil
}

// Leave drops the member's subscription to the room and decrements its
// counter. Closing the receiver also terminates the member's pump.
func (r *Registry) Leave(memberID domain.MemberID, roomID domain.RoomID) error {
	room, err := r.room(roomID)
	if err != nil {
		return err
	}
	member, err := r.member(memberID)
	if err != nil {
		return err
	}
	rcv, err := member.Release(roomID)
	if err != nil {
		return err
	}
	if err := room.Unsubscribe(rcv); err != nil {
		return err
	}
	log.Info().Str("module", "app.registry").Str("member", string(memberID)).Str("room", string(roomID)).Msg("left")
	return nil
}

// Send posts a message authored by the member into the room. The sender
// does not have to be subscribed: history and fanout are room-level.
func (r *Registry) Send(memberID domain.MemberID, roomID domain.RoomID, text string) error {
	room, err := r.room(roomID)
	if err != nil {
		return err
	}
	member, err := r.member(memberID)
	if err != nil {
		return err
	}
	room.Post(domain.Message{Author: member.Meta().Name, Content: text})
	return nil
}

// History returns the room's full history snapshot. Like Send, it does
// not require a subscription.
func (r *Registry) History(memberID domain.MemberID, roomID domain.RoomID) ([]domain.Message, error) {
	if _, err := r.member(memberID); err != nil {
		return nil, err
	}
	room, err := r.room(roomID)
	if err != nil {
		return nil, err
	}
	return room.History(), nil
}

// Member resolves a member id for adapters that need the meta (e.g. the
// websocket feed attaching a sink).
func (r *Registry) Member(id domain.MemberID) (*domain.Member, error) {
	m, err := r.member(id)
	if err != nil {
		return nil, err
	}
	return m.Meta(), nil
}

func (r *Registry) room(id domain.RoomID) (core.RoomService, error) {
	r.roomsMu.RLock()
	defer r.roomsMu.RUnlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, core.ErrRoomNotFound
	}
	return room, nil
}

func (r *Registry) member(id domain.MemberID) (core.MemberSession, error) {
	r.membersMu.RLock()
	defer r.membersMu.RUnlock()
	m, ok := r.members[id]
	if !ok {
		return nil, core.ErrMemberNotFound
	}
	return m, nil
}
