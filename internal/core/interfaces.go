package core

import "github.com/egortrue/Chatter/internal/domain"

// RoomService is the core-facing API of one room. It owns the member
// counter, the history and the feed but never touches transport
// resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	Info() RoomInfo

	Subscribe(password *string) (*Receiver, error)
	Unsubscribe(rcv *Receiver) error
	Post(msg domain.Message)
	History() []domain.Message
}

// MemberSession binds member meta to its single optional subscription.
// The session stores only the room id, never the room itself; the
// registry owns both directories.
type MemberSession interface {
	Meta() *domain.Member
	Subscribed() bool
	Current() (domain.RoomID, bool)

	Bind(roomID domain.RoomID, rcv *Receiver) error
	Release(roomID domain.RoomID) (*Receiver, error)
}

// RoomInfo is a read-only listing view (no password, no feed).
type RoomInfo struct {
	ID          domain.RoomID   `json:"id"`
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"users"`
	Private     bool            `json:"private"`
}

// Broker is the operation set the transport layer consumes. The
// in-memory registry is the only implementation today; a persistent
// one plugs in behind the same interface.
type Broker interface {
	Login(name, addr string) (domain.MemberID, error)
	CreateRoom(name domain.RoomName, password *string) (domain.RoomID, error)
	ListRooms() []RoomInfo
	Join(member domain.MemberID, room domain.RoomID, password *string) error
	Leave(member domain.MemberID, room domain.RoomID) error
	Send(member domain.MemberID, room domain.RoomID, text string) error
	History(member domain.MemberID, room domain.RoomID) ([]domain.Message, error)
}
