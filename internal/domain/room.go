package domain

import "github.com/google/uuid"

type (
	RoomID   string
	RoomName string
)

// Room is channel meta. The password is immutable after creation;
// nil means the room is public.
type Room struct {
	ID       RoomID
	Name     RoomName
	password *string
}

func NewRoom(name RoomName, password *string) (*Room, error) {
	if len(name) == 0 {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	r := &Room{ID: RoomID(uuid.NewString()), Name: name}
	if password != nil {
		pw := *password
		r.password = &pw
	}
	return r, nil
}

func (r *Room) Private() bool { return r.password != nil }

// PasswordMatches reports whether supplied opens the room. Public rooms
// accept anything; a private room requires the exact stored value, so an
// empty-string password is a real password.
func (r *Room) PasswordMatches(supplied *string) bool {
	if r.password == nil {
		return true
	}
	return supplied != nil && *supplied == *r.password
}
