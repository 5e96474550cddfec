// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const MaxNameLen = 36

var (
	ErrNameEmpty   = errors.New("name empty")
	ErrNameTooLong = errors.New("name too long")
)

type MemberID string

// Member is a logical chat participant. Addr is opaque to the broker;
// only the push transport dials it.
type Member struct {
	ID   MemberID `json:"id"`
	Name string   `json:"name"`
	Addr string   `json:"-"`
}

// NewMember is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewMember(name, addr string) (*Member, error) {
	if len(name) == 0 {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	return &Member{ID: MemberID(uuid.NewString()), Name: name, Addr: addr}, nil
}
