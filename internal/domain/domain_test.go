package domain

import (
	"errors"
	"strings"
	"testing"
)

// TestNewMemberValidation covers the name rules shared with rooms.
func TestNewMemberValidation(t *testing.T) {
	if _, err := NewMember("", "addr"); !errors.Is(err, ErrNameEmpty) {
		t.Fatalf("err = %v, want ErrNameEmpty", err)
	}
	if _, err := NewMember(strings.Repeat("a", MaxNameLen+1), "addr"); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("err = %v, want ErrNameTooLong", err)
	}

	m, err := NewMember("alice", "127.0.0.1:9000")
	if err != nil {
		t.Fatalf("NewMember: %v", err)
	}
	if m.ID == "" || m.Name != "alice" || m.Addr != "127.0.0.1:9000" {
		t.Fatalf("member = %+v", m)
	}
}

// TestRoomPasswordMatching covers the public/private matrix, including
// the empty-string password being a real password.
func TestRoomPasswordMatching(t *testing.T) {
	pw := func(s string) *string { return &s }

	cases := []struct {
		name     string
		stored   *string
		supplied *string
		want     bool
	}{
		{"public no password", nil, nil, true},
		{"public any password", nil, pw("x"), true},
		{"private missing", pw("secret"), nil, false},
		{"private wrong", pw("secret"), pw("nope"), false},
		{"private correct", pw("secret"), pw("secret"), true},
		{"private empty stored, none supplied", pw(""), nil, false},
		{"private empty stored, empty supplied", pw(""), pw(""), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			room, err := NewRoom("general", tc.stored)
			if err != nil {
				t.Fatalf("NewRoom: %v", err)
			}
			if got := room.PasswordMatches(tc.supplied); got != tc.want {
				t.Fatalf("PasswordMatches = %v, want %v", got, tc.want)
			}
			if room.Private() != (tc.stored != nil) {
				t.Fatalf("Private() = %v", room.Private())
			}
		})
	}
}

// TestRoomPasswordIsCopied verifies the stored password is immutable
// even when the caller mutates the string it passed in.
func TestRoomPasswordIsCopied(t *testing.T) {
	secret := "secret"
	room, err := NewRoom("general", &secret)
	if err != nil {
		t.Fatalf("NewRoom: %v", err)
	}

	secret = "changed"
	orig := "secret"
	if !room.PasswordMatches(&orig) {
		t.Fatal("stored password must not alias the caller's string")
	}
}
