package core

import "errors"

// Broker errors. All of them are recoverable and caller-surfaced; the
// transport boundary matches them with errors.Is and maps them to
// status codes.
var (
	ErrAlreadyLoggedIn   = errors.New("member already logged in")
	ErrRoomExists        = errors.New("room already exists")
	ErrRoomNotFound      = errors.New("room not found")
	ErrMemberNotFound    = errors.New("member not found")
	ErrAlreadySubscribed = errors.New("member already subscribed")
	ErrNotSubscribed     = errors.New("member not subscribed")
	ErrWrongPassword     = errors.New("wrong password")
)
