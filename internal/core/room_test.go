package core

import (
	"errors"
	"testing"

	"github.com/egortrue/Chatter/internal/domain"
)

func newTestRoom(t *testing.T, password *string) RoomService {
	t.Helper()
	meta, err := domain.NewRoom("general", password)
	if err != nil {
		t.Fatalf("NewRoom: %v", err)
	}
	return NewRoomService(meta, 8)
}

// TestRoomSubscribePublic verifies that a public room accepts any
// password, including none, and counts the subscription.
func TestRoomSubscribePublic(t *testing.T) {
	room := newTestRoom(t, nil)

	if _, err := room.Subscribe(nil); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	pw := "whatever"
	if _, err := room.Subscribe(&pw); err != nil {
		t.Fatalf("Subscribe with password on public room: %v", err)
	}
	if room.MemberCount() != 2 {
		t.Fatalf("member count = %d, want 2", room.MemberCount())
	}
}

// TestRoomSubscribeWrongPassword verifies that a protected room rejects
// a missing or wrong password without touching the counter.
func TestRoomSubscribeWrongPassword(t *testing.T) {
	secret := "secret"
	room := newTestRoom(t, &secret)

	if _, err := room.Subscribe(nil); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("err = %v, want ErrWrongPassword", err)
	}
	bad := "nope"
	if _, err := room.Subscribe(&bad); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("err = %v, want ErrWrongPassword", err)
	}
	if room.MemberCount() != 0 {
		t.Fatalf("member count = %d, want 0", room.MemberCount())
	}

	if _, err := room.Subscribe(&secret); err != nil {
		t.Fatalf("Subscribe with correct password: %v", err)
	}
	if room.MemberCount() != 1 {
		t.Fatalf("member count = %d, want 1", room.MemberCount())
	}
}

// TestRoomUnsubscribe verifies the counter round-trip and that an
// unsubscribe on an empty room reports the inconsistency.
func TestRoomUnsubscribe(t *testing.T) {
	room := newTestRoom(t, nil)

	rcv, err := room.Subscribe(nil)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := room.Unsubscribe(rcv); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	if room.MemberCount() != 0 {
		t.Fatalf("member count = %d, want 0", room.MemberCount())
	}
	if err := room.Unsubscribe(nil); !errors.Is(err, ErrNotSubscribed) {
		t.Fatalf("err = %v, want ErrNotSubscribed", err)
	}
}

// TestRoomPostUpdatesHistoryWithoutReceivers verifies the
// fire-and-forget contract: the history grows even when nobody is
// listening.
func TestRoomPostUpdatesHistoryWithoutReceivers(t *testing.T) {
	room := newTestRoom(t, nil)
	room.Post(domain.Message{Author: "alice", Content: "hi"})

	hist := room.History()
	if len(hist) != 1 || hist[0].Author != "alice" || hist[0].Content != "hi" {
		t.Fatalf("history = %+v", hist)
	}
}

// TestRoomHistorySnapshotIsIndependent verifies that a returned
// snapshot is a copy: later posts and caller-side writes do not bleed
// through, and an earlier snapshot stays a prefix of a later one.
func TestRoomHistorySnapshotIsIndependent(t *testing.T) {
	room := newTestRoom(t, nil)
	room.Post(domain.Message{Author: "a", Content: "one"})

	early := room.History()
	early[0].Content = "mutated"

	room.Post(domain.Message{Author: "a", Content: "two"})
	late := room.History()

	if late[0].Content != "one" {
		t.Fatalf("snapshot mutation leaked into the room: %+v", late)
	}
	if len(late) != 2 {
		t.Fatalf("history length = %d, want 2", len(late))
	}
	// Prefix property: the earlier observation (unmutated) leads the
	// later one.
	if late[0].Author != "a" || late[1].Content != "two" {
		t.Fatalf("later snapshot is not an extension: %+v", late)
	}
}

// TestRoomSubscriberReceivesPost verifies the feed side of Post.
func TestRoomSubscriberReceivesPost(t *testing.T) {
	room := newTestRoom(t, nil)
	rcv, err := room.Subscribe(nil)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	msg := domain.Message{Author: "bob", Content: "ping"}
	room.Post(msg)

	if got := <-rcv.C(); got != msg {
		t.Fatalf("got %+v, want %+v", got, msg)
	}
}
