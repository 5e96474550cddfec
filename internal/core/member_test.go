package core

import (
	"errors"
	"testing"

	"github.com/egortrue/Chatter/internal/domain"
)

func newTestMember(t *testing.T) MemberSession {
	t.Helper()
	meta, err := domain.NewMember("alice", "127.0.0.1:9000")
	if err != nil {
		t.Fatalf("NewMember: %v", err)
	}
	return NewMemberSession(meta)
}

// TestMemberSingleSubscription verifies the one-subscription invariant:
// a second bind without a release fails.
func TestMemberSingleSubscription(t *testing.T) {
	m := newTestMember(t)
	feed := NewFeed(4)

	if err := m.Bind("room-1", feed.Subscribe()); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if !m.Subscribed() {
		t.Fatal("Subscribed() = false after Bind")
	}
	if room, ok := m.Current(); !ok || room != "room-1" {
		t.Fatalf("Current() = %q, %v", room, ok)
	}

	if err := m.Bind("room-2", feed.Subscribe()); !errors.Is(err, ErrAlreadySubscribed) {
		t.Fatalf("err = %v, want ErrAlreadySubscribed", err)
	}
}

// TestMemberReleaseReturnsReceiver verifies release hands back the
// bound receiver and resets the state so a new bind succeeds.
func TestMemberReleaseReturnsReceiver(t *testing.T) {
	m := newTestMember(t)
	feed := NewFeed(4)
	rcv := feed.Subscribe()

	if err := m.Bind("room-1", rcv); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	got, err := m.Release("room-1")
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if got != rcv {
		t.Fatal("Release returned a different receiver")
	}
	if m.Subscribed() {
		t.Fatal("Subscribed() = true after Release")
	}

	if err := m.Bind("room-2", feed.Subscribe()); err != nil {
		t.Fatalf("Bind after Release: %v", err)
	}
}

// TestMemberReleaseErrors verifies ErrNotSubscribed for a free member
// and for a room the member is not in.
func TestMemberReleaseErrors(t *testing.T) {
	m := newTestMember(t)
	if _, err := m.Release("room-1"); !errors.Is(err, ErrNotSubscribed) {
		t.Fatalf("err = %v, want ErrNotSubscribed", err)
	}

	feed := NewFeed(4)
	if err := m.Bind("room-1", feed.Subscribe()); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if _, err := m.Release("room-2"); !errors.Is(err, ErrNotSubscribed) {
		t.Fatalf("err = %v, want ErrNotSubscribed", err)
	}
	if !m.Subscribed() {
		t.Fatal("failed Release must not drop the subscription")
	}
}
