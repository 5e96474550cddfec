package core

import (
	"sync"

	"github.com/egortrue/Chatter/internal/domain"
)

// DefaultFeedBacklog is how many messages a receiver may lag behind
// before its oldest buffered ones start to be evicted.
const DefaultFeedBacklog = 100

// Feed is the broadcast endpoint of a room: one sender, many
// independent receivers, bounded backlog. Each receiver observes every
// message published after its creation; a receiver that falls behind
// the backlog silently loses the oldest buffered messages.
type Feed struct {
	backlog int

	mu    sync.RWMutex
	recvs map[*Receiver]struct{}
}

func NewFeed(backlog int) *Feed {
	if backlog <= 0 {
		backlog = DefaultFeedBacklog
	}
	return &Feed{backlog: backlog, recvs: make(map[*Receiver]struct{})}
}

// Subscribe creates a fresh receiver attached to the feed.
func (f *Feed) Subscribe() *Receiver {
	r := &Receiver{feed: f, ch: make(chan domain.Message, f.backlog)}
	f.mu.Lock()
	f.recvs[r] = struct{}{}
	f.mu.Unlock()
	return r
}

// Publish fans msg out to every live receiver. Fire-and-forget: with
// zero receivers it is a no-op.
func (f *Feed) Publish(msg domain.Message) PublishResult {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var res PublishResult
	for r := range f.recvs {
		switch r.push(msg) {
		case pushDelivered:
			res.Delivered++
		case pushEvicted:
			res.Dropped++
		case pushClosed:
			// Receiver is mid-Close and about to detach; it got
			// nothing, count it nowhere.
		}
	}
	return res
}

func (f *Feed) Receivers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.recvs)
}

// PublishResult reports delivery stats for one Publish. Dropped counts
// receivers that had to evict a buffered message to make room.
type PublishResult struct {
	Delivered int
	Dropped   int
}

// Receiver is the consuming end of a feed subscription. C is closed by
// Close; the owner must stop reading after that.
type Receiver struct {
	feed *Feed

	mu     sync.Mutex
	closed bool
	ch     chan domain.Message
}

func (r *Receiver) C() <-chan domain.Message { return r.ch }

type pushResult int

const (
	pushDelivered pushResult = iota
	pushEvicted
	pushClosed
)

// push delivers under the receiver lock so Close can never race a send
// on a closed channel. When the backlog is full the oldest buffered
// message is evicted before the retry; the consumer may drain
// concurrently, so the retry itself stays non-blocking.
func (r *Receiver) push(msg domain.Message) pushResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return pushClosed
	}
	select {
	case r.ch <- msg:
		return pushDelivered
	default:
	}
	select {
	case <-r.ch:
	default:
	}
	select {
	case r.ch <- msg:
	default:
	}
	return pushEvicted
}

// Close detaches the receiver from the feed and closes C. Safe to call
// twice.
func (r *Receiver) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.ch)
	r.mu.Unlock()

	// Taken after the receiver lock is released; Publish holds the
	// feed lock while taking receiver locks.
	r.feed.mu.Lock()
	delete(r.feed.recvs, r)
	r.feed.mu.Unlock()
}
