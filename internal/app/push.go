package app

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/egortrue/Chatter/internal/core"
	"github.com/egortrue/Chatter/internal/domain"
)

// Sink is one member's outbound endpoint. Owned by whoever produced it;
// TrySend must never block.
type Sink interface {
	TrySend(frame []byte) error
	Close()
}

// SinkDialer produces a sink for a member on demand, typically by
// dialing the address the member supplied at login.
type SinkDialer interface {
	Dial(member *domain.Member) (Sink, error)
}

// PushManager runs one goroutine per live subscription: it drains the
// feed receiver and forwards every message to the member's sink.
// Delivery is best effort; a dead or slow sink loses messages but never
// blocks the broker. The pump exits when Leave closes the receiver or
// the server shuts down.
type PushManager struct {
	ctx    context.Context
	dialer SinkDialer

	mu       sync.RWMutex
	attached map[domain.MemberID]Sink
}

func NewPushManager(ctx context.Context, dialer SinkDialer) *PushManager {
	return &PushManager{
		ctx:      ctx,
		dialer:   dialer,
		attached: make(map[domain.MemberID]Sink),
	}
}

// Attach overrides the member's delivery sink, e.g. with a live
// websocket. An attached sink takes precedence over the dialer. The
// replaced sink, if any, is returned; closing it is the caller's job.
func (p *PushManager) Attach(id domain.MemberID, s Sink) Sink {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.attached[id]
	p.attached[id] = s
	log.Info().Str("module", "app.push").Str("member", string(id)).Msg("sink attached")
	return prev
}

// Detach removes the member's sink only while it is still s: the
// teardown of a replaced connection must not remove its healthy
// replacement. It does not close the sink.
func (p *PushManager) Detach(id domain.MemberID, s Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.attached[id] != s {
		return
	}
	delete(p.attached, id)
	log.Info().Str("module", "app.push").Str("member", string(id)).Msg("sink detached")
}

func (p *PushManager) sink(id domain.MemberID) (Sink, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.attached[id]
	return s, ok
}

// Start implements Pump.
func (p *PushManager) Start(member *domain.Member, roomID domain.RoomID, rcv *core.Receiver) {
	go p.pump(member, roomID, rcv)
}

func (p *PushManager) pump(member *domain.Member, roomID domain.RoomID, rcv *core.Receiver) {
	log.Info().Str("module", "app.push").Str("member", string(member.ID)).Str("room", string(roomID)).Msg("pump started")

	// Dialed lazily on the first message and reused; an attached sink
	// always wins over it.
	var dialed Sink
	defer func() {
		if dialed != nil {
			dialed.Close()
		}
		log.Info().Str("module", "app.push").Str("member", string(member.ID)).Str("room", string(roomID)).Msg("pump stopped")
	}()

	for {
		select {
		case <-p.ctx.Done():
			return
		case msg, ok := <-rcv.C():
			if !ok {
				return
			}
			frame, err := json.Marshal(msg)
			if err != nil {
				continue
			}

			sink, ok := p.sink(member.ID)
			if !ok {
				if dialed == nil && p.dialer != nil {
					dialed, err = p.dialer.Dial(member)
					if err != nil {
						log.Debug().Err(err).Str("module", "app.push").Str("member", string(member.ID)).Msg("dial failed, message dropped")
						dialed = nil
						continue
					}
				}
				sink = dialed
			}
			if sink == nil {
				continue
			}
			if err := sink.TrySend(frame); err != nil {
				log.Debug().Err(err).Str("module", "app.push").Str("member", string(member.ID)).Msg("push dropped")
			}
		}
	}
}
