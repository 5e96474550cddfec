// Package push contains the default delivery transport: one TCP stream
// per subscriber, newline-delimited JSON frames. The remote side is the
// listener the member announced at login.
package push

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/egortrue/Chatter/internal/app"
	"github.com/egortrue/Chatter/internal/domain"
)

var ErrSinkClosed = errors.New("sink closed")

// TCPDialer dials the address a member supplied at login.
type TCPDialer struct {
	Timeout      time.Duration
	WriteTimeout time.Duration
}

func (d *TCPDialer) Dial(member *domain.Member) (app.Sink, error) {
	conn, err := net.DialTimeout("tcp", member.Addr, d.Timeout)
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "adapters.push").Str("member", string(member.ID)).Str("addr", member.Addr).Msg("tcp sink dialed")
	return &tcpSink{conn: conn, timeout: d.WriteTimeout}, nil
}

type tcpSink struct {
	mu      sync.Mutex
	conn    net.Conn
	timeout time.Duration
	closed  bool
}

func (s *tcpSink) TrySend(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	if s.timeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
			return err
		}
	}
	if _, err := s.conn.Write(append(frame, '\n')); err != nil {
		// A broken stream never recovers; stop writing into it.
		s.closed = true
		_ = s.conn.Close()
		return err
	}
	return nil
}

func (s *tcpSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	_ = s.conn.Close()
}
