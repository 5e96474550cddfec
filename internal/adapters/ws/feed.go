// Package ws exposes the live message feed over a websocket. The socket
// becomes the member's push sink for the lifetime of the connection;
// without one, delivery falls back to the TCP dialer.
package ws

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/egortrue/Chatter/internal/app"
	"github.com/egortrue/Chatter/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Registry     *app.Registry
	Pumps        *app.PushManager
	PingPeriod   time.Duration
	WriteTimeout time.Duration
}

type wsSink struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (s *wsSink) TrySend(frame []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.New("connection closed")
	}
	select {
	case s.send <- frame:
	default:
		return ErrBackpressure
	}
	return nil
}

func (s *wsSink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.send)
	_ = s.conn.Close()
	s.mu.Unlock()
}

// HandleFeed upgrades the request and attaches the socket as the
// member's sink. The member id comes from the query string.
func (ctl *Controller) HandleFeed(c *gin.Context) {
	id := domain.MemberID(c.Query("member"))
	member, err := ctl.Registry.Member(id)
	if err != nil {
		c.String(http.StatusNotFound, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("upgrade failed")
		return
	}
	log.Info().Str("module", "adapters.ws").Str("member", string(member.ID)).Msg("feed socket open")

	sink := &wsSink{conn: conn, send: make(chan []byte, 32)}
	if prev := ctl.Pumps.Attach(member.ID, sink); prev != nil {
		prev.Close()
	}

	go ctl.writePump(sink)
	go ctl.readPump(member.ID, sink)
}

func (ctl *Controller) writePump(s *wsSink) {
	period := ctl.PingPeriod
	if period <= 0 {
		period = 54 * time.Second
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case frame, ok := <-s.send:
			if !ok {
				return
			}
			if err := s.conn.SetWriteDeadline(time.Now().Add(ctl.WriteTimeout)); err != nil {
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug().Err(err).Str("module", "adapters.ws").Msg("write failed")
				return
			}
		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(ctl.WriteTimeout)); err != nil {
				return
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the peer going away; inbound payloads are
// ignored, messages are sent over HTTP.
func (ctl *Controller) readPump(id domain.MemberID, s *wsSink) {
	defer func() {
		ctl.Pumps.Detach(id, s)
		s.Close()
		log.Info().Str("module", "adapters.ws").Str("member", string(id)).Msg("feed socket closed")
	}()
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
