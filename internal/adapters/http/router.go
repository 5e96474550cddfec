// Package http wires the broker's operations to a gin router. Status
// mapping and DTO shapes live here; the broker itself only sees plain
// data.
package http

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/egortrue/Chatter/internal/adapters/ws"
	"github.com/egortrue/Chatter/internal/config"
	"github.com/egortrue/Chatter/internal/core"
)

func SetupRouter(cfg *config.Config, broker core.Broker, feed *ws.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ChatterSession", store))

	h := &Handlers{Broker: broker}

	r.POST("/login", h.Login)
	r.POST("/create", h.CreateRoom)
	r.GET("/list", h.ListRooms)
	r.POST("/join", h.Join)
	r.POST("/leave", h.Leave)
	r.POST("/send", h.Send)
	r.GET("/messages", h.History)

	if feed != nil {
		r.GET("/ws/feed", feed.HandleFeed)
	}

	return r
}

// requestLogger mirrors method/uri/status into zerolog; 4xx and up are
// logged at error level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		evt := log.Info()
		if status >= 400 {
			evt = log.Error()
		}
		evt.Str("module", "adapters.http").
			Str("method", c.Request.Method).
			Str("uri", c.Request.URL.RequestURI()).
			Int("status", status).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}
