package http

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/egortrue/Chatter/internal/core"
	"github.com/egortrue/Chatter/internal/domain"
)

// sessionMemberKey holds the member id in the cookie session, so a
// browser client may omit the user field after login.
const sessionMemberKey = "member"

type Handlers struct {
	Broker core.Broker
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Address  string `json:"address" binding:"required"`
}

type createRequest struct {
	Name     string  `json:"name" binding:"required"`
	Password *string `json:"password"`
}

type joinRequest struct {
	User     string  `json:"user"`
	Chat     string  `json:"chat" binding:"required"`
	Password *string `json:"password"`
}

type leaveRequest struct {
	User string `json:"user"`
	Chat string `json:"chat" binding:"required"`
}

type sendRequest struct {
	User string `json:"user"`
	Chat string `json:"chat" binding:"required"`
	Text string `json:"text" binding:"required"`
}

type idResponse struct {
	ID string `json:"id"`
}

func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.Broker.Login(req.Username, req.Address)
	if err != nil {
		c.String(status(err), err.Error())
		return
	}
	sess := sessions.Default(c)
	sess.Set(sessionMemberKey, string(id))
	_ = sess.Save()
	c.JSON(http.StatusOK, idResponse{ID: string(id)})
}

func (h *Handlers) CreateRoom(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.Broker.CreateRoom(domain.RoomName(req.Name), req.Password)
	if err != nil {
		c.String(status(err), err.Error())
		return
	}
	c.JSON(http.StatusCreated, idResponse{ID: string(id)})
}

func (h *Handlers) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.Broker.ListRooms())
}

func (h *Handlers) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	member, ok := h.memberID(c, req.User)
	if !ok {
		c.String(http.StatusBadRequest, "missing member id")
		return
	}
	if err := h.Broker.Join(member, domain.RoomID(req.Chat), req.Password); err != nil {
		c.String(status(err), err.Error())
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handlers) Leave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	member, ok := h.memberID(c, req.User)
	if !ok {
		c.String(http.StatusBadRequest, "missing member id")
		return
	}
	if err := h.Broker.Leave(member, domain.RoomID(req.Chat)); err != nil {
		c.String(status(err), err.Error())
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handlers) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	member, ok := h.memberID(c, req.User)
	if !ok {
		c.String(http.StatusBadRequest, "missing member id")
		return
	}
	if err := h.Broker.Send(member, domain.RoomID(req.Chat), req.Text); err != nil {
		c.String(status(err), err.Error())
		return
	}
	c.Status(http.StatusOK)
}

// History reads user and chat from the query string; GET bodies do not
// survive every proxy.
func (h *Handlers) History(c *gin.Context) {
	chat := c.Query("chat")
	if chat == "" {
		c.String(http.StatusBadRequest, "missing chat id")
		return
	}
	member, ok := h.memberID(c, c.Query("user"))
	if !ok {
		c.String(http.StatusBadRequest, "missing member id")
		return
	}
	messages, err := h.Broker.History(member, domain.RoomID(chat))
	if err != nil {
		c.String(status(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, messages)
}

// memberID resolves the acting member: explicit request field first,
// cookie session as fallback.
func (h *Handlers) memberID(c *gin.Context, supplied string) (domain.MemberID, bool) {
	if supplied != "" {
		return domain.MemberID(supplied), true
	}
	sess := sessions.Default(c)
	if v, ok := sess.Get(sessionMemberKey).(string); ok && v != "" {
		return domain.MemberID(v), true
	}
	return "", false
}

func status(err error) int {
	switch {
	case errors.Is(err, core.ErrAlreadyLoggedIn),
		errors.Is(err, core.ErrRoomExists),
		errors.Is(err, core.ErrAlreadySubscribed):
		return http.StatusConflict
	case errors.Is(err, core.ErrRoomNotFound),
		errors.Is(err, core.ErrMemberNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrWrongPassword):
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
