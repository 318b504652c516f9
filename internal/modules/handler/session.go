package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashwath129/DayMap/internal/middleware"
	"github.com/ashwath129/DayMap/internal/modules/serializer"
	"github.com/ashwath129/DayMap/internal/modules/service"
)

type SessionHandler struct {
	svc service.LiveSessionService
}

func NewSessionHandler(s service.LiveSessionService) *SessionHandler {
	return &SessionHandler{svc: s}
}

// SessionView is the wire shape for a live session plus its current
// itinerary document.
type SessionView struct {
	SessionID string      `json:"session_id"`
	GroupID   string      `json:"group_id"`
	IsActive  bool        `json:"is_active"`
	Document  interface{} `json:"document"`
}

func sessionView(st *service.SessionState) SessionView {
	return SessionView{
		SessionID: st.Session.ID.String(),
		GroupID:   st.Session.GroupID.String(),
		IsActive:  st.Session.IsActive,
		Document:  st.Document,
	}
}

func (h *SessionHandler) StartSession(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	st, err := h.svc.Start(c.Request.Context(), gid, middleware.UserID(c), middleware.UserName(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Success(sessionView(st)))
}

type EndSessionReq struct {
	// Ending discards any in-progress AI dialogue, so the client must
	// confirm explicitly.
	Confirm bool `json:"confirm"`
}

func (h *SessionHandler) EndSession(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	req := EndSessionReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if !req.Confirm {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("confirm must be true to end the session", nil))
		return
	}
	if err := h.svc.End(c.Request.Context(), gid, middleware.UserID(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	st, err := h.svc.GetActive(c.Request.Context(), gid, middleware.UserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Success(sessionView(st)))
}

func (h *SessionHandler) Heartbeat(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	if err := h.svc.Heartbeat(c.Request.Context(), gid, middleware.UserID(c), middleware.UserName(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}

func (h *SessionHandler) LeaveSession(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	if err := h.svc.Leave(c.Request.Context(), gid, middleware.UserID(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}

func (h *SessionHandler) GetParticipants(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	parts, err := h.svc.Participants(c.Request.Context(), gid, middleware.UserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Success(parts))
}
