package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashwath129/DayMap/internal/middleware"
	"github.com/ashwath129/DayMap/internal/modules/serializer"
	"github.com/ashwath129/DayMap/internal/modules/service"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(s service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: s}
}

func (h *NotificationHandler) GetFlags(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	flags, err := h.svc.Flags(c.Request.Context(), gid, middleware.UserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Success(flags))
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), gid, middleware.UserID(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}
