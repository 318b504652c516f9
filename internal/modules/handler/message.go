package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ashwath129/DayMap/internal/middleware"
	"github.com/ashwath129/DayMap/internal/modules/serializer"
	"github.com/ashwath129/DayMap/internal/modules/service"
)

type MessageHandler struct {
	svc service.MessageService
}

func NewMessageHandler(s service.MessageService) *MessageHandler {
	return &MessageHandler{svc: s}
}

type SendMessageReq struct {
	Content string `json:"content" binding:"required,max=8000"`
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	req := SendMessageReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	msg, err := h.svc.Send(c.Request.Context(), service.SendMessageInput{
		GroupID:    gid,
		UserID:     middleware.UserID(c),
		SenderName: middleware.UserName(c),
		Content:    req.Content,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Success(msg))
}

type ListMessagesReq struct {
	Limit          int    `form:"limit,default=50" binding:"min=1,max=200"`
	TimeDesc       bool   `form:"time_desc,default=false"`
	AfterCreatedAt string `form:"after_created_at"`
	AfterID        string `form:"after_id"`
}

func (h *MessageHandler) GetMessages(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	req := ListMessagesReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	in := service.ListMessagesInput{
		GroupID:  gid,
		UserID:   middleware.UserID(c),
		Limit:    req.Limit,
		TimeDesc: req.TimeDesc,
	}
	if req.AfterCreatedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, req.AfterCreatedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid after_created_at", err))
			return
		}
		in.AfterCreatedAt = t
	}
	if req.AfterID != "" {
		id, err := uuid.Parse(req.AfterID)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid after_id", err))
			return
		}
		in.AfterID = id
	}

	msgs, err := h.svc.List(c.Request.Context(), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Success(msgs))
}

type ToggleReactionReq struct {
	Emoji string `json:"emoji" binding:"required,max=16"`
}

func (h *MessageHandler) ToggleReaction(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	mid, err := uuid.Parse(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid message_id", err))
		return
	}
	req := ToggleReactionReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	added, err := h.svc.ToggleReaction(c.Request.Context(), service.ToggleReactionInput{
		GroupID:   gid,
		MessageID: mid,
		UserID:    middleware.UserID(c),
		Emoji:     req.Emoji,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Success(gin.H{"added": added}))
}
