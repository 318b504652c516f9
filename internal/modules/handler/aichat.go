package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashwath129/DayMap/internal/middleware"
	"github.com/ashwath129/DayMap/internal/modules/serializer"
	"github.com/ashwath129/DayMap/internal/modules/service"
)

type PlanChatHandler struct {
	svc service.PlanChatService
}

func NewPlanChatHandler(s service.PlanChatService) *PlanChatHandler {
	return &PlanChatHandler{svc: s}
}

type PlanChatReq struct {
	Text string `json:"text" binding:"required,max=2000"`
}

func (h *PlanChatHandler) Chat(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	req := PlanChatReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	reply, err := h.svc.Chat(c.Request.Context(), service.PlanChatInput{
		GroupID:    gid,
		UserID:     middleware.UserID(c),
		SenderName: middleware.UserName(c),
		Text:       req.Text,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Success(reply))
}
