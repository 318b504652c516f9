package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ashwath129/DayMap/internal/middleware"
	"github.com/ashwath129/DayMap/internal/modules/serializer"
	"github.com/ashwath129/DayMap/internal/modules/service"
)

type GroupHandler struct {
	svc service.GroupService
}

func NewGroupHandler(s service.GroupService) *GroupHandler {
	return &GroupHandler{svc: s}
}

type CreateGroupReq struct {
	Name        string `json:"name" binding:"required,max=120"`
	Description string `json:"description" binding:"max=2000"`
}

func (h *GroupHandler) CreateGroup(c *gin.Context) {
	req := CreateGroupReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	g, err := h.svc.Create(c.Request.Context(), service.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   middleware.UserID(c),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Success(g))
}

func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.svc.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Success(groups))
}

func (h *GroupHandler) GetGroup(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	g, err := h.svc.Get(c.Request.Context(), gid, middleware.UserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Success(g))
}

func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), gid, middleware.UserID(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}

type JoinByCodeReq struct {
	Code string `json:"code" binding:"required,len=8,alphanum"`
}

func (h *GroupHandler) JoinByCode(c *gin.Context) {
	req := JoinByCodeReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	g, err := h.svc.JoinByCode(c.Request.Context(), strings.ToUpper(req.Code), middleware.UserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Success(g))
}

func (h *GroupHandler) JoinGroup(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	if err := h.svc.Join(c.Request.Context(), gid, middleware.UserID(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}

func (h *GroupHandler) LeaveGroup(c *gin.Context) {
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

func (h *GroupHandler) ListMembers(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	members, err := h.svc.ListMembers(c.Request.Context(), gid, middleware.UserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Success(members))
}
