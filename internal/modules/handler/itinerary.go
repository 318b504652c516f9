package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ashwath129/DayMap/internal/middleware"
	"github.com/ashwath129/DayMap/internal/modules/serializer"
	"github.com/ashwath129/DayMap/internal/modules/service"
	"github.com/ashwath129/DayMap/internal/pkg/itinerary"
)

// ItineraryHandler exposes the live itinerary editing surface. Field and
// meal edits are debounced server-side; structural edits (add, remove,
// reorder, replace) persist immediately.
type ItineraryHandler struct {
	svc service.LiveSessionService
}

func NewItineraryHandler(s service.LiveSessionService) *ItineraryHandler {
	return &ItineraryHandler{svc: s}
}

func dayID(c *gin.Context) (string, bool) {
	id := c.Param("day_id")
	if id == "" {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("missing day_id", nil))
		return "", false
	}
	return id, true
}

func activityIndex(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid activity index", err))
		return 0, false
	}
	return idx, true
}

type SetFieldReq struct {
	Field string `json:"field" binding:"required,oneof=accommodation transportation budget"`
	Value string `json:"value" binding:"max=4000"`
}

func (h *ItineraryHandler) SetField(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	did, ok := dayID(c)
	if !ok {
		return
	}
	req := SetFieldReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if err := h.svc.SetField(c.Request.Context(), gid, middleware.UserID(c), did, req.Field, req.Value); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}

type SetMealReq struct {
	Meal  string `json:"meal" binding:"required,oneof=breakfast lunch dinner"`
	Value string `json:"value" binding:"max=4000"`
}

func (h *ItineraryHandler) SetMeal(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	did, ok := dayID(c)
	if !ok {
		return
	}
	req := SetMealReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if err := h.svc.SetMeal(c.Request.Context(), gid, middleware.UserID(c), did, req.Meal, req.Value); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}

type ActivityReq struct {
	Value string `json:"value" binding:"required,max=4000"`
}

func (h *ItineraryHandler) SetActivity(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	did, ok := dayID(c)
	if !ok {
		return
	}
	idx, ok := activityIndex(c)
	if !ok {
		return
	}
	req := ActivityReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if err := h.svc.SetActivity(c.Request.Context(), gid, middleware.UserID(c), did, idx, req.Value); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}

func (h *ItineraryHandler) AppendActivity(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	did, ok := dayID(c)
	if !ok {
		return
	}
	req := ActivityReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if err := h.svc.AppendActivity(c.Request.Context(), gid, middleware.UserID(c), did, req.Value); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}

func (h *ItineraryHandler) RemoveActivity(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	did, ok := dayID(c)
	if !ok {
		return
	}
	idx, ok := activityIndex(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveActivity(c.Request.Context(), gid, middleware.UserID(c), did, idx); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}

func (h *ItineraryHandler) AddDay(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	id, err := h.svc.AddDay(c.Request.Context(), gid, middleware.UserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Success(gin.H{"day_id": id}))
}

func (h *ItineraryHandler) RemoveDay(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	did, ok := dayID(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveDay(c.Request.Context(), gid, middleware.UserID(c), did); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}

type ReorderDaysReq struct {
	From int `json:"from" binding:"min=0"`
	To   int `json:"to" binding:"min=0"`
}

func (h *ItineraryHandler) ReorderDays(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	req := ReorderDaysReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if err := h.svc.ReorderDays(c.Request.Context(), gid, middleware.UserID(c), req.From, req.To); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}

type ReplaceDocumentReq struct {
	Days []itinerary.Day `json:"days" binding:"required"`
}

func (h *ItineraryHandler) ReplaceDocument(c *gin.Context) {
	gid, ok := groupID(c)
	if !ok {
		return
	}
	req := ReplaceDocumentReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if err := h.svc.ReplaceDocument(c.Request.Context(), gid, middleware.UserID(c), itinerary.Document{Days: req.Days}); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
}
