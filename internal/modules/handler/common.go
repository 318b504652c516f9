package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ashwath129/DayMap/internal/live"
	"github.com/ashwath129/DayMap/internal/modules/repo"
	"github.com/ashwath129/DayMap/internal/modules/serializer"
	"github.com/ashwath129/DayMap/internal/modules/service"
)

// groupID parses the :group_id path parameter. On failure it writes the
// error response and returns false.
func groupID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid group_id", err))
		return uuid.Nil, false
	}
	return id, true
}

// respondErr maps service and engine errors onto HTTP statuses.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, live.ErrOwnerOnly), errors.Is(err, service.ErrNotMember):
		c.JSON(http.StatusForbidden, serializer.ForbiddenErr("", err))
	case errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrNoActiveSession),
		errors.Is(err, repo.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr("", err))
	case errors.Is(err, repo.ErrActiveSessionExists), errors.Is(err, repo.ErrSessionEnded):
		c.JSON(http.StatusConflict, serializer.ConflictErr("", err))
	case errors.Is(err, live.ErrGeneration):
		c.JSON(http.StatusBadGateway, serializer.Err(http.StatusBadGateway, "plan generation failed", err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}
