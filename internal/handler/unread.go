package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kiranbanna12/xrozen-chat/internal/middlewares"
	"github.com/Kiranbanna12/xrozen-chat/internal/service"
)

type UnreadHandler struct {
	unreadService service.IUnreadService
}

func NewUnreadHandler(unreadService service.IUnreadService) *UnreadHandler {
	return &UnreadHandler{
		unreadService: unreadService,
	}
}

// GetUnread retrieves per-project unread counts for the caller's
// dashboard. Guests have no cross-project dashboard, so this is a
// registered-user surface.
func (h *UnreadHandler) GetUnread(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	summary, err := h.unreadService.UnreadFor(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute unread counts"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// MarkProjectRead advances the caller's read watermark for one project
func (h *UnreadHandler) MarkProjectRead(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	if err := h.unreadService.MarkProjectRead(c.Request.Context(), c.Param("project_id"), userID); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark project read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
