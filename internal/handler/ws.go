package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kiranbanna12/xrozen-chat/internal/middlewares"
	"github.com/Kiranbanna12/xrozen-chat/internal/realtime"
	"github.com/Kiranbanna12/xrozen-chat/internal/service"
)

type WSHandler struct {
	hub               *realtime.Hub
	membershipService service.IMembershipService
}

func NewWSHandler(hub *realtime.Hub, membershipService service.IMembershipService) *WSHandler {
	return &WSHandler{
		hub:               hub,
		membershipService: membershipService,
	}
}

// Subscribe attaches the caller to a project's realtime room. Only
// active members may subscribe.
func (h *WSHandler) Subscribe(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id is required"})
		return
	}

	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	member, err := h.membershipService.ActiveMember(c.Request.Context(), projectID, identity)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not an active member of this project"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}

	// Best effort; the subscription proceeds either way.
	_ = h.membershipService.TouchLastSeen(c.Request.Context(), member.ID)

	h.hub.ServeWS(c, projectID, identity.ParticipantID())
}
