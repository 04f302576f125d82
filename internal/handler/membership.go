package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kiranbanna12/xrozen-chat/internal/middlewares"
	"github.com/Kiranbanna12/xrozen-chat/internal/model"
	"github.com/Kiranbanna12/xrozen-chat/internal/service"
)

type MembershipHandler struct {
	membershipService service.IMembershipService
}

func NewMembershipHandler(membershipService service.IMembershipService) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
	}
}

// JoinProject handles a direct join into a project conversation.
// Guests never take this path; they join through share resolution.
func (h *MembershipHandler) JoinProject(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	member, err := h.membershipService.Join(c.Request.Context(), c.Param("project_id"), model.UserIdentity(userID), "")
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidIdentity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join project"})
		}
		return
	}

	c.JSON(http.StatusOK, member)
}

// ListMembers retrieves the active members of a project conversation
func (h *MembershipHandler) ListMembers(c *gin.Context) {
	members, err := h.membershipService.ListMembers(c.Request.Context(), c.Param("project_id"))
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve members"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// RemoveMember soft-removes a membership. Allowed for the member
// themselves or the project creator.
func (h *MembershipHandler) RemoveMember(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	err := h.membershipService.Remove(c.Request.Context(), c.Param("member_id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrMemberRemoved):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotProjectCreator):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove member"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// RequestJoin files a join request for the caller. Filing twice returns
// the existing pending request.
func (h *MembershipHandler) RequestJoin(c *gin.Context) {
	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	request, err := h.membershipService.RequestJoin(c.Request.Context(), c.Param("project_id"), identity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidIdentity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to file join request"})
		}
		return
	}

	c.JSON(http.StatusCreated, request)
}

// ListJoinRequests retrieves pending join requests, creator only
func (h *MembershipHandler) ListJoinRequests(c *gin.Context) {
	requests, err := h.membershipService.ListPendingRequests(c.Request.Context(), c.Param("project_id"))
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve join requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// RespondJoinRequest approves or rejects a pending join request.
// A request transitions exactly once; racing responders get a conflict.
func (h *MembershipHandler) RespondJoinRequest(c *gin.Context) {
	var req struct {
		Approve bool `json:"approve"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	request, err := h.membershipService.Respond(c.Request.Context(), c.Param("request_id"), req.Approve, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAlreadyResponded):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotProjectCreator):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to respond to join request"})
		}
		return
	}

	c.JSON(http.StatusOK, request)
}
