package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kiranbanna12/xrozen-chat/internal/middlewares"
	"github.com/Kiranbanna12/xrozen-chat/internal/model"
	"github.com/Kiranbanna12/xrozen-chat/internal/service"
	"github.com/Kiranbanna12/xrozen-chat/middleware/jwt"
)

type ShareHandler struct {
	membershipService service.IMembershipService
	tokens            *jwt.TokenManager
}

func NewShareHandler(membershipService service.IMembershipService, tokens *jwt.TokenManager) *ShareHandler {
	return &ShareHandler{
		membershipService: membershipService,
		tokens:            tokens,
	}
}

// CreateShare mints a share link for a project, creator only
func (h *ShareHandler) CreateShare(c *gin.Context) {
	var req struct {
		CanView   bool       `json:"can_view"`
		CanEdit   bool       `json:"can_edit"`
		CanChat   bool       `json:"can_chat"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	caps := service.ShareCapabilities{CanView: req.CanView, CanEdit: req.CanEdit, CanChat: req.CanChat}
	share, err := h.membershipService.CreateShare(c.Request.Context(), c.Param("project_id"), userID, caps, req.ExpiresAt)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotProjectCreator):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create share link"})
		}
		return
	}

	c.JSON(http.StatusCreated, share)
}

// ResolveShare exchanges a share token plus a display name for chat
// access. Registered callers join under their account; anonymous
// callers get a guest token scoped to the share's project.
func (h *ShareHandler) ResolveShare(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	share, err := h.membershipService.ResolveShare(c.Request.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShareNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrShareInactive), errors.Is(err, service.ErrShareExpired):
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrShareNoChat):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve share link"})
		}
		return
	}

	var identity model.Identity
	guestToken := ""
	if userID := c.GetString(middlewares.CtxUserID); userID != "" {
		identity = model.UserIdentity(userID)
	} else {
		if req.DisplayName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "display_name is required for guest access"})
			return
		}
		identity = model.GuestIdentity(req.DisplayName)
		guestToken, err = h.tokens.GenerateGuestToken(req.DisplayName, share.ProjectID, share.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue guest token"})
			return
		}
	}

	member, err := h.membershipService.Join(c.Request.Context(), share.ProjectID, identity, share.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCreatorViaShare):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidIdentity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join via share link"})
		}
		return
	}

	resp := gin.H{"share": share, "member": member}
	if guestToken != "" {
		resp["token"] = guestToken
	}
	c.JSON(http.StatusOK, resp)
}

// ListShares retrieves a project's share links
func (h *ShareHandler) ListShares(c *gin.Context) {
	// Listing rides the membership service so revoked links still show
	// for auditing.
	shares, err := h.membershipService.ListShares(c.Request.Context(), c.Param("project_id"))
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve share links"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

// RevokeShare deactivates a share link, creator only
func (h *ShareHandler) RevokeShare(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	err := h.membershipService.RevokeShare(c.Request.Context(), c.Param("share_id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShareNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotProjectCreator):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke share link"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}
