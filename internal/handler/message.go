package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kiranbanna12/xrozen-chat/internal/middlewares"
	"github.com/Kiranbanna12/xrozen-chat/internal/model"
	"github.com/Kiranbanna12/xrozen-chat/internal/service"
)

type MessageHandler struct {
	messageService service.IMessageService
}

func NewMessageHandler(messageService service.IMessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

// SendMessage handles appending a message to a project conversation
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	message, err := h.messageService.Append(c.Request.Context(), c.Param("project_id"), identity, req.Content, req.ReplyToID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidContent), errors.Is(err, service.ErrInvalidIdentity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		}
		return
	}

	c.JSON(http.StatusCreated, message)
}

// ListMessages retrieves a page of project history, newest first
func (h *MessageHandler) ListMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	beforeID := c.Query("before")

	messages, err := h.messageService.ListMessages(c.Request.Context(), c.Param("project_id"), limit, beforeID)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// GetMessage retrieves a single message with its receipt sets and,
// when it is a reply, the referenced message.
func (h *MessageHandler) GetMessage(c *gin.Context) {
	message, err := h.messageService.GetMessage(c.Request.Context(), c.Param("message_id"))
	if err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve message"})
		return
	}

	resp := gin.H{"message": message}
	if message.ReplyToID != "" {
		// A missing target renders as a reply without context.
		replyTo, err := h.messageService.ResolveReply(c.Request.Context(), message)
		if err == nil && replyTo != nil {
			resp["reply_to"] = replyTo
		}
	}

	c.JSON(http.StatusOK, resp)
}

// MarkDelivered records that the caller received a message
func (h *MessageHandler) MarkDelivered(c *gin.Context) {
	h.markReceipt(c, h.messageService.MarkDelivered)
}

// MarkRead records that the caller read a message
func (h *MessageHandler) MarkRead(c *gin.Context) {
	h.markReceipt(c, h.messageService.MarkRead)
}

func (h *MessageHandler) markReceipt(c *gin.Context, mark func(ctx context.Context, messageID string, participant model.Identity) error) {
	identity, ok := middlewares.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := mark(c.Request.Context(), c.Param("message_id"), identity); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidIdentity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update receipt"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
