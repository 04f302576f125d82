package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Kiranbanna12/xrozen-chat/internal/model"
	"github.com/Kiranbanna12/xrozen-chat/internal/repository"
	"github.com/Kiranbanna12/xrozen-chat/pkg/workerpool"
	"github.com/Kiranbanna12/xrozen-chat/utils/snowflake"
)

const (
	maxContentLength = 5000

	// publishTimeout bounds every fire-and-forget publish. A slow or dead
	// channel costs at most this much worker time, never request latency.
	publishTimeout = 3 * time.Second
)

// EventProducer is the outbound port for the durable event journal
// (kafka). Like the realtime channel it is a side effect of a write that
// already succeeded, so failures are logged and swallowed.
type EventProducer interface {
	SendEvent(key string, event interface{}) error
}

// ChatEvent is the journal record produced for every message mutation.
type ChatEvent struct {
	Type          string    `json:"type"`
	ProjectID     string    `json:"project_id"`
	MessageID     string    `json:"message_id"`
	ParticipantID string    `json:"participant_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// SendMessageRequest represents a request to post a message
type SendMessageRequest struct {
	Content   string `json:"content" binding:"required,max=5000"`
	ReplyToID string `json:"reply_to_message_id"`
}

// IMessageService defines the interface for the message store
type IMessageService interface {
	Append(ctx context.Context, projectID string, sender model.Identity, content, replyToID string) (*model.Message, error)
	AppendSystem(ctx context.Context, projectID, systemType, systemData, content string) (*model.Message, error)
	MarkDelivered(ctx context.Context, messageID string, participant model.Identity) error
	MarkRead(ctx context.Context, messageID string, participant model.Identity) error
	GetMessage(ctx context.Context, messageID string) (*model.Message, error)
	ListMessages(ctx context.Context, projectID string, limit int, beforeID string) ([]*model.Message, error)
	ResolveReply(ctx context.Context, message *model.Message) (*model.Message, error)
}

// MessageService implements the IMessageService interface
type MessageService struct {
	messageRepo repository.IMessageRepository
	projectRepo repository.IProjectRepository
	idGen       *snowflake.Generator
	notifier    Notifier
	producer    EventProducer
	pool        *workerpool.Pool
	logger      *zap.Logger
}

// NewMessageService creates a new IMessageService instance
func NewMessageService(
	messageRepo repository.IMessageRepository,
	projectRepo repository.IProjectRepository,
	idGen *snowflake.Generator,
	notifier Notifier,
	producer EventProducer,
	pool *workerpool.Pool,
	logger *zap.Logger,
) IMessageService {
	return &MessageService{
		messageRepo: messageRepo,
		projectRepo: projectRepo,
		idGen:       idGen,
		notifier:    notifier,
		producer:    producer,
		pool:        pool,
		logger:      logger,
	}
}

// Append stores a new message with status sent and empty receipt sets.
// A replyToID pointing at a deleted message is stored as-is; reply
// references are weak and resolved at read time.
func (s *MessageService) Append(ctx context.Context, projectID string, sender model.Identity, content, replyToID string) (*model.Message, error) {
	if !sender.Valid() {
		return nil, ErrInvalidIdentity
	}
	if len(content) == 0 || len(content) > maxContentLength {
		return nil, ErrInvalidContent
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	message := &model.Message{
		ProjectID: projectID,
		Sender:    sender,
		Content:   content,
		Status:    model.MessageStatusSent,
		ReplyToID: replyToID,
	}
	if err := s.create(ctx, message); err != nil {
		return nil, err
	}

	s.publish(message.ProjectID, EventMessageNew, message, "")
	return message, nil
}

// AppendSystem stores a system message emitted by another product surface
// (version uploaded, feedback resolved, and so on).
func (s *MessageService) AppendSystem(ctx context.Context, projectID, systemType, systemData, content string) (*model.Message, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	message := &model.Message{
		ProjectID:  projectID,
		Sender:     model.GuestIdentity("system"),
		Content:    content,
		Status:     model.MessageStatusSent,
		IsSystem:   true,
		SystemType: systemType,
		SystemData: systemData,
	}
	if err := s.create(ctx, message); err != nil {
		return nil, err
	}

	s.publish(message.ProjectID, EventMessageNew, message, "")
	return message, nil
}

func (s *MessageService) create(ctx context.Context, message *model.Message) error {
	id, err := s.idGen.NextID()
	if err != nil {
		return fmt.Errorf("failed to generate message ID: %w", err)
	}
	message.ID = strconv.FormatInt(id, 10)

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return fmt.Errorf("failed to store message: %w", err)
	}
	return nil
}

// MarkDelivered records that a participant received a message. Repeating
// the call is a no-op.
func (s *MessageService) MarkDelivered(ctx context.Context, messageID string, participant model.Identity) error {
	if !participant.Valid() {
		return ErrInvalidIdentity
	}

	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to look up message: %w", err)
	}
	if message == nil {
		return ErrMessageNotFound
	}

	pid := participant.ParticipantID()
	if err := s.messageRepo.AddReceipt(ctx, &model.MessageReceipt{
		MessageID:     messageID,
		ParticipantID: pid,
		State:         model.ReceiptDelivered,
	}); err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}

	// Upgrade the compatibility column, never downgrade an existing read.
	if message.Status == model.MessageStatusSent {
		if err := s.messageRepo.UpdateStatus(ctx, messageID, model.MessageStatusDelivered); err != nil {
			return fmt.Errorf("failed to update message status: %w", err)
		}
	}

	s.publish(message.ProjectID, EventMessageDelivered, map[string]string{
		"message_id":     messageID,
		"participant_id": pid,
	}, pid)
	return nil
}

// MarkRead records that a participant read a message, which implies
// having received it: a missing delivered receipt is added alongside.
// Membership is deliberately not checked; the receipt sets are a
// best-effort status indicator, not a security boundary.
func (s *MessageService) MarkRead(ctx context.Context, messageID string, participant model.Identity) error {
	if !participant.Valid() {
		return ErrInvalidIdentity
	}

	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to look up message: %w", err)
	}
	if message == nil {
		return ErrMessageNotFound
	}

	pid := participant.ParticipantID()
	for _, state := range []string{model.ReceiptDelivered, model.ReceiptRead} {
		if err := s.messageRepo.AddReceipt(ctx, &model.MessageReceipt{
			MessageID:     messageID,
			ParticipantID: pid,
			State:         state,
		}); err != nil {
			return fmt.Errorf("failed to record %s receipt: %w", state, err)
		}
	}

	if message.Status != model.MessageStatusRead {
		if err := s.messageRepo.UpdateStatus(ctx, messageID, model.MessageStatusRead); err != nil {
			return fmt.Errorf("failed to update message status: %w", err)
		}
	}

	s.publish(message.ProjectID, EventMessageRead, map[string]string{
		"message_id":     messageID,
		"participant_id": pid,
	}, pid)
	return nil
}

// GetMessage retrieves a message with its receipt sets populated
func (s *MessageService) GetMessage(ctx context.Context, messageID string) (*model.Message, error) {
	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up message: %w", err)
	}
	if message == nil {
		return nil, ErrMessageNotFound
	}

	receipts, err := s.messageRepo.Receipts(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load receipts: %w", err)
	}
	for _, receipt := range receipts {
		switch receipt.State {
		case model.ReceiptDelivered:
			message.DeliveredTo = append(message.DeliveredTo, receipt.ParticipantID)
		case model.ReceiptRead:
			message.ReadBy = append(message.ReadBy, receipt.ParticipantID)
		}
	}
	return message, nil
}

// ListMessages retrieves a page of project history, newest first. Receipt
// sets are not populated on list results.
func (s *MessageService) ListMessages(ctx context.Context, projectID string, limit int, beforeID string) ([]*model.Message, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	return s.messageRepo.ListByProject(ctx, projectID, limit, beforeID)
}

// ResolveReply looks up the message a reply points at. A missing target
// means the reply context is unavailable, not an error.
func (s *MessageService) ResolveReply(ctx context.Context, message *model.Message) (*model.Message, error) {
	if message.ReplyToID == "" {
		return nil, nil
	}
	return s.messageRepo.FindByID(ctx, message.ReplyToID)
}

// publish fans a mutation out to the realtime channel and the event
// journal off the request path. The write already succeeded; a lost
// notification only delays clients until their next authoritative fetch.
func (s *MessageService) publish(projectID, event string, payload interface{}, participantID string) {
	messageID := ""
	if m, ok := payload.(*model.Message); ok {
		messageID = m.ID
	} else if p, ok := payload.(map[string]string); ok {
		messageID = p["message_id"]
	}

	submitted := s.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		s.notifier.Publish(ctx, projectID, event, payload)

		if s.producer != nil {
			journal := ChatEvent{
				Type:          event,
				ProjectID:     projectID,
				MessageID:     messageID,
				ParticipantID: participantID,
				OccurredAt:    time.Now().UTC(),
			}
			if err := s.producer.SendEvent(projectID, journal); err != nil {
				s.logger.Warn("failed to journal chat event",
					zap.String("event", event),
					zap.String("project_id", projectID),
					zap.Error(err))
			}
		}
	})
	if !submitted {
		s.logger.Warn("notification dropped",
			zap.String("event", event),
			zap.String("project_id", projectID))
	}
}
