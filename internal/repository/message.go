package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kiranbanna12/xrozen-chat/internal/model"
)

// IMessageRepository defines the interface for message and receipt storage
type IMessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	FindByID(ctx context.Context, id string) (*model.Message, error)
	ListByProject(ctx context.Context, projectID string, limit int, beforeID string) ([]*model.Message, error)
	AddReceipt(ctx context.Context, receipt *model.MessageReceipt) error
	Receipts(ctx context.Context, messageID string) ([]model.MessageReceipt, error)
	UpdateStatus(ctx context.Context, messageID, status string) error
	CountAfter(ctx context.Context, projectID string, after *time.Time) (int64, error)
	LatestByProject(ctx context.Context, projectID string) (*model.Message, error)
}

// MessageRepository implements IMessageRepository over gorm
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new IMessageRepository instance
func NewMessageRepository(db *gorm.DB) IMessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message row
func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// FindByID finds a message by ID, or returns (nil, nil) when absent
func (r *MessageRepository) FindByID(ctx context.Context, id string) (*model.Message, error) {
	var message model.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

// ListByProject retrieves the newest messages of a project, optionally
// only those older than beforeID for history paging
func (r *MessageRepository) ListByProject(ctx context.Context, projectID string, limit int, beforeID string) ([]*model.Message, error) {
	query := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if beforeID != "" {
		// Message IDs are snowflakes, so lexical order on the zero-padded
		// decimal form is not safe; page on created_at of the anchor row.
		var anchor model.Message
		if err := r.db.WithContext(ctx).Where("id = ?", beforeID).First(&anchor).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		} else {
			query = query.Where("created_at < ?", anchor.CreatedAt)
		}
	}

	var messages []*model.Message
	err := query.Order("created_at DESC").Limit(limit).Find(&messages).Error
	return messages, err
}

// AddReceipt inserts a delivery/read receipt. Re-inserting the same
// (message, participant, state) triple is a no-op.
func (r *MessageRepository) AddReceipt(ctx context.Context, receipt *model.MessageReceipt) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(receipt).Error
}

// Receipts retrieves all receipts of a message
func (r *MessageRepository) Receipts(ctx context.Context, messageID string) ([]model.MessageReceipt, error) {
	var receipts []model.MessageReceipt
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Find(&receipts).Error
	return receipts, err
}

// UpdateStatus updates the compatibility status column of a message
func (r *MessageRepository) UpdateStatus(ctx context.Context, messageID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("id = ?", messageID).
		Update("status", status).Error
}

// CountAfter counts a project's messages created strictly after the given
// time; a nil time counts every message in the project
func (r *MessageRepository) CountAfter(ctx context.Context, projectID string, after *time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("project_id = ?", projectID)
	if after != nil {
		query = query.Where("created_at > ?", *after)
	}
	err := query.Count(&count).Error
	return count, err
}

// LatestByProject returns the most recent message of a project, or
// (nil, nil) when the conversation is empty
func (r *MessageRepository) LatestByProject(ctx context.Context, projectID string) (*model.Message, error) {
	var message model.Message
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}
