package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Kiranbanna12/xrozen-chat/internal/model"
)

// IShareRepository defines the interface for share link storage
type IShareRepository interface {
	Create(ctx context.Context, share *model.ShareLink) error
	FindByID(ctx context.Context, id string) (*model.ShareLink, error)
	FindByToken(ctx context.Context, token string) (*model.ShareLink, error)
	ListByProject(ctx context.Context, projectID string) ([]*model.ShareLink, error)
	Revoke(ctx context.Context, id string, at time.Time) error
}

// ShareRepository implements IShareRepository over gorm
type ShareRepository struct {
	db *gorm.DB
}

// NewShareRepository creates a new IShareRepository instance
func NewShareRepository(db *gorm.DB) IShareRepository {
	return &ShareRepository{db: db}
}

// Create inserts a new share link
func (r *ShareRepository) Create(ctx context.Context, share *model.ShareLink) error {
	return r.db.WithContext(ctx).Create(share).Error
}

// FindByID finds a share link by ID, or (nil, nil) when absent
func (r *ShareRepository) FindByID(ctx context.Context, id string) (*model.ShareLink, error) {
	var share model.ShareLink
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &share, nil
}

// FindByToken finds a share link by its unique token, or (nil, nil)
func (r *ShareRepository) FindByToken(ctx context.Context, token string) (*model.ShareLink, error) {
	var share model.ShareLink
	err := r.db.WithContext(ctx).Where("share_token = ?", token).First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &share, nil
}

// ListByProject retrieves all share links of a project
func (r *ShareRepository) ListByProject(ctx context.Context, projectID string) ([]*model.ShareLink, error) {
	var shares []*model.ShareLink
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&shares).Error
	return shares, err
}

// Revoke deactivates a share link
func (r *ShareRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.ShareLink{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": at,
		}).Error
}
