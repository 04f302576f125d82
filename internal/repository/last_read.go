package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kiranbanna12/xrozen-chat/internal/model"
)

// ILastReadRepository defines the interface for read watermark storage
type ILastReadRepository interface {
	Upsert(ctx context.Context, projectID, userID string, at time.Time) error
	Find(ctx context.Context, projectID, userID string) (*model.LastRead, error)
}

// LastReadRepository implements ILastReadRepository over gorm
type LastReadRepository struct {
	db *gorm.DB
}

// NewLastReadRepository creates a new ILastReadRepository instance
func NewLastReadRepository(db *gorm.DB) ILastReadRepository {
	return &LastReadRepository{db: db}
}

// Upsert moves the (project, user) watermark forward to at. The update
// takes GREATEST of stored and incoming timestamps, so a stale writer can
// never move the watermark backward regardless of arrival order.
func (r *LastReadRepository) Upsert(ctx context.Context, projectID, userID string, at time.Time) error {
	row := model.LastRead{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		UserID:     userID,
		LastReadAt: at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_read_at": gorm.Expr("GREATEST(project_last_read.last_read_at, excluded.last_read_at)"),
				"updated_at":   gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).
		Create(&row).Error
}

// Find retrieves the watermark for a (project, user) pair, or (nil, nil)
// when the user has never read the project
func (r *LastReadRepository) Find(ctx context.Context, projectID, userID string) (*model.LastRead, error) {
	var row model.LastRead
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
