package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Kiranbanna12/xrozen-chat/internal/model"
)

// IJoinRequestRepository defines the interface for join request storage
type IJoinRequestRepository interface {
	Create(ctx context.Context, request *model.JoinRequest) error
	FindByID(ctx context.Context, id string) (*model.JoinRequest, error)
	FindPending(ctx context.Context, projectID string, identity model.Identity) (*model.JoinRequest, error)
	ListPendingByProject(ctx context.Context, projectID string) ([]*model.JoinRequest, error)
	MarkResponded(ctx context.Context, id, status, responderID string, at time.Time) (bool, error)
}

// JoinRequestRepository implements IJoinRequestRepository over gorm
type JoinRequestRepository struct {
	db *gorm.DB
}

// NewJoinRequestRepository creates a new IJoinRequestRepository instance
func NewJoinRequestRepository(db *gorm.DB) IJoinRequestRepository {
	return &JoinRequestRepository{db: db}
}

// Create inserts a new join request
func (r *JoinRequestRepository) Create(ctx context.Context, request *model.JoinRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// FindByID finds a join request by ID, or (nil, nil) when absent
func (r *JoinRequestRepository) FindByID(ctx context.Context, id string) (*model.JoinRequest, error) {
	var request model.JoinRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// FindPending finds an identity's pending request in a project, or (nil, nil)
func (r *JoinRequestRepository) FindPending(ctx context.Context, projectID string, identity model.Identity) (*model.JoinRequest, error) {
	query := r.db.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, model.JoinRequestPending)
	if identity.IsUser() {
		query = query.Where("user_id = ?", identity.UserID)
	} else {
		query = query.Where("user_id = '' AND guest_name = ?", identity.GuestName)
	}

	var request model.JoinRequest
	err := query.First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// ListPendingByProject retrieves a project's pending join requests
func (r *JoinRequestRepository) ListPendingByProject(ctx context.Context, projectID string) ([]*model.JoinRequest, error) {
	var requests []*model.JoinRequest
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, model.JoinRequestPending).
		Order("requested_at ASC").
		Find(&requests).Error
	return requests, err
}

// MarkResponded transitions a request out of pending. The update is
// conditional on the current status, so only one responder can win; the
// returned bool reports whether this call performed the transition.
func (r *JoinRequestRepository) MarkResponded(ctx context.Context, id, status, responderID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.JoinRequest{}).
		Where("id = ? AND status = ?", id, model.JoinRequestPending).
		Updates(map[string]interface{}{
			"status":       status,
			"responded_at": at,
			"responded_by": responderID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
