package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kiranbanna12/xrozen-chat/internal/model"
)

// IMemberRepository defines the interface for chat membership storage
type IMemberRepository interface {
	Insert(ctx context.Context, member *model.ChatMember) (bool, error)
	FindByID(ctx context.Context, id string) (*model.ChatMember, error)
	FindActive(ctx context.Context, projectID string, identity model.Identity) (*model.ChatMember, error)
	ListActiveByProject(ctx context.Context, projectID string) ([]*model.ChatMember, error)
	ListActiveByUser(ctx context.Context, userID string) ([]*model.ChatMember, error)
	Deactivate(ctx context.Context, id, removedBy string, at time.Time) error
	TouchLastSeen(ctx context.Context, id string, at time.Time) error
}

// MemberRepository implements IMemberRepository over gorm
type MemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new IMemberRepository instance
func NewMemberRepository(db *gorm.DB) IMemberRepository {
	return &MemberRepository{db: db}
}

// Insert adds a membership row. Concurrent joins for the same identity are
// serialized by the partial unique indexes on active rows: the insert is
// ON CONFLICT DO NOTHING against the index matching the identity kind, and
// the returned bool reports whether this call actually created the row.
func (r *MemberRepository) Insert(ctx context.Context, member *model.ChatMember) (bool, error) {
	conflict := clause.OnConflict{
		Columns:     []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{gorm.Expr("is_active AND user_id <> ''")}},
		DoNothing:   true,
	}
	if member.Identity.IsGuest() {
		conflict = clause.OnConflict{
			Columns:     []clause.Column{{Name: "project_id"}, {Name: "guest_name"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{gorm.Expr("is_active AND user_id = ''")}},
			DoNothing:   true,
		}
	}

	res := r.db.WithContext(ctx).Clauses(conflict).Create(member)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindByID finds a membership row by ID, or (nil, nil) when absent
func (r *MemberRepository) FindByID(ctx context.Context, id string) (*model.ChatMember, error) {
	var member model.ChatMember
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// FindActive finds the active membership of an identity in a project, or
// (nil, nil) when there is none
func (r *MemberRepository) FindActive(ctx context.Context, projectID string, identity model.Identity) (*model.ChatMember, error) {
	query := r.db.WithContext(ctx).Where("project_id = ? AND is_active", projectID)
	if identity.IsUser() {
		query = query.Where("user_id = ?", identity.UserID)
	} else {
		query = query.Where("user_id = '' AND guest_name = ?", identity.GuestName)
	}

	var member model.ChatMember
	err := query.First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// ListActiveByProject retrieves the active members of a project
func (r *MemberRepository) ListActiveByProject(ctx context.Context, projectID string) ([]*model.ChatMember, error) {
	var members []*model.ChatMember
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND is_active", projectID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

// ListActiveByUser retrieves a user's active memberships across projects
func (r *MemberRepository) ListActiveByUser(ctx context.Context, userID string) ([]*model.ChatMember, error) {
	var members []*model.ChatMember
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active", userID).
		Find(&members).Error
	return members, err
}

// Deactivate soft-deletes a membership, recording removal metadata
func (r *MemberRepository) Deactivate(ctx context.Context, id, removedBy string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.ChatMember{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"removed_by": removedBy,
			"removed_at": at,
		}).Error
}

// TouchLastSeen updates a member's last-seen timestamp
func (r *MemberRepository) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.ChatMember{}).
		Where("id = ?", id).
		Update("last_seen_at", at).Error
}
