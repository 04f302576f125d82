package model

import "time"

// ShareLink grants link-based access to a project. The chat capability is
// what the membership registry cares about; view/edit exist for the other
// product surfaces that consume the same table.
type ShareLink struct {
	ID         string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ProjectID  string `gorm:"index;not null;type:varchar(64)" json:"project_id"`
	CreatorID  string `gorm:"not null;type:varchar(64)" json:"creator_id"`
	ShareToken string `gorm:"uniqueIndex;not null;type:varchar(64)" json:"share_token"`

	CanView bool `gorm:"not null;default:true" json:"can_view"`
	CanEdit bool `gorm:"not null;default:false" json:"can_edit"`
	CanChat bool `gorm:"not null;default:false" json:"can_chat"`

	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ShareLink) TableName() string {
	return "project_shares"
}

// Expired reports whether the link is past its expiry, if it has one.
func (s *ShareLink) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}
