package model

import "time"

// ChatMember is one participant's membership in a project conversation.
// Rows are soft-deleted: removal flips IsActive and records who removed
// the member and when, history is never dropped.
type ChatMember struct {
	ID        string   `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ProjectID string   `gorm:"index;not null;type:varchar(64)" json:"project_id"`
	Identity  Identity `gorm:"embedded" json:"identity"`

	// ShareID is set when the member joined through a share link.
	ShareID string `gorm:"type:varchar(64)" json:"share_id,omitempty"`

	JoinedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`

	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	RemovedBy string     `gorm:"type:varchar(64)" json:"removed_by,omitempty"`
	RemovedAt *time.Time `json:"removed_at,omitempty"`
}

func (ChatMember) TableName() string {
	return "project_chat_members"
}
