package model

import "time"

// LastRead is the per-(project, user) watermark: the last time the user
// viewed the project's conversation. Unread counts are derived from it on
// demand, nothing is persisted per message.
type LastRead struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ProjectID  string    `gorm:"not null;type:varchar(64);uniqueIndex:idx_project_user" json:"project_id"`
	UserID     string    `gorm:"not null;type:varchar(64);uniqueIndex:idx_project_user" json:"user_id"`
	LastReadAt time.Time `gorm:"not null" json:"last_read_at"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (LastRead) TableName() string {
	return "project_last_read"
}
