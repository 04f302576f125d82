package model

import "time"

// Project is owned by the wider product; the chat core reads its ID and
// creator and nothing else.
type Project struct {
	ID        string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string `gorm:"not null;type:varchar(255)" json:"name"`
	CreatorID string `gorm:"not null;type:varchar(64)" json:"creator_id"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}
