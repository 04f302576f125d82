package model

import "time"

// User is the registered-account collaborator. The chat core needs the ID
// and display name; the credential columns exist for the ambient auth layer.
type User struct {
	ID           string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Email        string `gorm:"uniqueIndex;not null;type:varchar(255)" json:"email"`
	DisplayName  string `gorm:"not null;type:varchar(255)" json:"display_name"`
	PasswordHash string `gorm:"not null;type:varchar(255)" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
