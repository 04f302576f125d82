package model

import "time"

// JoinRequest status values. pending is the only non-terminal state:
// approved and rejected admit no further transition.
const (
	JoinRequestPending  = "pending"
	JoinRequestApproved = "approved"
	JoinRequestRejected = "rejected"
)

// JoinRequest is a pending ask to join a project conversation, used when
// the project gates chat behind approval.
type JoinRequest struct {
	ID        string   `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ProjectID string   `gorm:"index;not null;type:varchar(64)" json:"project_id"`
	Identity  Identity `gorm:"embedded" json:"identity"`

	Status string `gorm:"type:varchar(16);not null;default:pending" json:"status"`

	RequestedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"requested_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	RespondedBy string     `gorm:"type:varchar(64)" json:"responded_by,omitempty"`
}

func (JoinRequest) TableName() string {
	return "chat_join_requests"
}
