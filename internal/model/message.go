package model

import (
	"time"
)

// Message status values. The column is kept for compatibility with older
// readers; receipts in message_receipts are the authoritative record.
const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)

// Receipt states.
const (
	ReceiptDelivered = "delivered"
	ReceiptRead      = "read"
)

// Message is one chat message in a project conversation.
type Message struct {
	ID        string   `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ProjectID string   `gorm:"index;not null;type:varchar(64)" json:"project_id"`
	Sender    Identity `gorm:"embedded;embeddedPrefix:sender_" json:"sender"`
	Content   string   `gorm:"type:text;not null" json:"content"`
	Status    string   `gorm:"type:varchar(16);not null;default:sent" json:"status"`

	// ReplyToID is a weak reference: the target message may have been
	// deleted, in which case the reply context is simply unavailable.
	ReplyToID string `gorm:"type:varchar(64)" json:"reply_to_message_id,omitempty"`

	IsSystem   bool   `gorm:"not null;default:false" json:"is_system_message"`
	SystemType string `gorm:"type:varchar(64)" json:"system_message_type,omitempty"`
	SystemData string `gorm:"type:text" json:"system_message_data,omitempty"`

	CreatedAt time.Time `gorm:"not null;index;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	DeliveredTo []string `gorm:"-" json:"delivered_to"`
	ReadBy      []string `gorm:"-" json:"read_by"`
}

func (Message) TableName() string {
	return "messages"
}

// MessageReceipt records one participant's delivery or read state for one
// message. The (message, participant, state) triple is the primary key, so
// marking twice is a no-op at the storage layer.
type MessageReceipt struct {
	MessageID     string `gorm:"primaryKey;type:varchar(64)" json:"message_id"`
	ParticipantID string `gorm:"primaryKey;type:varchar(255)" json:"participant_id"`
	State         string `gorm:"primaryKey;type:varchar(16)" json:"state"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (MessageReceipt) TableName() string {
	return "message_receipts"
}
