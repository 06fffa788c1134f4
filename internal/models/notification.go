package models

import "time"

// Notification is an immutable delivery record; only the Read flag may change
// after creation, and only by its recipient.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecipientID string    `gorm:"index;not null" json:"recipient_id"`
	SenderID    string    `gorm:"not null" json:"sender_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	ComplaintID *string   `json:"complaint_id,omitempty"`
	ActionID    *uint     `json:"action_id,omitempty"`
	Read        bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
