// models/notification.go - Delivery log and hunt feedback
package models

import "time"

// Notification records an outbound delivery attempt. Best-effort audit only;
// the progression flow never fails because a row here could not be written.
type Notification struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	Type           string     `gorm:"size:20" json:"type"`     // email
	Template       string     `gorm:"size:100" json:"template"` // hunt_completed, ...
	DeliveryStatus string     `gorm:"size:20" json:"delivery_status"` // queued, sent, failed
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// HuntFeedback is a player's post-hunt rating.
type HuntFeedback struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	HuntID  uint   `gorm:"not null;index" json:"hunt_id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Rating  int    `gorm:"not null" json:"rating"` // 1..5
	Comment string `gorm:"type:text" json:"comment"`

	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (HuntFeedback) TableName() string {
	return "hunt_feedback"
}
