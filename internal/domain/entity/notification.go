package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType categorizes durable notifications
const (
	NotificationTypeAppointment = "appointment"
	NotificationTypePayment     = "payment"
	NotificationTypeGeneral     = "general"
)

// Notification is the durable counterpart of a real-time event. It is written
// regardless of whether the recipient has a live connection and is read back
// by clients via polling.
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"type:varchar(30);not null" json:"type"`
	IsRead    bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
