package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is a persisted chat message exchanged over an appointment.
// Messages are append-only; delivery to live connections happens after the
// row is written, never before.
type ChatMessage struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"appointment_id"`
	SenderID      uuid.UUID `gorm:"type:uuid;not null;index" json:"sender_id"`
	ReceiverID    uuid.UUID `gorm:"type:uuid;not null;index" json:"receiver_id"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	IsRead        bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
