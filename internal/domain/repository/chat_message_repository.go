package repository

import (
	"telehealth-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatMessageRepository interface {
	Create(db *gorm.DB, message *entity.ChatMessage) error
	FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) ([]entity.ChatMessage, error)
}
