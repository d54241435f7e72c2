package usecase

import (
	"context"
	"errors"

	"telehealth-backend/internal/converter"
	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/delivery/http/middleware"
	"telehealth-backend/internal/domain/entity"
	"telehealth-backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ChatUsecase interface {
	// SaveMessage persists a chat message before it is delivered to any
	// live connection. Called by the realtime hub.
	SaveMessage(ctx context.Context, message *entity.ChatMessage) error
	GetMessages(ctx context.Context, appointmentID uuid.UUID) (*dto.ChatHistoryResponse, error)
}

type chatUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	chatRepo        repository.ChatMessageRepository
	appointmentRepo repository.AppointmentRepository
}

func NewChatUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	chatRepo repository.ChatMessageRepository,
	appointmentRepo repository.AppointmentRepository,
) ChatUsecase {
	return &chatUsecase{
		db:              db,
		log:             log,
		chatRepo:        chatRepo,
		appointmentRepo: appointmentRepo,
	}
}

func (u *chatUsecase) SaveMessage(ctx context.Context, message *entity.ChatMessage) error {
	// Assign the ID here so the delivered event carries it
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}

	if err := u.chatRepo.Create(u.db.WithContext(ctx), message); err != nil {
		u.log.Warnf("Failed to save chat message for appointment %s: %+v", message.AppointmentID, err)
		return err
	}
	return nil
}

// GetMessages returns the full message history of an appointment. Only the
// two participants may read it.
func (u *chatUsecase) GetMessages(ctx context.Context, appointmentID uuid.UUID) (*dto.ChatHistoryResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}

	messages, err := u.chatRepo.FindByAppointmentID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find chat messages for appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	return &dto.ChatHistoryResponse{
		Messages: converter.ChatMessagesToResponses(messages),
		Total:    len(messages),
	}, nil
}
