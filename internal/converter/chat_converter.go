package converter

import (
	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/domain/entity"
)

// ChatMessageToResponse converts a ChatMessage entity to ChatMessageResponse DTO
func ChatMessageToResponse(message *entity.ChatMessage) *dto.ChatMessageResponse {
	if message == nil {
		return nil
	}

	return &dto.ChatMessageResponse{
		ID:            message.ID,
		AppointmentID: message.AppointmentID,
		SenderID:      message.SenderID,
		ReceiverID:    message.ReceiverID,
		Message:       message.Message,
		IsRead:        message.IsRead,
		CreatedAt:     message.CreatedAt,
	}
}

// ChatMessagesToResponses converts a slice of ChatMessage entities to slice of ChatMessageResponse DTOs
func ChatMessagesToResponses(messages []entity.ChatMessage) []dto.ChatMessageResponse {
	responses := make([]dto.ChatMessageResponse, len(messages))
	for i, message := range messages {
		resp := ChatMessageToResponse(&message)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
