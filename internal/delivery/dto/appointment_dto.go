package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id" validate:"required"`
	AppointmentDate string    `json:"appointment_date" validate:"required"` // Format: YYYY-MM-DD
	SlotTime        string    `json:"slot_time" validate:"required"`        // e.g. "09:00"
	IsEmergency     bool      `json:"is_emergency"`
	Notes           string    `json:"notes" validate:"omitempty"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type PaymentIntentRequest struct {
	AppointmentID   uuid.UUID `json:"appointment_id" validate:"required"`
	PaymentIntentID string    `json:"payment_intent_id" validate:"required"`
}

type ConfirmPaymentRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" validate:"required"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	PatientName     string    `json:"patient_name,omitempty"`
	DoctorName      string    `json:"doctor_name,omitempty"`
	AppointmentDate string    `json:"appointment_date"`
	SlotTime        string    `json:"slot_time"`
	ConsultationFee float64   `json:"consultation_fee"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	IsEmergency     bool      `json:"is_emergency"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
