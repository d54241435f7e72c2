package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type MedicationRequest struct {
	Name     string `json:"name" validate:"required"`
	Dosage   string `json:"dosage" validate:"required"`
	Duration string `json:"duration" validate:"required"`
}

type CreatePrescriptionRequest struct {
	AppointmentID uuid.UUID           `json:"appointment_id" validate:"required"`
	Diagnosis     string              `json:"diagnosis" validate:"required"`
	Medications   []MedicationRequest `json:"medications" validate:"required,min=1,dive"`
	Instructions  string              `json:"instructions" validate:"omitempty"`
}

// Response DTOs

type PrescriptionResponse struct {
	ID            uuid.UUID           `json:"id"`
	AppointmentID uuid.UUID           `json:"appointment_id"`
	PatientID     uuid.UUID           `json:"patient_id"`
	DoctorID      uuid.UUID           `json:"doctor_id"`
	Diagnosis     string              `json:"diagnosis"`
	Medications   []MedicationRequest `json:"medications"`
	Instructions  string              `json:"instructions,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

type PrescriptionListResponse struct {
	Prescriptions []PrescriptionResponse `json:"prescriptions"`
	Total         int                    `json:"total"`
}
