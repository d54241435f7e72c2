package entity

import (
	"time"

	"github.com/google/uuid"
)

// Prescription represents a prescription issued by a doctor for an appointment.
// Medications is a list of {name, dosage, duration} objects stored as JSONB.
type Prescription struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"appointment_id"`
	PatientID     uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID      uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Diagnosis     string    `gorm:"type:text;not null" json:"diagnosis"`
	Medications   JSONList  `gorm:"type:jsonb;not null" json:"medications"`
	Instructions  string    `gorm:"type:text" json:"instructions,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}
