package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusRefunded  AppointmentStatus = "refunded"
)

// PaymentStatus represents the payment state of an appointment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Appointment represents a booked consultation slot.
//
// The slot key is (doctor_id, appointment_date, slot_time). A partial unique
// index over rows whose status is not cancelled/refunded guarantees at most
// one active appointment per slot key; the insert either lands the row or
// fails with a unique violation, there is no check-then-insert window.
// Appointments are never deleted, only status-transitioned.
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	AppointmentDate time.Time         `gorm:"type:date;not null" json:"appointment_date"`
	SlotTime        string            `gorm:"type:varchar(10);not null" json:"slot_time"`
	ConsultationFee float64           `gorm:"type:numeric(10,2);not null" json:"consultation_fee"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentStatus   PaymentStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	PaymentIntentID *string           `gorm:"type:varchar(255)" json:"payment_intent_id,omitempty"`
	IsEmergency     bool              `gorm:"not null;default:false" json:"is_emergency"`
	Notes           *string           `gorm:"type:text" json:"notes,omitempty"`
	PrescriptionID  *uuid.UUID        `gorm:"type:uuid" json:"prescription_id,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient User          `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  DoctorProfile `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsActive reports whether the appointment still occupies its slot key.
func (a *Appointment) IsActive() bool {
	return a.Status != AppointmentStatusCancelled && a.Status != AppointmentStatusRefunded
}

// IsParticipant reports whether the given user is the patient or the doctor.
func (a *Appointment) IsParticipant(userID uuid.UUID) bool {
	return a.PatientID == userID || a.DoctorID == userID
}

// ValidAppointmentStatus reports whether s is a known lifecycle state.
func ValidAppointmentStatus(s string) bool {
	switch AppointmentStatus(s) {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusRefunded:
		return true
	}
	return false
}
