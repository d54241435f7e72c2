package repository

import (
	"telehealth-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	// CreateIfSlotFree inserts the appointment; the partial unique index on
	// (doctor_id, appointment_date, slot_time) over active statuses rejects
	// the insert atomically when the slot is taken. Conflict surfaces as
	// the driver's duplicate-key error (SQLSTATE 23505 on the slot
	// constraint), not via a prior read, so concurrent inserts for the
	// same key cannot both succeed. Callers map it to a domain error.
	CreateIfSlotFree(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID, status string) ([]entity.Appointment, error)
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID, status string) ([]entity.Appointment, error)
	UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error)
	// CancelIfActive transitions to cancelled only when the appointment is
	// still active. Returns affected rows (0 = already terminal).
	CancelIfActive(db *gorm.DB, id uuid.UUID) (int64, error)
	ConfirmPayment(db *gorm.DB, id uuid.UUID) error
	SetPaymentIntent(db *gorm.DB, id uuid.UUID, intentID string) error
	SetPrescription(db *gorm.DB, id uuid.UUID, prescriptionID uuid.UUID) error
	CountAll(db *gorm.DB) (int64, error)
	SumPaidFees(db *gorm.DB) (float64, error)
}
