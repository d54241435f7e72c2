package repository

import (
	"errors"

	"telehealth-backend/internal/domain/entity"
	domainRepo "telehealth-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

// CreateIfSlotFree relies on the uniq_active_slot partial unique index
// (doctor_id, appointment_date, slot_time WHERE status NOT IN
// ('cancelled','refunded')). A concurrent insert for the same slot key fails
// with SQLSTATE 23505, which the usecase maps to a slot-taken rejection.
func (r *appointmentRepository) CreateIfSlotFree(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Preload("Doctor.User").Preload("Patient").Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID, status string) ([]entity.Appointment, error) {
	return r.findByParty(db, "patient_id", patientID, status)
}

func (r *appointmentRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID, status string) ([]entity.Appointment, error) {
	return r.findByParty(db, "doctor_id", doctorID, status)
}

func (r *appointmentRepository) findByParty(db *gorm.DB, column string, id uuid.UUID, status string) ([]entity.Appointment, error) {
	query := db.Preload("Doctor.User").Preload("Patient").
		Where(column+" = ?", id)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []entity.Appointment
	err := query.Order("appointment_date DESC, slot_time DESC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ?", id).
		Update("status", status)
	return result.RowsAffected, result.Error
}

// CancelIfActive atomically cancels ONLY while the appointment still occupies
// its slot. Returns affected rows: 1 = cancelled, 0 = already terminal
// (prevents double-cancel race).
func (r *appointmentRepository) CancelIfActive(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status NOT IN ?", id,
			[]entity.AppointmentStatus{entity.AppointmentStatusCancelled, entity.AppointmentStatusRefunded}).
		Update("status", entity.AppointmentStatusCancelled)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) ConfirmPayment(db *gorm.DB, id uuid.UUID) error {
	return db.Model(&entity.Appointment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_status": entity.PaymentStatusPaid,
			"status":         entity.AppointmentStatusConfirmed,
		}).Error
}

func (r *appointmentRepository) SetPaymentIntent(db *gorm.DB, id uuid.UUID, intentID string) error {
	return db.Model(&entity.Appointment{}).
		Where("id = ?", id).
		Update("payment_intent_id", intentID).Error
}

func (r *appointmentRepository) SetPrescription(db *gorm.DB, id uuid.UUID, prescriptionID uuid.UUID) error {
	return db.Model(&entity.Appointment{}).
		Where("id = ?", id).
		Update("prescription_id", prescriptionID).Error
}

func (r *appointmentRepository) CountAll(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&entity.Appointment{}).Count(&count).Error
	return count, err
}

func (r *appointmentRepository) SumPaidFees(db *gorm.DB) (float64, error) {
	var total float64
	err := db.Model(&entity.Appointment{}).
		Where("payment_status = ?", entity.PaymentStatusPaid).
		Select("COALESCE(SUM(consultation_fee), 0)").
		Scan(&total).Error
	return total, err
}
