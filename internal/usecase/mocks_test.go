package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"telehealth-backend/internal/domain/entity"
	"telehealth-backend/internal/domain/repository"
	"telehealth-backend/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB returns a gorm handle over sqlmock. Repository calls are mocked
// at the interface level, so only transaction boundaries reach the driver.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// --- MockAppointmentRepository ---

// Compile-time check
var _ repository.AppointmentRepository = (*MockAppointmentRepository)(nil)

type MockAppointmentRepository struct {
	CreateIfSlotFreeFunc func(db *gorm.DB, appointment *entity.Appointment) error
	FindByIDFunc         func(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByPatientIDFunc  func(db *gorm.DB, patientID uuid.UUID, status string) ([]entity.Appointment, error)
	FindByDoctorIDFunc   func(db *gorm.DB, doctorID uuid.UUID, status string) ([]entity.Appointment, error)
	UpdateStatusFunc     func(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error)
	CancelIfActiveFunc   func(db *gorm.DB, id uuid.UUID) (int64, error)
	ConfirmPaymentFunc   func(db *gorm.DB, id uuid.UUID) error
	SetPaymentIntentFunc func(db *gorm.DB, id uuid.UUID, intentID string) error
	SetPrescriptionFunc  func(db *gorm.DB, id uuid.UUID, prescriptionID uuid.UUID) error
}

func (m *MockAppointmentRepository) CreateIfSlotFree(db *gorm.DB, appointment *entity.Appointment) error {
	if m.CreateIfSlotFreeFunc != nil {
		return m.CreateIfSlotFreeFunc(db, appointment)
	}
	appointment.ID = uuid.New()
	return nil
}

func (m *MockAppointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(db, id)
	}
	return nil, errors.New("FindByIDFunc not implemented in mock")
}

func (m *MockAppointmentRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID, status string) ([]entity.Appointment, error) {
	if m.FindByPatientIDFunc != nil {
		return m.FindByPatientIDFunc(db, patientID, status)
	}
	return nil, nil
}

func (m *MockAppointmentRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID, status string) ([]entity.Appointment, error) {
	if m.FindByDoctorIDFunc != nil {
		return m.FindByDoctorIDFunc(db, doctorID, status)
	}
	return nil, nil
}

func (m *MockAppointmentRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(db, id, status)
	}
	return 1, nil
}

func (m *MockAppointmentRepository) CancelIfActive(db *gorm.DB, id uuid.UUID) (int64, error) {
	if m.CancelIfActiveFunc != nil {
		return m.CancelIfActiveFunc(db, id)
	}
	return 1, nil
}

func (m *MockAppointmentRepository) ConfirmPayment(db *gorm.DB, id uuid.UUID) error {
	if m.ConfirmPaymentFunc != nil {
		return m.ConfirmPaymentFunc(db, id)
	}
	return nil
}

func (m *MockAppointmentRepository) SetPaymentIntent(db *gorm.DB, id uuid.UUID, intentID string) error {
	if m.SetPaymentIntentFunc != nil {
		return m.SetPaymentIntentFunc(db, id, intentID)
	}
	return nil
}

func (m *MockAppointmentRepository) SetPrescription(db *gorm.DB, id uuid.UUID, prescriptionID uuid.UUID) error {
	if m.SetPrescriptionFunc != nil {
		return m.SetPrescriptionFunc(db, id, prescriptionID)
	}
	return nil
}

func (m *MockAppointmentRepository) CountAll(db *gorm.DB) (int64, error) {
	return 0, nil
}

func (m *MockAppointmentRepository) SumPaidFees(db *gorm.DB) (float64, error) {
	return 0, nil
}

// --- MockDoctorProfileRepository ---

// Compile-time check
var _ repository.DoctorProfileRepository = (*MockDoctorProfileRepository)(nil)

type MockDoctorProfileRepository struct {
	FindByUserIDFunc         func(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error)
	FindApprovedFunc         func(db *gorm.DB, filter repository.DoctorFilter) ([]entity.DoctorProfile, error)
	FindByApprovalStatusFunc func(db *gorm.DB, status entity.ApprovalStatus) ([]entity.DoctorProfile, error)
	UpdateFunc               func(db *gorm.DB, profile *entity.DoctorProfile) error
	UpdateApprovalStatusFunc func(db *gorm.DB, userID uuid.UUID, status entity.ApprovalStatus) (int64, error)
}

func (m *MockDoctorProfileRepository) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	return nil
}

func (m *MockDoctorProfileRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(db, userID)
	}
	return nil, nil
}

func (m *MockDoctorProfileRepository) FindApproved(db *gorm.DB, filter repository.DoctorFilter) ([]entity.DoctorProfile, error) {
	if m.FindApprovedFunc != nil {
		return m.FindApprovedFunc(db, filter)
	}
	return nil, nil
}

func (m *MockDoctorProfileRepository) FindByApprovalStatus(db *gorm.DB, status entity.ApprovalStatus) ([]entity.DoctorProfile, error) {
	if m.FindByApprovalStatusFunc != nil {
		return m.FindByApprovalStatusFunc(db, status)
	}
	return nil, nil
}

func (m *MockDoctorProfileRepository) Update(db *gorm.DB, profile *entity.DoctorProfile) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(db, profile)
	}
	return nil
}

func (m *MockDoctorProfileRepository) UpdateApprovalStatus(db *gorm.DB, userID uuid.UUID, status entity.ApprovalStatus) (int64, error) {
	if m.UpdateApprovalStatusFunc != nil {
		return m.UpdateApprovalStatusFunc(db, userID, status)
	}
	return 1, nil
}

func (m *MockDoctorProfileRepository) CountByApprovalStatus(db *gorm.DB, status entity.ApprovalStatus) (int64, error) {
	return 0, nil
}

// --- MockNotificationRepository ---

// Compile-time check
var _ repository.NotificationRepository = (*MockNotificationRepository)(nil)

type MockNotificationRepository struct {
	CreateFunc func(db *gorm.DB, notification *entity.Notification) error
	created    []*entity.Notification
}

func (m *MockNotificationRepository) Create(db *gorm.DB, notification *entity.Notification) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(db, notification)
	}
	m.created = append(m.created, notification)
	return nil
}

func (m *MockNotificationRepository) FindByUserID(db *gorm.DB, userID uuid.UUID, limit int) ([]entity.Notification, error) {
	return nil, nil
}

func (m *MockNotificationRepository) MarkRead(db *gorm.DB, id uuid.UUID, userID uuid.UUID) (int64, error) {
	return 1, nil
}

// --- MockAuditService ---

// Compile-time check
var _ service.AuditService = (*MockAuditService)(nil)

type MockAuditService struct {
	actions []string
}

func (m *MockAuditService) LogCreate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	m.actions = append(m.actions, action)
	return nil
}

func (m *MockAuditService) LogUpdate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	m.actions = append(m.actions, action)
	return nil
}

// --- MockNotifier ---

// Compile-time check
var _ AppointmentNotifier = (*MockNotifier)(nil)
var _ ProfileNotifier = (*MockNotifier)(nil)

type MockNotifier struct {
	created       []*entity.Appointment
	statusChanges []entity.AppointmentStatus
	payments      []*entity.Appointment
	decisions     []entity.ApprovalStatus
}

func (m *MockNotifier) AppointmentCreated(appointment *entity.Appointment) {
	m.created = append(m.created, appointment)
}

func (m *MockNotifier) AppointmentStatusChanged(appointment *entity.Appointment, status entity.AppointmentStatus) {
	m.statusChanges = append(m.statusChanges, status)
}

func (m *MockNotifier) PaymentConfirmed(appointment *entity.Appointment) {
	m.payments = append(m.payments, appointment)
}

func (m *MockNotifier) ProfileDecision(doctorID uuid.UUID, status entity.ApprovalStatus) {
	m.decisions = append(m.decisions, status)
}

// --- MockPresence ---

// Compile-time check
var _ PresenceChecker = (*MockPresence)(nil)
var _ PresenceCounter = (*MockPresence)(nil)

type MockPresence struct {
	online map[uuid.UUID]bool
}

func (m *MockPresence) IsOnline(userID uuid.UUID) bool {
	return m.online[userID]
}

func (m *MockPresence) OnlineDoctorCount() int {
	count := 0
	for _, on := range m.online {
		if on {
			count++
		}
	}
	return count
}

// approvedDoctor builds a bookable doctor profile for tests.
func approvedDoctor(fee float64) *entity.DoctorProfile {
	return &entity.DoctorProfile{
		UserID:          uuid.New(),
		LicenseNumber:   "LIC-12345",
		Specialization:  "Cardiology",
		ConsultationFee: fee,
		ApprovalStatus:  entity.ApprovalStatusApproved,
		CreatedAt:       time.Now(),
	}
}
