package usecase

import (
	"context"
	"testing"
	"time"

	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/delivery/http/middleware"
	"telehealth-backend/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func patientContext(patientID uuid.UUID) context.Context {
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, patientID)
	return context.WithValue(ctx, middleware.RoleIDKey, entity.RoleIDPatient)
}

func futureDate() string {
	return time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
}

func TestCreateAppointment_Success(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	doctor := approvedDoctor(150)
	doctorRepo := &MockDoctorProfileRepository{
		FindByUserIDFunc: func(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
			return doctor, nil
		},
	}
	appointmentRepo := &MockAppointmentRepository{}
	notificationRepo := &MockNotificationRepository{}
	audit := &MockAuditService{}
	notifier := &MockNotifier{}

	uc := NewAppointmentUsecase(db, newTestLogger(), appointmentRepo, doctorRepo, notificationRepo, audit, notifier)

	patientID := uuid.New()
	resp, err := uc.CreateAppointment(patientContext(patientID), &dto.CreateAppointmentRequest{
		DoctorID:        doctor.UserID,
		AppointmentDate: futureDate(),
		SlotTime:        "09:00",
	})
	require.NoError(t, err)

	assert.Equal(t, patientID, resp.PatientID)
	assert.Equal(t, doctor.UserID, resp.DoctorID)
	assert.Equal(t, "09:00", resp.SlotTime)
	assert.Equal(t, 150.0, resp.ConsultationFee)
	assert.Equal(t, string(entity.AppointmentStatusPending), resp.Status)

	// Doctor gets the durable notification and the live event
	require.Len(t, notificationRepo.created, 1)
	assert.Equal(t, doctor.UserID, notificationRepo.created[0].UserID)
	require.Len(t, notifier.created, 1)
	assert.Equal(t, []string{entity.AuditActionAppointmentCreate}, audit.actions)
}

func TestCreateAppointment_SlotTaken(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	doctor := approvedDoctor(100)
	doctorRepo := &MockDoctorProfileRepository{
		FindByUserIDFunc: func(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
			return doctor, nil
		},
	}
	appointmentRepo := &MockAppointmentRepository{
		CreateIfSlotFreeFunc: func(db *gorm.DB, appointment *entity.Appointment) error {
			// The storage layer rejects the insert, as the partial unique
			// index does when a concurrent booking already won the slot
			return &pgconn.PgError{Code: "23505", ConstraintName: "uniq_active_slot"}
		},
	}
	notifier := &MockNotifier{}

	uc := NewAppointmentUsecase(db, newTestLogger(), appointmentRepo, doctorRepo, &MockNotificationRepository{}, &MockAuditService{}, notifier)

	_, err := uc.CreateAppointment(patientContext(uuid.New()), &dto.CreateAppointmentRequest{
		DoctorID:        doctor.UserID,
		AppointmentDate: futureDate(),
		SlotTime:        "09:00",
	})
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Empty(t, notifier.created, "a losing booking must not notify anyone")
}

func TestCreateAppointment_DoctorNotApproved(t *testing.T) {
	db, _ := newTestDB(t)

	doctor := approvedDoctor(100)
	doctor.ApprovalStatus = entity.ApprovalStatusPending
	doctorRepo := &MockDoctorProfileRepository{
		FindByUserIDFunc: func(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
			return doctor, nil
		},
	}

	created := false
	appointmentRepo := &MockAppointmentRepository{
		CreateIfSlotFreeFunc: func(db *gorm.DB, appointment *entity.Appointment) error {
			created = true
			return nil
		},
	}

	uc := NewAppointmentUsecase(db, newTestLogger(), appointmentRepo, doctorRepo, &MockNotificationRepository{}, &MockAuditService{}, &MockNotifier{})

	_, err := uc.CreateAppointment(patientContext(uuid.New()), &dto.CreateAppointmentRequest{
		DoctorID:        doctor.UserID,
		AppointmentDate: futureDate(),
		SlotTime:        "09:00",
	})
	assert.ErrorIs(t, err, ErrDoctorUnavailable)
	assert.False(t, created, "approval gate must run before the slot insert")
}

func TestCreateAppointment_UnknownDoctor(t *testing.T) {
	db, _ := newTestDB(t)

	doctorRepo := &MockDoctorProfileRepository{
		FindByUserIDFunc: func(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
			return nil, nil
		},
	}

	uc := NewAppointmentUsecase(db, newTestLogger(), &MockAppointmentRepository{}, doctorRepo, &MockNotificationRepository{}, &MockAuditService{}, &MockNotifier{})

	_, err := uc.CreateAppointment(patientContext(uuid.New()), &dto.CreateAppointmentRequest{
		DoctorID:        uuid.New(),
		AppointmentDate: futureDate(),
		SlotTime:        "09:00",
	})
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestCreateAppointment_PastDate(t *testing.T) {
	db, _ := newTestDB(t)

	uc := NewAppointmentUsecase(db, newTestLogger(), &MockAppointmentRepository{}, &MockDoctorProfileRepository{}, &MockNotificationRepository{}, &MockAuditService{}, &MockNotifier{})

	_, err := uc.CreateAppointment(patientContext(uuid.New()), &dto.CreateAppointmentRequest{
		DoctorID:        uuid.New(),
		AppointmentDate: "2020-01-01",
		SlotTime:        "09:00",
	})
	assert.ErrorIs(t, err, ErrSlotInPast)
}

func TestCancelAppointment_ReleasesSlotOnce(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	patientID := uuid.New()
	appointment := &entity.Appointment{
		ID:        uuid.New(),
		PatientID: patientID,
		DoctorID:  uuid.New(),
		Status:    entity.AppointmentStatusPending,
	}

	cancelCalls := 0
	appointmentRepo := &MockAppointmentRepository{
		FindByIDFunc: func(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
			return appointment, nil
		},
		CancelIfActiveFunc: func(db *gorm.DB, id uuid.UUID) (int64, error) {
			cancelCalls++
			if cancelCalls == 1 {
				return 1, nil
			}
			// A later attempt loses the guarded update
			return 0, nil
		},
	}
	notifier := &MockNotifier{}

	uc := NewAppointmentUsecase(db, newTestLogger(), appointmentRepo, &MockDoctorProfileRepository{}, &MockNotificationRepository{}, &MockAuditService{}, notifier)

	require.NoError(t, uc.CancelAppointment(patientContext(patientID), appointment.ID))
	require.Len(t, notifier.statusChanges, 1)
	assert.Equal(t, entity.AppointmentStatusCancelled, notifier.statusChanges[0])

	// Second cancel observes the terminal state
	mock.ExpectBegin()
	mock.ExpectRollback()
	err := uc.CancelAppointment(patientContext(patientID), appointment.ID)
	assert.ErrorIs(t, err, ErrAlreadyTerminal)
	assert.Len(t, notifier.statusChanges, 1, "a losing cancel must not emit a second event")
}

func TestCancelAppointment_NotParticipant(t *testing.T) {
	db, _ := newTestDB(t)

	appointment := &entity.Appointment{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Status:    entity.AppointmentStatusPending,
	}
	appointmentRepo := &MockAppointmentRepository{
		FindByIDFunc: func(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
			return appointment, nil
		},
	}

	uc := NewAppointmentUsecase(db, newTestLogger(), appointmentRepo, &MockDoctorProfileRepository{}, &MockNotificationRepository{}, &MockAuditService{}, &MockNotifier{})

	err := uc.CancelAppointment(patientContext(uuid.New()), appointment.ID)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestConfirmPayment_NotifiesDoctor(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	patientID := uuid.New()
	intentID := "pi_test_123"
	appointment := &entity.Appointment{
		ID:              uuid.New(),
		PatientID:       patientID,
		DoctorID:        uuid.New(),
		Status:          entity.AppointmentStatusPending,
		PaymentStatus:   entity.PaymentStatusPending,
		PaymentIntentID: &intentID,
	}
	appointmentRepo := &MockAppointmentRepository{
		FindByIDFunc: func(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
			return appointment, nil
		},
	}
	notificationRepo := &MockNotificationRepository{}
	notifier := &MockNotifier{}

	uc := NewAppointmentUsecase(db, newTestLogger(), appointmentRepo, &MockDoctorProfileRepository{}, notificationRepo, &MockAuditService{}, notifier)

	resp, err := uc.ConfirmPayment(patientContext(patientID), &dto.ConfirmPaymentRequest{AppointmentID: appointment.ID})
	require.NoError(t, err)

	assert.Equal(t, string(entity.PaymentStatusPaid), resp.PaymentStatus)
	assert.Equal(t, string(entity.AppointmentStatusConfirmed), resp.Status)
	require.Len(t, notifier.payments, 1)
	require.Len(t, notificationRepo.created, 1)
	assert.Equal(t, appointment.DoctorID, notificationRepo.created[0].UserID)
}

func TestConfirmPayment_AlreadyPaid(t *testing.T) {
	db, _ := newTestDB(t)

	patientID := uuid.New()
	appointment := &entity.Appointment{
		ID:            uuid.New(),
		PatientID:     patientID,
		DoctorID:      uuid.New(),
		Status:        entity.AppointmentStatusConfirmed,
		PaymentStatus: entity.PaymentStatusPaid,
	}
	appointmentRepo := &MockAppointmentRepository{
		FindByIDFunc: func(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
			return appointment, nil
		},
	}

	uc := NewAppointmentUsecase(db, newTestLogger(), appointmentRepo, &MockDoctorProfileRepository{}, &MockNotificationRepository{}, &MockAuditService{}, &MockNotifier{})

	_, err := uc.ConfirmPayment(patientContext(patientID), &dto.ConfirmPaymentRequest{AppointmentID: appointment.ID})
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestConfirmPayment_WithoutIntent(t *testing.T) {
	db, _ := newTestDB(t)

	patientID := uuid.New()
	appointment := &entity.Appointment{
		ID:            uuid.New(),
		PatientID:     patientID,
		DoctorID:      uuid.New(),
		Status:        entity.AppointmentStatusPending,
		PaymentStatus: entity.PaymentStatusPending,
	}
	appointmentRepo := &MockAppointmentRepository{
		FindByIDFunc: func(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
			return appointment, nil
		},
	}

	uc := NewAppointmentUsecase(db, newTestLogger(), appointmentRepo, &MockDoctorProfileRepository{}, &MockNotificationRepository{}, &MockAuditService{}, &MockNotifier{})

	_, err := uc.ConfirmPayment(patientContext(patientID), &dto.ConfirmPaymentRequest{AppointmentID: appointment.ID})
	assert.ErrorIs(t, err, ErrPaymentNotPending)
}

func TestGetMyAppointments_ScopedByRole(t *testing.T) {
	db, _ := newTestDB(t)

	doctorID := uuid.New()
	var queriedDoctor, queriedPatient bool
	appointmentRepo := &MockAppointmentRepository{
		FindByDoctorIDFunc: func(db *gorm.DB, id uuid.UUID, status string) ([]entity.Appointment, error) {
			queriedDoctor = true
			return []entity.Appointment{{ID: uuid.New(), DoctorID: id}}, nil
		},
		FindByPatientIDFunc: func(db *gorm.DB, id uuid.UUID, status string) ([]entity.Appointment, error) {
			queriedPatient = true
			return nil, nil
		},
	}

	uc := NewAppointmentUsecase(db, newTestLogger(), appointmentRepo, &MockDoctorProfileRepository{}, &MockNotificationRepository{}, &MockAuditService{}, &MockNotifier{})

	ctx := context.WithValue(context.Background(), middleware.UserIDKey, doctorID)
	ctx = context.WithValue(ctx, middleware.RoleIDKey, entity.RoleIDDoctor)

	resp, err := uc.GetMyAppointments(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.True(t, queriedDoctor)
	assert.False(t, queriedPatient)
}

func TestGetMyAppointments_RejectsUnknownStatus(t *testing.T) {
	db, _ := newTestDB(t)

	uc := NewAppointmentUsecase(db, newTestLogger(), &MockAppointmentRepository{}, &MockDoctorProfileRepository{}, &MockNotificationRepository{}, &MockAuditService{}, &MockNotifier{})

	_, err := uc.GetMyAppointments(patientContext(uuid.New()), "bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatus_CannotCancelThroughStatusUpdate(t *testing.T) {
	db, _ := newTestDB(t)

	uc := NewAppointmentUsecase(db, newTestLogger(), &MockAppointmentRepository{}, &MockDoctorProfileRepository{}, &MockNotificationRepository{}, &MockAuditService{}, &MockNotifier{})

	_, err := uc.UpdateStatus(patientContext(uuid.New()), uuid.New(), &dto.UpdateAppointmentStatusRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
