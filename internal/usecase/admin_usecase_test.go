package usecase

import (
	"context"
	"testing"

	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/delivery/http/middleware"
	"telehealth-backend/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func adminContext() context.Context {
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, uuid.New())
	return context.WithValue(ctx, middleware.RoleIDKey, entity.RoleIDAdmin)
}

func TestDecideDoctor_ApprovesAndNotifies(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	doctor := approvedDoctor(100)
	doctor.ApprovalStatus = entity.ApprovalStatusPending

	doctorRepo := &MockDoctorProfileRepository{
		FindByUserIDFunc: func(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
			return doctor, nil
		},
	}
	notificationRepo := &MockNotificationRepository{}
	notifier := &MockNotifier{}
	audit := &MockAuditService{}

	uc := NewAdminUsecase(db, newTestLogger(), nil, doctorRepo, &MockAppointmentRepository{}, notificationRepo, nil, audit, &MockPresence{}, notifier)

	err := uc.DecideDoctor(adminContext(), doctor.UserID, &dto.DoctorDecisionRequest{Status: "approved"})
	require.NoError(t, err)

	require.Len(t, notificationRepo.created, 1)
	assert.Equal(t, doctor.UserID, notificationRepo.created[0].UserID)
	require.Len(t, notifier.decisions, 1)
	assert.Equal(t, entity.ApprovalStatusApproved, notifier.decisions[0])
	assert.Equal(t, []string{entity.AuditActionDoctorDecision}, audit.actions)
}

func TestDecideDoctor_RejectsInvalidDecision(t *testing.T) {
	db, _ := newTestDB(t)

	uc := NewAdminUsecase(db, newTestLogger(), nil, &MockDoctorProfileRepository{}, &MockAppointmentRepository{}, &MockNotificationRepository{}, nil, &MockAuditService{}, &MockPresence{}, &MockNotifier{})

	err := uc.DecideDoctor(adminContext(), uuid.New(), &dto.DoctorDecisionRequest{Status: "pending"})
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestDecideDoctor_UnknownDoctor(t *testing.T) {
	db, _ := newTestDB(t)

	doctorRepo := &MockDoctorProfileRepository{
		FindByUserIDFunc: func(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
			return nil, nil
		},
	}

	uc := NewAdminUsecase(db, newTestLogger(), nil, doctorRepo, &MockAppointmentRepository{}, &MockNotificationRepository{}, nil, &MockAuditService{}, &MockPresence{}, &MockNotifier{})

	err := uc.DecideDoctor(adminContext(), uuid.New(), &dto.DoctorDecisionRequest{Status: "rejected"})
	assert.ErrorIs(t, err, ErrDoctorProfileNotFound)
}
