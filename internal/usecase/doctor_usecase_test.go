package usecase

import (
	"context"
	"testing"

	"telehealth-backend/internal/domain/entity"
	"telehealth-backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestListDoctors_OnlineFlagFromRegistry(t *testing.T) {
	db, _ := newTestDB(t)

	online := approvedDoctor(100)
	offline := approvedDoctor(200)

	doctorRepo := &MockDoctorProfileRepository{
		FindApprovedFunc: func(db *gorm.DB, filter repository.DoctorFilter) ([]entity.DoctorProfile, error) {
			return []entity.DoctorProfile{*online, *offline}, nil
		},
	}
	presence := &MockPresence{online: map[uuid.UUID]bool{online.UserID: true}}

	uc := NewDoctorUsecase(db, newTestLogger(), doctorRepo, presence)

	resp, err := uc.ListDoctors(context.Background(), DoctorQuery{})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)

	byID := map[uuid.UUID]bool{}
	for _, d := range resp.Doctors {
		byID[d.UserID] = d.IsOnline
	}
	assert.True(t, byID[online.UserID])
	assert.False(t, byID[offline.UserID])
}

func TestListDoctors_OnlineOnlyFilters(t *testing.T) {
	db, _ := newTestDB(t)

	online := approvedDoctor(100)
	offline := approvedDoctor(200)

	doctorRepo := &MockDoctorProfileRepository{
		FindApprovedFunc: func(db *gorm.DB, filter repository.DoctorFilter) ([]entity.DoctorProfile, error) {
			return []entity.DoctorProfile{*online, *offline}, nil
		},
	}
	presence := &MockPresence{online: map[uuid.UUID]bool{online.UserID: true}}

	uc := NewDoctorUsecase(db, newTestLogger(), doctorRepo, presence)

	resp, err := uc.ListDoctors(context.Background(), DoctorQuery{OnlineOnly: true})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, online.UserID, resp.Doctors[0].UserID)
	assert.True(t, resp.Doctors[0].IsOnline)
}

func TestGetDoctor_HidesUnapprovedProfiles(t *testing.T) {
	db, _ := newTestDB(t)

	pending := approvedDoctor(100)
	pending.ApprovalStatus = entity.ApprovalStatusPending

	doctorRepo := &MockDoctorProfileRepository{
		FindByUserIDFunc: func(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
			return pending, nil
		},
	}

	uc := NewDoctorUsecase(db, newTestLogger(), doctorRepo, &MockPresence{})

	_, err := uc.GetDoctor(context.Background(), pending.UserID)
	assert.ErrorIs(t, err, ErrDoctorProfileNotFound)
}
