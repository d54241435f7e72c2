package usecase

import (
	"context"
	"errors"

	"telehealth-backend/internal/converter"
	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/delivery/http/middleware"
	"telehealth-backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrDoctorProfileNotFound = errors.New("doctor profile not found")

// PresenceChecker answers whether a user currently holds at least one live
// connection. Satisfied by the realtime registry.
type PresenceChecker interface {
	IsOnline(userID uuid.UUID) bool
}

// DoctorQuery filters the public doctor directory.
type DoctorQuery struct {
	Specialization string
	MaxFee         *float64
	MinRating      *float64
	OnlineOnly     bool
}

type DoctorUsecase interface {
	ListDoctors(ctx context.Context, query DoctorQuery) (*dto.DoctorListResponse, error)
	GetDoctor(ctx context.Context, userID uuid.UUID) (*dto.DoctorProfileResponse, error)
	GetMyProfile(ctx context.Context) (*dto.DoctorProfileResponse, error)
	UpdateMyProfile(ctx context.Context, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorProfileResponse, error)
}

type doctorUsecase struct {
	db         *gorm.DB
	log        *logrus.Logger
	doctorRepo repository.DoctorProfileRepository
	presence   PresenceChecker
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorProfileRepository,
	presence PresenceChecker,
) DoctorUsecase {
	return &doctorUsecase{
		db:         db,
		log:        log,
		doctorRepo: doctorRepo,
		presence:   presence,
	}
}

// ListDoctors returns approved doctors matching the query. The online flag
// comes from the presence registry at read time; OnlineOnly filters on it
// after the database query since presence is process state, not a column.
func (u *doctorUsecase) ListDoctors(ctx context.Context, query DoctorQuery) (*dto.DoctorListResponse, error) {
	profiles, err := u.doctorRepo.FindApproved(u.db.WithContext(ctx), repository.DoctorFilter{
		Specialization: query.Specialization,
		MaxFee:         query.MaxFee,
		MinRating:      query.MinRating,
	})
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}

	doctors := make([]dto.DoctorProfileResponse, 0, len(profiles))
	for i := range profiles {
		online := u.presence.IsOnline(profiles[i].UserID)
		if query.OnlineOnly && !online {
			continue
		}
		doctors = append(doctors, *converter.DoctorProfileToResponse(&profiles[i], online))
	}

	return &dto.DoctorListResponse{
		Doctors: doctors,
		Total:   len(doctors),
	}, nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, userID uuid.UUID) (*dto.DoctorProfileResponse, error) {
	profile, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", userID, err)
		return nil, err
	}
	if profile == nil || !profile.IsApproved() {
		return nil, ErrDoctorProfileNotFound
	}

	return converter.DoctorProfileToResponse(profile, u.presence.IsOnline(profile.UserID)), nil
}

func (u *doctorUsecase) GetMyProfile(ctx context.Context) (*dto.DoctorProfileResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	profile, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", userID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorProfileNotFound
	}

	return converter.DoctorProfileToResponse(profile, u.presence.IsOnline(userID)), nil
}

// UpdateMyProfile applies a partial update of the doctor's own profile.
// License number and approval status are not editable here.
func (u *doctorUsecase) UpdateMyProfile(ctx context.Context, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorProfileResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	profile, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", userID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorProfileNotFound
	}

	if req.Specialization != "" {
		profile.Specialization = req.Specialization
	}
	if req.ExperienceYears != nil {
		profile.ExperienceYears = *req.ExperienceYears
	}
	if req.Biography != nil {
		profile.Biography = *req.Biography
	}
	if req.ConsultationFee != nil {
		profile.ConsultationFee = *req.ConsultationFee
	}
	if req.AvailableHours != nil {
		profile.AvailableHours = req.AvailableHours
	}

	if err := u.doctorRepo.Update(u.db.WithContext(ctx), profile); err != nil {
		u.log.Warnf("Failed to update doctor profile %s: %+v", userID, err)
		return nil, err
	}

	return converter.DoctorProfileToResponse(profile, u.presence.IsOnline(userID)), nil
}
