package repository

import (
	"telehealth-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoctorFilter narrows the public doctor directory listing.
type DoctorFilter struct {
	Specialization string
	MaxFee         *float64
	MinRating      *float64
}

type DoctorProfileRepository interface {
	Create(db *gorm.DB, profile *entity.DoctorProfile) error
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error)
	FindApproved(db *gorm.DB, filter DoctorFilter) ([]entity.DoctorProfile, error)
	FindByApprovalStatus(db *gorm.DB, status entity.ApprovalStatus) ([]entity.DoctorProfile, error)
	Update(db *gorm.DB, profile *entity.DoctorProfile) error
	UpdateApprovalStatus(db *gorm.DB, userID uuid.UUID, status entity.ApprovalStatus) (int64, error)
	CountByApprovalStatus(db *gorm.DB, status entity.ApprovalStatus) (int64, error)
}
