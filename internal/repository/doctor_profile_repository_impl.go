package repository

import (
	"errors"

	"telehealth-backend/internal/domain/entity"
	domainRepo "telehealth-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

func (r *doctorProfileRepository) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Create(profile).Error
}

func (r *doctorProfileRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *doctorProfileRepository) FindApproved(db *gorm.DB, filter domainRepo.DoctorFilter) ([]entity.DoctorProfile, error) {
	query := db.Preload("User").Where("approval_status = ?", entity.ApprovalStatusApproved)

	if filter.Specialization != "" {
		query = query.Where("specialization ILIKE ?", "%"+filter.Specialization+"%")
	}
	if filter.MaxFee != nil {
		query = query.Where("consultation_fee <= ?", *filter.MaxFee)
	}
	if filter.MinRating != nil {
		query = query.Where("rating >= ?", *filter.MinRating)
	}

	var profiles []entity.DoctorProfile
	err := query.Order("rating DESC").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *doctorProfileRepository) FindByApprovalStatus(db *gorm.DB, status entity.ApprovalStatus) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	err := db.Preload("User").
		Where("approval_status = ?", status).
		Order("created_at ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *doctorProfileRepository) Update(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Save(profile).Error
}

// UpdateApprovalStatus updates the credential decision. Returns affected rows
// so callers can distinguish a missing profile from a successful decision.
func (r *doctorProfileRepository) UpdateApprovalStatus(db *gorm.DB, userID uuid.UUID, status entity.ApprovalStatus) (int64, error) {
	result := db.Model(&entity.DoctorProfile{}).
		Where("user_id = ?", userID).
		Update("approval_status", status)
	return result.RowsAffected, result.Error
}

func (r *doctorProfileRepository) CountByApprovalStatus(db *gorm.DB, status entity.ApprovalStatus) (int64, error) {
	var count int64
	err := db.Model(&entity.DoctorProfile{}).
		Where("approval_status = ?", status).
		Count(&count).Error
	return count, err
}
