package dto

import (
	"time"

	"telehealth-backend/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

type UpdateDoctorProfileRequest struct {
	Specialization  string      `json:"specialization" validate:"omitempty"`
	ExperienceYears *int        `json:"experience_years" validate:"omitempty,gte=0"`
	Biography       *string     `json:"biography" validate:"omitempty"`
	ConsultationFee *float64    `json:"consultation_fee" validate:"omitempty,gte=0"`
	AvailableHours  entity.JSON `json:"available_hours" validate:"omitempty"`
}

// Response DTOs

type DoctorProfileResponse struct {
	UserID          uuid.UUID   `json:"user_id"`
	FullName        string      `json:"full_name,omitempty"`
	Email           string      `json:"email,omitempty"`
	LicenseNumber   string      `json:"license_number"`
	Specialization  string      `json:"specialization"`
	ExperienceYears int         `json:"experience_years"`
	Biography       string      `json:"biography,omitempty"`
	ConsultationFee float64     `json:"consultation_fee"`
	ApprovalStatus  string      `json:"approval_status"`
	Rating          float64     `json:"rating"`
	TotalReviews    int         `json:"total_reviews"`
	AvailableHours  entity.JSON `json:"available_hours,omitempty"`
	IsOnline        bool        `json:"is_online"`
	CreatedAt       time.Time   `json:"created_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorProfileResponse `json:"doctors"`
	Total   int                     `json:"total"`
}
