package entity

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus represents the credentialing state of a doctor profile
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// DoctorProfile represents doctor-specific profile data.
// A doctor is bookable only while ApprovalStatus is approved.
type DoctorProfile struct {
	UserID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	LicenseNumber   string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"license_number"`
	Specialization  string         `gorm:"type:varchar(100);not null;index" json:"specialization"`
	ExperienceYears int            `gorm:"not null;default:0" json:"experience_years"`
	Biography       string         `gorm:"type:text" json:"biography,omitempty"`
	ConsultationFee float64        `gorm:"type:numeric(10,2);not null;default:0" json:"consultation_fee"`
	ApprovalStatus  ApprovalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"approval_status"`
	Rating          float64        `gorm:"type:numeric(3,2);not null;default:0" json:"rating"`
	TotalReviews    int            `gorm:"not null;default:0" json:"total_reviews"`
	AvailableHours  JSON           `gorm:"type:jsonb" json:"available_hours,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

// IsApproved checks if the profile passed admin credentialing
func (p *DoctorProfile) IsApproved() bool {
	return p.ApprovalStatus == ApprovalStatusApproved
}
