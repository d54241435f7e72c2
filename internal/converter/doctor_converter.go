package converter

import (
	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/domain/entity"
)

// DoctorProfileToResponse converts a DoctorProfile entity to DoctorProfileResponse DTO.
// The online flag comes from the presence registry, not the database.
func DoctorProfileToResponse(profile *entity.DoctorProfile, online bool) *dto.DoctorProfileResponse {
	if profile == nil {
		return nil
	}

	response := &dto.DoctorProfileResponse{
		UserID:          profile.UserID,
		LicenseNumber:   profile.LicenseNumber,
		Specialization:  profile.Specialization,
		ExperienceYears: profile.ExperienceYears,
		Biography:       profile.Biography,
		ConsultationFee: profile.ConsultationFee,
		ApprovalStatus:  string(profile.ApprovalStatus),
		Rating:          profile.Rating,
		TotalReviews:    profile.TotalReviews,
		AvailableHours:  profile.AvailableHours,
		IsOnline:        online,
		CreatedAt:       profile.CreatedAt,
	}

	// Include user info if preloaded
	if profile.User.Email != "" {
		response.FullName = profile.User.FullName
		response.Email = profile.User.Email
	}

	return response
}
