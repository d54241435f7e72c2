package converter

import (
	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:              appointment.ID,
		PatientID:       appointment.PatientID,
		DoctorID:        appointment.DoctorID,
		AppointmentDate: appointment.AppointmentDate.Format("2006-01-02"),
		SlotTime:        appointment.SlotTime,
		ConsultationFee: appointment.ConsultationFee,
		Status:          string(appointment.Status),
		PaymentStatus:   string(appointment.PaymentStatus),
		IsEmergency:     appointment.IsEmergency,
		CreatedAt:       appointment.CreatedAt,
		UpdatedAt:       appointment.UpdatedAt,
	}

	if appointment.Notes != nil {
		response.Notes = *appointment.Notes
	}

	// Include participant names if preloaded
	if appointment.Patient.Email != "" {
		response.PatientName = appointment.Patient.FullName
	}
	if appointment.Doctor.User.Email != "" {
		response.DoctorName = appointment.Doctor.User.FullName
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i, appointment := range appointments {
		resp := AppointmentToResponse(&appointment)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
