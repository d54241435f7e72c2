package converter

import (
	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/domain/entity"
)

// PrescriptionToResponse converts a Prescription entity to PrescriptionResponse DTO
func PrescriptionToResponse(prescription *entity.Prescription) *dto.PrescriptionResponse {
	if prescription == nil {
		return nil
	}

	medications := make([]dto.MedicationRequest, 0, len(prescription.Medications))
	for _, m := range prescription.Medications {
		medication := dto.MedicationRequest{}
		if name, ok := m["name"].(string); ok {
			medication.Name = name
		}
		if dosage, ok := m["dosage"].(string); ok {
			medication.Dosage = dosage
		}
		if duration, ok := m["duration"].(string); ok {
			medication.Duration = duration
		}
		medications = append(medications, medication)
	}

	return &dto.PrescriptionResponse{
		ID:            prescription.ID,
		AppointmentID: prescription.AppointmentID,
		PatientID:     prescription.PatientID,
		DoctorID:      prescription.DoctorID,
		Diagnosis:     prescription.Diagnosis,
		Medications:   medications,
		Instructions:  prescription.Instructions,
		CreatedAt:     prescription.CreatedAt,
	}
}

// PrescriptionsToResponses converts a slice of Prescription entities to slice of PrescriptionResponse DTOs
func PrescriptionsToResponses(prescriptions []entity.Prescription) []dto.PrescriptionResponse {
	responses := make([]dto.PrescriptionResponse, len(prescriptions))
	for i, prescription := range prescriptions {
		resp := PrescriptionToResponse(&prescription)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
