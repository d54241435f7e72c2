package usecase

import (
	"context"
	"errors"

	"telehealth-backend/internal/converter"
	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/delivery/http/middleware"
	"telehealth-backend/internal/domain/entity"
	"telehealth-backend/internal/domain/repository"
	"telehealth-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrNotAppointmentDoctor = errors.New("only the appointment doctor can prescribe")
	ErrAlreadyPrescribed    = errors.New("appointment already has a prescription")
)

type PrescriptionUsecase interface {
	CreatePrescription(ctx context.Context, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error)
	GetPrescription(ctx context.Context, id uuid.UUID) (*dto.PrescriptionResponse, error)
	GetMyPrescriptions(ctx context.Context) (*dto.PrescriptionListResponse, error)
}

type prescriptionUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	prescriptionRepo repository.PrescriptionRepository
	appointmentRepo  repository.AppointmentRepository
	notificationRepo repository.NotificationRepository
	auditService     service.AuditService
}

func NewPrescriptionUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	prescriptionRepo repository.PrescriptionRepository,
	appointmentRepo repository.AppointmentRepository,
	notificationRepo repository.NotificationRepository,
	auditService service.AuditService,
) PrescriptionUsecase {
	return &prescriptionUsecase{
		db:               db,
		log:              log,
		prescriptionRepo: prescriptionRepo,
		appointmentRepo:  appointmentRepo,
		notificationRepo: notificationRepo,
		auditService:     auditService,
	}
}

// CreatePrescription issues a prescription for an appointment. Only the
// doctor on the appointment can prescribe, and at most once.
func (u *prescriptionUsecase) CreatePrescription(ctx context.Context, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), req.AppointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", req.AppointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.DoctorID != doctorID {
		return nil, ErrNotAppointmentDoctor
	}
	if appointment.PrescriptionID != nil {
		return nil, ErrAlreadyPrescribed
	}

	medications := make(entity.JSONList, 0, len(req.Medications))
	for _, m := range req.Medications {
		medications = append(medications, map[string]interface{}{
			"name":     m.Name,
			"dosage":   m.Dosage,
			"duration": m.Duration,
		})
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	prescription := &entity.Prescription{
		AppointmentID: req.AppointmentID,
		PatientID:     appointment.PatientID,
		DoctorID:      doctorID,
		Diagnosis:     req.Diagnosis,
		Medications:   medications,
		Instructions:  req.Instructions,
	}

	if err := u.prescriptionRepo.Create(tx, prescription); err != nil {
		u.log.Warnf("Failed to create prescription: %+v", err)
		return nil, err
	}

	if err := u.appointmentRepo.SetPrescription(tx, appointment.ID, prescription.ID); err != nil {
		u.log.Warnf("Failed to link prescription to appointment %s: %+v", appointment.ID, err)
		return nil, err
	}

	notification := &entity.Notification{
		UserID:  appointment.PatientID,
		Type:    entity.NotificationTypeGeneral,
		Title:   "New Prescription",
		Message: "Your doctor issued a new prescription",
	}
	if err := u.notificationRepo.Create(tx, notification); err != nil {
		u.log.Warnf("Failed to create notification: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &doctorID, entity.AuditActionPrescriptionCreate, "prescription", prescription.ID.String(), map[string]interface{}{
		"appointment_id": appointment.ID.String(),
		"patient_id":     appointment.PatientID.String(),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.PrescriptionToResponse(prescription), nil
}

func (u *prescriptionUsecase) GetPrescription(ctx context.Context, id uuid.UUID) (*dto.PrescriptionResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}
	roleID, _ := middleware.GetRoleIDFromContext(ctx)

	prescription, err := u.prescriptionRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find prescription %s: %+v", id, err)
		return nil, err
	}
	if prescription == nil {
		return nil, ErrPrescriptionNotFound
	}

	if roleID != entity.RoleIDAdmin && prescription.PatientID != userID && prescription.DoctorID != userID {
		return nil, ErrNotParticipant
	}

	return converter.PrescriptionToResponse(prescription), nil
}

// GetMyPrescriptions lists prescriptions for the logged-in user, scoped by
// role.
func (u *prescriptionUsecase) GetMyPrescriptions(ctx context.Context) (*dto.PrescriptionListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}
	roleID, _ := middleware.GetRoleIDFromContext(ctx)

	var prescriptions []entity.Prescription
	var err error
	if roleID == entity.RoleIDDoctor {
		prescriptions, err = u.prescriptionRepo.FindByDoctorID(u.db.WithContext(ctx), userID)
	} else {
		prescriptions, err = u.prescriptionRepo.FindByPatientID(u.db.WithContext(ctx), userID)
	}
	if err != nil {
		u.log.Warnf("Failed to find prescriptions for user %s: %+v", userID, err)
		return nil, err
	}

	return &dto.PrescriptionListResponse{
		Prescriptions: converter.PrescriptionsToResponses(prescriptions),
		Total:         len(prescriptions),
	}, nil
}
