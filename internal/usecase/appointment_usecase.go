package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

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
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotTaken           = errors.New("slot is already booked")
	ErrSlotInPast          = errors.New("cannot book a past date")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrDoctorUnavailable   = errors.New("doctor is not accepting appointments")
	ErrNotParticipant      = errors.New("appointment does not belong to you")
	ErrInvalidStatus       = errors.New("invalid appointment status")
	ErrAlreadyTerminal     = errors.New("appointment is already cancelled or refunded")
	ErrAlreadyPaid         = errors.New("appointment is already paid")
	ErrPaymentNotPending   = errors.New("appointment has no pending payment")
)

// AppointmentNotifier pushes real-time events to live connections after a
// state change lands in the database. Delivery is best-effort.
type AppointmentNotifier interface {
	AppointmentCreated(appointment *entity.Appointment)
	AppointmentStatusChanged(appointment *entity.Appointment, status entity.AppointmentStatus)
	PaymentConfirmed(appointment *entity.Appointment)
}

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetMyAppointments(ctx context.Context, status string) (*dto.AppointmentListResponse, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, id uuid.UUID) error
	CreatePaymentIntent(ctx context.Context, req *dto.PaymentIntentRequest) error
	ConfirmPayment(ctx context.Context, req *dto.ConfirmPaymentRequest) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	appointmentRepo  repository.AppointmentRepository
	doctorRepo       repository.DoctorProfileRepository
	notificationRepo repository.NotificationRepository
	auditService     service.AuditService
	notifier         AppointmentNotifier
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorProfileRepository,
	notificationRepo repository.NotificationRepository,
	auditService service.AuditService,
	notifier AppointmentNotifier,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:               db,
		log:              log,
		appointmentRepo:  appointmentRepo,
		doctorRepo:       doctorRepo,
		notificationRepo: notificationRepo,
		auditService:     auditService,
		notifier:         notifier,
	}
}

// CreateAppointment books a consultation slot.
//
// Flow:
// 1. Validate doctor exists and is approved
// 2. Validate slot date is not in the past
// 3. Insert the appointment; the partial unique index on the slot key
//    decides the winner under concurrency. A unique violation means another
//    active appointment already holds (doctor, date, time).
// 4. Write durable notification + audit entry in the same transaction
// 5. After commit, push the real-time event to the doctor
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	appointmentDate, err := time.Parse("2006-01-02", req.AppointmentDate)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if appointmentDate.Before(today) {
		return nil, ErrSlotInPast
	}

	// Approval gate before touching the slot ledger
	doctor, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if !doctor.IsApproved() {
		return nil, ErrDoctorUnavailable
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment := &entity.Appointment{
		PatientID:       patientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: appointmentDate,
		SlotTime:        req.SlotTime,
		ConsultationFee: doctor.ConsultationFee,
		Status:          entity.AppointmentStatusPending,
		PaymentStatus:   entity.PaymentStatusPending,
		IsEmergency:     req.IsEmergency,
	}
	if req.Notes != "" {
		appointment.Notes = &req.Notes
	}

	if err := u.appointmentRepo.CreateIfSlotFree(tx, appointment); err != nil {
		if isDuplicateKeyError(err, "uniq_active_slot") {
			return nil, ErrSlotTaken
		}
		if isForeignKeyError(err, "doctor") {
			return nil, ErrDoctorNotFound
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	notification := &entity.Notification{
		UserID:  req.DoctorID,
		Type:    entity.NotificationTypeAppointment,
		Title:   "New Appointment",
		Message: fmt.Sprintf("New appointment booked for %s at %s", req.AppointmentDate, req.SlotTime),
	}
	if err := u.notificationRepo.Create(tx, notification); err != nil {
		u.log.Warnf("Failed to create notification: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &patientID, entity.AuditActionAppointmentCreate, "appointment", appointment.ID.String(), map[string]interface{}{
		"doctor_id": req.DoctorID.String(),
		"date":      req.AppointmentDate,
		"slot_time": req.SlotTime,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.notifier.AppointmentCreated(appointment)

	u.log.Infof("Appointment created: id=%s, doctor=%s, date=%s, slot=%s", appointment.ID, req.DoctorID, req.AppointmentDate, req.SlotTime)
	return converter.AppointmentToResponse(appointment), nil
}

// GetMyAppointments returns the appointments the logged-in user participates
// in, scoped by role. An empty status returns all lifecycle states.
func (u *appointmentUsecase) GetMyAppointments(ctx context.Context, status string) (*dto.AppointmentListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}
	roleID, _ := middleware.GetRoleIDFromContext(ctx)

	if status != "" && !entity.ValidAppointmentStatus(status) {
		return nil, ErrInvalidStatus
	}

	var appointments []entity.Appointment
	var err error
	if roleID == entity.RoleIDDoctor {
		appointments, err = u.appointmentRepo.FindByDoctorID(u.db.WithContext(ctx), userID, status)
	} else {
		appointments, err = u.appointmentRepo.FindByPatientID(u.db.WithContext(ctx), userID, status)
	}
	if err != nil {
		u.log.Warnf("Failed to find appointments for user %s: %+v", userID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.findOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appointment), nil
}

// UpdateStatus transitions the appointment lifecycle. Doctors confirm or
// complete; cancellation goes through CancelAppointment so the slot key
// release rules stay in one place.
func (u *appointmentUsecase) UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	status := entity.AppointmentStatus(req.Status)
	if !entity.ValidAppointmentStatus(req.Status) || status == entity.AppointmentStatusCancelled {
		return nil, ErrInvalidStatus
	}

	appointment, err := u.findOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appointment.IsActive() {
		return nil, ErrAlreadyTerminal
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.appointmentRepo.UpdateStatus(tx, id, status)
	if err != nil {
		u.log.Warnf("Failed to update appointment status %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAppointmentNotFound
	}

	notification := &entity.Notification{
		UserID:  appointment.PatientID,
		Type:    entity.NotificationTypeAppointment,
		Title:   "Appointment Update",
		Message: fmt.Sprintf("Your appointment is now %s", status),
	}
	if err := u.notificationRepo.Create(tx, notification); err != nil {
		u.log.Warnf("Failed to create notification: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &userID, entity.AuditActionAppointmentStatus, "appointment", id.String(), string(appointment.Status), string(status)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	appointment.Status = status
	u.notifier.AppointmentStatusChanged(appointment, status)

	return converter.AppointmentToResponse(appointment), nil
}

// CancelAppointment releases the slot key. The guarded update only succeeds
// while the appointment is still active, so a concurrent cancel or refund
// loses cleanly with zero affected rows.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, id uuid.UUID) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	appointment, err := u.findOwned(ctx, id)
	if err != nil {
		return err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.appointmentRepo.CancelIfActive(tx, id)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", id, err)
		return err
	}
	if affected == 0 {
		return ErrAlreadyTerminal
	}

	// Notify the other party
	recipient := appointment.DoctorID
	if userID == appointment.DoctorID {
		recipient = appointment.PatientID
	}
	notification := &entity.Notification{
		UserID:  recipient,
		Type:    entity.NotificationTypeAppointment,
		Title:   "Appointment Cancelled",
		Message: fmt.Sprintf("Appointment on %s at %s was cancelled", appointment.AppointmentDate.Format("2006-01-02"), appointment.SlotTime),
	}
	if err := u.notificationRepo.Create(tx, notification); err != nil {
		u.log.Warnf("Failed to create notification: %+v", err)
		return err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &userID, entity.AuditActionAppointmentCancel, "appointment", id.String(), string(appointment.Status), string(entity.AppointmentStatusCancelled)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	appointment.Status = entity.AppointmentStatusCancelled
	u.notifier.AppointmentStatusChanged(appointment, entity.AppointmentStatusCancelled)

	u.log.Infof("Appointment cancelled: id=%s", id)
	return nil
}

// CreatePaymentIntent records the external payment reference on the
// appointment before the provider redirects the patient.
func (u *appointmentUsecase) CreatePaymentIntent(ctx context.Context, req *dto.PaymentIntentRequest) error {
	appointment, err := u.findOwned(ctx, req.AppointmentID)
	if err != nil {
		return err
	}
	if appointment.PaymentStatus != entity.PaymentStatusPending {
		return ErrAlreadyPaid
	}

	if err := u.appointmentRepo.SetPaymentIntent(u.db.WithContext(ctx), req.AppointmentID, req.PaymentIntentID); err != nil {
		u.log.Warnf("Failed to set payment intent on %s: %+v", req.AppointmentID, err)
		return err
	}
	return nil
}

// ConfirmPayment marks the fee as captured and confirms the appointment.
func (u *appointmentUsecase) ConfirmPayment(ctx context.Context, req *dto.ConfirmPaymentRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	appointment, err := u.findOwned(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if !appointment.IsActive() {
		return nil, ErrAlreadyTerminal
	}
	if appointment.PaymentStatus != entity.PaymentStatusPending {
		return nil, ErrAlreadyPaid
	}
	if appointment.PaymentIntentID == nil {
		return nil, ErrPaymentNotPending
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.appointmentRepo.ConfirmPayment(tx, req.AppointmentID); err != nil {
		u.log.Warnf("Failed to confirm payment on %s: %+v", req.AppointmentID, err)
		return nil, err
	}

	notification := &entity.Notification{
		UserID:  appointment.DoctorID,
		Type:    entity.NotificationTypePayment,
		Title:   "Payment Received",
		Message: fmt.Sprintf("Payment confirmed for appointment on %s at %s", appointment.AppointmentDate.Format("2006-01-02"), appointment.SlotTime),
	}
	if err := u.notificationRepo.Create(tx, notification); err != nil {
		u.log.Warnf("Failed to create notification: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &userID, entity.AuditActionPaymentConfirm, "appointment", req.AppointmentID.String(), string(entity.PaymentStatusPending), string(entity.PaymentStatusPaid)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	appointment.PaymentStatus = entity.PaymentStatusPaid
	appointment.Status = entity.AppointmentStatusConfirmed
	u.notifier.PaymentConfirmed(appointment)
	u.notifier.AppointmentStatusChanged(appointment, entity.AppointmentStatusConfirmed)

	return converter.AppointmentToResponse(appointment), nil
}

// findOwned loads the appointment and verifies the logged-in user is a
// participant. Admins bypass the participant check.
func (u *appointmentUsecase) findOwned(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}
	roleID, _ := middleware.GetRoleIDFromContext(ctx)

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	if roleID != entity.RoleIDAdmin && !appointment.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}

	return appointment, nil
}
