package usecase

import (
	"context"
	"errors"
	"fmt"

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

var ErrInvalidDecision = errors.New("decision must be approved or rejected")

const auditListLimit = 100

// PresenceCounter exposes aggregate presence for the stats endpoint.
// Satisfied by the realtime registry.
type PresenceCounter interface {
	OnlineDoctorCount() int
}

// ProfileNotifier pushes a credential decision to the doctor's live
// connections, if any.
type ProfileNotifier interface {
	ProfileDecision(doctorID uuid.UUID, status entity.ApprovalStatus)
}

type AdminUsecase interface {
	GetPendingDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	DecideDoctor(ctx context.Context, doctorID uuid.UUID, req *dto.DoctorDecisionRequest) error
	GetStats(ctx context.Context) (*dto.PlatformStatsResponse, error)
	GetAuditLogs(ctx context.Context) (*dto.AuditLogListResponse, error)
}

type adminUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	userRepo         repository.UserRepository
	doctorRepo       repository.DoctorProfileRepository
	appointmentRepo  repository.AppointmentRepository
	notificationRepo repository.NotificationRepository
	auditRepo        repository.AuditLogRepository
	auditService     service.AuditService
	presence         PresenceCounter
	notifier         ProfileNotifier
}

func NewAdminUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorRepo repository.DoctorProfileRepository,
	appointmentRepo repository.AppointmentRepository,
	notificationRepo repository.NotificationRepository,
	auditRepo repository.AuditLogRepository,
	auditService service.AuditService,
	presence PresenceCounter,
	notifier ProfileNotifier,
) AdminUsecase {
	return &adminUsecase{
		db:               db,
		log:              log,
		userRepo:         userRepo,
		doctorRepo:       doctorRepo,
		appointmentRepo:  appointmentRepo,
		notificationRepo: notificationRepo,
		auditRepo:        auditRepo,
		auditService:     auditService,
		presence:         presence,
		notifier:         notifier,
	}
}

func (u *adminUsecase) GetPendingDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	profiles, err := u.doctorRepo.FindByApprovalStatus(u.db.WithContext(ctx), entity.ApprovalStatusPending)
	if err != nil {
		u.log.Warnf("Failed to list pending doctors: %+v", err)
		return nil, err
	}

	doctors := make([]dto.DoctorProfileResponse, len(profiles))
	for i := range profiles {
		doctors[i] = *converter.DoctorProfileToResponse(&profiles[i], false)
	}

	return &dto.DoctorListResponse{
		Doctors: doctors,
		Total:   len(doctors),
	}, nil
}

// DecideDoctor records the admin's credential decision, notifies the doctor
// durably and in real time.
func (u *adminUsecase) DecideDoctor(ctx context.Context, doctorID uuid.UUID, req *dto.DoctorDecisionRequest) error {
	adminID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	status := entity.ApprovalStatus(req.Status)
	if status != entity.ApprovalStatusApproved && status != entity.ApprovalStatusRejected {
		return ErrInvalidDecision
	}

	profile, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return err
	}
	if profile == nil {
		return ErrDoctorProfileNotFound
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.doctorRepo.UpdateApprovalStatus(tx, doctorID, status)
	if err != nil {
		u.log.Warnf("Failed to update approval status for %s: %+v", doctorID, err)
		return err
	}
	if affected == 0 {
		return ErrDoctorProfileNotFound
	}

	notification := &entity.Notification{
		UserID:  doctorID,
		Type:    entity.NotificationTypeGeneral,
		Title:   "Profile Review",
		Message: fmt.Sprintf("Your profile has been %s", status),
	}
	if err := u.notificationRepo.Create(tx, notification); err != nil {
		u.log.Warnf("Failed to create notification: %+v", err)
		return err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &adminID, entity.AuditActionDoctorDecision, "doctor_profile", doctorID.String(), string(profile.ApprovalStatus), string(status)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.notifier.ProfileDecision(doctorID, status)

	u.log.Infof("Doctor decision: doctor=%s, status=%s, admin=%s", doctorID, status, adminID)
	return nil
}

func (u *adminUsecase) GetStats(ctx context.Context) (*dto.PlatformStatsResponse, error) {
	db := u.db.WithContext(ctx)

	totalUsers, err := u.userRepo.CountAll(db)
	if err != nil {
		u.log.Warnf("Failed to count users: %+v", err)
		return nil, err
	}

	totalAppointments, err := u.appointmentRepo.CountAll(db)
	if err != nil {
		u.log.Warnf("Failed to count appointments: %+v", err)
		return nil, err
	}

	pendingDoctors, err := u.doctorRepo.CountByApprovalStatus(db, entity.ApprovalStatusPending)
	if err != nil {
		u.log.Warnf("Failed to count pending doctors: %+v", err)
		return nil, err
	}

	approvedDoctors, err := u.doctorRepo.CountByApprovalStatus(db, entity.ApprovalStatusApproved)
	if err != nil {
		u.log.Warnf("Failed to count approved doctors: %+v", err)
		return nil, err
	}

	totalRevenue, err := u.appointmentRepo.SumPaidFees(db)
	if err != nil {
		u.log.Warnf("Failed to sum paid fees: %+v", err)
		return nil, err
	}

	return &dto.PlatformStatsResponse{
		TotalUsers:        totalUsers,
		TotalAppointments: totalAppointments,
		PendingDoctors:    pendingDoctors,
		ApprovedDoctors:   approvedDoctors,
		OnlineDoctors:     u.presence.OnlineDoctorCount(),
		TotalRevenue:      totalRevenue,
	}, nil
}

func (u *adminUsecase) GetAuditLogs(ctx context.Context) (*dto.AuditLogListResponse, error) {
	logs, err := u.auditRepo.FindRecent(u.db.WithContext(ctx), auditListLimit)
	if err != nil {
		u.log.Warnf("Failed to list audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}
