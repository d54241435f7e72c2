package dto

import (
	"time"

	"telehealth-backend/internal/domain/entity"

	"github.com/google/uuid"
)

type DoctorDecisionRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

type PlatformStatsResponse struct {
	TotalUsers        int64   `json:"total_users"`
	TotalAppointments int64   `json:"total_appointments"`
	PendingDoctors    int64   `json:"pending_doctors"`
	ApprovedDoctors   int64   `json:"approved_doctors"`
	OnlineDoctors     int     `json:"online_doctors"`
	TotalRevenue      float64 `json:"total_revenue"`
}

type AuditLogResponse struct {
	ID        int64       `json:"id"`
	UserID    *uuid.UUID  `json:"user_id,omitempty"`
	Action    string      `json:"action"`
	Metadata  entity.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
