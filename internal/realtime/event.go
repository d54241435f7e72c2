package realtime

import (
	"encoding/json"

	"telehealth-backend/internal/domain/entity"

	"github.com/google/uuid"
)

// Wire event types. Inbound frames declare one of these in their "type"
// field; outbound events carry the same discriminator.
const (
	EventTypeChatMessage       = "chat_message"
	EventTypeVideoSignal       = "video_signal"
	EventTypeDoctorStatus      = "doctor_status_update"
	EventTypeNewAppointment    = "new_appointment"
	EventTypeAppointmentStatus = "appointment_status_update"
	EventTypePaymentConfirmed  = "payment_confirmed"
	EventTypeProfileStatus     = "profile_status_update"
)

// Derived doctor presence values
const (
	PresenceOnline  = "online"
	PresenceOffline = "offline"
)

// inboundFrame is the union of recognized client-to-server frames.
type inboundFrame struct {
	Type string `json:"type"`

	// chat_message
	AppointmentID string `json:"appointment_id"`
	ReceiverID    string `json:"receiver_id"`
	Message       string `json:"message"`

	// video_signal
	To     string          `json:"to"`
	Signal json.RawMessage `json:"signal"`
}

// PresenceEvent announces a doctor going online or offline.
type PresenceEvent struct {
	Type     string `json:"type"`
	DoctorID string `json:"doctor_id"`
	Status   string `json:"status"`
}

// ChatEvent carries a persisted chat message to the receiver.
type ChatEvent struct {
	Type string              `json:"type"`
	Data *entity.ChatMessage `json:"data"`
}

// SignalEvent relays a WebRTC signaling payload verbatim.
type SignalEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
	From string          `json:"from"`
}

// AppointmentEvent notifies a party about a new appointment.
type AppointmentEvent struct {
	Type string              `json:"type"`
	Data *entity.Appointment `json:"data"`
}

// AppointmentStatusEvent notifies both parties about a lifecycle transition.
type AppointmentStatusEvent struct {
	Type          string `json:"type"`
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}

// PaymentEvent notifies the doctor that an appointment was paid.
type PaymentEvent struct {
	Type          string `json:"type"`
	AppointmentID string `json:"appointment_id"`
}

// ProfileStatusEvent notifies a doctor about a credential decision.
type ProfileStatusEvent struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// Notifier translates domain actions into per-user sends. Stateless;
// delivery is fire-and-forget through the hub.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

// AppointmentCreated tells the doctor a patient booked one of their slots.
func (n *Notifier) AppointmentCreated(appointment *entity.Appointment) {
	n.hub.SendToUser(appointment.DoctorID, AppointmentEvent{
		Type: EventTypeNewAppointment,
		Data: appointment,
	})
}

// AppointmentStatusChanged tells both parties about a lifecycle transition.
func (n *Notifier) AppointmentStatusChanged(appointment *entity.Appointment, status entity.AppointmentStatus) {
	event := AppointmentStatusEvent{
		Type:          EventTypeAppointmentStatus,
		AppointmentID: appointment.ID.String(),
		Status:        string(status),
	}
	n.hub.SendToUser(appointment.PatientID, event)
	n.hub.SendToUser(appointment.DoctorID, event)
}

// PaymentConfirmed tells the doctor the consultation fee was captured.
func (n *Notifier) PaymentConfirmed(appointment *entity.Appointment) {
	n.hub.SendToUser(appointment.DoctorID, PaymentEvent{
		Type:          EventTypePaymentConfirmed,
		AppointmentID: appointment.ID.String(),
	})
}

// ProfileDecision tells a doctor their credential review outcome.
func (n *Notifier) ProfileDecision(doctorID uuid.UUID, status entity.ApprovalStatus) {
	n.hub.SendToUser(doctorID, ProfileStatusEvent{
		Type:   EventTypeProfileStatus,
		Status: string(status),
	})
}
