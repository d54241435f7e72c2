package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telehealth-backend/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MessageStore persists chat messages before they are delivered. Delivery to
// the receiver must not happen when the write fails.
type MessageStore interface {
	SaveMessage(ctx context.Context, message *entity.ChatMessage) error
}

// Hub owns the set of live connections. It demultiplexes inbound frames by
// declared type and multiplexes outbound events to all connections of a
// target user.
type Hub struct {
	registry *Registry
	messages MessageStore
	log      *logrus.Logger
}

func NewHub(registry *Registry, messages MessageStore, log *logrus.Logger) *Hub {
	return &Hub{
		registry: registry,
		messages: messages,
		log:      log,
	}
}

// Registry exposes presence lookups to the rest of the application.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Register adds an authenticated connection. A doctor's first connection
// flips their derived presence to online and broadcasts the change to every
// open connection.
func (h *Hub) Register(c *Client) {
	first := h.registry.Add(c)

	h.log.WithFields(logrus.Fields{
		"user_id": c.UserID,
		"role":    c.Role,
	}).Info("Connection registered")

	if first && c.IsDoctor() {
		h.BroadcastAll(PresenceEvent{
			Type:     EventTypeDoctorStatus,
			DoctorID: c.UserID.String(),
			Status:   PresenceOnline,
		})
	}
}

// Unregister removes a connection and closes it. Idempotent: a duplicate
// close signal is a no-op and emits no second presence event. A doctor's
// last connection flips their presence to offline.
func (h *Hub) Unregister(c *Client) {
	removed, last := h.registry.Remove(c)
	c.Close()

	if !removed {
		return
	}

	h.log.WithFields(logrus.Fields{
		"user_id": c.UserID,
		"role":    c.Role,
	}).Info("Connection deregistered")

	if last && c.IsDoctor() {
		h.BroadcastAll(PresenceEvent{
			Type:     EventTypeDoctorStatus,
			DoctorID: c.UserID.String(),
			Status:   PresenceOffline,
		})
	}
}

// HandleFrame dispatches one inbound frame by its declared type.
// Malformed frames and unrecognized types are discarded without an error
// frame; the connection stays open. The only error path is chat
// persistence, which must abort delivery.
func (h *Hub) HandleFrame(ctx context.Context, sender *Client, raw []byte) error {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		h.log.WithField("user_id", sender.UserID).Debug("Discarding undecodable frame")
		return nil
	}

	switch frame.Type {
	case EventTypeChatMessage:
		return h.handleChatMessage(ctx, sender, &frame)
	case EventTypeVideoSignal:
		h.handleVideoSignal(sender, &frame)
		return nil
	default:
		// Unknown frame types are ignored, not answered.
		return nil
	}
}

func (h *Hub) handleChatMessage(ctx context.Context, sender *Client, frame *inboundFrame) error {
	appointmentID, err := uuid.Parse(frame.AppointmentID)
	if err != nil {
		return nil
	}
	receiverID, err := uuid.Parse(frame.ReceiverID)
	if err != nil {
		return nil
	}
	if frame.Message == "" {
		return nil
	}

	message := &entity.ChatMessage{
		AppointmentID: appointmentID,
		SenderID:      sender.UserID,
		ReceiverID:    receiverID,
		Message:       frame.Message,
		CreatedAt:     time.Now().UTC(),
	}

	// Persist first; an unpersisted message is never delivered.
	if err := h.messages.SaveMessage(ctx, message); err != nil {
		return fmt.Errorf("persist chat message: %w", err)
	}

	h.SendToUser(receiverID, ChatEvent{
		Type: EventTypeChatMessage,
		Data: message,
	})
	return nil
}

func (h *Hub) handleVideoSignal(sender *Client, frame *inboundFrame) {
	to, err := uuid.Parse(frame.To)
	if err != nil || len(frame.Signal) == 0 {
		return
	}

	// Pure relay: the payload is forwarded verbatim, tagged with the sender.
	h.SendToUser(to, SignalEvent{
		Type: EventTypeVideoSignal,
		Data: frame.Signal,
		From: sender.UserID.String(),
	})
}

// SendToUser delivers a payload to every live connection of one user.
// Fire-and-forget: with no live connection the event is silently dropped,
// and individual send failures never abort the loop or close a connection.
func (h *Hub) SendToUser(userID uuid.UUID, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Warnf("Failed to encode event for user %s: %+v", userID, err)
		return
	}

	for _, c := range h.registry.ConnectionsFor(userID) {
		c.trySend(data)
	}
}

// BroadcastAll delivers a payload to every open connection of every user.
// Used for presence changes only.
func (h *Hub) BroadcastAll(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Warnf("Failed to encode broadcast event: %+v", err)
		return
	}

	for _, c := range h.registry.Snapshot() {
		c.trySend(data)
	}
}
