package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telehealth-backend/internal/domain/entity"
)

// Compile-time check
var _ MessageStore = (*mockMessageStore)(nil)

type mockMessageStore struct {
	SaveMessageFunc func(ctx context.Context, message *entity.ChatMessage) error
	saved           []*entity.ChatMessage
}

func (m *mockMessageStore) SaveMessage(ctx context.Context, message *entity.ChatMessage) error {
	if m.SaveMessageFunc != nil {
		return m.SaveMessageFunc(ctx, message)
	}
	m.saved = append(m.saved, message)
	return nil
}

func newTestHub(store MessageStore) *Hub {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewHub(NewRegistry(), store, log)
}

// drain empties the client's send queue and decodes each frame.
func drain(t *testing.T, c *Client) []map[string]interface{} {
	t.Helper()
	var frames []map[string]interface{}
	for {
		select {
		case data := <-c.send:
			var frame map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &frame))
			frames = append(frames, frame)
		default:
			return frames
		}
	}
}

func TestHub_DoctorPresenceBroadcastOnFirstConnection(t *testing.T) {
	hub := newTestHub(&mockMessageStore{})

	doctorID := uuid.New()
	patient := NewClient(uuid.New(), entity.RolePatient, nopConn{})
	hub.Register(patient)

	doctor1 := NewClient(doctorID, entity.RoleDoctor, nopConn{})
	hub.Register(doctor1)

	frames := drain(t, patient)
	require.Len(t, frames, 1)
	assert.Equal(t, EventTypeDoctorStatus, frames[0]["type"])
	assert.Equal(t, doctorID.String(), frames[0]["doctor_id"])
	assert.Equal(t, PresenceOnline, frames[0]["status"])

	// A second device of the same doctor must not re-announce
	doctor2 := NewClient(doctorID, entity.RoleDoctor, nopConn{})
	hub.Register(doctor2)
	assert.Empty(t, drain(t, patient))

	// Dropping one of two connections keeps the doctor online
	hub.Unregister(doctor1)
	assert.Empty(t, drain(t, patient))

	// Dropping the last one announces offline
	hub.Unregister(doctor2)
	frames = drain(t, patient)
	require.Len(t, frames, 1)
	assert.Equal(t, PresenceOffline, frames[0]["status"])
}

func TestHub_PatientConnectionsEmitNoPresence(t *testing.T) {
	hub := newTestHub(&mockMessageStore{})

	observer := NewClient(uuid.New(), entity.RolePatient, nopConn{})
	hub.Register(observer)

	patient := NewClient(uuid.New(), entity.RolePatient, nopConn{})
	hub.Register(patient)
	hub.Unregister(patient)

	assert.Empty(t, drain(t, observer))
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := newTestHub(&mockMessageStore{})

	observer := NewClient(uuid.New(), entity.RolePatient, nopConn{})
	hub.Register(observer)

	doctor := NewClient(uuid.New(), entity.RoleDoctor, nopConn{})
	hub.Register(doctor)
	drain(t, observer)

	hub.Unregister(doctor)
	frames := drain(t, observer)
	require.Len(t, frames, 1)
	assert.Equal(t, PresenceOffline, frames[0]["status"])

	// Duplicate close signal: no second offline event
	hub.Unregister(doctor)
	assert.Empty(t, drain(t, observer))
}

func TestHub_ChatMessagePersistsThenDelivers(t *testing.T) {
	store := &mockMessageStore{}
	hub := newTestHub(store)

	sender := NewClient(uuid.New(), entity.RolePatient, nopConn{})
	receiver := NewClient(uuid.New(), entity.RoleDoctor, nopConn{})
	hub.Register(sender)
	hub.Register(receiver)

	// Registering the doctor broadcast a presence event to every
	// connection, the receiver's own included
	drain(t, sender)
	presence := drain(t, receiver)
	require.Len(t, presence, 1)
	assert.Equal(t, EventTypeDoctorStatus, presence[0]["type"])
	assert.Equal(t, PresenceOnline, presence[0]["status"])

	appointmentID := uuid.New()
	raw := fmt.Sprintf(`{"type":"chat_message","appointment_id":%q,"receiver_id":%q,"message":"hello"}`,
		appointmentID, receiver.UserID)

	err := hub.HandleFrame(context.Background(), sender, []byte(raw))
	require.NoError(t, err)

	require.Len(t, store.saved, 1)
	assert.Equal(t, appointmentID, store.saved[0].AppointmentID)
	assert.Equal(t, sender.UserID, store.saved[0].SenderID)
	assert.Equal(t, "hello", store.saved[0].Message)

	frames := drain(t, receiver)
	require.Len(t, frames, 1)
	assert.Equal(t, EventTypeChatMessage, frames[0]["type"])
	data := frames[0]["data"].(map[string]interface{})
	assert.Equal(t, "hello", data["message"])
}

func TestHub_ChatMessagePersistenceFailureBlocksDelivery(t *testing.T) {
	store := &mockMessageStore{
		SaveMessageFunc: func(ctx context.Context, message *entity.ChatMessage) error {
			return errors.New("database down")
		},
	}
	hub := newTestHub(store)

	sender := NewClient(uuid.New(), entity.RolePatient, nopConn{})
	receiver := NewClient(uuid.New(), entity.RolePatient, nopConn{})
	hub.Register(sender)
	hub.Register(receiver)

	raw := fmt.Sprintf(`{"type":"chat_message","appointment_id":%q,"receiver_id":%q,"message":"hello"}`,
		uuid.New(), receiver.UserID)

	err := hub.HandleFrame(context.Background(), sender, []byte(raw))
	require.Error(t, err)

	// An unpersisted message must never reach the receiver
	assert.Empty(t, drain(t, receiver))
}

func TestHub_ChatMessageToOfflineReceiverIsDropped(t *testing.T) {
	store := &mockMessageStore{}
	hub := newTestHub(store)

	sender := NewClient(uuid.New(), entity.RolePatient, nopConn{})
	hub.Register(sender)

	raw := fmt.Sprintf(`{"type":"chat_message","appointment_id":%q,"receiver_id":%q,"message":"hello"}`,
		uuid.New(), uuid.New())

	// Still persisted, silently undelivered
	err := hub.HandleFrame(context.Background(), sender, []byte(raw))
	require.NoError(t, err)
	assert.Len(t, store.saved, 1)
}

func TestHub_VideoSignalRelaysVerbatim(t *testing.T) {
	hub := newTestHub(&mockMessageStore{})

	sender := NewClient(uuid.New(), entity.RolePatient, nopConn{})
	receiver := NewClient(uuid.New(), entity.RoleDoctor, nopConn{})
	hub.Register(sender)
	hub.Register(receiver)

	// Clear the presence frames from the doctor's own registration
	drain(t, sender)
	drain(t, receiver)

	raw := fmt.Sprintf(`{"type":"video_signal","to":%q,"signal":{"sdp":"offer","nested":{"a":1}}}`, receiver.UserID)
	err := hub.HandleFrame(context.Background(), sender, []byte(raw))
	require.NoError(t, err)

	frames := drain(t, receiver)
	require.Len(t, frames, 1)
	assert.Equal(t, EventTypeVideoSignal, frames[0]["type"])
	assert.Equal(t, sender.UserID.String(), frames[0]["from"])
	data := frames[0]["data"].(map[string]interface{})
	assert.Equal(t, "offer", data["sdp"])
}

func TestHub_MalformedAndUnknownFramesAreDiscarded(t *testing.T) {
	store := &mockMessageStore{}
	hub := newTestHub(store)

	sender := NewClient(uuid.New(), entity.RolePatient, nopConn{})
	hub.Register(sender)

	cases := [][]byte{
		[]byte(`not json at all`),
		[]byte(`{"type":"unknown_thing","payload":1}`),
		[]byte(`{"type":"chat_message","appointment_id":"not-a-uuid","receiver_id":"x","message":"hi"}`),
		[]byte(`{"type":"chat_message","appointment_id":"` + uuid.NewString() + `","receiver_id":"` + uuid.NewString() + `","message":""}`),
		[]byte(`{"type":"video_signal","to":"not-a-uuid","signal":{}}`),
	}

	for _, raw := range cases {
		assert.NoError(t, hub.HandleFrame(context.Background(), sender, raw))
	}
	assert.Empty(t, store.saved)
}

func TestHub_SendToUserReachesAllConnections(t *testing.T) {
	hub := newTestHub(&mockMessageStore{})

	userID := uuid.New()
	c1 := NewClient(userID, entity.RolePatient, nopConn{})
	c2 := NewClient(userID, entity.RolePatient, nopConn{})
	hub.Register(c1)
	hub.Register(c2)

	hub.SendToUser(userID, PaymentEvent{Type: EventTypePaymentConfirmed, AppointmentID: uuid.NewString()})

	assert.Len(t, drain(t, c1), 1)
	assert.Len(t, drain(t, c2), 1)
}

func TestHub_SendFailureDoesNotCloseConnection(t *testing.T) {
	hub := newTestHub(&mockMessageStore{})

	userID := uuid.New()
	c := NewClient(userID, entity.RolePatient, nopConn{})
	hub.Register(c)

	// Fill the buffer so further sends drop
	for i := 0; i < sendBufferSize+10; i++ {
		hub.SendToUser(userID, PaymentEvent{Type: EventTypePaymentConfirmed, AppointmentID: uuid.NewString()})
	}

	assert.True(t, hub.Registry().IsOnline(userID), "dropped frames must not evict the connection")
	assert.Len(t, drain(t, c), sendBufferSize)
}

func TestClient_TrySendAfterCloseReturnsFalse(t *testing.T) {
	c := NewClient(uuid.New(), entity.RolePatient, nopConn{})
	c.Close()
	assert.False(t, c.trySend([]byte(`{}`)))

	// Multiple closes are safe
	c.Close()
}
