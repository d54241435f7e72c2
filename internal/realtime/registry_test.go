package realtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"telehealth-backend/internal/domain/entity"
)

type nopConn struct{}

func (nopConn) WriteMessage(data []byte) error { return nil }
func (nopConn) Close() error                   { return nil }

func TestRegistry_AddFirstConnection(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()

	c1 := NewClient(userID, entity.RoleDoctor, nopConn{})
	c2 := NewClient(userID, entity.RoleDoctor, nopConn{})

	assert.True(t, registry.Add(c1), "first connection should be reported as first")
	assert.False(t, registry.Add(c2), "second connection should not be reported as first")
	assert.True(t, registry.IsOnline(userID))
}

func TestRegistry_RemoveLastConnection(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()

	c1 := NewClient(userID, entity.RoleDoctor, nopConn{})
	c2 := NewClient(userID, entity.RoleDoctor, nopConn{})
	registry.Add(c1)
	registry.Add(c2)

	removed, last := registry.Remove(c1)
	assert.True(t, removed)
	assert.False(t, last, "user still has another connection")
	assert.True(t, registry.IsOnline(userID))

	removed, last = registry.Remove(c2)
	assert.True(t, removed)
	assert.True(t, last)
	assert.False(t, registry.IsOnline(userID))
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()

	c := NewClient(userID, entity.RoleDoctor, nopConn{})
	registry.Add(c)

	removed, last := registry.Remove(c)
	assert.True(t, removed)
	assert.True(t, last)

	// A duplicate close signal must be a no-op
	removed, last = registry.Remove(c)
	assert.False(t, removed)
	assert.False(t, last)
}

func TestRegistry_RemoveUnknownClient(t *testing.T) {
	registry := NewRegistry()

	c := NewClient(uuid.New(), entity.RolePatient, nopConn{})
	removed, last := registry.Remove(c)
	assert.False(t, removed)
	assert.False(t, last)
}

func TestRegistry_NoEmptyEntryAfterLastRemove(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()

	c := NewClient(userID, entity.RolePatient, nopConn{})
	registry.Add(c)
	registry.Remove(c)

	// An empty connection set must not linger as an entry
	assert.False(t, registry.IsOnline(userID))
	assert.Empty(t, registry.ConnectionsFor(userID))
	assert.Empty(t, registry.Snapshot())
}

func TestRegistry_ConnectionsForReturnsSnapshot(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()

	c1 := NewClient(userID, entity.RolePatient, nopConn{})
	c2 := NewClient(userID, entity.RolePatient, nopConn{})
	registry.Add(c1)
	registry.Add(c2)

	conns := registry.ConnectionsFor(userID)
	assert.Len(t, conns, 2)

	// Mutating the registry must not affect the returned slice
	registry.Remove(c1)
	assert.Len(t, conns, 2)
	assert.Len(t, registry.ConnectionsFor(userID), 1)
}

func TestRegistry_OnlineDoctorCount(t *testing.T) {
	registry := NewRegistry()

	doctorA := uuid.New()
	doctorB := uuid.New()
	patient := uuid.New()

	registry.Add(NewClient(doctorA, entity.RoleDoctor, nopConn{}))
	registry.Add(NewClient(doctorA, entity.RoleDoctor, nopConn{}))
	registry.Add(NewClient(doctorB, entity.RoleDoctor, nopConn{}))
	registry.Add(NewClient(patient, entity.RolePatient, nopConn{}))

	// Two distinct doctors online, multi-device counted once
	assert.Equal(t, 2, registry.OnlineDoctorCount())
}
