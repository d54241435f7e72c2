package entity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

// The roles table is seeded by migration, not automigrated, so the model
// must map exactly onto its columns.
func TestRole_SchemaColumns(t *testing.T) {
	s, err := schema.Parse(&Role{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	assert.Equal(t, "roles", s.Table)

	for fieldName, column := range map[string]string{
		"ID":        "id",
		"Name":      "name",
		"CreatedAt": "created_at",
	} {
		field := s.LookUpField(fieldName)
		require.NotNil(t, field, fieldName)
		assert.Equal(t, column, field.DBName)
	}
}

func TestRoleName(t *testing.T) {
	assert.Equal(t, RoleAdmin, RoleName(RoleIDAdmin))
	assert.Equal(t, RoleDoctor, RoleName(RoleIDDoctor))
	assert.Equal(t, RolePatient, RoleName(RoleIDPatient))

	// Unknown IDs fall back to the least privileged role
	assert.Equal(t, RolePatient, RoleName(99))
}
