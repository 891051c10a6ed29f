package api

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSpec(t *testing.T) {
	doc, err := LoadSpec(context.Background())
	require.NoError(t, err)

	for _, path := range []string{
		"/api/v1/auth/register",
		"/api/v1/auth/login",
		"/api/v1/auth/me",
		"/api/v1/auth/password",
		"/api/v1/auth/users",
		"/api/v1/auth/users/{id}",
		"/api/v1/campaigns",
		"/api/v1/campaigns/{id}",
		"/api/v1/campaigns/{id}/pause",
		"/api/v1/campaigns/{id}/activate",
		"/health",
	} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}

	role := doc.Components.Schemas["UserRole"]
	require.NotNil(t, role)
	assert.ElementsMatch(t, []interface{}{"admin", "manager", "analyst", "viewer"}, role.Value.Enum)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "bearerAuth")
}
