package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argusone/argus-server/internal/config"
	"github.com/argusone/argus-server/internal/models"
)

func testJWTManager() *JWTManager {
	return NewJWTManager(&config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := testJWTManager()

	user := &models.TenantUser{
		ID:       42,
		TenantID: 7,
		Email:    "ops@acme.example",
		Role:     models.RoleManager,
	}

	access, refresh, err := m.GenerateTokenPair(user)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := m.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, int64(7), claims.TenantID)
	assert.Equal(t, "ops@acme.example", claims.Email)
	assert.Equal(t, models.RoleManager, claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	m := testJWTManager()
	other := NewJWTManager(&config.JWTConfig{
		Secret:         "other-secret",
		AccessTokenTTL: 15 * time.Minute,
	})

	access, _, err := m.GenerateTokenPair(&models.TenantUser{ID: 1, TenantID: 1})
	require.NoError(t, err)

	_, err = other.ValidateToken(access)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	m := testJWTManager()

	_, err := m.ValidateToken("not-a-token")
	assert.Error(t, err)
}
