package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/argusone/argus-server/internal/models"
)

func contextWithUser(role models.UserRole, perms ...string) *TenantContext {
	return &TenantContext{
		TenantID: 1,
		Tenant:   models.Tenant{ID: 1, Tier: models.TierEnterprise},
		User: &models.TenantUser{
			ID:          7,
			TenantID:    1,
			Role:        role,
			Permissions: models.StringList(perms),
			IsActive:    true,
		},
	}
}

func TestCheckRole(t *testing.T) {
	assert.NoError(t, CheckRole(contextWithUser(models.RoleAdmin), models.RoleAdmin))
	assert.NoError(t, CheckRole(contextWithUser(models.RoleAdmin), models.RoleViewer))
	assert.NoError(t, CheckRole(contextWithUser(models.RoleManager), models.RoleUser))

	assert.ErrorIs(t, CheckRole(contextWithUser(models.RoleManager), models.RoleAdmin), ErrInsufficientRole)
	assert.ErrorIs(t, CheckRole(contextWithUser(models.RoleViewer), models.RoleUser), ErrInsufficientRole)
}

func TestCheckRoleWithoutUser(t *testing.T) {
	// A tenant-only API-key request carries no user: rejected regardless
	// of the tenant tier.
	tc := &TenantContext{
		TenantID: 1,
		Tenant:   models.Tenant{ID: 1, Tier: models.TierEnterprise},
	}

	assert.ErrorIs(t, CheckRole(tc, models.RoleViewer), ErrUnauthenticatedUser)
	assert.ErrorIs(t, CheckRole(nil, models.RoleViewer), ErrUnauthenticatedUser)
}

func TestCheckRoleUnknownRole(t *testing.T) {
	assert.ErrorIs(t, CheckRole(contextWithUser("superuser"), models.RoleViewer), ErrInsufficientRole)
}

func TestCheckPermission(t *testing.T) {
	tc := contextWithUser(models.RoleViewer, "cameras:write", "events:read")

	assert.NoError(t, CheckPermission(tc, "cameras:write"))
	assert.ErrorIs(t, CheckPermission(tc, "cameras:delete"), ErrPermissionDenied)
	assert.ErrorIs(t, CheckPermission(contextWithUser(models.RoleAdmin), "cameras:write"), ErrPermissionDenied)
	assert.ErrorIs(t, CheckPermission(&TenantContext{}, "cameras:write"), ErrPermissionDenied)
}

func TestCheckTier(t *testing.T) {
	basic := &TenantContext{Tenant: models.Tenant{Tier: models.TierBasic}}
	pro := &TenantContext{Tenant: models.Tenant{Tier: models.TierPro}}
	enterprise := &TenantContext{Tenant: models.Tenant{Tier: models.TierEnterprise}}

	assert.NoError(t, CheckTier(pro, models.TierPro))
	assert.NoError(t, CheckTier(enterprise, models.TierBasic))

	assert.ErrorIs(t, CheckTier(basic, models.TierPro), ErrTierUpgradeRequired)
	assert.ErrorIs(t, CheckTier(pro, models.TierEnterprise), ErrTierUpgradeRequired)
	assert.ErrorIs(t, CheckTier(nil, models.TierBasic), ErrTierUpgradeRequired)
}

func TestCheckTierUnknownTier(t *testing.T) {
	unknown := &TenantContext{Tenant: models.Tenant{Tier: "platinum"}}
	assert.ErrorIs(t, CheckTier(unknown, models.TierBasic), ErrTierUpgradeRequired)
}
