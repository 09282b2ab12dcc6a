package auth

import (
	"github.com/argusone/argus-server/internal/models"
)

// The guards are pure functions of the tenant context plus a parameter.
// They perform no I/O, which keeps them independently testable; the HTTP
// layer maps their errors to 403 responses.

// CheckRole verifies that the context carries a user whose role is at
// least minRole in the viewer < user < manager < admin hierarchy.
func CheckRole(tc *TenantContext, minRole models.UserRole) error {
	if tc == nil || tc.User == nil {
		return ErrUnauthenticatedUser
	}
	if tc.User.Role.Rank() < minRole.Rank() {
		return ErrInsufficientRole
	}
	return nil
}

// CheckPermission verifies that the context carries a user holding the
// exact named permission. Permissions are independent of role.
func CheckPermission(tc *TenantContext, name string) error {
	if tc == nil || tc.User == nil {
		return ErrPermissionDenied
	}
	if !tc.User.Permissions.Contains(name) {
		return ErrPermissionDenied
	}
	return nil
}

// CheckTier verifies that the tenant's subscription tier is at least
// minTier in the basic < pro < enterprise hierarchy.
func CheckTier(tc *TenantContext, minTier models.SubscriptionTier) error {
	if tc == nil {
		return ErrTierUpgradeRequired
	}
	if tc.Tenant.Tier.Rank() < minTier.Rank() {
		return ErrTierUpgradeRequired
	}
	return nil
}
