// Package auth holds the multi-tenant authentication and authorization
// core: the request-scoped tenant context, the credential error taxonomy,
// the role/permission/tier guards and the tier rate-limit table.
package auth

import (
	"context"

	"github.com/argusone/argus-server/internal/models"
)

// TenantContext is the resolved identity attached to a request after
// authentication. It is immutable and exclusively owned by the request.
type TenantContext struct {
	TenantID int64

	// Read-only snapshot of the tenant, API key stripped
	Tenant models.Tenant

	// Resolved dashboard user, nil for tenant-only API-key requests
	// and for hub traffic
	User *models.TenantUser

	// Set for hub-license traffic
	HubSerial string
	License   *models.HubLicense
}

type contextKey struct{}

// WithTenantContext returns a copy of ctx carrying the tenant context.
func WithTenantContext(ctx context.Context, tc *TenantContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext extracts the tenant context attached by the authentication
// middleware, if any.
func FromContext(ctx context.Context) (*TenantContext, bool) {
	tc, ok := ctx.Value(contextKey{}).(*TenantContext)
	return tc, ok
}
