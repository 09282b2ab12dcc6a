package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/argusone/argus-server/internal/models"
)

// setupAPIRoutes sets up API v1 routes. Every route names its full guard
// chain inline so the authentication and authorization sequence is
// visible at one call site.
func (s *Server) setupAPIRoutes(r chi.Router) {
	r.Get("/health", s.HandleHealth)

	// Tenant signup (public); the response is the only read that carries
	// the API key
	r.Post("/tenants", s.HandleCreateTenant)

	// Dashboard user sessions
	r.With(s.authenticateAPIKey, s.rateLimitByTier).
		Post("/auth/login", s.HandleLogin)

	// Tenant routes (API key)
	r.With(s.authenticateAPIKey, s.rateLimitByTier).
		Get("/tenant/info", s.HandleTenantInfo)
	r.With(s.authenticateAPIKey, s.rateLimitByTier, s.requireRole(models.RoleAdmin)).
		Put("/tenant/info", s.HandleUpdateTenant)
	r.With(s.authenticateAPIKey, s.rateLimitByTier, s.requireRole(models.RoleAdmin)).
		Put("/tenant/status", s.HandleUpdateTenantStatus)

	r.With(s.authenticateAPIKey, s.rateLimitByTier, s.requireRole(models.RoleAdmin)).
		Post("/tenant/hub-licenses", s.HandleIssueHubLicense)
	r.With(s.authenticateAPIKey, s.rateLimitByTier).
		Get("/tenant/hub-licenses", s.HandleListHubLicenses)
	r.With(s.authenticateAPIKey, s.rateLimitByTier, s.requireRole(models.RoleAdmin)).
		Put("/tenant/hub-licenses/{id}/status", s.HandleUpdateLicenseStatus)

	r.With(s.authenticateAPIKey, s.rateLimitByTier).
		Get("/tenant/hubs", s.HandleListHubs)
	r.With(s.authenticateAPIKey, s.rateLimitByTier).
		Get("/tenant/cameras", s.HandleListCameras)
	r.With(s.authenticateAPIKey, s.rateLimitByTier).
		Get("/tenant/events", s.HandleListEvents)

	r.With(s.authenticateAPIKey, s.rateLimitByTier, s.requireRole(models.RoleAdmin)).
		Post("/tenant/users", s.HandleCreateUser)
	r.With(s.authenticateAPIKey, s.rateLimitByTier, s.requireRole(models.RoleManager)).
		Get("/tenant/users", s.HandleListUsers)

	r.With(s.authenticateAPIKey, s.rateLimitByTier, s.requireTier(models.TierPro)).
		Get("/tenant/analytics/usage", s.HandleUsageAnalytics)

	// Hub routes (license key + hub serial)
	r.With(s.authenticateHubLicense, s.rateLimitByTier).
		Post("/hub/heartbeat", s.HandleHeartbeat)
	r.With(s.authenticateHubLicense, s.rateLimitByTier).
		Post("/hub/cameras", s.HandleReportCamera)
	r.With(s.authenticateHubLicense, s.rateLimitByTier).
		Post("/hub/events", s.HandleReportEvent)
}
