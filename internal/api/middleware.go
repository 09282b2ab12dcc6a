package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/argusone/argus-server/internal/auth"
	"github.com/argusone/argus-server/internal/config"
	"github.com/argusone/argus-server/internal/models"
	"github.com/argusone/argus-server/internal/storage"
)

// Request headers carrying credentials
const (
	headerAPIKey     = "X-API-Key"
	headerLicenseKey = "X-License-Key"
	headerHubSerial  = "X-Hub-Serial"

	queryAPIKey = "api_key"
)

// credentialFailureMessage is returned for every credential failure,
// regardless of which check failed internally. Distinguishing absent,
// wrong, inactive and expired credentials in responses would enable
// enumeration.
const credentialFailureMessage = "invalid or inactive credentials"

// authenticateAPIKey resolves the tenant for dashboard/tenant API
// traffic from the X-API-Key header (or api_key query parameter), and
// optionally a dashboard user from a Bearer token. On success it
// attaches the tenant context and meters usage once.
func (s *Server) authenticateAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get(headerAPIKey)
		if apiKey == "" {
			apiKey = r.URL.Query().Get(queryAPIKey)
		}
		if apiKey == "" {
			s.respondError(w, http.StatusUnauthorized, "unauthorized", credentialFailureMessage)
			return
		}

		tenant, err := s.store.GetActiveTenantByAPIKey(r.Context(), apiKey)
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusUnauthorized, "unauthorized", credentialFailureMessage)
			return
		}
		if err != nil {
			// Fail closed: a store failure never authenticates.
			log.Error().Err(err).Msg("Tenant lookup failed")
			s.respondError(w, http.StatusServiceUnavailable, "unavailable", "service temporarily unavailable")
			return
		}

		tc := &auth.TenantContext{
			TenantID: tenant.ID,
			Tenant:   tenant.Snapshot(),
		}

		// A Bearer token is optional on tenant routes: without one the
		// request acts for the tenant itself and the role/permission
		// guards will reject it.
		if token := bearerToken(r); token != "" {
			user, err := s.resolveUser(r, tenant.ID, token)
			if err != nil {
				s.respondError(w, http.StatusUnauthorized, "unauthorized", credentialFailureMessage)
				return
			}
			tc.User = user
		}

		s.recordUsage(r, tc.TenantID)

		next.ServeHTTP(w, r.WithContext(auth.WithTenantContext(r.Context(), tc)))
	})
}

// resolveUser validates a session token and loads its user. The token
// must belong to the authenticated tenant and the user must be active.
func (s *Server) resolveUser(r *http.Request, tenantID int64, token string) (*models.TenantUser, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, auth.ErrInvalidCredential
	}
	if claims.TenantID != tenantID {
		return nil, auth.ErrInvalidCredential
	}

	user, err := s.store.GetTenantUser(r.Context(), tenantID, claims.UserID)
	if err != nil {
		return nil, auth.ErrInvalidCredential
	}
	if !user.IsActive {
		return nil, auth.ErrInvalidCredential
	}

	return user, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// authenticateHubLicense resolves the tenant for device traffic from the
// X-License-Key and X-Hub-Serial headers. Expired licenses are rejected
// distinctly from unknown ones internally; the response is identical.
func (s *Server) authenticateHubLicense(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		licenseKey := r.Header.Get(headerLicenseKey)
		hubSerial := r.Header.Get(headerHubSerial)
		if licenseKey == "" || hubSerial == "" {
			s.respondError(w, http.StatusUnauthorized, "unauthorized", credentialFailureMessage)
			return
		}

		license, tenant, err := s.store.GetActiveLicense(r.Context(), licenseKey, hubSerial)
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusUnauthorized, "unauthorized", credentialFailureMessage)
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("License lookup failed")
			s.respondError(w, http.StatusServiceUnavailable, "unavailable", "service temporarily unavailable")
			return
		}

		if license.Expired(timeNow()) {
			log.Debug().Str("hub_serial", hubSerial).Msg("Expired hub license rejected")
			s.respondError(w, http.StatusUnauthorized, "unauthorized", credentialFailureMessage)
			return
		}

		licenseSnapshot := license.Snapshot()
		tc := &auth.TenantContext{
			TenantID:  tenant.ID,
			Tenant:    tenant.Snapshot(),
			HubSerial: license.HubSerial,
			License:   &licenseSnapshot,
		}

		s.recordUsage(r, tc.TenantID)

		next.ServeHTTP(w, r.WithContext(auth.WithTenantContext(r.Context(), tc)))
	})
}

// recordUsage meters the request for billing. Best-effort: a metering
// failure must never fail the request. Keyed on the route pattern so
// parameterized routes share one counter per month.
func (s *Server) recordUsage(r *http.Request, tenantID int64) {
	endpoint := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			endpoint = pattern
		}
	}

	month := models.MonthKey(timeNow())
	if err := s.store.RecordUsage(r.Context(), tenantID, endpoint, r.Method, month); err != nil {
		log.Warn().Err(err).Int64("tenant_id", tenantID).Msg("Failed to record usage")
	}
}

// requireRole gates a route on the user role hierarchy.
func (s *Server) requireRole(minRole models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, _ := auth.FromContext(r.Context())
			if err := auth.CheckRole(tc, minRole); err != nil {
				s.respondError(w, http.StatusForbidden, "forbidden", err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requirePermission gates a route on an explicit capability string.
func (s *Server) requirePermission(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, _ := auth.FromContext(r.Context())
			if err := auth.CheckPermission(tc, name); err != nil {
				s.respondError(w, http.StatusForbidden, "forbidden", err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireTier gates a route on the tenant subscription tier.
func (s *Server) requireTier(minTier models.SubscriptionTier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, _ := auth.FromContext(r.Context())
			if err := auth.CheckTier(tc, minTier); err != nil {
				s.respondError(w, http.StatusForbidden, "upgrade_required", err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitByTier annotates every authenticated response with the
// tenant's tier limit and, in enforce mode, rejects requests over the
// rolling per-minute window. Without Redis the limiter stays advisory.
func (s *Server) rateLimitByTier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc, ok := auth.FromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		limit := auth.LimitForTier(tc.Tenant.Tier)
		w.Header().Set("X-RateLimit-Tier", string(tc.Tenant.Tier))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))

		if s.limiter == nil || s.config.RateLimit.Mode != config.RateLimitModeEnforce {
			next.ServeHTTP(w, r)
			return
		}

		key := fmt.Sprintf("ratelimit:tenant:%d", tc.TenantID)
		allowed, remaining, err := s.limiter.Allow(r.Context(), key, limit)
		if err != nil {
			// Fail open: limiting is a protection, not an auth check.
			log.Warn().Err(err).Int64("tenant_id", tc.TenantID).Msg("Rate limit check failed")
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "60")
			s.respondError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "rate limit exceeded, retry later")
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		next.ServeHTTP(w, r)
	})
}
