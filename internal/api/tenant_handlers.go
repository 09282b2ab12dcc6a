package api

import (
	"encoding/json"
	"net/http"

	"github.com/argusone/argus-server/internal/auth"
	"github.com/argusone/argus-server/internal/models"
	"github.com/argusone/argus-server/internal/storage"
)

// ========== Tenant handlers ==========

// HandleCreateTenant handles tenant signup. The response includes the
// API key exactly once; every subsequent read omits it.
func (s *Server) HandleCreateTenant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string                  `json:"name"`
		Tier         models.SubscriptionTier `json:"tier"`
		MaxHubs      int                     `json:"maxHubs"`
		MaxCameras   int                     `json:"maxCameras"`
		BillingEmail string                  `json:"billingEmail"`
		BillingName  string                  `json:"billingName"`
		Settings     models.Variables        `json:"settings"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}
	if req.Tier == "" {
		req.Tier = models.TierBasic
	}
	if !req.Tier.Valid() {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid subscription tier")
		return
	}
	if req.MaxHubs <= 0 || req.MaxCameras <= 0 {
		s.respondError(w, http.StatusBadRequest, "bad_request", "resource caps must be positive")
		return
	}

	tenant := &models.Tenant{
		Name:         req.Name,
		Tier:         req.Tier,
		MaxHubs:      req.MaxHubs,
		MaxCameras:   req.MaxCameras,
		Status:       models.TenantStatusActive,
		BillingEmail: req.BillingEmail,
		BillingName:  req.BillingName,
		Settings:     req.Settings,
	}

	err := s.store.CreateTenant(r.Context(), tenant)
	if err == storage.ErrDuplicateName {
		s.respondError(w, http.StatusConflict, "duplicate_name", "a tenant with a similar name already exists")
		return
	}
	if err == storage.ErrInvalidData {
		s.respondError(w, http.StatusBadRequest, "bad_request", "name must contain letters or digits")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to create tenant")
		return
	}

	s.respondJSON(w, http.StatusCreated, tenant)
}

// HandleTenantInfo returns the tenant snapshot plus resource limits
func (s *Server) HandleTenantInfo(w http.ResponseWriter, r *http.Request) {
	tc, _ := auth.FromContext(r.Context())

	licenseCount, err := s.store.CountHubLicenses(r.Context(), tc.TenantID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to load tenant info")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"tenant": tc.Tenant,
		"limits": map[string]interface{}{
			"maxHubs":       tc.Tenant.MaxHubs,
			"maxCameras":    tc.Tenant.MaxCameras,
			"hubsUsed":      licenseCount,
			"ratePerMinute": auth.LimitForTier(tc.Tenant.Tier),
		},
	})
}

// HandleUpdateTenant updates mutable tenant fields
func (s *Server) HandleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	tc, _ := auth.FromContext(r.Context())

	var req struct {
		Name         *string                  `json:"name"`
		Tier         *models.SubscriptionTier `json:"tier"`
		MaxHubs      *int                     `json:"maxHubs"`
		MaxCameras   *int                     `json:"maxCameras"`
		BillingEmail *string                  `json:"billingEmail"`
		BillingName  *string                  `json:"billingName"`
		Settings     models.Variables         `json:"settings"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	tenant, err := s.store.GetTenant(r.Context(), tc.TenantID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to load tenant")
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			s.respondError(w, http.StatusBadRequest, "bad_request", "name cannot be empty")
			return
		}
		tenant.Name = *req.Name
	}
	if req.Tier != nil {
		if !req.Tier.Valid() {
			s.respondError(w, http.StatusBadRequest, "bad_request", "invalid subscription tier")
			return
		}
		tenant.Tier = *req.Tier
	}
	if req.MaxHubs != nil {
		if *req.MaxHubs <= 0 {
			s.respondError(w, http.StatusBadRequest, "bad_request", "maxHubs must be positive")
			return
		}
		tenant.MaxHubs = *req.MaxHubs
	}
	if req.MaxCameras != nil {
		if *req.MaxCameras <= 0 {
			s.respondError(w, http.StatusBadRequest, "bad_request", "maxCameras must be positive")
			return
		}
		tenant.MaxCameras = *req.MaxCameras
	}
	if req.BillingEmail != nil {
		tenant.BillingEmail = *req.BillingEmail
	}
	if req.BillingName != nil {
		tenant.BillingName = *req.BillingName
	}
	if req.Settings != nil {
		tenant.Settings = req.Settings
	}

	if err := s.store.UpdateTenant(r.Context(), tenant); err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to update tenant")
		return
	}

	s.respondJSON(w, http.StatusOK, tenant.Snapshot())
}

// HandleUpdateTenantStatus moves the tenant to a new status. No
// transition table: any status may move to any other.
func (s *Server) HandleUpdateTenantStatus(w http.ResponseWriter, r *http.Request) {
	tc, _ := auth.FromContext(r.Context())

	var req struct {
		Status models.TenantStatus `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if !req.Status.Valid() {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid status")
		return
	}

	if err := s.store.UpdateTenantStatus(r.Context(), tc.TenantID, req.Status); err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to update status")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"tenantId": tc.TenantID,
		"status":   req.Status,
	})
}
