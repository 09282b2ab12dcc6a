package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/argusone/argus-server/internal/auth"
	"github.com/argusone/argus-server/internal/models"
	"github.com/argusone/argus-server/internal/storage"
)

// ========== Hub license handlers ==========

// HandleIssueHubLicense issues a hub license, capped by the tenant's
// maxHubs. The license key appears in this response only.
func (s *Server) HandleIssueHubLicense(w http.ResponseWriter, r *http.Request) {
	tc, _ := auth.FromContext(r.Context())

	var req struct {
		MaxCameras int               `json:"maxCameras"`
		Features   models.StringList `json:"features"`
		ExpiresAt  *time.Time        `json:"expiresAt"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if req.MaxCameras <= 0 {
		req.MaxCameras = tc.Tenant.MaxCameras
	}

	license := &models.HubLicense{
		TenantID:   tc.TenantID,
		MaxCameras: req.MaxCameras,
		Features:   req.Features,
		Status:     models.LicenseStatusActive,
		ExpiresAt:  req.ExpiresAt,
	}

	err := s.store.IssueHubLicense(r.Context(), license)
	if err == storage.ErrLimitExceeded {
		count, _ := s.store.CountHubLicenses(r.Context(), tc.TenantID)
		s.respondError(w, http.StatusForbidden, "limit_exceeded",
			fmt.Sprintf("hub license limit reached (%d of %d used)", count, tc.Tenant.MaxHubs))
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to issue license")
		return
	}

	s.respondJSON(w, http.StatusCreated, license)
}

// HandleListHubLicenses lists the tenant's licenses, keys omitted
func (s *Server) HandleListHubLicenses(w http.ResponseWriter, r *http.Request) {
	tc, _ := auth.FromContext(r.Context())

	licenses, err := s.store.ListHubLicenses(r.Context(), tc.TenantID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to list licenses")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"licenses": licenses,
		"total":    len(licenses),
	})
}

// HandleUpdateLicenseStatus moves a license between active, suspended
// and revoked
func (s *Server) HandleUpdateLicenseStatus(w http.ResponseWriter, r *http.Request) {
	tc, _ := auth.FromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid license id")
		return
	}

	var req struct {
		Status models.LicenseStatus `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if !req.Status.Valid() {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid status")
		return
	}

	err = s.store.UpdateHubLicenseStatus(r.Context(), tc.TenantID, id, req.Status)
	if err == storage.ErrNotFound {
		s.respondError(w, http.StatusNotFound, "not_found", "license not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to update license")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"licenseId": id,
		"status":    req.Status,
	})
}
