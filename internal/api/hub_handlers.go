package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/argusone/argus-server/internal/auth"
	"github.com/argusone/argus-server/internal/models"
	"github.com/argusone/argus-server/internal/storage"
)

// ========== Hub (device) handlers ==========

// HandleHeartbeat upserts hub liveness for the authenticated license
func (s *Server) HandleHeartbeat(w http.ResponseWriter, r *http.Request) {
	tc, _ := auth.FromContext(r.Context())

	var req struct {
		Name            string           `json:"name"`
		FirmwareVersion string           `json:"firmwareVersion"`
		IPAddress       string           `json:"ipAddress"`
		Status          models.HubStatus `json:"status"`
		Metadata        models.Variables `json:"metadata"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.Status == "" {
		req.Status = models.HubStatusOnline
	}
	if !req.Status.Valid() {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid status")
		return
	}

	hub := &models.Hub{
		TenantID:        tc.TenantID,
		HubSerial:       tc.HubSerial,
		Name:            req.Name,
		FirmwareVersion: req.FirmwareVersion,
		IPAddress:       req.IPAddress,
		Status:          req.Status,
		Metadata:        req.Metadata,
	}

	if err := s.store.UpsertHubHeartbeat(r.Context(), hub); err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to record heartbeat")
		return
	}

	s.publisher.PublishHeartbeat(hub)

	s.respondJSON(w, http.StatusOK, hub)
}

// HandleReportCamera registers a camera reported by the hub, capped by
// the tenant's maxCameras
func (s *Server) HandleReportCamera(w http.ResponseWriter, r *http.Request) {
	tc, _ := auth.FromContext(r.Context())

	var req struct {
		Name       string           `json:"name"`
		Model      string           `json:"model"`
		StreamURL  string           `json:"streamUrl"`
		Resolution string           `json:"resolution"`
		Metadata   models.Variables `json:"metadata"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}

	camera := &models.Camera{
		TenantID:   tc.TenantID,
		HubSerial:  tc.HubSerial,
		Name:       req.Name,
		Model:      req.Model,
		StreamURL:  req.StreamURL,
		IsEnabled:  true,
		Resolution: req.Resolution,
		Metadata:   req.Metadata,
	}

	err := s.store.CreateCamera(r.Context(), camera)
	if err == storage.ErrLimitExceeded {
		s.respondError(w, http.StatusForbidden, "limit_exceeded",
			fmt.Sprintf("camera limit reached (max %d)", tc.Tenant.MaxCameras))
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to register camera")
		return
	}

	s.respondJSON(w, http.StatusCreated, camera)
}

// HandleReportEvent stores a device-reported event and publishes it
func (s *Server) HandleReportEvent(w http.ResponseWriter, r *http.Request) {
	tc, _ := auth.FromContext(r.Context())

	var req struct {
		CameraID    *uuid.UUID        `json:"cameraId"`
		Type        models.EventType  `json:"type"`
		Level       models.EventLevel `json:"level"`
		Description string            `json:"description"`
		Details     models.Variables  `json:"details"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.Type == "" {
		s.respondError(w, http.StatusBadRequest, "bad_request", "type is required")
		return
	}

	event := &models.Event{
		TenantID:    tc.TenantID,
		HubSerial:   tc.HubSerial,
		CameraID:    req.CameraID,
		Type:        req.Type,
		Level:       req.Level,
		Description: req.Description,
		Details:     req.Details,
	}

	if err := s.store.CreateEvent(r.Context(), event); err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to store event")
		return
	}

	s.publisher.PublishEvent(event)

	s.respondJSON(w, http.StatusCreated, event)
}

// ========== Tenant-side fleet listings ==========

// HandleListHubs lists the tenant's hubs
func (s *Server) HandleListHubs(w http.ResponseWriter, r *http.Request) {
	tc, _ := auth.FromContext(r.Context())

	hubs, err := s.store.ListHubs(r.Context(), tc.TenantID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to list hubs")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"hubs":  hubs,
		"total": len(hubs),
	})
}

// HandleListCameras lists the tenant's cameras
func (s *Server) HandleListCameras(w http.ResponseWriter, r *http.Request) {
	tc, _ := auth.FromContext(r.Context())

	cameras, err := s.store.ListCameras(r.Context(), tc.TenantID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to list cameras")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"cameras": cameras,
		"total":   len(cameras),
	})
}

// HandleListEvents lists the tenant's events with optional filters
func (s *Server) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	tc, _ := auth.FromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	var filters models.EventFilters
	if serial := r.URL.Query().Get("hub_serial"); serial != "" {
		filters.HubSerial = &serial
	}
	if t := r.URL.Query().Get("type"); t != "" {
		eventType := models.EventType(t)
		filters.Type = &eventType
	}
	if since := r.URL.Query().Get("since"); since != "" {
		ts, err := time.Parse(time.RFC3339, since)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "bad_request", "since must be RFC 3339")
			return
		}
		filters.Since = &ts
	}

	eventList, total, err := s.store.ListEvents(r.Context(), tc.TenantID, filters, limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to list events")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"events": eventList,
		"total":  total,
	})
}
