package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/argusone/argus-server/internal/auth"
	"github.com/argusone/argus-server/internal/models"
	"github.com/argusone/argus-server/internal/storage"
	"github.com/argusone/argus-server/pkg/crypto"
)

// ========== Dashboard user handlers ==========

// HandleLogin exchanges tenant-user credentials for a session token
// pair. The route sits behind API-key authentication, so the email is
// only looked up within the resolved tenant.
func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	tc, _ := auth.FromContext(r.Context())

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "bad_request", "email and password are required")
		return
	}

	user, err := s.store.GetTenantUserByEmail(r.Context(), tc.TenantID, req.Email)
	if err != nil || !crypto.VerifyPassword(req.Password, user.PasswordHash) || !user.IsActive {
		s.respondError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}

	accessToken, refreshToken, err := s.jwt.GenerateTokenPair(user)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to generate tokens")
		return
	}

	// Stamp failure is not worth failing the login
	if err := s.store.UpdateTenantUserLastLogin(r.Context(), user.ID, timeNow()); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to stamp last login")
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int(s.jwt.AccessTokenTTL().Seconds()),
		"token_type":    "Bearer",
	})
}

// HandleCreateUser creates a tenant user with a hashed password
func (s *Server) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	tc, _ := auth.FromContext(r.Context())

	var req struct {
		Email       string            `json:"email"`
		Name        string            `json:"name"`
		Password    string            `json:"password"`
		Role        models.UserRole   `json:"role"`
		Permissions models.StringList `json:"permissions"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "bad_request", "email and password are required")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleViewer
	}
	if !req.Role.Valid() {
		s.respondError(w, http.StatusBadRequest, "bad_request", "invalid role")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to create user")
		return
	}

	user := &models.TenantUser{
		TenantID:     tc.TenantID,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         req.Role,
		Permissions:  req.Permissions,
		IsActive:     true,
	}

	err = s.store.CreateTenantUser(r.Context(), user)
	if err == storage.ErrDuplicateKey {
		s.respondError(w, http.StatusConflict, "duplicate_email", "a user with this email already exists")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to create user")
		return
	}

	s.respondJSON(w, http.StatusCreated, user)
}

// HandleListUsers lists the tenant's users
func (s *Server) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	tc, _ := auth.FromContext(r.Context())

	users, err := s.store.ListTenantUsers(r.Context(), tc.TenantID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to list users")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"total": len(users),
	})
}
