package api

import (
	"net/http"
	"time"

	"github.com/argusone/argus-server/internal/auth"
	"github.com/argusone/argus-server/internal/models"
)

// ========== Usage analytics ==========

// HandleUsageAnalytics aggregates the tenant's usage between two month
// keys (inclusive), newest month first. Defaults to the last six months.
func (s *Server) HandleUsageAnalytics(w http.ResponseWriter, r *http.Request) {
	tc, _ := auth.FromContext(r.Context())

	now := timeNow()
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")

	if end == "" {
		end = models.MonthKey(now)
	}
	if start == "" {
		start = models.MonthKey(now.AddDate(0, -5, 0))
	}

	if !validMonthKey(start) || !validMonthKey(end) {
		s.respondError(w, http.StatusBadRequest, "bad_request", "start and end must be YYYY-MM")
		return
	}

	records, err := s.store.QueryUsage(r.Context(), tc.TenantID, start, end)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "internal", "failed to query usage")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"usage": records,
		"start": start,
		"end":   end,
	})
}

func validMonthKey(s string) bool {
	_, err := time.Parse("2006-01", s)
	return err == nil
}
