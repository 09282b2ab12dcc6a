package models

import (
	"time"
)

// MonthKey returns the usage bucket key for the given time, e.g. "2026-08".
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// UsageRecord is one row per (tenant, endpoint, method, month) with a
// running request count. Rows accumulate and are never deleted.
type UsageRecord struct {
	TenantID int64  `json:"tenantId" db:"tenant_id"`
	Endpoint string `json:"endpoint" db:"endpoint"`
	Method   string `json:"method" db:"method"`
	Month    string `json:"month" db:"month"`

	RequestCount int64 `json:"totalRequests" db:"request_count"`

	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
