package models

import (
	"time"

	"github.com/google/uuid"
)

// HubStatus represents hub liveness as reported by heartbeats
type HubStatus string

const (
	HubStatusOnline  HubStatus = "online"
	HubStatusOffline HubStatus = "offline"
)

// Valid reports whether the status is a known value.
func (s HubStatus) Valid() bool {
	switch s {
	case HubStatusOnline, HubStatusOffline:
		return true
	}
	return false
}

// Hub represents a physical edge device known through its heartbeats
type Hub struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	TenantID  int64  `json:"tenantId" db:"tenant_id"`
	HubSerial string `json:"hubSerial" db:"hub_serial"`

	Name            string `json:"name" db:"name"`
	FirmwareVersion string `json:"firmwareVersion,omitempty" db:"firmware_version"`
	IPAddress       string `json:"ipAddress,omitempty" db:"ip_address"`

	Status     HubStatus  `json:"status" db:"status"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty" db:"last_seen_at"`

	Metadata Variables `json:"metadata,omitempty" db:"metadata"`
}

// Camera represents a camera reported by a hub
type Camera struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	TenantID  int64  `json:"tenantId" db:"tenant_id"`
	HubSerial string `json:"hubSerial" db:"hub_serial"`

	Name       string `json:"name" db:"name"`
	Model      string `json:"model,omitempty" db:"model"`
	StreamURL  string `json:"streamUrl,omitempty" db:"stream_url"`
	IsEnabled  bool   `json:"isEnabled" db:"is_enabled"`
	Resolution string `json:"resolution,omitempty" db:"resolution"`

	Metadata Variables `json:"metadata,omitempty" db:"metadata"`
}
