package models

import (
	"time"
)

// LicenseStatus represents a hub license lifecycle status
type LicenseStatus string

const (
	LicenseStatusActive    LicenseStatus = "active"
	LicenseStatusSuspended LicenseStatus = "suspended"
	LicenseStatusRevoked   LicenseStatus = "revoked"
)

// Valid reports whether the status is a known value.
func (s LicenseStatus) Valid() bool {
	switch s {
	case LicenseStatusActive, LicenseStatusSuspended, LicenseStatusRevoked:
		return true
	}
	return false
}

// HubLicense authorizes one physical hub to join one tenant
type HubLicense struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	TenantID int64 `json:"tenantId" db:"tenant_id"`

	// Globally unique, generated from the tenant slug plus a sequence
	// number and a timestamp
	HubSerial string `json:"hubSerial" db:"hub_serial"`

	// Secret. Returned exactly once at issuance.
	LicenseKey string `json:"licenseKey,omitempty" db:"license_key"`

	MaxCameras int        `json:"maxCameras" db:"max_cameras"`
	Features   StringList `json:"features" db:"features"`

	Status    LicenseStatus `json:"status" db:"status"`
	ExpiresAt *time.Time    `json:"expiresAt,omitempty" db:"expires_at"`
}

// Expired reports whether the license is past its expiry at the given time.
// A license without an expiry never expires.
func (l *HubLicense) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// Snapshot returns a copy of the license with the license key stripped.
func (l *HubLicense) Snapshot() HubLicense {
	c := *l
	c.LicenseKey = ""
	return c
}
