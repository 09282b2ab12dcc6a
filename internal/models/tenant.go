package models

import (
	"time"
)

// SubscriptionTier represents a tenant subscription level
type SubscriptionTier string

const (
	TierBasic      SubscriptionTier = "basic"
	TierPro        SubscriptionTier = "pro"
	TierEnterprise SubscriptionTier = "enterprise"
)

// tierOrder lists tiers from lowest to highest.
var tierOrder = []SubscriptionTier{TierBasic, TierPro, TierEnterprise}

// Rank returns the position of the tier in the ordered hierarchy,
// or -1 for an unknown tier.
func (t SubscriptionTier) Rank() int {
	for i, v := range tierOrder {
		if v == t {
			return i
		}
	}
	return -1
}

// Valid reports whether the tier is a known value.
func (t SubscriptionTier) Valid() bool {
	return t.Rank() >= 0
}

// TenantStatus represents a tenant lifecycle status
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusCancelled TenantStatus = "cancelled"
)

// Valid reports whether the status is a known value.
func (s TenantStatus) Valid() bool {
	switch s {
	case TenantStatusActive, TenantStatusSuspended, TenantStatusCancelled:
		return true
	}
	return false
}

// Tenant represents a customer account
type Tenant struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`

	// Secret. Returned exactly once at creation, omitted from every
	// subsequent read.
	APIKey string `json:"apiKey,omitempty" db:"api_key"`

	Tier SubscriptionTier `json:"tier" db:"tier"`

	// Resource caps, enforced at creation time of the resource
	MaxHubs    int `json:"maxHubs" db:"max_hubs"`
	MaxCameras int `json:"maxCameras" db:"max_cameras"`

	Status TenantStatus `json:"status" db:"status"`

	// Billing
	BillingEmail string `json:"billingEmail,omitempty" db:"billing_email"`
	BillingName  string `json:"billingName,omitempty" db:"billing_name"`

	Settings Variables `json:"settings,omitempty" db:"settings"`
}

// Snapshot returns a copy of the tenant with the API key stripped,
// safe to attach to a request context or serialize in responses.
func (t *Tenant) Snapshot() Tenant {
	c := *t
	c.APIKey = ""
	return c
}

// UserRole represents a tenant user role in the ordered hierarchy
type UserRole string

const (
	RoleViewer  UserRole = "viewer"
	RoleUser    UserRole = "user"
	RoleManager UserRole = "manager"
	RoleAdmin   UserRole = "admin"
)

var roleOrder = []UserRole{RoleViewer, RoleUser, RoleManager, RoleAdmin}

// Rank returns the position of the role in the ordered hierarchy,
// or -1 for an unknown role.
func (r UserRole) Rank() int {
	for i, v := range roleOrder {
		if v == r {
			return i
		}
	}
	return -1
}

// Valid reports whether the role is a known value.
func (r UserRole) Valid() bool {
	return r.Rank() >= 0
}

// TenantUser represents a human actor scoped to one tenant
type TenantUser struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	TenantID int64  `json:"tenantId" db:"tenant_id"`
	Email    string `json:"email" db:"email"`
	Name     string `json:"name" db:"name"`

	PasswordHash string `json:"-" db:"password_hash"`

	Role UserRole `json:"role" db:"role"`

	// Explicit capability strings, independent of role
	Permissions StringList `json:"permissions" db:"permissions"`

	IsActive    bool       `json:"isActive" db:"is_active"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}
