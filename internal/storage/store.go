package storage

import (
	"context"
	"errors"
	"time"

	"github.com/argusone/argus-server/internal/models"
)

// Common errors
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrDuplicateName = errors.New("duplicate name")
	ErrLimitExceeded = errors.New("limit exceeded")
	ErrInvalidData   = errors.New("invalid data")
)

// Store defines the storage interface
type Store interface {
	// Transaction support
	BeginTx(ctx context.Context) (Store, error)
	Commit() error
	Rollback() error

	// Tenant methods
	CreateTenant(ctx context.Context, tenant *models.Tenant) error
	GetTenant(ctx context.Context, id int64) (*models.Tenant, error)
	GetActiveTenantByAPIKey(ctx context.Context, apiKey string) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, tenant *models.Tenant) error
	UpdateTenantStatus(ctx context.Context, id int64, status models.TenantStatus) error
	ListTenants(ctx context.Context, limit, offset int) ([]*models.Tenant, int64, error)

	// Tenant user methods
	CreateTenantUser(ctx context.Context, user *models.TenantUser) error
	GetTenantUser(ctx context.Context, tenantID, id int64) (*models.TenantUser, error)
	GetTenantUserByEmail(ctx context.Context, tenantID int64, email string) (*models.TenantUser, error)
	ListTenantUsers(ctx context.Context, tenantID int64) ([]*models.TenantUser, error)
	UpdateTenantUserLastLogin(ctx context.Context, id int64, at time.Time) error

	// Hub license methods
	IssueHubLicense(ctx context.Context, license *models.HubLicense) error
	GetActiveLicense(ctx context.Context, licenseKey, hubSerial string) (*models.HubLicense, *models.Tenant, error)
	ListHubLicenses(ctx context.Context, tenantID int64) ([]*models.HubLicense, error)
	CountHubLicenses(ctx context.Context, tenantID int64) (int, error)
	UpdateHubLicenseStatus(ctx context.Context, tenantID, id int64, status models.LicenseStatus) error

	// Hub methods
	UpsertHubHeartbeat(ctx context.Context, hub *models.Hub) error
	ListHubs(ctx context.Context, tenantID int64) ([]*models.Hub, error)

	// Camera methods
	CreateCamera(ctx context.Context, camera *models.Camera) error
	ListCameras(ctx context.Context, tenantID int64) ([]*models.Camera, error)

	// Event methods
	CreateEvent(ctx context.Context, event *models.Event) error
	ListEvents(ctx context.Context, tenantID int64, filters models.EventFilters, limit, offset int) ([]*models.Event, int64, error)

	// Usage methods
	RecordUsage(ctx context.Context, tenantID int64, endpoint, method, month string) error
	QueryUsage(ctx context.Context, tenantID int64, startMonth, endMonth string) ([]*models.UsageRecord, error)

	// Close the store
	Close() error
}
