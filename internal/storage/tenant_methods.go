package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/argusone/argus-server/internal/models"
	"github.com/argusone/argus-server/pkg/keygen"
)

// maxSlugAttempts bounds slug disambiguation before giving up with
// ErrDuplicateName.
const maxSlugAttempts = 20

// isUniqueViolation reports whether err is a unique-constraint violation
// on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") && strings.Contains(msg, constraint)
}

// ========== Tenant Methods ==========

// CreateTenant creates a new tenant: derives a unique slug from the name,
// generates the API key and persists the record. The returned tenant is the
// only read that ever carries the API key.
func (s *PostgresStore) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	base := keygen.Slugify(tenant.Name)
	if base == "" {
		return ErrInvalidData
	}

	now := time.Now()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now
	if tenant.Status == "" {
		tenant.Status = models.TenantStatusActive
	}

	query := `
        INSERT INTO tenants (
            created_at, updated_at, name, slug, api_key, tier,
            max_hubs, max_cameras, status, billing_email, billing_name, settings
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
        ) RETURNING id`

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug := base
		if attempt > 0 {
			slug = fmt.Sprintf("%s-%d", base, attempt+1)
		}

		apiKey, err := keygen.GenerateAPIKey()
		if err != nil {
			return fmt.Errorf("generate api key: %w", err)
		}

		err = s.getDB().QueryRowContext(ctx, query,
			tenant.CreatedAt, tenant.UpdatedAt, tenant.Name, slug, apiKey,
			tenant.Tier, tenant.MaxHubs, tenant.MaxCameras, tenant.Status,
			tenant.BillingEmail, tenant.BillingName, tenant.Settings,
		).Scan(&tenant.ID)

		if err == nil {
			tenant.Slug = slug
			tenant.APIKey = apiKey
			return nil
		}

		if isUniqueViolation(err, "tenants_slug") {
			continue
		}
		if isUniqueViolation(err, "tenants_api_key") {
			// Fresh key on the next attempt, same slug
			attempt--
			continue
		}
		return err
	}

	return ErrDuplicateName
}

// tenantColumns are the columns read back for tenants. The API key is
// deliberately absent: it is only surfaced by CreateTenant.
const tenantColumns = `
    id, created_at, updated_at, name, slug, tier,
    max_hubs, max_cameras, status, billing_email, billing_name, settings`

const (
	getTenantQuery = `SELECT` + tenantColumns + `
    FROM tenants WHERE id = $1`

	getActiveTenantByAPIKeyQuery = `SELECT` + tenantColumns + `
    FROM tenants WHERE api_key = $1 AND status = $2`

	listTenantsQuery = `SELECT` + tenantColumns + `
    FROM tenants ORDER BY created_at DESC LIMIT $1 OFFSET $2`
)

func scanTenant(row interface{ Scan(dest ...interface{}) error }) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	err := row.Scan(
		&tenant.ID, &tenant.CreatedAt, &tenant.UpdatedAt, &tenant.Name,
		&tenant.Slug, &tenant.Tier, &tenant.MaxHubs, &tenant.MaxCameras,
		&tenant.Status, &tenant.BillingEmail, &tenant.BillingName, &tenant.Settings,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// GetTenant gets a tenant by ID
func (s *PostgresStore) GetTenant(ctx context.Context, id int64) (*models.Tenant, error) {
	return scanTenant(s.getDB().QueryRowContext(ctx, getTenantQuery, id))
}

// GetActiveTenantByAPIKey resolves an API key to its tenant. The status
// filter is part of the lookup itself so an inactive tenant can never be
// observed between lookup and rejection.
func (s *PostgresStore) GetActiveTenantByAPIKey(ctx context.Context, apiKey string) (*models.Tenant, error) {
	return scanTenant(s.getDB().QueryRowContext(ctx, getActiveTenantByAPIKeyQuery, apiKey, models.TenantStatusActive))
}

// UpdateTenant updates mutable tenant fields. Slug and API key are fixed
// at creation.
func (s *PostgresStore) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	tenant.UpdatedAt = time.Now()

	query := `
        UPDATE tenants SET
            updated_at = $2, name = $3, tier = $4, max_hubs = $5,
            max_cameras = $6, billing_email = $7, billing_name = $8, settings = $9
        WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		tenant.ID, tenant.UpdatedAt, tenant.Name, tenant.Tier, tenant.MaxHubs,
		tenant.MaxCameras, tenant.BillingEmail, tenant.BillingName, tenant.Settings,
	)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateTenantStatus moves a tenant to the given status. Any status may
// move to any other.
func (s *PostgresStore) UpdateTenantStatus(ctx context.Context, id int64, status models.TenantStatus) error {
	query := `UPDATE tenants SET updated_at = $2, status = $3 WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query, id, time.Now(), status)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTenants lists tenants
func (s *PostgresStore) ListTenants(ctx context.Context, limit, offset int) ([]*models.Tenant, int64, error) {
	var total int64
	if err := s.getDB().QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.getDB().QueryContext(ctx, listTenantsQuery, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, 0, err
		}
		tenants = append(tenants, tenant)
	}

	return tenants, total, rows.Err()
}

// ========== Tenant User Methods ==========

// CreateTenantUser creates a tenant user. PasswordHash must already be
// a bcrypt hash.
func (s *PostgresStore) CreateTenantUser(ctx context.Context, user *models.TenantUser) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
        INSERT INTO tenant_users (
            created_at, updated_at, tenant_id, email, name,
            password_hash, role, permissions, is_active
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9
        ) RETURNING id`

	err := s.getDB().QueryRowContext(ctx, query,
		user.CreatedAt, user.UpdatedAt, user.TenantID, user.Email, user.Name,
		user.PasswordHash, user.Role, user.Permissions, user.IsActive,
	).Scan(&user.ID)

	if isUniqueViolation(err, "tenant_users_tenant_id_email") {
		return ErrDuplicateKey
	}
	return err
}

const tenantUserColumns = `
    id, created_at, updated_at, tenant_id, email, name,
    password_hash, role, permissions, is_active, last_login_at`

const (
	getTenantUserQuery = `SELECT` + tenantUserColumns + `
    FROM tenant_users WHERE tenant_id = $1 AND id = $2`

	getTenantUserByEmailQuery = `SELECT` + tenantUserColumns + `
    FROM tenant_users WHERE tenant_id = $1 AND lower(email) = lower($2)`

	listTenantUsersQuery = `SELECT` + tenantUserColumns + `
    FROM tenant_users WHERE tenant_id = $1 ORDER BY created_at`
)

func scanTenantUser(row interface{ Scan(dest ...interface{}) error }) (*models.TenantUser, error) {
	user := &models.TenantUser{}
	err := row.Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt, &user.TenantID,
		&user.Email, &user.Name, &user.PasswordHash, &user.Role,
		&user.Permissions, &user.IsActive, &user.LastLoginAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetTenantUser gets a tenant user by ID, scoped to the tenant
func (s *PostgresStore) GetTenantUser(ctx context.Context, tenantID, id int64) (*models.TenantUser, error) {
	return scanTenantUser(s.getDB().QueryRowContext(ctx, getTenantUserQuery, tenantID, id))
}

// GetTenantUserByEmail gets a tenant user by email within one tenant
func (s *PostgresStore) GetTenantUserByEmail(ctx context.Context, tenantID int64, email string) (*models.TenantUser, error) {
	return scanTenantUser(s.getDB().QueryRowContext(ctx, getTenantUserByEmailQuery, tenantID, email))
}

// ListTenantUsers lists a tenant's users
func (s *PostgresStore) ListTenantUsers(ctx context.Context, tenantID int64) ([]*models.TenantUser, error) {
	rows, err := s.getDB().QueryContext(ctx, listTenantUsersQuery, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.TenantUser
	for rows.Next() {
		user, err := scanTenantUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// UpdateTenantUserLastLogin stamps the last successful login
func (s *PostgresStore) UpdateTenantUserLastLogin(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE tenant_users SET updated_at = $2, last_login_at = $2 WHERE id = $1`
	_, err := s.getDB().ExecContext(ctx, query, id, at)
	return err
}
