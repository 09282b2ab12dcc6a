package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/argusone/argus-server/internal/models"
	"github.com/argusone/argus-server/pkg/keygen"
)

// ========== Hub License Methods ==========

// IssueHubLicense issues a new license for license.TenantID, generating
// the hub serial and license key. The tenant row is locked for the
// duration of the count-and-insert so two concurrent issuances cannot
// both pass the maxHubs cap.
func (s *PostgresStore) IssueHubLicense(ctx context.Context, license *models.HubLicense) error {
	txStore, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	tx := txStore.(*PostgresStore)
	defer tx.Rollback()

	var slug string
	var maxHubs int
	err = tx.getDB().QueryRowContext(ctx,
		`SELECT slug, max_hubs FROM tenants WHERE id = $1 FOR UPDATE`,
		license.TenantID,
	).Scan(&slug, &maxHubs)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	count, err := tx.CountHubLicenses(ctx, license.TenantID)
	if err != nil {
		return err
	}
	if count >= maxHubs {
		return ErrLimitExceeded
	}

	now := time.Now()
	license.CreatedAt = now
	license.UpdatedAt = now
	if license.Status == "" {
		license.Status = models.LicenseStatusActive
	}

	query := `
        INSERT INTO hub_licenses (
            created_at, updated_at, tenant_id, hub_serial, license_key,
            max_cameras, features, status, expires_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9
        ) RETURNING id`

	// The generator gives no absolute uniqueness guarantee, so retry on
	// key or serial conflict.
	for attempt := 0; attempt < 3; attempt++ {
		licenseKey, err := keygen.GenerateLicenseKey()
		if err != nil {
			return fmt.Errorf("generate license key: %w", err)
		}
		serial := keygen.GenerateHubSerial(slug, count+1)

		err = tx.getDB().QueryRowContext(ctx, query,
			license.CreatedAt, license.UpdatedAt, license.TenantID, serial,
			licenseKey, license.MaxCameras, license.Features, license.Status,
			license.ExpiresAt,
		).Scan(&license.ID)

		if err == nil {
			license.HubSerial = serial
			license.LicenseKey = licenseKey
			return tx.Commit()
		}

		if isUniqueViolation(err, "hub_licenses_license_key") ||
			isUniqueViolation(err, "hub_licenses_hub_serial") {
			continue
		}
		return err
	}

	return ErrDuplicateKey
}

// licenseColumns are the columns read back for licenses. The license key
// is only surfaced by IssueHubLicense and by the credential lookup.
const licenseColumns = `
    id, created_at, updated_at, tenant_id, hub_serial,
    max_cameras, features, status, expires_at`

const listHubLicensesQuery = `SELECT` + licenseColumns + `
    FROM hub_licenses WHERE tenant_id = $1 ORDER BY created_at DESC`

func scanLicense(row interface{ Scan(dest ...interface{}) error }) (*models.HubLicense, error) {
	license := &models.HubLicense{}
	err := row.Scan(
		&license.ID, &license.CreatedAt, &license.UpdatedAt, &license.TenantID,
		&license.HubSerial, &license.MaxCameras, &license.Features,
		&license.Status, &license.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return license, nil
}

// GetActiveLicense resolves a (license key, hub serial) pair to the
// license and its tenant in one read, requiring both to be active.
// Expiry is not filtered here: the caller distinguishes an expired
// credential from an unknown one.
func (s *PostgresStore) GetActiveLicense(ctx context.Context, licenseKey, hubSerial string) (*models.HubLicense, *models.Tenant, error) {
	query := `
        SELECT
            l.id, l.created_at, l.updated_at, l.tenant_id, l.hub_serial,
            l.max_cameras, l.features, l.status, l.expires_at,
            t.id, t.created_at, t.updated_at, t.name, t.slug, t.tier,
            t.max_hubs, t.max_cameras, t.status, t.billing_email, t.billing_name, t.settings
        FROM hub_licenses l
        JOIN tenants t ON t.id = l.tenant_id
        WHERE l.license_key = $1 AND l.hub_serial = $2
          AND l.status = $3 AND t.status = $4`

	license := &models.HubLicense{}
	tenant := &models.Tenant{}
	err := s.getDB().QueryRowContext(ctx, query,
		licenseKey, hubSerial, models.LicenseStatusActive, models.TenantStatusActive,
	).Scan(
		&license.ID, &license.CreatedAt, &license.UpdatedAt, &license.TenantID,
		&license.HubSerial, &license.MaxCameras, &license.Features,
		&license.Status, &license.ExpiresAt,
		&tenant.ID, &tenant.CreatedAt, &tenant.UpdatedAt, &tenant.Name,
		&tenant.Slug, &tenant.Tier, &tenant.MaxHubs, &tenant.MaxCameras,
		&tenant.Status, &tenant.BillingEmail, &tenant.BillingName, &tenant.Settings,
	)

	if err == sql.ErrNoRows {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	return license, tenant, nil
}

// ListHubLicenses lists a tenant's licenses, newest first
func (s *PostgresStore) ListHubLicenses(ctx context.Context, tenantID int64) ([]*models.HubLicense, error) {
	rows, err := s.getDB().QueryContext(ctx, listHubLicensesQuery, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var licenses []*models.HubLicense
	for rows.Next() {
		license, err := scanLicense(rows)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, license)
	}

	return licenses, rows.Err()
}

// CountHubLicenses counts a tenant's licenses of any status
func (s *PostgresStore) CountHubLicenses(ctx context.Context, tenantID int64) (int, error) {
	var count int
	err := s.getDB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM hub_licenses WHERE tenant_id = $1`, tenantID,
	).Scan(&count)
	return count, err
}

// UpdateHubLicenseStatus moves a license to the given status, scoped to
// the owning tenant
func (s *PostgresStore) UpdateHubLicenseStatus(ctx context.Context, tenantID, id int64, status models.LicenseStatus) error {
	query := `UPDATE hub_licenses SET updated_at = $3, status = $4 WHERE tenant_id = $1 AND id = $2`

	result, err := s.getDB().ExecContext(ctx, query, tenantID, id, time.Now(), status)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
