//go:build integration

package storage

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argusone/argus-server/internal/config"
	"github.com/argusone/argus-server/internal/models"
)

// Integration tests run against a migrated database:
//
//	DATABASE_URL=postgres://... go test -tags integration ./internal/storage/

func integrationStore(t *testing.T) *PostgresStore {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	store, err := NewPostgresStore(config.DatabaseConfig{
		DSN:          dsn,
		MaxOpenConns: 5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func integrationTenant(t *testing.T, store *PostgresStore, maxHubs, maxCameras int) *models.Tenant {
	t.Helper()

	tenant := &models.Tenant{
		Name:       fmt.Sprintf("it-%d", time.Now().UnixNano()),
		Tier:       models.TierPro,
		MaxHubs:    maxHubs,
		MaxCameras: maxCameras,
		Status:     models.TenantStatusActive,
	}
	require.NoError(t, store.CreateTenant(context.Background(), tenant))
	return tenant
}

func TestPostgresAPIKeyLookupFiltersStatus(t *testing.T) {
	store := integrationStore(t)
	ctx := context.Background()

	tenant := integrationTenant(t, store, 1, 1)

	found, err := store.GetActiveTenantByAPIKey(ctx, tenant.APIKey)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, found.ID)
	// The shared column list never reads the key back
	assert.Empty(t, found.APIKey)

	require.NoError(t, store.UpdateTenantStatus(ctx, tenant.ID, models.TenantStatusSuspended))

	_, err = store.GetActiveTenantByAPIKey(ctx, tenant.APIKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresTenantReadsRoundTrip(t *testing.T) {
	store := integrationStore(t)
	ctx := context.Background()

	tenant := integrationTenant(t, store, 2, 4)

	got, err := store.GetTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.Slug, got.Slug)
	assert.Equal(t, 2, got.MaxHubs)

	user := &models.TenantUser{
		TenantID:     tenant.ID,
		Email:        fmt.Sprintf("it-%d@acme.example", time.Now().UnixNano()),
		PasswordHash: "$2a$10$notarealhashnotarealhashnotarealhash",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	require.NoError(t, store.CreateTenantUser(ctx, user))

	byEmail, err := store.GetTenantUserByEmail(ctx, tenant.ID, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	users, err := store.ListTenantUsers(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestPostgresLicenseCapLeavesNoPartialWrite(t *testing.T) {
	store := integrationStore(t)
	ctx := context.Background()

	tenant := integrationTenant(t, store, 1, 4)

	first := &models.HubLicense{TenantID: tenant.ID, MaxCameras: 4}
	require.NoError(t, store.IssueHubLicense(ctx, first))
	assert.NotEmpty(t, first.LicenseKey)

	second := &models.HubLicense{TenantID: tenant.ID, MaxCameras: 4}
	assert.ErrorIs(t, store.IssueHubLicense(ctx, second), ErrLimitExceeded)

	count, err := store.CountHubLicenses(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	licenses, err := store.ListHubLicenses(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, licenses, 1)
	assert.Empty(t, licenses[0].LicenseKey)
}

func TestPostgresCameraCapUnderConcurrency(t *testing.T) {
	store := integrationStore(t)
	ctx := context.Background()

	tenant := integrationTenant(t, store, 1, 3)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.CreateCamera(ctx, &models.Camera{
				TenantID:  tenant.ID,
				HubSerial: "AO-IT-001-cap",
				Name:      fmt.Sprintf("cam-%d", i),
				IsEnabled: true,
			})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, ErrLimitExceeded)
		}
	}
	assert.Equal(t, 3, created)

	cameras, err := store.ListCameras(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Len(t, cameras, 3)
}

func TestPostgresUsageUpsertLosesNoUpdates(t *testing.T) {
	store := integrationStore(t)
	ctx := context.Background()

	tenant := integrationTenant(t, store, 1, 1)
	month := models.MonthKey(time.Now())

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.RecordUsage(ctx, tenant.ID, "/api/v1/tenant/info", "GET", month))
		}()
	}
	wg.Wait()

	records, err := store.QueryUsage(ctx, tenant.ID, month, month)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(n), records[0].RequestCount)
}
