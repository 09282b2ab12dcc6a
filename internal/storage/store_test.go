package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	pqErr := errors.New(`pq: duplicate key value violates unique constraint "tenants_api_key_key"`)

	assert.True(t, isUniqueViolation(pqErr, "tenants_api_key_key"))
	assert.False(t, isUniqueViolation(pqErr, "tenants_slug_key"))
	assert.False(t, isUniqueViolation(errors.New("pq: connection refused"), "tenants_api_key_key"))
	assert.False(t, isUniqueViolation(nil, "tenants_api_key_key"))
}

// selectQueries are the queries assembled from the shared column lists.
var selectQueries = map[string]string{
	"getTenant":               getTenantQuery,
	"getActiveTenantByAPIKey": getActiveTenantByAPIKeyQuery,
	"listTenants":             listTenantsQuery,
	"getTenantUser":           getTenantUserQuery,
	"getTenantUserByEmail":    getTenantUserByEmailQuery,
	"listTenantUsers":         listTenantUsersQuery,
	"listHubLicenses":         listHubLicensesQuery,
	"listHubs":                listHubsQuery,
	"listCameras":             listCamerasQuery,
}

func TestSelectQueriesWellFormed(t *testing.T) {
	for name, query := range selectQueries {
		t.Run(name, func(t *testing.T) {
			assert.Regexp(t, `^SELECT\s`, query)
			assert.Regexp(t, `\sFROM\s`, query)
			// Concatenating a column list flush against a keyword turns
			// the keyword into part of an identifier.
			assert.NotRegexp(t, `[^\s](FROM|WHERE|ORDER|LIMIT|OFFSET)\b`, query)
			assert.NotRegexp(t, `,\s*(FROM|WHERE)\b`, query)
		})
	}
}

func TestColumnListsOmitSecrets(t *testing.T) {
	// API keys and license keys are only read back by the credential
	// lookup and the issuing write, never by the shared column lists.
	assert.NotContains(t, tenantColumns, "api_key")
	assert.NotContains(t, licenseColumns, "license_key")

	assert.NotContains(t, getTenantQuery, "api_key")
	assert.NotContains(t, listTenantsQuery, "api_key")
	assert.NotContains(t, listHubLicensesQuery, "license_key")
}
