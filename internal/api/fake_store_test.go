package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/argusone/argus-server/internal/models"
	"github.com/argusone/argus-server/internal/storage"
	"github.com/argusone/argus-server/pkg/keygen"
)

// fakeStore is an in-memory Store used by handler and middleware tests.
// The embedded interface panics on anything a test did not mean to touch.
type fakeStore struct {
	storage.Store

	mu       sync.Mutex
	tenants  map[int64]*models.Tenant
	users    map[int64]*models.TenantUser
	licenses map[int64]*models.HubLicense
	hubs     map[string]*models.Hub
	cameras  []*models.Camera
	events   []*models.Event
	usage    map[string]int64

	nextTenantID  int64
	nextUserID    int64
	nextLicenseID int64

	failTenantLookup bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tenants:  make(map[int64]*models.Tenant),
		users:    make(map[int64]*models.TenantUser),
		licenses: make(map[int64]*models.HubLicense),
		hubs:     make(map[string]*models.Hub),
		usage:    make(map[string]int64),
	}
}

func (f *fakeStore) addTenant(t *models.Tenant) *models.Tenant {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextTenantID++
	t.ID = f.nextTenantID
	if t.Slug == "" {
		t.Slug = keygen.Slugify(t.Name)
	}
	f.tenants[t.ID] = t
	return t
}

func (f *fakeStore) addUser(u *models.TenantUser) *models.TenantUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextUserID++
	u.ID = f.nextUserID
	f.users[u.ID] = u
	return u
}

func (f *fakeStore) addLicense(l *models.HubLicense) *models.HubLicense {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextLicenseID++
	l.ID = f.nextLicenseID
	f.licenses[l.ID] = l
	return l
}

func (f *fakeStore) usageCount(tenantID int64, endpoint, method, month string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usage[fmt.Sprintf("%d|%s|%s|%s", tenantID, endpoint, method, month)]
}

// ========== Store methods used by tests ==========

func (f *fakeStore) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	base := keygen.Slugify(tenant.Name)
	if base == "" {
		return storage.ErrInvalidData
	}

	apiKey, err := keygen.GenerateAPIKey()
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	slug := base
	for i := 2; ; i++ {
		taken := false
		for _, t := range f.tenants {
			if t.Slug == slug {
				taken = true
				break
			}
		}
		if !taken {
			break
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}

	f.nextTenantID++
	tenant.ID = f.nextTenantID
	tenant.Slug = slug
	tenant.APIKey = apiKey
	tenant.CreatedAt = time.Now()
	tenant.UpdatedAt = tenant.CreatedAt
	stored := *tenant
	f.tenants[tenant.ID] = &stored
	return nil
}

func (f *fakeStore) GetTenant(ctx context.Context, id int64) (*models.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tenants[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeStore) GetActiveTenantByAPIKey(ctx context.Context, apiKey string) (*models.Tenant, error) {
	if f.failTenantLookup {
		return nil, errors.New("connection refused")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tenants {
		if t.APIKey == apiKey && t.Status == models.TenantStatusActive {
			c := t.Snapshot()
			return &c, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tenants[tenant.ID]
	if !ok {
		return storage.ErrNotFound
	}
	key := stored.APIKey
	*stored = *tenant
	stored.APIKey = key
	return nil
}

func (f *fakeStore) UpdateTenantStatus(ctx context.Context, id int64, status models.TenantStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tenants[id]
	if !ok {
		return storage.ErrNotFound
	}
	t.Status = status
	return nil
}

func (f *fakeStore) CreateTenantUser(ctx context.Context, user *models.TenantUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.TenantID == user.TenantID && u.Email == user.Email {
			return storage.ErrDuplicateKey
		}
	}
	f.nextUserID++
	user.ID = f.nextUserID
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeStore) GetTenantUser(ctx context.Context, tenantID, id int64) (*models.TenantUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.TenantID != tenantID {
		return nil, storage.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeStore) GetTenantUserByEmail(ctx context.Context, tenantID int64, email string) (*models.TenantUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.TenantID == tenantID && u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) ListTenantUsers(ctx context.Context, tenantID int64) ([]*models.TenantUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []*models.TenantUser
	for _, u := range f.users {
		if u.TenantID == tenantID {
			c := *u
			users = append(users, &c)
		}
	}
	return users, nil
}

func (f *fakeStore) UpdateTenantUserLastLogin(ctx context.Context, id int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (f *fakeStore) IssueHubLicense(ctx context.Context, license *models.HubLicense) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tenant, ok := f.tenants[license.TenantID]
	if !ok {
		return storage.ErrNotFound
	}

	count := 0
	for _, l := range f.licenses {
		if l.TenantID == license.TenantID {
			count++
		}
	}
	if count >= tenant.MaxHubs {
		return storage.ErrLimitExceeded
	}

	key, err := keygen.GenerateLicenseKey()
	if err != nil {
		return err
	}

	f.nextLicenseID++
	license.ID = f.nextLicenseID
	license.HubSerial = keygen.GenerateHubSerial(tenant.Slug, count+1)
	license.LicenseKey = key
	license.CreatedAt = time.Now()
	license.UpdatedAt = license.CreatedAt
	stored := *license
	f.licenses[license.ID] = &stored
	return nil
}

func (f *fakeStore) GetActiveLicense(ctx context.Context, licenseKey, hubSerial string) (*models.HubLicense, *models.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.licenses {
		if l.LicenseKey != licenseKey || l.HubSerial != hubSerial {
			continue
		}
		if l.Status != models.LicenseStatusActive {
			continue
		}
		tenant, ok := f.tenants[l.TenantID]
		if !ok || tenant.Status != models.TenantStatusActive {
			continue
		}
		lc := *l
		tc := tenant.Snapshot()
		return &lc, &tc, nil
	}
	return nil, nil, storage.ErrNotFound
}

func (f *fakeStore) ListHubLicenses(ctx context.Context, tenantID int64) ([]*models.HubLicense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var licenses []*models.HubLicense
	for _, l := range f.licenses {
		if l.TenantID == tenantID {
			c := l.Snapshot()
			licenses = append(licenses, &c)
		}
	}
	return licenses, nil
}

func (f *fakeStore) CountHubLicenses(ctx context.Context, tenantID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, l := range f.licenses {
		if l.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) UpdateHubLicenseStatus(ctx context.Context, tenantID, id int64, status models.LicenseStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.licenses[id]
	if !ok || l.TenantID != tenantID {
		return storage.ErrNotFound
	}
	l.Status = status
	return nil
}

func (f *fakeStore) UpsertHubHeartbeat(ctx context.Context, hub *models.Hub) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if hub.ID == uuid.Nil {
		hub.ID = uuid.New()
	}
	now := time.Now()
	if hub.LastSeenAt == nil {
		hub.LastSeenAt = &now
	}
	if hub.Status == "" {
		hub.Status = models.HubStatusOnline
	}
	stored := *hub
	f.hubs[hub.HubSerial] = &stored
	return nil
}

func (f *fakeStore) ListHubs(ctx context.Context, tenantID int64) ([]*models.Hub, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var hubs []*models.Hub
	for _, h := range f.hubs {
		if h.TenantID == tenantID {
			c := *h
			hubs = append(hubs, &c)
		}
	}
	return hubs, nil
}

func (f *fakeStore) CreateCamera(ctx context.Context, camera *models.Camera) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tenant, ok := f.tenants[camera.TenantID]
	if !ok {
		return storage.ErrNotFound
	}

	count := 0
	for _, c := range f.cameras {
		if c.TenantID == camera.TenantID {
			count++
		}
	}
	if count >= tenant.MaxCameras {
		return storage.ErrLimitExceeded
	}

	if camera.ID == uuid.Nil {
		camera.ID = uuid.New()
	}
	stored := *camera
	f.cameras = append(f.cameras, &stored)
	return nil
}

func (f *fakeStore) ListCameras(ctx context.Context, tenantID int64) ([]*models.Camera, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var cameras []*models.Camera
	for _, c := range f.cameras {
		if c.TenantID == tenantID {
			cc := *c
			cameras = append(cameras, &cc)
		}
	}
	return cameras, nil
}

func (f *fakeStore) CreateEvent(ctx context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	stored := *event
	f.events = append(f.events, &stored)
	return nil
}

func (f *fakeStore) ListEvents(ctx context.Context, tenantID int64, filters models.EventFilters, limit, offset int) ([]*models.Event, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []*models.Event
	for _, e := range f.events {
		if e.TenantID != tenantID {
			continue
		}
		if filters.HubSerial != nil && e.HubSerial != *filters.HubSerial {
			continue
		}
		if filters.Type != nil && e.Type != *filters.Type {
			continue
		}
		c := *e
		matched = append(matched, &c)
	}
	return matched, int64(len(matched)), nil
}

func (f *fakeStore) RecordUsage(ctx context.Context, tenantID int64, endpoint, method, month string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usage[fmt.Sprintf("%d|%s|%s|%s", tenantID, endpoint, method, month)]++
	return nil
}

func (f *fakeStore) QueryUsage(ctx context.Context, tenantID int64, startMonth, endMonth string) ([]*models.UsageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var records []*models.UsageRecord
	for key, count := range f.usage {
		parts := strings.SplitN(key, "|", 4)
		if len(parts) != 4 {
			continue
		}
		tid, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || tid != tenantID {
			continue
		}
		if parts[3] < startMonth || parts[3] > endMonth {
			continue
		}
		records = append(records, &models.UsageRecord{
			TenantID:     tid,
			Endpoint:     parts[1],
			Method:       parts[2],
			Month:        parts[3],
			RequestCount: count,
		})
	}
	return records, nil
}
