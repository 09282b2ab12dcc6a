package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/argusone/argus-server/internal/models"
)

// ========== Hub Methods ==========

// UpsertHubHeartbeat creates or refreshes the hub row for a heartbeat.
// Keyed on the hub serial; concurrent heartbeats settle on the latest one.
func (s *PostgresStore) UpsertHubHeartbeat(ctx context.Context, hub *models.Hub) error {
	if hub.ID == uuid.Nil {
		hub.ID = uuid.New()
	}

	now := time.Now()
	hub.UpdatedAt = now
	if hub.LastSeenAt == nil {
		hub.LastSeenAt = &now
	}
	if hub.Status == "" {
		hub.Status = models.HubStatusOnline
	}

	query := `
        INSERT INTO hubs (
            id, created_at, updated_at, tenant_id, hub_serial, name,
            firmware_version, ip_address, status, last_seen_at, metadata
        ) VALUES (
            $1, $2, $2, $3, $4, $5, $6, $7, $8, $9, $10
        )
        ON CONFLICT (hub_serial) DO UPDATE SET
            updated_at = EXCLUDED.updated_at,
            name = EXCLUDED.name,
            firmware_version = EXCLUDED.firmware_version,
            ip_address = EXCLUDED.ip_address,
            status = EXCLUDED.status,
            last_seen_at = EXCLUDED.last_seen_at,
            metadata = EXCLUDED.metadata
        RETURNING id, created_at`

	return s.getDB().QueryRowContext(ctx, query,
		hub.ID, now, hub.TenantID, hub.HubSerial, hub.Name,
		hub.FirmwareVersion, hub.IPAddress, hub.Status, hub.LastSeenAt, hub.Metadata,
	).Scan(&hub.ID, &hub.CreatedAt)
}

const hubColumns = `
    id, created_at, updated_at, tenant_id, hub_serial, name,
    firmware_version, ip_address, status, last_seen_at, metadata`

const listHubsQuery = `SELECT` + hubColumns + `
    FROM hubs WHERE tenant_id = $1 ORDER BY created_at`

func scanHub(row interface{ Scan(dest ...interface{}) error }) (*models.Hub, error) {
	hub := &models.Hub{}
	err := row.Scan(
		&hub.ID, &hub.CreatedAt, &hub.UpdatedAt, &hub.TenantID,
		&hub.HubSerial, &hub.Name, &hub.FirmwareVersion, &hub.IPAddress,
		&hub.Status, &hub.LastSeenAt, &hub.Metadata,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return hub, nil
}

// ListHubs lists a tenant's hubs
func (s *PostgresStore) ListHubs(ctx context.Context, tenantID int64) ([]*models.Hub, error) {
	rows, err := s.getDB().QueryContext(ctx, listHubsQuery, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hubs []*models.Hub
	for rows.Next() {
		hub, err := scanHub(rows)
		if err != nil {
			return nil, err
		}
		hubs = append(hubs, hub)
	}

	return hubs, rows.Err()
}

// ========== Camera Methods ==========

// CreateCamera registers a camera reported by a hub. Holds the tenant row
// lock across the count-and-insert so the maxCameras cap cannot be
// overrun by concurrent reports.
func (s *PostgresStore) CreateCamera(ctx context.Context, camera *models.Camera) error {
	txStore, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	tx := txStore.(*PostgresStore)
	defer tx.Rollback()

	var maxCameras int
	err = tx.getDB().QueryRowContext(ctx,
		`SELECT max_cameras FROM tenants WHERE id = $1 FOR UPDATE`,
		camera.TenantID,
	).Scan(&maxCameras)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var count int
	err = tx.getDB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cameras WHERE tenant_id = $1`, camera.TenantID,
	).Scan(&count)
	if err != nil {
		return err
	}
	if count >= maxCameras {
		return ErrLimitExceeded
	}

	if camera.ID == uuid.Nil {
		camera.ID = uuid.New()
	}
	now := time.Now()
	camera.CreatedAt = now
	camera.UpdatedAt = now

	query := `
        INSERT INTO cameras (
            id, created_at, updated_at, tenant_id, hub_serial, name,
            model, stream_url, is_enabled, resolution, metadata
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
        )`

	_, err = tx.getDB().ExecContext(ctx, query,
		camera.ID, camera.CreatedAt, camera.UpdatedAt, camera.TenantID,
		camera.HubSerial, camera.Name, camera.Model, camera.StreamURL,
		camera.IsEnabled, camera.Resolution, camera.Metadata,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

const cameraColumns = `
    id, created_at, updated_at, tenant_id, hub_serial, name,
    model, stream_url, is_enabled, resolution, metadata`

const listCamerasQuery = `SELECT` + cameraColumns + `
    FROM cameras WHERE tenant_id = $1 ORDER BY created_at`

// ListCameras lists a tenant's cameras
func (s *PostgresStore) ListCameras(ctx context.Context, tenantID int64) ([]*models.Camera, error) {
	rows, err := s.getDB().QueryContext(ctx, listCamerasQuery, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cameras []*models.Camera
	for rows.Next() {
		camera := &models.Camera{}
		err := rows.Scan(
			&camera.ID, &camera.CreatedAt, &camera.UpdatedAt, &camera.TenantID,
			&camera.HubSerial, &camera.Name, &camera.Model, &camera.StreamURL,
			&camera.IsEnabled, &camera.Resolution, &camera.Metadata,
		)
		if err != nil {
			return nil, err
		}
		cameras = append(cameras, camera)
	}

	return cameras, rows.Err()
}
