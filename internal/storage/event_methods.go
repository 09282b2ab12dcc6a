package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/argusone/argus-server/internal/models"
)

// ========== Event Methods ==========

// CreateEvent stores a device-reported event
func (s *PostgresStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if event.Level == "" {
		event.Level = models.EventLevelInfo
	}

	query := `
        INSERT INTO events (
            id, created_at, tenant_id, hub_serial, camera_id,
            type, level, description, details
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9
        )`

	_, err := s.getDB().ExecContext(ctx, query,
		event.ID, event.CreatedAt, event.TenantID, event.HubSerial,
		event.CameraID, event.Type, event.Level, event.Description, event.Details,
	)
	return err
}

// ListEvents lists a tenant's events, newest first, with optional filters
func (s *PostgresStore) ListEvents(ctx context.Context, tenantID int64, filters models.EventFilters, limit, offset int) ([]*models.Event, int64, error) {
	where := "WHERE tenant_id = $1"
	args := []interface{}{tenantID}

	if filters.HubSerial != nil {
		args = append(args, *filters.HubSerial)
		where += fmt.Sprintf(" AND hub_serial = $%d", len(args))
	}
	if filters.Type != nil {
		args = append(args, *filters.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filters.Since != nil {
		args = append(args, *filters.Since)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM events " + where
	if err := s.getDB().QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
        SELECT id, created_at, tenant_id, hub_serial, camera_id,
               type, level, description, details
        FROM events %s
        ORDER BY created_at DESC
        LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		err := rows.Scan(
			&event.ID, &event.CreatedAt, &event.TenantID, &event.HubSerial,
			&event.CameraID, &event.Type, &event.Level, &event.Description,
			&event.Details,
		)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, event)
	}

	return events, total, rows.Err()
}
