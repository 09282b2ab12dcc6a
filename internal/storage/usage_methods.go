package storage

import (
	"context"
	"time"

	"github.com/argusone/argus-server/internal/models"
)

// ========== Usage Methods ==========

// RecordUsage increments the request counter for one
// (tenant, endpoint, method, month) key. The upsert adds to the existing
// counter so concurrent increments never lose updates.
func (s *PostgresStore) RecordUsage(ctx context.Context, tenantID int64, endpoint, method, month string) error {
	query := `
        INSERT INTO usage_records (tenant_id, endpoint, method, month, request_count, updated_at)
        VALUES ($1, $2, $3, $4, 1, $5)
        ON CONFLICT (tenant_id, endpoint, method, month) DO UPDATE SET
            request_count = usage_records.request_count + 1,
            updated_at = EXCLUDED.updated_at`

	_, err := s.getDB().ExecContext(ctx, query, tenantID, endpoint, method, month, time.Now())
	return err
}

// QueryUsage aggregates a tenant's usage between two month keys
// (inclusive), ordered by month descending.
func (s *PostgresStore) QueryUsage(ctx context.Context, tenantID int64, startMonth, endMonth string) ([]*models.UsageRecord, error) {
	query := `
        SELECT tenant_id, endpoint, method, month, request_count, updated_at
        FROM usage_records
        WHERE tenant_id = $1 AND month >= $2 AND month <= $3
        ORDER BY month DESC, endpoint, method`

	rows, err := s.getDB().QueryContext(ctx, query, tenantID, startMonth, endMonth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.UsageRecord
	for rows.Next() {
		record := &models.UsageRecord{}
		err := rows.Scan(
			&record.TenantID, &record.Endpoint, &record.Method,
			&record.Month, &record.RequestCount, &record.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
