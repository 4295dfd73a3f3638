package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"energy-insights/internal/telemetry"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	listRecordsSQL = `SELECT
        category,
        recorded_at,
        metrics
    FROM monitoring_records
    WHERE category = $1
    ORDER BY recorded_at DESC
    LIMIT $2;`

	countRecordsSQL = `SELECT COUNT(*) FROM monitoring_records WHERE category = $1;`
)

// RecordSource loads raw monitoring records for a category page. The
// dashboard only reads them; nothing derived is written back.
type RecordSource interface {
	ListRecords(ctx context.Context, category string, limit int) ([]telemetry.MonitoringRecord, error)
	CountRecords(ctx context.Context, category string) (int64, error)
}

// Store reads monitoring records from PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// ListRecords lists the most recent records of category, newest first.
func (s *Store) ListRecords(ctx context.Context, category string, limit int) ([]telemetry.MonitoringRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	rows, queryErr := pool.Query(ctx, listRecordsSQL, category, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list records: %w", queryErr)
	}
	defer rows.Close()

	records := make([]telemetry.MonitoringRecord, 0, limit)
	for rows.Next() {
		var (
			rec     telemetry.MonitoringRecord
			at      time.Time
			metrics []byte
		)
		if err := rows.Scan(&rec.Category, &at, &metrics); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Timestamp = at.UTC()
		if rec.Metrics, err = decodeMetrics(metrics); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// CountRecords counts the stored records of category.
func (s *Store) CountRecords(ctx context.Context, category string) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countRecordsSQL, category).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count records: %w", scanErr)
	}
	return count, nil
}

// decodeMetrics parses the jsonb metrics column. Non-numeric entries are skipped.
func decodeMetrics(raw []byte) (map[string]float64, error) {
	out := make(map[string]float64)
	if len(raw) == 0 {
		return out, nil
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode metrics: %w", err)
	}
	for k, v := range values {
		if f, ok := v.(float64); ok {
			out[k] = f
		}
	}
	return out, nil
}

var _ RecordSource = (*Store)(nil)
