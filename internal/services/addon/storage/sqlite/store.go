package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cartside/addons/internal/platform/storage/sqlitemigrate"
	"github.com/cartside/addons/internal/services/addon/storage"
	"github.com/cartside/addons/internal/services/addon/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const defaultListLimit = 50

// Store provides SQLite-backed append attempt persistence.
type Store struct {
	sqlDB *sql.DB
}

// Open opens an attempt store and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RecordAttempt persists one append attempt.
func (s *Store) RecordAttempt(ctx context.Context, record storage.AttemptRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	record.EventID = strings.TrimSpace(record.EventID)
	record.ProductID = strings.TrimSpace(record.ProductID)
	record.Outcome = strings.TrimSpace(record.Outcome)
	record.LastError = strings.TrimSpace(record.LastError)
	if record.ProductID == "" {
		return fmt.Errorf("product id is required")
	}
	if record.Outcome == "" {
		return fmt.Errorf("outcome is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO addon_attempts (
	event_id,
	product_id,
	variant_ids,
	outcome,
	last_error,
	created_at
) VALUES (?, ?, ?, ?, ?, ?)
`,
		record.EventID,
		record.ProductID,
		strings.Join(record.VariantIDs, ","),
		record.Outcome,
		record.LastError,
		record.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// ListRecentAttempts lists attempts newest first, capped at limit.
func (s *Store) ListRecentAttempts(ctx context.Context, limit int) ([]storage.AttemptRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT event_id, product_id, variant_ids, outcome, last_error, created_at
FROM addon_attempts
ORDER BY created_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var records []storage.AttemptRecord
	for rows.Next() {
		var record storage.AttemptRecord
		var variantIDs string
		var createdAt int64
		if err := rows.Scan(
			&record.EventID,
			&record.ProductID,
			&variantIDs,
			&record.Outcome,
			&record.LastError,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if variantIDs != "" {
			record.VariantIDs = strings.Split(variantIDs, ",")
		}
		record.CreatedAt = time.UnixMilli(createdAt).UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return records, nil
}
