package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driven"
)

// GuardStore implements driven.GuardStore on SQLite.
type GuardStore struct {
	db *sql.DB
}

var _ driven.GuardStore = (*GuardStore)(nil)

// Get retrieves the guard for a collection.
func (s *GuardStore) Get(ctx context.Context, collection domain.Collection) (*domain.SyncGuard, error) {
	var guard domain.SyncGuard
	var syncType, lastRunAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT collection, last_sync_date, last_sync_type, last_run_at, updated_count
		FROM sync_guards
		WHERE collection = ?`,
		string(collection)).Scan(
		&guard.Collection, &guard.LastSyncDate, &syncType,
		&lastRunAt, &guard.UpdatedCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no guard for %s", domain.ErrNotFound, collection)
	}
	if err != nil {
		return nil, fmt.Errorf("get sync guard: %w", err)
	}

	guard.LastSyncType = domain.SyncType(syncType)
	guard.LastRunAt, err = parseStoredTime(lastRunAt)
	if err != nil {
		return nil, fmt.Errorf("parse last_run_at: %w", err)
	}
	return &guard, nil
}

// Save stores or replaces the guard for its collection.
func (s *GuardStore) Save(ctx context.Context, guard domain.SyncGuard) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_guards (collection, last_sync_date, last_sync_type, last_run_at, updated_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection) DO UPDATE SET
			last_sync_date = excluded.last_sync_date,
			last_sync_type = excluded.last_sync_type,
			last_run_at    = excluded.last_run_at,
			updated_count  = excluded.updated_count`,
		string(guard.Collection), guard.LastSyncDate,
		string(guard.LastSyncType),
		guard.LastRunAt.UTC().Format(time.RFC3339),
		guard.UpdatedCount)
	if err != nil {
		return fmt.Errorf("save sync guard: %w", err)
	}
	return nil
}
