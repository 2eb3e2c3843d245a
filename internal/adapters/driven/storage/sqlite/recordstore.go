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

// maxBatchSize caps one UpsertBatch transaction. Callers chunk larger
// write sets; each chunk commits or rolls back as a unit.
const maxBatchSize = 500

// RecordStore implements driven.RecordStore on SQLite.
type RecordStore struct {
	db *sql.DB
}

var _ driven.RecordStore = (*RecordStore)(nil)

const recordColumns = `natural_key, status, type, severity, category,
	sub_category, subject, assignee, action, resolution, remark,
	event_at, created_at, updated_at`

// Get retrieves a record by natural key.
func (s *RecordStore) Get(ctx context.Context, collection domain.Collection, naturalKey string) (*domain.Record, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM records
		WHERE collection = ? AND natural_key = ?`, recordColumns),
		string(collection), naturalKey)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, naturalKey)
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// List returns all records in a collection ordered by natural key.
func (s *RecordStore) List(ctx context.Context, collection domain.Collection) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM records
		WHERE collection = ?
		ORDER BY natural_key`, recordColumns),
		string(collection))
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Exists reports whether a record with the natural key is stored.
func (s *RecordStore) Exists(ctx context.Context, collection domain.Collection, naturalKey string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM records
		WHERE collection = ? AND natural_key = ?`,
		string(collection), naturalKey).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check record: %w", err)
	}
	return true, nil
}

// UpsertBatch writes records as create-or-update in one transaction.
// Canonical fields are overwritten on conflict; created_at keeps the
// original insert time.
func (s *RecordStore) UpsertBatch(ctx context.Context, collection domain.Collection, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	if len(records) > maxBatchSize {
		return fmt.Errorf("%w: batch of %d exceeds limit of %d",
			domain.ErrInvalidInput, len(records), maxBatchSize)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, natural_key, status, type,
			severity, category, sub_category, subject, assignee,
			action, resolution, remark, event_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, natural_key) DO UPDATE SET
			status       = excluded.status,
			type         = excluded.type,
			severity     = excluded.severity,
			category     = excluded.category,
			sub_category = excluded.sub_category,
			subject      = excluded.subject,
			assignee     = excluded.assignee,
			action       = excluded.action,
			resolution   = excluded.resolution,
			remark       = excluded.remark,
			event_at     = excluded.event_at,
			updated_at   = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			string(collection), rec.Key(),
			rec.Status, rec.Type, rec.Severity, rec.Category,
			rec.SubCategory, rec.Subject, rec.Assignee,
			rec.Action, rec.Resolution, rec.Remark,
			rec.Timestamp.UTC().Format(time.RFC3339),
			now, now)
		if err != nil {
			return fmt.Errorf("upsert record %s: %w", rec.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Delete removes a record by natural key.
func (s *RecordStore) Delete(ctx context.Context, collection domain.Collection, naturalKey string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM records
		WHERE collection = ? AND natural_key = ?`,
		string(collection), naturalKey)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, naturalKey)
	}
	return nil
}

// MaxBatchSize is the largest batch UpsertBatch accepts.
func (s *RecordStore) MaxBatchSize() int {
	return maxBatchSize
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	var rec domain.Record
	var eventAt, createdAt, updatedAt string

	err := row.Scan(&rec.NaturalKey, &rec.Status, &rec.Type,
		&rec.Severity, &rec.Category, &rec.SubCategory, &rec.Subject,
		&rec.Assignee, &rec.Action, &rec.Resolution, &rec.Remark,
		&eventAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	rec.Timestamp, err = parseStoredTime(eventAt)
	if err != nil {
		return nil, fmt.Errorf("parse event_at: %w", err)
	}
	rec.CreatedAt, err = parseStoredTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	rec.UpdatedAt, err = parseStoredTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &rec, nil
}

func parseStoredTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
