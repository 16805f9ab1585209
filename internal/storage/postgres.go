package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists history in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const historyColumns = `id, backend, status, COALESCE(error_kind, ''), COALESCE(message, ''), summary, COALESCE(image_key, ''), COALESCE(image_url, ''), COALESCE(webp_url, ''), created_at`

// Append inserts the entry.
func (s *PostgresStore) Append(ctx context.Context, entry HistoryEntry) (HistoryEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO transform_history (id, backend, status, error_kind, message, summary, image_key, image_url, webp_url, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID, entry.Backend, entry.Status, entry.ErrorKind, entry.Message, entry.Summary,
		entry.ImageKey, entry.ImageURL, entry.WebPURL, entry.CreatedAt); err != nil {
		return HistoryEntry{}, fmt.Errorf("insert history entry: %w", err)
	}

	return entry, nil
}

// Recent returns the newest entries.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := s.pool.Query(ctx, `SELECT `+historyColumns+` FROM transform_history ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		item, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return entries, nil
}

// Get returns an entry by ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (HistoryEntry, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+historyColumns+` FROM transform_history WHERE id = $1`, id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return HistoryEntry{}, ErrNotFound
		}
		return HistoryEntry{}, fmt.Errorf("get history entry: %w", err)
	}
	return entry, nil
}

// Delete removes an entry by ID.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM transform_history WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases database resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func scanEntry(row pgx.Row) (HistoryEntry, error) {
	var item HistoryEntry
	err := row.Scan(&item.ID, &item.Backend, &item.Status, &item.ErrorKind, &item.Message, &item.Summary,
		&item.ImageKey, &item.ImageURL, &item.WebPURL, &item.CreatedAt)
	return item, err
}
