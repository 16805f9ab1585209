package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that a history entry could not be located in the backing store.
var ErrNotFound = errors.New("history entry not found")

// HistoryEntry records one finished transform.
type HistoryEntry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Backend   string    `json:"backend"`
	Status    string    `json:"status"`
	ErrorKind string    `json:"error_kind,omitempty"`
	Message   string    `json:"message,omitempty"`
	Summary   Summary   `json:"summary"`
	ImageKey  string    `json:"image_key,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	WebPURL   string    `json:"webp_url,omitempty"`
}

// Summary describes the request that produced an entry.
type Summary struct {
	Description  string            `json:"description,omitempty"`
	Template     string            `json:"template,omitempty"`
	HasReference bool              `json:"has_reference"`
	SubjectKey   string            `json:"subject_key,omitempty"`
	ReferenceKey string            `json:"reference_key,omitempty"`
	Options      map[string]string `json:"options,omitempty"`
}

// Store defines the history behaviours the application relies on.
type Store interface {
	Append(ctx context.Context, entry HistoryEntry) (HistoryEntry, error)
	Recent(ctx context.Context, limit int) ([]HistoryEntry, error)
	Get(ctx context.Context, id string) (HistoryEntry, error)
	Delete(ctx context.Context, id string) error
	Close()
}

// NewStore selects a backing store based on whether a database URL is provided.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if databaseURL == "" {
		return NewInMemoryStore(0), nil
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS transform_history (
        id TEXT PRIMARY KEY,
        backend TEXT NOT NULL,
        status TEXT NOT NULL,
        error_kind TEXT,
        message TEXT,
        summary JSONB DEFAULT '{}'::jsonb,
        image_key TEXT,
        image_url TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`)
	if err != nil {
		return fmt.Errorf("create transform_history table: %w", err)
	}

	var schemaAlters = []string{
		`ALTER TABLE transform_history ADD COLUMN IF NOT EXISTS webp_url TEXT`,
		`CREATE INDEX IF NOT EXISTS transform_history_created_at_idx ON transform_history (created_at DESC)`,
	}
	for _, stmt := range schemaAlters {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("alter transform_history table: %w", err)
		}
	}

	return nil
}
