package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS hunt_progress (
	hunter_id      TEXT PRIMARY KEY,
	geofence_index INTEGER NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	selectIndexSQL = `SELECT geofence_index FROM hunt_progress WHERE hunter_id = $1`
	upsertIndexSQL = `INSERT INTO hunt_progress (hunter_id, geofence_index, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (hunter_id) DO UPDATE SET geofence_index = EXCLUDED.geofence_index, updated_at = now()`
	// A hunter without a row is at 0, so the first step may insert.
	advanceFromStartSQL = `INSERT INTO hunt_progress (hunter_id, geofence_index, updated_at)
VALUES ($1, 1, now())
ON CONFLICT (hunter_id) DO UPDATE SET geofence_index = 1, updated_at = now()
WHERE hunt_progress.geofence_index = 0`
	advanceSQL = `UPDATE hunt_progress SET geofence_index = $2 + 1, updated_at = now()
WHERE hunter_id = $1 AND geofence_index = $2`
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps progress in the hunt_progress table.
type PostgresStore struct {
	db DB
}

// NewPostgresStore returns a store over db, typically a *pgxpool.Pool.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Connect opens a connection pool for databaseURL and checks it is reachable.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return pool, nil
}

// Migrate creates the progress table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create hunt_progress table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Index(ctx context.Context, hunterID string) (int, error) {
	var index int
	err := s.db.QueryRow(ctx, selectIndexSQL, hunterID).Scan(&index)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read progress for %s: %w", hunterID, err)
	}
	return index, nil
}

func (s *PostgresStore) SetIndex(ctx context.Context, hunterID string, index int) error {
	if err := validate(index); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, upsertIndexSQL, hunterID, index); err != nil {
		return fmt.Errorf("failed to write progress for %s: %w", hunterID, err)
	}
	return nil
}

func (s *PostgresStore) Advance(ctx context.Context, hunterID string, from int) (bool, error) {
	if err := validateStep(from); err != nil {
		return false, err
	}

	var (
		tag pgconn.CommandTag
		err error
	)
	if from == 0 {
		tag, err = s.db.Exec(ctx, advanceFromStartSQL, hunterID)
	} else {
		tag, err = s.db.Exec(ctx, advanceSQL, hunterID, from)
	}
	if err != nil {
		return false, fmt.Errorf("failed to advance progress for %s: %w", hunterID, err)
	}
	return tag.RowsAffected() == 1, nil
}
