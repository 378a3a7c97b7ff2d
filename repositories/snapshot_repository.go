package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/puckdrop/tournament-server/models"
)

var (
	ErrSnapshotNotFound = errors.New("tournament snapshot not found")
	ErrSnapshotInvalid  = errors.New("stored tournament snapshot is invalid")
)

// snapshotKey is the single row the server reads and writes. One
// tournament runs per deployment; finished ones move to the archiver.
const snapshotKey = "current"

// SnapshotRepository persists the full tournament snapshot as an opaque
// blob: load on start, save after every mutation, delete on reset.
type SnapshotRepository interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, snapshot *models.TournamentSnapshot) error
	Load(ctx context.Context) (*models.TournamentSnapshot, error)
	Delete(ctx context.Context) error
}

type postgresSnapshotRepository struct {
	db SQLExecutor
}

func NewPostgresSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &postgresSnapshotRepository{db: db}
}

func (r *postgresSnapshotRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS tournament_snapshots (
			key        TEXT PRIMARY KEY,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure tournament_snapshots schema: %w", err)
	}
	return nil
}

func (r *postgresSnapshotRepository) Save(ctx context.Context, snapshot *models.TournamentSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal tournament snapshot: %w", err)
	}

	query := `
		INSERT INTO tournament_snapshots (key, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

	updatedAt := snapshot.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	if _, err := r.db.ExecContext(ctx, query, snapshotKey, data, updatedAt); err != nil {
		return r.handleSnapshotError(err)
	}
	return nil
}

func (r *postgresSnapshotRepository) Load(ctx context.Context) (*models.TournamentSnapshot, error) {
	query := `SELECT data FROM tournament_snapshots WHERE key = $1`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, snapshotKey).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load tournament snapshot: %w", err)
	}

	var snapshot models.TournamentSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	return &snapshot, nil
}

func (r *postgresSnapshotRepository) Delete(ctx context.Context) error {
	query := `DELETE FROM tournament_snapshots WHERE key = $1`
	result, err := r.db.ExecContext(ctx, query, snapshotKey)
	if err != nil {
		return r.handleSnapshotError(err)
	}
	return checkAffectedRows(result, ErrSnapshotNotFound)
}

func (r *postgresSnapshotRepository) handleSnapshotError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// "22P02": invalid_text_representation, typically malformed JSON
		// reaching the JSONB column.
		if pqErr.Code == "22P02" {
			return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
		}
	}
	return fmt.Errorf("snapshot query failed: %w", err)
}
