package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"project-analyzer-web/errors"
	"project-analyzer-web/models"
)

// SessionRepository persists analysis-session snapshots so a finished
// analysis survives a process restart.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a repository on an open database.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// SaveSnapshot upserts one session snapshot.
func (r *SessionRepository) SaveSnapshot(ctx context.Context, snap models.SessionSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeSerializationError,
			"Failed to marshal session snapshot", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analysis_sessions (id, snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at`,
		snap.ID, payload, snap.CreatedAt, snap.UpdatedAt,
	)
	if err != nil {
		return errors.NewDatabaseError(errors.ErrCodeDatabaseQuery,
			"Failed to save session snapshot", err)
	}
	return nil
}

// LoadSnapshot fetches one session snapshot by id.
func (r *SessionRepository) LoadSnapshot(ctx context.Context, id string) (models.SessionSnapshot, error) {
	var (
		payload []byte
		snap    models.SessionSnapshot
	)

	row := r.db.QueryRowContext(ctx,
		`SELECT snapshot FROM analysis_sessions WHERE id = $1`, id)
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return snap, errors.NewNotFoundError(errors.ErrCodeSessionNotFound,
				"session snapshot not found", nil)
		}
		return snap, errors.NewDatabaseError(errors.ErrCodeDatabaseQuery,
			"Failed to load session snapshot", err)
	}

	if err := json.Unmarshal(payload, &snap); err != nil {
		return snap, errors.NewInternalError(errors.ErrCodeSerializationError,
			"Failed to unmarshal session snapshot", err)
	}
	return snap, nil
}

// DeleteSnapshot removes one session snapshot.
func (r *SessionRepository) DeleteSnapshot(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM analysis_sessions WHERE id = $1`, id); err != nil {
		return errors.NewDatabaseError(errors.ErrCodeDatabaseQuery,
			"Failed to delete session snapshot", err)
	}
	return nil
}

// PruneBefore removes snapshots not updated since the cutoff. The session
// store runs this on its janitor cadence.
func (r *SessionRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM analysis_sessions WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, errors.NewDatabaseError(errors.ErrCodeDatabaseQuery,
			"Failed to prune session snapshots", err)
	}
	affected, _ := result.RowsAffected()
	return affected, nil
}
