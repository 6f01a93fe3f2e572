package postgres

import (
	"context"
	"database/sql"
	"time"

	"grubio/internal/domain"
)

type sessionRepository struct {
	DB *sql.DB
}

// NewSessionRepository returns a SessionRepository backed by the revoked_sessions table.
func NewSessionRepository(db *sql.DB) domain.SessionRepository {
	return &sessionRepository{DB: db}
}

func (r *sessionRepository) Revoke(ctx context.Context, sessionID, userID string, revokedAt time.Time) error {
	query := `
		INSERT INTO revoked_sessions (session_id, user_id, revoked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, sessionID, userID, revokedAt)
	return err
}

func (r *sessionRepository) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	var revoked bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM revoked_sessions WHERE session_id = $1)`, sessionID).Scan(&revoked)
	return revoked, err
}
