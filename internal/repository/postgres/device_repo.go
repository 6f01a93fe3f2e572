package postgres

import (
	"context"
	"database/sql"

	"grubio/internal/domain"
)

type deviceRepository struct {
	DB *sql.DB
}

func NewDeviceRepository(db *sql.DB) domain.DeviceRepository {
	return &deviceRepository{DB: db}
}

// Upsert registers the push token for the user. A token moves to the most recent user that registers it.
func (r *deviceRepository) Upsert(ctx context.Context, d *domain.Device) error {
	query := `
		INSERT INTO devices (user_id, token, platform, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform
		RETURNING id, created_at
	`
	return r.DB.QueryRowContext(ctx, query, d.UserID, d.Token, d.Platform, d.CreatedAt).Scan(&d.ID, &d.CreatedAt)
}

func (r *deviceRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Device, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, user_id, token, platform, created_at FROM devices WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*domain.Device
	for rows.Next() {
		d := &domain.Device{}
		if err := rows.Scan(&d.ID, &d.UserID, &d.Token, &d.Platform, &d.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
