package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"grubio/internal/domain"
)

const (
	eventColumns       = `id, title, description, date, created_by, attendees, join_code, created_at, updated_at`
	joinCodeConstraint = "events_join_code_key"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var date sql.NullTime
	var attendees pq.StringArray
	err := row.Scan(&e.ID, &e.Title, &e.Description, &date, &e.CreatedBy, &attendees, &e.JoinCode, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if date.Valid {
		e.Date = &date.Time
	}
	e.Attendees = []string(attendees)
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	return e, nil
}

// Create inserts the event. The unique index on join_code makes this an
// insert-if-absent on the code: a taken code yields domain.ErrJoinCodeTaken.
func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, created_by, attendees, join_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.CreatedBy, pq.Array(e.Attendees), e.JoinCode, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if isUniqueViolation(err, joinCodeConstraint) {
		return domain.ErrJoinCodeTaken
	}
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return e, err
}

func (r *eventRepository) GetByJoinCode(ctx context.Context, joinCode string) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE join_code = $1`, joinCode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return e, err
}

func (r *eventRepository) JoinCodeExists(ctx context.Context, joinCode string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE join_code = $1)`, joinCode).Scan(&exists)
	return exists, err
}

func (r *eventRepository) ListByAttendee(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE $1 = ANY(attendees)
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// AddAttendee appends userID to the attendee set unless it is already present
// and returns the event as stored afterwards.
func (r *eventRepository) AddAttendee(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	query := `
		UPDATE events
		SET attendees = array_append(attendees, $2), updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(attendees))
		RETURNING ` + eventColumns
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return r.GetByID(ctx, eventID)
	}
	return e, err
}
