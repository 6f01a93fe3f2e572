package domain

import (
	"context"
	"slices"
	"time"
)

// Event is a food-sharing event that attendees join with its join code.
// swagger:model Event
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date,omitempty"`
	CreatedBy   string     `json:"created_by"`
	Attendees   []string   `json:"attendees"`
	JoinCode    string     `json:"join_code"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewEvent returns a new Event whose only attendee is its creator. ID and JoinCode are set on create.
func NewEvent(title, description string, date *time.Time, createdBy string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Date:        date,
		CreatedBy:   createdBy,
		Attendees:   []string{createdBy},
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// HasAttendee reports whether userID belongs to the event. The creator always does.
func (e *Event) HasAttendee(userID string) bool {
	return e.CreatedBy == userID || slices.Contains(e.Attendees, userID)
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	// Create inserts the event. It returns ErrJoinCodeTaken when the join code is already used.
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByJoinCode(ctx context.Context, joinCode string) (*Event, error)
	JoinCodeExists(ctx context.Context, joinCode string) (bool, error)
	ListByAttendee(ctx context.Context, userID string) ([]*Event, error)
	// AddAttendee appends userID to the attendee set; appending an existing member is a no-op.
	AddAttendee(ctx context.Context, eventID, userID string) (*Event, error)
}

// EventService defines event creation, join and lookup operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	// JoinByCode adds the user to the event with the given code. Returns (event, joined, err): joined is false when the user already belonged to it.
	JoinByCode(ctx context.Context, code, userID string) (*Event, bool, error)
	// JoinByQR decodes a scanned QR payload and joins like JoinByCode.
	JoinByQR(ctx context.Context, payload, userID string) (*Event, bool, error)
	GetEvent(ctx context.Context, eventID, userID string) (*Event, error)
	ListMyEvents(ctx context.Context, userID string) ([]*Event, error)
	JoinQRCode(ctx context.Context, eventID, userID string) ([]byte, error)
}

// QREncoder renders a payload as a PNG QR code.
type QREncoder interface {
	EncodePNG(payload string) ([]byte, error)
}
