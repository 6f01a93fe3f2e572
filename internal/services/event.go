package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"grubio/internal/domain"
)

type eventService struct {
	eventRepo       domain.EventRepository
	qr              domain.QREncoder
	publisher       domain.ChangePublisher
	logger          *slog.Logger
	maxCodeAttempts int
	contextTimeout  time.Duration
	newJoinCode     func() (string, error)
}

// NewEventService creates an EventService. maxCodeAttempts bounds join code allocation; values below 1 use DefaultJoinCodeAttempts.
func NewEventService(
	eventRepo domain.EventRepository,
	qr domain.QREncoder,
	publisher domain.ChangePublisher,
	logger *slog.Logger,
	maxCodeAttempts int,
	timeout time.Duration,
) domain.EventService {
	if maxCodeAttempts < 1 {
		maxCodeAttempts = DefaultJoinCodeAttempts
	}
	return &eventService{
		eventRepo:       eventRepo,
		qr:              qr,
		publisher:       publisher,
		logger:          logger,
		maxCodeAttempts: maxCodeAttempts,
		contextTimeout:  timeout,
		newJoinCode:     generateJoinCode,
	}
}

// CreateEvent stores the event under a freshly allocated join code. A code is
// drawn, checked against existing events, and inserted; the insert itself is
// conditional on the code being unused, so a code taken concurrently between
// check and insert just costs another attempt.
func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event.Title = strings.TrimSpace(event.Title)
	var problems []string
	if event.Title == "" {
		problems = append(problems, "title is required")
	}
	if event.CreatedBy == "" {
		problems = append(problems, "event creator is required")
	}
	if len(problems) > 0 {
		return domain.NewValidationError(problems...)
	}
	if !slices.Contains(event.Attendees, event.CreatedBy) {
		event.Attendees = append([]string{event.CreatedBy}, event.Attendees...)
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	for attempt := 1; attempt <= s.maxCodeAttempts; attempt++ {
		code, err := s.newJoinCode()
		if err != nil {
			return fmt.Errorf("generate join code: %w", err)
		}
		exists, err := s.eventRepo.JoinCodeExists(ctx, code)
		if err != nil {
			return fmt.Errorf("check join code: %w", err)
		}
		if exists {
			s.logger.DebugContext(ctx, "join code collision", "attempt", attempt)
			continue
		}
		event.JoinCode = code
		err = s.eventRepo.Create(ctx, event)
		if errors.Is(err, domain.ErrJoinCodeTaken) {
			s.logger.DebugContext(ctx, "join code taken on insert", "attempt", attempt)
			continue
		}
		if err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		s.publisher.Publish(domain.EventTopic(event.ID))
		return nil
	}
	event.JoinCode = ""
	return domain.ErrJoinCodeExhausted
}

func (s *eventService) JoinByCode(ctx context.Context, code, userID string) (*domain.Event, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	code = domain.NormalizeJoinCode(code)
	if !domain.ValidJoinCode(code) {
		// No event can carry a malformed code.
		return nil, false, domain.ErrNotFound
	}
	event, err := s.eventRepo.GetByJoinCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("get event by join code: %w", err)
	}

	if event.HasAttendee(userID) {
		return event, false, nil
	}

	updated, err := s.eventRepo.AddAttendee(ctx, event.ID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("add attendee: %w", err)
	}
	s.publisher.Publish(domain.EventTopic(updated.ID))
	return updated, true, nil
}

func (s *eventService) JoinByQR(ctx context.Context, payload, userID string) (*domain.Event, bool, error) {
	return s.JoinByCode(ctx, domain.JoinCodeFromQR(payload), userID)
}

func (s *eventService) GetEvent(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return attendedEvent(ctx, s.eventRepo, eventID, userID)
}

func (s *eventService) ListMyEvents(ctx context.Context, userID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByAttendee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) JoinQRCode(ctx context.Context, eventID, userID string) ([]byte, error) {
	event, err := s.GetEvent(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	png, err := s.qr.EncodePNG(domain.QRPayload(event.JoinCode))
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// attendedEvent loads an event and checks that userID attends it.
func attendedEvent(ctx context.Context, repo domain.EventRepository, eventID, userID string) (*domain.Event, error) {
	event, err := repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.HasAttendee(userID) {
		return nil, domain.ErrForbidden
	}
	return event, nil
}
