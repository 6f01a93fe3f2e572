package services

import (
	"context"
	"fmt"
	"time"

	"grubio/internal/domain"
)

type analyticsService struct {
	eventRepo      domain.EventRepository
	postRepo       domain.PostRepository
	userRepo       domain.UserRepository
	contextTimeout time.Duration
}

func NewAnalyticsService(eventRepo domain.EventRepository, postRepo domain.PostRepository, userRepo domain.UserRepository, timeout time.Duration) domain.AnalyticsService {
	return &analyticsService{eventRepo: eventRepo, postRepo: postRepo, userRepo: userRepo, contextTimeout: timeout}
}

// GetEventAnalytics derives the event's impact figures from its posts. Only the
// event creator may view them.
func (s *analyticsService) GetEventAnalytics(ctx context.Context, eventID, userID string) (*domain.EventAnalytics, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := attendedEvent(ctx, s.eventRepo, eventID, userID)
	if err != nil {
		return nil, err
	}
	if event.CreatedBy != userID {
		return nil, domain.ErrForbidden
	}
	posts, err := s.postRepo.ListByEvent(ctx, eventID, false)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	seen := make(map[string]bool)
	var ids []string
	for _, p := range posts {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			ids = append(ids, p.UserID)
		}
	}
	names := make(map[string]string, len(ids))
	if len(ids) > 0 {
		users, err := s.userRepo.ListByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("list posters: %w", err)
		}
		for _, u := range users {
			names[u.ID] = u.Name()
		}
	}

	a := domain.ComputeAnalytics(posts, names)
	a.EventID = eventID
	return a, nil
}
