package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"grubio/internal/domain"
)

var devicePlatforms = map[string]bool{"ios": true, "android": true}

type notificationService struct {
	notificationRepo domain.NotificationRepository
	deviceRepo       domain.DeviceRepository
	publisher        domain.ChangePublisher
	contextTimeout   time.Duration
}

func NewNotificationService(
	notificationRepo domain.NotificationRepository,
	deviceRepo domain.DeviceRepository,
	publisher domain.ChangePublisher,
	timeout time.Duration,
) domain.NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		deviceRepo:       deviceRepo,
		publisher:        publisher,
		contextTimeout:   timeout,
	}
}

func (s *notificationService) ListUnread(ctx context.Context, userID string) ([]*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.notificationRepo.ListUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list unread notifications: %w", err)
	}
	if list == nil {
		list = []*domain.Notification{}
	}
	return list, nil
}

func (s *notificationService) ListAll(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, total, err := s.notificationRepo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	if list == nil {
		list = []*domain.Notification{}
	}
	return list, total, nil
}

// MarkRead marks one of the user's notifications read. Notifications of other
// users are reported as not found.
func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	n, err := s.notificationRepo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	s.publisher.Publish(domain.NotificationsTopic(userID))
	return n, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	count, err := s.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	if count > 0 {
		s.publisher.Publish(domain.NotificationsTopic(userID))
	}
	return count, nil
}

func (s *notificationService) RegisterDevice(ctx context.Context, userID, token, platform string) (*domain.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	token = strings.TrimSpace(token)
	platform = strings.ToLower(strings.TrimSpace(platform))
	var problems []string
	if token == "" {
		problems = append(problems, "token is required")
	}
	if !devicePlatforms[platform] {
		problems = append(problems, "platform must be ios or android")
	}
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}
	d := &domain.Device{UserID: userID, Token: token, Platform: platform, CreatedAt: time.Now()}
	if err := s.deviceRepo.Upsert(ctx, d); err != nil {
		return nil, fmt.Errorf("register device: %w", err)
	}
	return d, nil
}
