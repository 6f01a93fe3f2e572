package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"grubio/internal/domain"
)

const pushTitle = "Your food was claimed"

type claimNotifier struct {
	notificationRepo domain.NotificationRepository
	userRepo         domain.UserRepository
	deviceRepo       domain.DeviceRepository
	pusher           domain.Pusher
	emailService     domain.EmailService
	publisher        domain.ChangePublisher
	logger           *slog.Logger
}

// NewClaimNotifier creates a ClaimNotifier. pusher and emailService may be nil to
// skip that channel.
func NewClaimNotifier(
	notificationRepo domain.NotificationRepository,
	userRepo domain.UserRepository,
	deviceRepo domain.DeviceRepository,
	pusher domain.Pusher,
	emailService domain.EmailService,
	publisher domain.ChangePublisher,
	logger *slog.Logger,
) domain.ClaimNotifier {
	return &claimNotifier{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		deviceRepo:       deviceRepo,
		pusher:           pusher,
		emailService:     emailService,
		publisher:        publisher,
		logger:           logger,
	}
}

// NotifyClaim writes exactly one claim notification for the post owner and then
// fans out to email and push. The channels run independently under ctx; a failure
// in one does not cancel the other. Delivery failures are logged, not returned.
func (n *claimNotifier) NotifyClaim(ctx context.Context, event *domain.Event, post *domain.Post, claimantID string) error {
	claimant, err := n.userRepo.GetByID(ctx, claimantID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("get claimant: %w", err)
	}
	notification := domain.NewClaimNotification(post, claimant, time.Now())
	if err := n.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	n.publisher.Publish(domain.NotificationsTopic(post.UserID))

	var g errgroup.Group
	if n.emailService != nil {
		g.Go(func() error {
			owner, err := n.userRepo.GetByID(ctx, post.UserID)
			if err != nil {
				return fmt.Errorf("get owner: %w", err)
			}
			return n.emailService.SendClaimNotice(ctx, &domain.ClaimEmailData{
				Email:        owner.Email,
				OwnerName:    owner.Name(),
				ClaimantName: claimant.Name(),
				PostTitle:    post.Title,
				EventTitle:   event.Title,
			})
		})
	}
	if n.pusher != nil {
		g.Go(func() error {
			devices, err := n.deviceRepo.ListByUser(ctx, post.UserID)
			if err != nil {
				return fmt.Errorf("list devices: %w", err)
			}
			data := map[string]string{"event_id": post.EventID, "post_id": post.ID, "notification_id": notification.ID}
			var errs []error
			for _, d := range devices {
				if err := n.pusher.Push(ctx, d, pushTitle, notification.Message, data); err != nil {
					errs = append(errs, fmt.Errorf("device %s: %w", d.ID, err))
				}
			}
			return errors.Join(errs...)
		})
	}
	if err := g.Wait(); err != nil {
		n.logger.WarnContext(ctx, "claim delivery incomplete", "post_id", post.ID, "owner_id", post.UserID, "err", err)
	}
	return nil
}
