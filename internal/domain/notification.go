package domain

import (
	"context"
	"fmt"
	"time"
)

// NotificationTypeClaim is the type of notifications emitted when a post is claimed.
const NotificationTypeClaim = "claim"

// Notification tells a post owner that someone acted on their post.
// swagger:model Notification
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	EventID   string    `json:"event_id"`
	PostID    string    `json:"post_id"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewClaimNotification builds the notification sent to the owner of post when claimant claims it.
func NewClaimNotification(post *Post, claimant *User, createdAt time.Time) *Notification {
	return &Notification{
		UserID:    post.UserID,
		Type:      NotificationTypeClaim,
		Message:   fmt.Sprintf("%s claimed your post: %s", claimant.Name(), post.Title),
		EventID:   post.EventID,
		PostID:    post.ID,
		Read:      false,
		CreatedAt: createdAt,
	}
}

// Device is a push notification target registered by a user.
// swagger:model Device
type Device struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationRepository defines storage operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListUnread(ctx context.Context, userID string) ([]*Notification, error)
	ListByUser(ctx context.Context, userID string, params PaginationParams) ([]*Notification, int, error)
	// MarkRead sets read = true on the recipient's notification. Returns ErrNotFound when userID has no such notification.
	MarkRead(ctx context.Context, notificationID, userID string) (*Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

// DeviceRepository stores push targets.
type DeviceRepository interface {
	Upsert(ctx context.Context, d *Device) error
	ListByUser(ctx context.Context, userID string) ([]*Device, error)
}

// Pusher delivers a push message to one device.
type Pusher interface {
	Push(ctx context.Context, device *Device, title, body string, data map[string]string) error
}

// NotificationService defines the notification feed operations.
type NotificationService interface {
	ListUnread(ctx context.Context, userID string) ([]*Notification, error)
	ListAll(ctx context.Context, userID string, params PaginationParams) ([]*Notification, int, error)
	MarkRead(ctx context.Context, notificationID, userID string) (*Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
	RegisterDevice(ctx context.Context, userID, token, platform string) (*Device, error)
}

// ClaimNotifier tells a post owner that their post was claimed. Recording the
// notification must succeed; email and push delivery are best effort.
type ClaimNotifier interface {
	NotifyClaim(ctx context.Context, event *Event, post *Post, claimantID string) error
}
