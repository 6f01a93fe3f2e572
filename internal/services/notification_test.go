package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"grubio/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationRepo struct {
	mu        sync.Mutex
	items     []*domain.Notification
	createErr error
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	n.ID = fmt.Sprintf("n-%d", len(f.items)+1)
	f.items = append(f.items, n)
	return nil
}

func (f *fakeNotificationRepo) ListUnread(ctx context.Context, userID string) ([]*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Notification
	for i := len(f.items) - 1; i >= 0; i-- {
		if n := f.items[i]; n.UserID == userID && !n.Read {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) ListByUser(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*domain.Notification
	for i := len(f.items) - 1; i >= 0; i-- {
		if f.items[i].UserID == userID {
			all = append(all, f.items[i])
		}
	}
	start := min(params.Offset(), len(all))
	end := min(start+params.PageSize, len(all))
	return all[start:end], len(all), nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.ID == notificationID && n.UserID == userID {
			n.Read = true
			return n, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.items {
		if n.UserID == userID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

type fakeDeviceRepo struct {
	devices map[string][]*domain.Device
}

func (f *fakeDeviceRepo) Upsert(ctx context.Context, d *domain.Device) error {
	if f.devices == nil {
		f.devices = make(map[string][]*domain.Device)
	}
	d.ID = "dev-" + d.Token
	f.devices[d.UserID] = append(f.devices[d.UserID], d)
	return nil
}

func (f *fakeDeviceRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Device, error) {
	return f.devices[userID], nil
}

type fakePusher struct {
	mu     sync.Mutex
	bodies []string
	err    error
}

func (f *fakePusher) Push(ctx context.Context, d *domain.Device, title, body string, data map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies = append(f.bodies, d.Token+":"+body)
	return f.err
}

func TestClaimNotifier_NotifyClaim(t *testing.T) {
	event := &domain.Event{ID: "ev-1", Title: "Hackathon"}
	post := &domain.Post{ID: "p1", EventID: "ev-1", Title: "Leftover pizza", UserID: "owner"}

	tests := []struct {
		name        string
		claimant    *domain.User
		wantMessage string
	}{
		{name: "display name", claimant: &domain.User{ID: "c", Email: "bo@example.com", DisplayName: "Bo"}, wantMessage: "Bo claimed your post: Leftover pizza"},
		{name: "email fallback", claimant: &domain.User{ID: "c", Email: "bo@example.com"}, wantMessage: "bo@example.com claimed your post: Leftover pizza"},
		{name: "anonymous fallback", claimant: nil, wantMessage: "Anonymous claimed your post: Leftover pizza"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newFakeUserRepo(&domain.User{ID: "owner", Email: "ana@example.com", DisplayName: "Ana"})
			if tt.claimant != nil {
				users.byID[tt.claimant.ID] = tt.claimant
			}
			notifications := &fakeNotificationRepo{}
			devices := &fakeDeviceRepo{devices: map[string][]*domain.Device{"owner": {{ID: "d1", Token: "tok", UserID: "owner"}}}}
			pusher := &fakePusher{}
			email := &fakeEmailService{}
			pub := &recordingPublisher{}
			n := NewClaimNotifier(notifications, users, devices, pusher, email, pub, testLogger)

			require.NoError(t, n.NotifyClaim(context.Background(), event, post, "c"))

			require.Len(t, notifications.items, 1)
			got := notifications.items[0]
			assert.Equal(t, "owner", got.UserID)
			assert.Equal(t, domain.NotificationTypeClaim, got.Type)
			assert.Equal(t, tt.wantMessage, got.Message)
			assert.Equal(t, "ev-1", got.EventID)
			assert.Equal(t, "p1", got.PostID)
			assert.False(t, got.Read)
			assert.Equal(t, []string{domain.NotificationsTopic("owner")}, pub.published())
			assert.Equal(t, []string{"tok:" + tt.wantMessage}, pusher.bodies)
			require.Len(t, email.claims, 1)
			assert.Equal(t, "ana@example.com", email.claims[0].Email)
			assert.Equal(t, "Hackathon", email.claims[0].EventTitle)
		})
	}
}

func TestClaimNotifier_DeliveryFailuresAreBestEffort(t *testing.T) {
	users := newFakeUserRepo(&domain.User{ID: "owner", Email: "ana@example.com"})
	devices := &fakeDeviceRepo{devices: map[string][]*domain.Device{"owner": {{ID: "d1", Token: "tok"}}}}
	n := NewClaimNotifier(&fakeNotificationRepo{}, users, devices,
		&fakePusher{err: errors.New("bad token")}, &fakeEmailService{err: errors.New("ses down")},
		&recordingPublisher{}, testLogger)

	err := n.NotifyClaim(context.Background(), &domain.Event{ID: "ev-1"}, &domain.Post{ID: "p1", UserID: "owner"}, "c")
	assert.NoError(t, err)
}

// slowPusher takes a while to deliver and records the context state when it finishes.
type slowPusher struct {
	delay  time.Duration
	ctxErr error
	done   bool
}

func (p *slowPusher) Push(ctx context.Context, d *domain.Device, title, body string, data map[string]string) error {
	select {
	case <-ctx.Done():
	case <-time.After(p.delay):
	}
	p.ctxErr = ctx.Err()
	p.done = true
	return p.ctxErr
}

func TestClaimNotifier_EmailFailureDoesNotCancelPush(t *testing.T) {
	users := newFakeUserRepo(&domain.User{ID: "owner", Email: "ana@example.com"})
	devices := &fakeDeviceRepo{devices: map[string][]*domain.Device{"owner": {{ID: "d1", Token: "tok"}}}}
	pusher := &slowPusher{delay: 100 * time.Millisecond}
	n := NewClaimNotifier(&fakeNotificationRepo{}, users, devices, pusher,
		&fakeEmailService{err: errors.New("ses down")}, &recordingPublisher{}, testLogger)

	err := n.NotifyClaim(context.Background(), &domain.Event{ID: "ev-1"}, &domain.Post{ID: "p1", UserID: "owner"}, "c")

	require.NoError(t, err)
	require.True(t, pusher.done)
	assert.NoError(t, pusher.ctxErr)
}

func TestClaimNotifier_CreateFailureReturned(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewClaimNotifier(&fakeNotificationRepo{createErr: errors.New("db down")}, newFakeUserRepo(), &fakeDeviceRepo{}, nil, nil, pub, testLogger)

	err := n.NotifyClaim(context.Background(), &domain.Event{ID: "ev-1"}, &domain.Post{ID: "p1", UserID: "owner"}, "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create notification")
	assert.Empty(t, pub.published())
}

func TestNotificationService(t *testing.T) {
	repo := &fakeNotificationRepo{}
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(context.Background(), &domain.Notification{UserID: "u1", Message: fmt.Sprintf("m%d", i), CreatedAt: time.Now()}))
	}
	require.NoError(t, repo.Create(context.Background(), &domain.Notification{UserID: "u2", Message: "other"}))
	pub := &recordingPublisher{}
	svc := NewNotificationService(repo, &fakeDeviceRepo{}, pub, time.Second)
	ctx := context.Background()

	unread, err := svc.ListUnread(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, unread, 3)
	assert.Equal(t, "m2", unread[0].Message)

	_, err = svc.MarkRead(ctx, "n-4", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	n, err := svc.MarkRead(ctx, "n-1", "u1")
	require.NoError(t, err)
	assert.True(t, n.Read)

	unread, err = svc.ListUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	count, err := svc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = svc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, count)

	page, total, err := svc.ListAll(ctx, "u1", domain.PaginationParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 2)

	assert.Equal(t, []string{
		domain.NotificationsTopic("u1"),
		domain.NotificationsTopic("u1"),
	}, pub.published())

	none, err := svc.ListUnread(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
}

func TestNotificationService_RegisterDevice(t *testing.T) {
	devices := &fakeDeviceRepo{}
	svc := NewNotificationService(&fakeNotificationRepo{}, devices, &recordingPublisher{}, time.Second)

	d, err := svc.RegisterDevice(context.Background(), "u1", " abc ", "iOS")
	require.NoError(t, err)
	assert.Equal(t, "abc", d.Token)
	assert.Equal(t, "ios", d.Platform)
	assert.Len(t, devices.devices["u1"], 1)

	_, err = svc.RegisterDevice(context.Background(), "u1", "", "windows")
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 2)
}
