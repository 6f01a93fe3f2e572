package controllers

import (
	"context"
	"io"
	"log/slog"

	"grubio/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

type fakeAuthService struct {
	signUpUser  *domain.User
	signInToken string
	signInUser  *domain.User
	me          *domain.User
	err         error

	gotEmail, gotPassword, gotName string
	signedOut                      *domain.Principal
}

func (f *fakeAuthService) SignUp(_ context.Context, email, password, displayName string) (*domain.User, error) {
	f.gotEmail, f.gotPassword, f.gotName = email, password, displayName
	return f.signUpUser, f.err
}

func (f *fakeAuthService) SignIn(_ context.Context, email, password string) (string, *domain.User, error) {
	f.gotEmail, f.gotPassword = email, password
	if f.err != nil {
		return "", nil, f.err
	}
	return f.signInToken, f.signInUser, nil
}

func (f *fakeAuthService) SignOut(_ context.Context, p *domain.Principal) error {
	f.signedOut = p
	return f.err
}

func (f *fakeAuthService) Authenticate(context.Context, string) (*domain.Principal, error) {
	return nil, f.err
}

func (f *fakeAuthService) CheckSession(context.Context, *domain.Principal) error { return f.err }

func (f *fakeAuthService) Me(context.Context, string) (*domain.User, error) { return f.me, f.err }

func (f *fakeAuthService) UpdateProfile(_ context.Context, userID, displayName string) (*domain.User, error) {
	f.gotName = displayName
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: userID, DisplayName: displayName}, nil
}

type fakeEventService struct {
	event   *domain.Event
	events  []*domain.Event
	joined  bool
	png     []byte
	err     error
	created *domain.Event
	gotCode string
}

func (f *fakeEventService) CreateEvent(_ context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = "ev-1"
	e.JoinCode = "ABC123"
	f.created = e
	return nil
}

func (f *fakeEventService) JoinByCode(_ context.Context, code, _ string) (*domain.Event, bool, error) {
	f.gotCode = code
	return f.event, f.joined, f.err
}

func (f *fakeEventService) JoinByQR(_ context.Context, payload, _ string) (*domain.Event, bool, error) {
	f.gotCode = payload
	return f.event, f.joined, f.err
}

func (f *fakeEventService) GetEvent(context.Context, string, string) (*domain.Event, error) {
	return f.event, f.err
}

func (f *fakeEventService) ListMyEvents(context.Context, string) ([]*domain.Event, error) {
	return f.events, f.err
}

func (f *fakeEventService) JoinQRCode(context.Context, string, string) ([]byte, error) {
	return f.png, f.err
}

type fakePostService struct {
	post     *domain.Post
	posts    []*domain.Post
	upload   *domain.ImageUpload
	err      error
	calls    []string
	gotQuery string
	gotInput domain.PostInput
}

func (f *fakePostService) CreatePost(_ context.Context, _, _ string, in domain.PostInput) (*domain.Post, error) {
	f.calls = append(f.calls, "create")
	f.gotInput = in
	return f.post, f.err
}

func (f *fakePostService) ListActivePosts(_ context.Context, _, _, query string) ([]*domain.Post, error) {
	f.calls = append(f.calls, "active")
	f.gotQuery = query
	return f.posts, f.err
}

func (f *fakePostService) ListAllPosts(context.Context, string, string) ([]*domain.Post, error) {
	f.calls = append(f.calls, "all")
	return f.posts, f.err
}

func (f *fakePostService) ClaimPost(context.Context, string, string, string) (*domain.Post, error) {
	f.calls = append(f.calls, "claim")
	return f.post, f.err
}

func (f *fakePostService) UnclaimPost(context.Context, string, string, string) (*domain.Post, error) {
	f.calls = append(f.calls, "unclaim")
	return f.post, f.err
}

func (f *fakePostService) ToggleClaim(context.Context, string, string, string) (*domain.Post, error) {
	f.calls = append(f.calls, "toggle")
	return f.post, f.err
}

func (f *fakePostService) CompletePost(context.Context, string, string, string) (*domain.Post, error) {
	f.calls = append(f.calls, "complete")
	return f.post, f.err
}

func (f *fakePostService) CreateImageUpload(context.Context, string, string, string) (*domain.ImageUpload, error) {
	f.calls = append(f.calls, "upload")
	return f.upload, f.err
}

type fakeNotificationService struct {
	items     []*domain.Notification
	total     int
	marked    int
	err       error
	gotParams domain.PaginationParams
	calls     []string
}

func (f *fakeNotificationService) ListUnread(context.Context, string) ([]*domain.Notification, error) {
	f.calls = append(f.calls, "unread")
	return f.items, f.err
}

func (f *fakeNotificationService) ListAll(_ context.Context, _ string, p domain.PaginationParams) ([]*domain.Notification, int, error) {
	f.calls = append(f.calls, "all")
	f.gotParams = p
	return f.items, f.total, f.err
}

func (f *fakeNotificationService) MarkRead(_ context.Context, id, userID string) (*domain.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Notification{ID: id, UserID: userID, Read: true}, nil
}

func (f *fakeNotificationService) MarkAllRead(context.Context, string) (int, error) {
	return f.marked, f.err
}

func (f *fakeNotificationService) RegisterDevice(_ context.Context, userID, token, platform string) (*domain.Device, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Device{ID: "d1", UserID: userID, Token: token, Platform: platform}, nil
}

type fakeAnalyticsService struct {
	result *domain.EventAnalytics
	err    error
}

func (f *fakeAnalyticsService) GetEventAnalytics(context.Context, string, string) (*domain.EventAnalytics, error) {
	return f.result, f.err
}
