package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"grubio/internal/domain"
)

const maxPostTitleLen = 120

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

type postService struct {
	eventRepo      domain.EventRepository
	postRepo       domain.PostRepository
	notifier       domain.ClaimNotifier
	imageStore     domain.ImageStore
	publisher      domain.ChangePublisher
	contextTimeout time.Duration
}

// NewPostService creates a PostService. imageStore may be nil, in which case
// CreateImageUpload returns domain.ErrUnavailable.
func NewPostService(
	eventRepo domain.EventRepository,
	postRepo domain.PostRepository,
	notifier domain.ClaimNotifier,
	imageStore domain.ImageStore,
	publisher domain.ChangePublisher,
	timeout time.Duration,
) domain.PostService {
	return &postService{
		eventRepo:      eventRepo,
		postRepo:       postRepo,
		notifier:       notifier,
		imageStore:     imageStore,
		publisher:      publisher,
		contextTimeout: timeout,
	}
}

func (s *postService) CreatePost(ctx context.Context, eventID, userID string, input domain.PostInput) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	title := strings.TrimSpace(input.Title)
	var problems []string
	if title == "" {
		problems = append(problems, "title is required")
	} else if len(title) > maxPostTitleLen {
		problems = append(problems, fmt.Sprintf("title must be at most %d characters", maxPostTitleLen))
	}
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}
	if _, err := attendedEvent(ctx, s.eventRepo, eventID, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	post := &domain.Post{
		EventID:     eventID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Location:    trimmedOrNil(input.Location),
		ImageURL:    trimmedOrNil(input.ImageURL),
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.publisher.Publish(domain.EventPostsTopic(eventID))
	return post, nil
}

func (s *postService) ListActivePosts(ctx context.Context, eventID, userID, query string) ([]*domain.Post, error) {
	posts, err := s.list(ctx, eventID, userID, true)
	if err != nil {
		return nil, err
	}
	return domain.FilterPostsByTitle(posts, query), nil
}

func (s *postService) ListAllPosts(ctx context.Context, eventID, userID string) ([]*domain.Post, error) {
	return s.list(ctx, eventID, userID, false)
}

func (s *postService) list(ctx context.Context, eventID, userID string, activeOnly bool) ([]*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := attendedEvent(ctx, s.eventRepo, eventID, userID); err != nil {
		return nil, err
	}
	posts, err := s.postRepo.ListByEvent(ctx, eventID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if posts == nil {
		posts = []*domain.Post{}
	}
	return posts, nil
}

// ClaimPost records userID as the claimant. The store write only succeeds while
// the post is unclaimed and not completed, so of several concurrent claimants
// exactly one wins and the rest see ErrAlreadyClaimed.
func (s *postService) ClaimPost(ctx context.Context, eventID, postID, userID string) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, post, err := s.load(ctx, eventID, postID, userID)
	if err != nil {
		return nil, err
	}
	return s.claim(ctx, event, post, userID)
}

func (s *postService) claim(ctx context.Context, event *domain.Event, post *domain.Post, userID string) (*domain.Post, error) {
	if post.UserID == userID {
		return nil, domain.ErrForbidden
	}
	if err := claimConflict(post, userID); err != nil {
		return nil, err
	}
	if post.IsClaimedBy(userID) {
		return post, nil
	}

	updated, ok, err := s.postRepo.Claim(ctx, post.ID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("claim post: %w", err)
	}
	if !ok {
		if err := claimConflict(updated, userID); err != nil {
			return nil, err
		}
		return updated, nil
	}

	if err := s.notifier.NotifyClaim(ctx, event, updated, userID); err != nil {
		return nil, s.revertClaim(ctx, post.ID, userID, fmt.Errorf("notify owner: %w", err))
	}
	s.publisher.Publish(domain.EventPostsTopic(event.ID))
	return updated, nil
}

// revertClaim releases a claim whose owner notification could not be written,
// so a retry claims again and notifies. It returns cause, joined with any
// rollback failure.
func (s *postService) revertClaim(ctx context.Context, postID, userID string, cause error) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.contextTimeout)
	defer cancel()
	if _, _, err := s.postRepo.Unclaim(ctx, postID, userID); err != nil {
		return errors.Join(cause, fmt.Errorf("revert claim: %w", err))
	}
	return cause
}

// claimConflict reports why userID cannot hold a claim on post, or nil if it can.
func claimConflict(post *domain.Post, userID string) error {
	switch {
	case post.Completed:
		return domain.ErrPostCompleted
	case post.ClaimedBy != nil && *post.ClaimedBy != userID:
		return domain.ErrAlreadyClaimed
	}
	return nil
}

func (s *postService) UnclaimPost(ctx context.Context, eventID, postID, userID string) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	_, post, err := s.load(ctx, eventID, postID, userID)
	if err != nil {
		return nil, err
	}
	return s.unclaim(ctx, post, userID)
}

func (s *postService) unclaim(ctx context.Context, post *domain.Post, userID string) (*domain.Post, error) {
	if !post.IsClaimedBy(userID) {
		return nil, domain.ErrNotClaimant
	}
	if post.Completed {
		return nil, domain.ErrPostCompleted
	}
	updated, ok, err := s.postRepo.Unclaim(ctx, post.ID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("unclaim post: %w", err)
	}
	if !ok {
		if updated != nil && updated.Completed {
			return nil, domain.ErrPostCompleted
		}
		return nil, domain.ErrNotClaimant
	}
	s.publisher.Publish(domain.EventPostsTopic(post.EventID))
	return updated, nil
}

func (s *postService) ToggleClaim(ctx context.Context, eventID, postID, userID string) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, post, err := s.load(ctx, eventID, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.IsClaimedBy(userID) {
		return s.unclaim(ctx, post, userID)
	}
	return s.claim(ctx, event, post, userID)
}

// CompletePost marks the post completed. Completion is permanent.
func (s *postService) CompletePost(ctx context.Context, eventID, postID, userID string) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	_, post, err := s.load(ctx, eventID, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if post.Completed {
		return post, nil
	}
	updated, ok, err := s.postRepo.Complete(ctx, post.ID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("complete post: %w", err)
	}
	if ok {
		s.publisher.Publish(domain.EventPostsTopic(eventID))
	}
	return updated, nil
}

func (s *postService) CreateImageUpload(ctx context.Context, eventID, userID, contentType string) (*domain.ImageUpload, error) {
	if s.imageStore == nil {
		return nil, domain.ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, domain.NewValidationError("content_type must be one of image/jpeg, image/png, image/webp, image/heic")
	}
	if _, err := attendedEvent(ctx, s.eventRepo, eventID, userID); err != nil {
		return nil, err
	}
	key := path.Join("events", eventID, "posts", uuid.NewString()+ext)
	upload, err := s.imageStore.PresignUpload(ctx, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return upload, nil
}

// load returns the event and post after checking that userID attends the event.
func (s *postService) load(ctx context.Context, eventID, postID, userID string) (*domain.Event, *domain.Post, error) {
	event, err := attendedEvent(ctx, s.eventRepo, eventID, userID)
	if err != nil {
		return nil, nil, err
	}
	post, err := s.postRepo.GetByID(ctx, eventID, postID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get post: %w", err)
	}
	return event, post, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
