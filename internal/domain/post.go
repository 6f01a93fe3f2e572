package domain

import (
	"context"
	"strings"
	"time"
)

// PostState is the claim lifecycle state of a post.
type PostState string

const (
	PostUnclaimed PostState = "unclaimed"
	PostClaimed   PostState = "claimed"
	PostCompleted PostState = "completed"
)

// Post is a food item offered by an attendee of an event.
// swagger:model Post
type Post struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    *string   `json:"location,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	UserID      string    `json:"user_id"`
	ClaimedBy   *string   `json:"claimed_by,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// State returns the lifecycle state. Completed wins over a claim.
func (p *Post) State() PostState {
	switch {
	case p.Completed:
		return PostCompleted
	case p.ClaimedBy != nil:
		return PostClaimed
	default:
		return PostUnclaimed
	}
}

// IsClaimedBy reports whether userID holds the claim on the post.
func (p *Post) IsClaimedBy(userID string) bool {
	return p.ClaimedBy != nil && *p.ClaimedBy == userID
}

// CanClaim reports whether userID may be offered the claim control. Owners never are.
func (p *Post) CanClaim(userID string) bool {
	if p.UserID == userID || p.Completed {
		return false
	}
	return p.ClaimedBy == nil || *p.ClaimedBy == userID
}

// PostInput holds the user-supplied fields of a new post.
type PostInput struct {
	Title       string
	Description string
	Location    *string
	ImageURL    *string
}

// FilterPostsByTitle returns the posts whose title contains query, ignoring case.
// Source order is preserved; an empty query returns posts unchanged.
func FilterPostsByTitle(posts []*Post, query string) []*Post {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return posts
	}
	out := make([]*Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), q) {
			out = append(out, p)
		}
	}
	return out
}

// PostRepository defines the interface for post storage.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, eventID, postID string) (*Post, error)
	// ListByEvent returns the event's posts newest first; activeOnly keeps completed == false.
	ListByEvent(ctx context.Context, eventID string, activeOnly bool) ([]*Post, error)
	// Claim sets claimed_by only while the post is unclaimed and not completed. ok is false when no row matched.
	Claim(ctx context.Context, postID, userID string) (post *Post, ok bool, err error)
	// Unclaim clears claimed_by only while userID holds the claim and the post is not completed.
	Unclaim(ctx context.Context, postID, userID string) (post *Post, ok bool, err error)
	// Complete marks the post completed when ownerID owns it. ok is false when no row matched.
	Complete(ctx context.Context, postID, ownerID string) (post *Post, ok bool, err error)
}

// PostService defines the post and claim lifecycle operations.
type PostService interface {
	CreatePost(ctx context.Context, eventID, userID string, input PostInput) (*Post, error)
	ListActivePosts(ctx context.Context, eventID, userID, query string) ([]*Post, error)
	ListAllPosts(ctx context.Context, eventID, userID string) ([]*Post, error)
	ClaimPost(ctx context.Context, eventID, postID, userID string) (*Post, error)
	UnclaimPost(ctx context.Context, eventID, postID, userID string) (*Post, error)
	ToggleClaim(ctx context.Context, eventID, postID, userID string) (*Post, error)
	CompletePost(ctx context.Context, eventID, postID, userID string) (*Post, error)
	CreateImageUpload(ctx context.Context, eventID, userID, contentType string) (*ImageUpload, error)
}

// ImageUpload is a presigned upload target for a post image.
type ImageUpload struct {
	UploadURL string `json:"upload_url"`
	ImageURL  string `json:"image_url"`
	ExpiresIn int    `json:"expires_in"`
}

// ImageStore issues presigned upload URLs for post images.
type ImageStore interface {
	PresignUpload(ctx context.Context, key, contentType string) (*ImageUpload, error)
}
