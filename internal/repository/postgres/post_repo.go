package postgres

import (
	"context"
	"database/sql"
	"errors"

	"grubio/internal/domain"
)

const postColumns = `id, event_id, title, description, location, image_url, user_id, claimed_by, completed, created_at, updated_at`

type postRepository struct {
	DB *sql.DB
}

func NewPostRepository(db *sql.DB) domain.PostRepository {
	return &postRepository{DB: db}
}

func scanPost(row interface{ Scan(...any) error }) (*domain.Post, error) {
	p := &domain.Post{}
	var location, imageURL, claimedBy sql.NullString
	err := row.Scan(&p.ID, &p.EventID, &p.Title, &p.Description, &location, &imageURL, &p.UserID, &claimedBy, &p.Completed, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if location.Valid {
		p.Location = &location.String
	}
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}
	if claimedBy.Valid {
		p.ClaimedBy = &claimedBy.String
	}
	return p, nil
}

func (r *postRepository) Create(ctx context.Context, p *domain.Post) error {
	query := `
		INSERT INTO posts (event_id, title, description, location, image_url, user_id, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		p.EventID, p.Title, p.Description, p.Location, p.ImageURL, p.UserID, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
}

func (r *postRepository) GetByID(ctx context.Context, eventID, postID string) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND event_id = $2`
	p, err := scanPost(r.DB.QueryRowContext(ctx, query, postID, eventID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *postRepository) current(ctx context.Context, postID string) (*domain.Post, error) {
	p, err := scanPost(r.DB.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, postID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

// ListByEvent returns the event's posts newest first. activeOnly excludes completed posts.
func (r *postRepository) ListByEvent(ctx context.Context, eventID string, activeOnly bool) ([]*domain.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE event_id = $1 AND (NOT $2 OR completed = false)
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Claim sets claimed_by only while the post is unclaimed, not completed and not
// owned by userID. When the condition fails it returns the stored post and false.
func (r *postRepository) Claim(ctx context.Context, postID, userID string) (*domain.Post, bool, error) {
	query := `
		UPDATE posts
		SET claimed_by = $2, updated_at = NOW()
		WHERE id = $1 AND claimed_by IS NULL AND completed = false AND user_id <> $2
		RETURNING ` + postColumns
	return r.conditional(ctx, postID, query, postID, userID)
}

// Unclaim clears claimed_by only if userID currently holds the claim.
func (r *postRepository) Unclaim(ctx context.Context, postID, userID string) (*domain.Post, bool, error) {
	query := `
		UPDATE posts
		SET claimed_by = NULL, updated_at = NOW()
		WHERE id = $1 AND claimed_by = $2 AND completed = false
		RETURNING ` + postColumns
	return r.conditional(ctx, postID, query, postID, userID)
}

// Complete marks the owner's post completed. There is no way back.
func (r *postRepository) Complete(ctx context.Context, postID, ownerID string) (*domain.Post, bool, error) {
	query := `
		UPDATE posts
		SET completed = true, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND completed = false
		RETURNING ` + postColumns
	p, ok, err := r.conditional(ctx, postID, query, postID, ownerID)
	if err == nil && !ok && p.UserID != ownerID {
		return nil, false, domain.ErrNotFound
	}
	return p, ok, err
}

func (r *postRepository) conditional(ctx context.Context, postID, query string, args ...any) (*domain.Post, bool, error) {
	p, err := scanPost(r.DB.QueryRowContext(ctx, query, args...))
	if err == nil {
		return p, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}
	p, err = r.current(ctx, postID)
	if err != nil {
		return nil, false, err
	}
	return p, false, nil
}
