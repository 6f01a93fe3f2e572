package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"grubio/internal/delivery/http/helpers"
	"grubio/internal/domain"
)

// CreatePostRequest is the request body for POST /events/{eventID}/posts.
type CreatePostRequest struct {
	Title       string  `json:"title" validate:"required,max=120"`
	Description string  `json:"description" validate:"max=2000"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url,max=2048"`
}

// CreateImageUploadRequest is the request body for POST /events/{eventID}/posts/uploads.
type CreateImageUploadRequest struct {
	ContentType string `json:"content_type" validate:"required"`
}

// PostSuccessResponse is the success envelope for endpoints returning one post.
type PostSuccessResponse struct {
	Data  *domain.Post      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// PostListSuccessResponse is the success envelope for GET /events/{eventID}/posts.
type PostListSuccessResponse struct {
	Data  []*domain.Post    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ImageUploadSuccessResponse is the success envelope for POST /events/{eventID}/posts/uploads.
type ImageUploadSuccessResponse struct {
	Data  *domain.ImageUpload `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type PostController struct {
	Logger  *slog.Logger
	Service domain.PostService
}

func NewPostController(logger *slog.Logger, svc domain.PostService) *PostController {
	return &PostController{
		Logger:  logger,
		Service: svc,
	}
}

// CreatePost godoc
// @Summary Create a post
// @Description Offer a food item at an event. Attendees only.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body CreatePostRequest true "Post data"
// @Success 201 {object} controllers.PostSuccessResponse "data contains the created post"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/posts [post]
func (c *PostController) CreatePost(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	var req CreatePostRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	post, err := c.Service.CreatePost(r.Context(), eventID, p.UserID, domain.PostInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, post)
}

// ListPosts godoc
// @Summary List posts of an event
// @Description Active (not completed) posts newest first, optionally filtered by a case-insensitive title search. all=true returns completed posts too and ignores q.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param q query string false "Title search"
// @Param all query bool false "Include completed posts"
// @Success 200 {object} controllers.PostListSuccessResponse "data contains the posts"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/posts [get]
func (c *PostController) ListPosts(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	all := false
	if s := r.URL.Query().Get("all"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "all must be a boolean")
			return
		}
		all = v
	}
	var (
		posts []*domain.Post
		err   error
	)
	if all {
		posts, err = c.Service.ListAllPosts(r.Context(), eventID, p.UserID)
	} else {
		posts, err = c.Service.ListActivePosts(r.Context(), eventID, p.UserID, r.URL.Query().Get("q"))
	}
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, posts)
}

// CreateImageUpload godoc
// @Summary Get an image upload URL
// @Description Returns a presigned PUT URL for a post image and the URL to store in image_url.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body CreateImageUploadRequest true "Image content type"
// @Success 201 {object} controllers.ImageUploadSuccessResponse "data contains upload_url and image_url"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable (uploads not configured)"
// @Router /events/{eventID}/posts/uploads [post]
func (c *PostController) CreateImageUpload(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	var req CreateImageUploadRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	upload, err := c.Service.CreateImageUpload(r.Context(), eventID, p.UserID, req.ContentType)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, upload)
}

// ClaimPost godoc
// @Summary Claim a post
// @Description Claim an unclaimed post. Claiming a post you already hold is a no-op. The owner is notified.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param postID path string true "Post ID"
// @Success 200 {object} controllers.PostSuccessResponse "data contains the post"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (own post or not an attendee)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (claimed by someone else or completed)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/posts/{postID}/claim [post]
func (c *PostController) ClaimPost(w http.ResponseWriter, r *http.Request) {
	c.postAction(w, r, c.Service.ClaimPost)
}

// UnclaimPost godoc
// @Summary Release a claim
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param postID path string true "Post ID"
// @Success 200 {object} controllers.PostSuccessResponse "data contains the post"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not the claimant or completed)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/posts/{postID}/claim [delete]
func (c *PostController) UnclaimPost(w http.ResponseWriter, r *http.Request) {
	c.postAction(w, r, c.Service.UnclaimPost)
}

// ToggleClaim godoc
// @Summary Toggle a claim
// @Description Releases the claim when the caller holds it, claims the post otherwise.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param postID path string true "Post ID"
// @Success 200 {object} controllers.PostSuccessResponse "data contains the post"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/posts/{postID}/claim/toggle [post]
func (c *PostController) ToggleClaim(w http.ResponseWriter, r *http.Request) {
	c.postAction(w, r, c.Service.ToggleClaim)
}

// CompletePost godoc
// @Summary Complete a post
// @Description Mark the post as picked up. Owner only; completing twice is a no-op.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param postID path string true "Post ID"
// @Success 200 {object} controllers.PostSuccessResponse "data contains the post"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/posts/{postID}/complete [post]
func (c *PostController) CompletePost(w http.ResponseWriter, r *http.Request) {
	c.postAction(w, r, c.Service.CompletePost)
}

type postActionFunc func(ctx context.Context, eventID, postID, userID string) (*domain.Post, error)

func (c *PostController) postAction(w http.ResponseWriter, r *http.Request, action postActionFunc) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	postID, ok := pathParam(w, r, "postID")
	if !ok {
		return
	}
	post, err := action(r.Context(), eventID, postID, p.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, post)
}
