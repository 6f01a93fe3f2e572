package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"grubio/internal/delivery/http/helpers"
	"grubio/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postRequest(method, target, body string) *http.Request {
	req := withPrincipal(httptest.NewRequest(method, target, bytes.NewBufferString(body)), "u2")
	req.SetPathValue("eventID", "ev-1")
	req.SetPathValue("postID", "p1")
	return req
}

func TestPostController_CreatePost(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
	}{
		{"created", `{"title":"Bagels","description":"a dozen","location":"Room 4","image_url":"https://cdn.example.com/b.jpg"}`, nil, http.StatusCreated},
		{"missing title", `{"description":"a dozen"}`, nil, http.StatusBadRequest},
		{"bad image url", `{"title":"Bagels","image_url":"not a url"}`, nil, http.StatusBadRequest},
		{"not attendee", `{"title":"Bagels"}`, domain.ErrForbidden, http.StatusForbidden},
		{"no event", `{"title":"Bagels"}`, domain.ErrNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePostService{post: &domain.Post{ID: "p1", Title: "Bagels"}, err: tt.svcErr}
			ctrl := NewPostController(testLogger, svc)
			rr := httptest.NewRecorder()

			ctrl.CreatePost(rr, postRequest(http.MethodPost, "/events/ev-1/posts", tt.body))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusCreated {
				require.NotNil(t, svc.gotInput.Location)
				assert.Equal(t, "Room 4", *svc.gotInput.Location)
				assert.Equal(t, "Bagels", svc.gotInput.Title)
			}
		})
	}
}

func TestPostController_ListPosts(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCall   string
		wantQuery  string
	}{
		{"active", "/events/ev-1/posts", http.StatusOK, "active", ""},
		{"search", "/events/ev-1/posts?q=bag", http.StatusOK, "active", "bag"},
		{"all", "/events/ev-1/posts?all=true", http.StatusOK, "all", ""},
		{"bad all", "/events/ev-1/posts?all=maybe", http.StatusBadRequest, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePostService{posts: []*domain.Post{{ID: "p1"}}}
			ctrl := NewPostController(testLogger, svc)
			rr := httptest.NewRecorder()

			ctrl.ListPosts(rr, postRequest(http.MethodGet, tt.target, ""))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCall == "" {
				assert.Empty(t, svc.calls)
				return
			}
			assert.Equal(t, []string{tt.wantCall}, svc.calls)
			assert.Equal(t, tt.wantQuery, svc.gotQuery)
		})
	}
}

func TestPostController_ClaimLifecycle(t *testing.T) {
	claimant := "u2"
	tests := []struct {
		name       string
		call       func(c *PostController, w http.ResponseWriter, r *http.Request)
		method     string
		svcErr     error
		wantStatus int
		wantCode   string
		wantCall   string
	}{
		{"claim", (*PostController).ClaimPost, http.MethodPost, nil, http.StatusOK, "", "claim"},
		{"claim taken", (*PostController).ClaimPost, http.MethodPost, domain.ErrAlreadyClaimed, http.StatusConflict, helpers.ErrCodeConflict, "claim"},
		{"claim own post", (*PostController).ClaimPost, http.MethodPost, domain.ErrForbidden, http.StatusForbidden, helpers.ErrCodeForbidden, "claim"},
		{"claim completed", (*PostController).ClaimPost, http.MethodPost, domain.ErrPostCompleted, http.StatusConflict, helpers.ErrCodeConflict, "claim"},
		{"unclaim", (*PostController).UnclaimPost, http.MethodDelete, nil, http.StatusOK, "", "unclaim"},
		{"unclaim not claimant", (*PostController).UnclaimPost, http.MethodDelete, domain.ErrNotClaimant, http.StatusConflict, helpers.ErrCodeConflict, "unclaim"},
		{"toggle", (*PostController).ToggleClaim, http.MethodPost, nil, http.StatusOK, "", "toggle"},
		{"complete", (*PostController).CompletePost, http.MethodPost, nil, http.StatusOK, "", "complete"},
		{"complete not owner", (*PostController).CompletePost, http.MethodPost, domain.ErrForbidden, http.StatusForbidden, helpers.ErrCodeForbidden, "complete"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePostService{post: &domain.Post{ID: "p1", ClaimedBy: &claimant}, err: tt.svcErr}
			ctrl := NewPostController(testLogger, svc)
			rr := httptest.NewRecorder()

			tt.call(ctrl, rr, postRequest(tt.method, "/events/ev-1/posts/p1/claim", ""))

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, []string{tt.wantCall}, svc.calls)
			var post domain.Post
			apiErr := decodeEnvelope(t, rr, &post)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			assert.Equal(t, "p1", post.ID)
		})
	}
}

func TestPostController_CreateImageUpload(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
	}{
		{"ok", `{"content_type":"image/jpeg"}`, nil, http.StatusCreated},
		{"missing type", `{}`, nil, http.StatusBadRequest},
		{"not configured", `{"content_type":"image/jpeg"}`, domain.ErrUnavailable, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePostService{upload: &domain.ImageUpload{UploadURL: "https://s3/put", ImageURL: "https://cdn/x.jpg"}, err: tt.svcErr}
			ctrl := NewPostController(testLogger, svc)
			rr := httptest.NewRecorder()

			ctrl.CreateImageUpload(rr, postRequest(http.MethodPost, "/events/ev-1/posts/uploads", tt.body))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusCreated {
				var up domain.ImageUpload
				require.Nil(t, decodeEnvelope(t, rr, &up))
				assert.Equal(t, "https://cdn/x.jpg", up.ImageURL)
			}
		})
	}
}
