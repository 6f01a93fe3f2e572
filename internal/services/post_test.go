package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"grubio/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePostRepo is an in-memory PostRepository whose Claim, Unclaim and Complete
// are conditional writes, like the SQL implementation.
type fakePostRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Post
	nextID int
}

func newFakePostRepo(posts ...*domain.Post) *fakePostRepo {
	f := &fakePostRepo{byID: make(map[string]*domain.Post), nextID: 1}
	for _, p := range posts {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakePostRepo) Create(ctx context.Context, p *domain.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = fmt.Sprintf("post-%d", f.nextID)
	f.nextID++
	f.byID[p.ID] = p
	return nil
}

func (f *fakePostRepo) get(postID string) (*domain.Post, bool) {
	p, ok := f.byID[postID]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

func (f *fakePostRepo) GetByID(ctx context.Context, eventID, postID string) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.get(postID)
	if !ok || p.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePostRepo) ListByEvent(ctx context.Context, eventID string, activeOnly bool) ([]*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Post
	for _, p := range f.byID {
		if p.EventID == eventID && (!activeOnly || !p.Completed) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakePostRepo) Claim(ctx context.Context, postID, userID string) (*domain.Post, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[postID]
	if !ok {
		return nil, false, domain.ErrNotFound
	}
	if p.ClaimedBy != nil || p.Completed || p.UserID == userID {
		cp := *p
		return &cp, false, nil
	}
	p.ClaimedBy = &userID
	cp := *p
	return &cp, true, nil
}

func (f *fakePostRepo) Unclaim(ctx context.Context, postID, userID string) (*domain.Post, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[postID]
	if !ok {
		return nil, false, domain.ErrNotFound
	}
	if !p.IsClaimedBy(userID) || p.Completed {
		cp := *p
		return &cp, false, nil
	}
	p.ClaimedBy = nil
	cp := *p
	return &cp, true, nil
}

func (f *fakePostRepo) Complete(ctx context.Context, postID, ownerID string) (*domain.Post, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[postID]
	if !ok || p.UserID != ownerID {
		return nil, false, domain.ErrNotFound
	}
	if p.Completed {
		cp := *p
		return &cp, false, nil
	}
	p.Completed = true
	cp := *p
	return &cp, true, nil
}

// countingNotifier records claim notifications.
type countingNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (n *countingNotifier) NotifyClaim(ctx context.Context, event *domain.Event, post *domain.Post, claimantID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, post.ID+":"+claimantID)
	return n.err
}

type fakeImageStore struct{ key, contentType string }

func (f *fakeImageStore) PresignUpload(ctx context.Context, key, contentType string) (*domain.ImageUpload, error) {
	f.key, f.contentType = key, contentType
	return &domain.ImageUpload{UploadURL: "https://upload/" + key, ImageURL: "https://cdn/" + key, ExpiresIn: 900}, nil
}

type postFixture struct {
	events   *fakeEventRepo
	posts    *fakePostRepo
	notifier *countingNotifier
	pub      *recordingPublisher
	svc      domain.PostService
}

// newPostFixture seeds event ev-1 (owner u1; attendees u1..u4) with an unclaimed post p1 by u1.
func newPostFixture(store domain.ImageStore) *postFixture {
	f := &postFixture{
		events: newFakeEventRepo(&domain.Event{ID: "ev-1", Title: "Hackathon", CreatedBy: "u1", Attendees: []string{"u1", "u2", "u3", "u4"}}),
		posts: newFakePostRepo(&domain.Post{
			ID: "p1", EventID: "ev-1", Title: "Leftover pizza", UserID: "u1", CreatedAt: time.Now(),
		}),
		notifier: &countingNotifier{},
		pub:      &recordingPublisher{},
	}
	f.svc = NewPostService(f.events, f.posts, f.notifier, store, f.pub, time.Second)
	return f
}

func TestPostService_CreatePost(t *testing.T) {
	f := newPostFixture(nil)
	loc := " Room 4 "
	empty := "  "

	p, err := f.svc.CreatePost(context.Background(), "ev-1", "u2", domain.PostInput{Title: " Bagels ", Location: &loc, ImageURL: &empty})
	require.NoError(t, err)
	assert.Equal(t, "Bagels", p.Title)
	assert.Equal(t, "u2", p.UserID)
	require.NotNil(t, p.Location)
	assert.Equal(t, "Room 4", *p.Location)
	assert.Nil(t, p.ImageURL)
	assert.Nil(t, p.ClaimedBy)
	assert.False(t, p.Completed)
	assert.Equal(t, []string{domain.EventPostsTopic("ev-1")}, f.pub.published())

	_, err = f.svc.CreatePost(context.Background(), "ev-1", "u2", domain.PostInput{Title: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.CreatePost(context.Background(), "ev-1", "stranger", domain.PostInput{Title: "Soup"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestPostService_ListActivePosts(t *testing.T) {
	f := newPostFixture(nil)
	now := time.Now()
	f.posts.byID["p2"] = &domain.Post{ID: "p2", EventID: "ev-1", Title: "Pizza Slices", UserID: "u2", CreatedAt: now.Add(time.Minute)}
	f.posts.byID["p3"] = &domain.Post{ID: "p3", EventID: "ev-1", Title: "Salad", UserID: "u2", CreatedAt: now.Add(2 * time.Minute)}
	f.posts.byID["p4"] = &domain.Post{ID: "p4", EventID: "ev-1", Title: "Cold pizza", UserID: "u2", Completed: true, CreatedAt: now.Add(3 * time.Minute)}

	active, err := f.svc.ListActivePosts(context.Background(), "ev-1", "u3", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p2", "p1"}, postIDs(active))

	found, err := f.svc.ListActivePosts(context.Background(), "ev-1", "u3", "PIZZA")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, postIDs(found))

	all, err := f.svc.ListAllPosts(context.Background(), "ev-1", "u3")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = f.svc.ListActivePosts(context.Background(), "ev-1", "stranger", "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func postIDs(posts []*domain.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func TestPostService_ClaimPost(t *testing.T) {
	t.Run("claim notifies owner once", func(t *testing.T) {
		f := newPostFixture(nil)
		p, err := f.svc.ClaimPost(context.Background(), "ev-1", "p1", "u2")
		require.NoError(t, err)
		require.NotNil(t, p.ClaimedBy)
		assert.Equal(t, "u2", *p.ClaimedBy)
		assert.Equal(t, domain.PostClaimed, p.State())
		assert.Equal(t, []string{"p1:u2"}, f.notifier.calls)

		again, err := f.svc.ClaimPost(context.Background(), "ev-1", "p1", "u2")
		require.NoError(t, err)
		assert.True(t, again.IsClaimedBy("u2"))
		assert.Len(t, f.notifier.calls, 1, "repeat claim by the same user must not notify again")
	})

	t.Run("owner cannot claim", func(t *testing.T) {
		f := newPostFixture(nil)
		_, err := f.svc.ClaimPost(context.Background(), "ev-1", "p1", "u1")
		assert.ErrorIs(t, err, domain.ErrForbidden)

		_, err = f.svc.ToggleClaim(context.Background(), "ev-1", "p1", "u1")
		assert.ErrorIs(t, err, domain.ErrForbidden)

		assert.Empty(t, f.notifier.calls)
		assert.Nil(t, f.posts.byID["p1"].ClaimedBy)
	})

	t.Run("claimed by another", func(t *testing.T) {
		f := newPostFixture(nil)
		_, err := f.svc.ClaimPost(context.Background(), "ev-1", "p1", "u2")
		require.NoError(t, err)
		_, err = f.svc.ClaimPost(context.Background(), "ev-1", "p1", "u3")
		assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
	})

	t.Run("completed", func(t *testing.T) {
		f := newPostFixture(nil)
		f.posts.byID["p1"].Completed = true
		_, err := f.svc.ClaimPost(context.Background(), "ev-1", "p1", "u2")
		assert.ErrorIs(t, err, domain.ErrPostCompleted)
	})

	t.Run("unknown post", func(t *testing.T) {
		f := newPostFixture(nil)
		_, err := f.svc.ClaimPost(context.Background(), "ev-1", "nope", "u2")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("non attendee", func(t *testing.T) {
		f := newPostFixture(nil)
		_, err := f.svc.ClaimPost(context.Background(), "ev-1", "p1", "stranger")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("notification failure releases the claim", func(t *testing.T) {
		f := newPostFixture(nil)
		f.notifier.err = errors.New("db down")
		_, err := f.svc.ClaimPost(context.Background(), "ev-1", "p1", "u2")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "notify owner")
		assert.Nil(t, f.posts.byID["p1"].ClaimedBy)
		assert.Empty(t, f.pub.published())

		f.notifier.err = nil
		p, err := f.svc.ClaimPost(context.Background(), "ev-1", "p1", "u2")
		require.NoError(t, err)
		assert.True(t, p.IsClaimedBy("u2"))
		assert.Equal(t, []string{"p1:u2", "p1:u2"}, f.notifier.calls, "retry notifies after the failed attempt")
		assert.Equal(t, []string{domain.EventPostsTopic("ev-1")}, f.pub.published())
	})
}

func TestPostService_ClaimPost_ConcurrentClaimantsOneWinner(t *testing.T) {
	f := newPostFixture(nil)
	claimants := []string{"u2", "u3", "u4"}

	var wg sync.WaitGroup
	errs := make([]error, len(claimants))
	for i, uid := range claimants {
		wg.Add(1)
		go func(i int, uid string) {
			defer wg.Done()
			_, errs[i] = f.svc.ClaimPost(context.Background(), "ev-1", "p1", uid)
		}(i, uid)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
	}
	assert.Equal(t, 1, wins)
	assert.Len(t, f.notifier.calls, 1)
}

func TestPostService_UnclaimAndToggle(t *testing.T) {
	f := newPostFixture(nil)

	_, err := f.svc.UnclaimPost(context.Background(), "ev-1", "p1", "u2")
	assert.ErrorIs(t, err, domain.ErrNotClaimant)

	p, err := f.svc.ToggleClaim(context.Background(), "ev-1", "p1", "u2")
	require.NoError(t, err)
	assert.True(t, p.IsClaimedBy("u2"))

	_, err = f.svc.UnclaimPost(context.Background(), "ev-1", "p1", "u3")
	assert.ErrorIs(t, err, domain.ErrNotClaimant)

	p, err = f.svc.ToggleClaim(context.Background(), "ev-1", "p1", "u2")
	require.NoError(t, err)
	assert.Nil(t, p.ClaimedBy)
	assert.Equal(t, domain.PostUnclaimed, p.State())

	p, err = f.svc.ClaimPost(context.Background(), "ev-1", "p1", "u3")
	require.NoError(t, err)
	assert.True(t, p.IsClaimedBy("u3"))
	assert.Equal(t, []string{"p1:u2", "p1:u3"}, f.notifier.calls)
}

func TestPostService_CompletePost(t *testing.T) {
	f := newPostFixture(nil)

	_, err := f.svc.CompletePost(context.Background(), "ev-1", "p1", "u2")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	p, err := f.svc.CompletePost(context.Background(), "ev-1", "p1", "u1")
	require.NoError(t, err)
	assert.True(t, p.Completed)
	assert.Equal(t, domain.PostCompleted, p.State())

	p, err = f.svc.CompletePost(context.Background(), "ev-1", "p1", "u1")
	require.NoError(t, err)
	assert.True(t, p.Completed)

	_, err = f.svc.ClaimPost(context.Background(), "ev-1", "p1", "u2")
	assert.ErrorIs(t, err, domain.ErrPostCompleted)

	active, err := f.svc.ListActivePosts(context.Background(), "ev-1", "u2", "")
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestPostService_CreateImageUpload(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newPostFixture(nil)
		_, err := f.svc.CreateImageUpload(context.Background(), "ev-1", "u2", "image/png")
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	})

	t.Run("presigns under the event prefix", func(t *testing.T) {
		store := &fakeImageStore{}
		f := newPostFixture(store)
		up, err := f.svc.CreateImageUpload(context.Background(), "ev-1", "u2", "Image/JPEG")
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", store.contentType)
		assert.Regexp(t, `^events/ev-1/posts/[0-9a-f-]{36}\.jpg$`, store.key)
		assert.Equal(t, "https://cdn/"+store.key, up.ImageURL)
	})

	t.Run("unsupported type", func(t *testing.T) {
		f := newPostFixture(&fakeImageStore{})
		_, err := f.svc.CreateImageUpload(context.Background(), "ev-1", "u2", "application/pdf")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
