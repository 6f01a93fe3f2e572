package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterPostsByTitle(t *testing.T) {
	posts := []*Post{
		{ID: "1", Title: "Pizza"},
		{ID: "2", Title: "Tacos"},
		{ID: "3", Title: "Extra Pizza Slices"},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"case insensitive match keeps order", "pizza", []string{"1", "3"}},
		{"upper case query", "PIZZA", []string{"1", "3"}},
		{"no match", "sushi", []string{}},
		{"empty query returns all", "  ", []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterPostsByTitle(posts, tt.query)
			ids := make([]string, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestPost_StateAndClaimControls(t *testing.T) {
	bob := "bob"
	tests := []struct {
		name      string
		post      Post
		wantState PostState
		canClaim  map[string]bool
	}{
		{
			name:      "unclaimed",
			post:      Post{UserID: "alice"},
			wantState: PostUnclaimed,
			canClaim:  map[string]bool{"alice": false, "bob": true},
		},
		{
			name:      "claimed by bob",
			post:      Post{UserID: "alice", ClaimedBy: &bob},
			wantState: PostClaimed,
			canClaim:  map[string]bool{"alice": false, "bob": true, "carol": false},
		},
		{
			name:      "completed",
			post:      Post{UserID: "alice", ClaimedBy: &bob, Completed: true},
			wantState: PostCompleted,
			canClaim:  map[string]bool{"alice": false, "bob": false, "carol": false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantState, tt.post.State())
			for user, want := range tt.canClaim {
				assert.Equal(t, want, tt.post.CanClaim(user), "CanClaim(%s)", user)
			}
		})
	}
}
