package domain

import (
	"context"
	"math"
	"sort"
)

const (
	// PoundsPerPost is the fixed weight credited to every post when estimating food saved.
	PoundsPerPost = 0.5
	// ChampionCount is the number of top posters reported.
	ChampionCount = 3
)

// FoodChampion is a user ranked by the number of posts created in an event.
// swagger:model FoodChampion
type FoodChampion struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	PostCount   int    `json:"post_count"`
}

// EventAnalytics holds the display-only aggregates of an event.
// swagger:model EventAnalytics
type EventAnalytics struct {
	EventID        string         `json:"event_id"`
	TotalPosts     int            `json:"total_posts"`
	ClaimedPosts   int            `json:"claimed_posts"`
	CompletedPosts int            `json:"completed_posts"`
	PercentSaved   int            `json:"percent_saved"`
	FoodWasteLbs   float64        `json:"food_waste_lbs"`
	FoodChampions  []FoodChampion `json:"food_champions"`
}

// ComputeAnalytics aggregates every post of an event, completed ones included.
// names maps user IDs to display names; missing entries fall back to AnonymousName.
// Champions with equal counts keep the order in which they first posted.
func ComputeAnalytics(posts []*Post, names map[string]string) *EventAnalytics {
	a := &EventAnalytics{FoodChampions: []FoodChampion{}}
	counts := make(map[string]int)
	var order []string
	for _, p := range posts {
		a.TotalPosts++
		if p.ClaimedBy != nil {
			a.ClaimedPosts++
		}
		if p.Completed {
			a.CompletedPosts++
		}
		if _, ok := counts[p.UserID]; !ok {
			order = append(order, p.UserID)
		}
		counts[p.UserID]++
	}
	if a.TotalPosts > 0 {
		a.PercentSaved = int(math.Round(float64(a.ClaimedPosts) / float64(a.TotalPosts) * 100))
	}
	a.FoodWasteLbs = float64(a.TotalPosts) * PoundsPerPost

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > ChampionCount {
		order = order[:ChampionCount]
	}
	for _, id := range order {
		name := names[id]
		if name == "" {
			name = AnonymousName
		}
		a.FoodChampions = append(a.FoodChampions, FoodChampion{UserID: id, DisplayName: name, PostCount: counts[id]})
	}
	return a
}

// AnalyticsService computes event analytics for organizers.
type AnalyticsService interface {
	GetEventAnalytics(ctx context.Context, eventID, userID string) (*EventAnalytics, error)
}
