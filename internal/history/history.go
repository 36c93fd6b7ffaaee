// Package history defines the chat listing groups shown in the history panel.
package history

import (
	"context"
	"time"

	"scout-tui/internal/api"
	"scout-tui/internal/cache"
	"scout-tui/internal/domain"
)

type Group struct {
	Name  string
	Title string
	Limit int
	// Filters builds the listing filters relative to now.
	Filters func(now time.Time) api.Filters
}

var (
	Favorites = Group{Name: cache.Favorites, Title: "Favorites", Limit: 5, Filters: func(time.Time) api.Filters {
		return api.Filters{api.Eq("favorite", "true")}
	}}
	Today = Group{Name: cache.Today, Title: "Today", Limit: 5, Filters: func(now time.Time) api.Filters {
		return api.Filters{
			api.Eq("favorite", "false"),
			api.Since("createdAt", now.AddDate(0, 0, -1)),
			api.Before("createdAt", now),
		}
	}}
	SevenDays = Group{Name: cache.SevenDays, Title: "Previous 7 days", Limit: 10, Filters: func(now time.Time) api.Filters {
		return api.Filters{
			api.Eq("favorite", "false"),
			api.Since("createdAt", now.AddDate(0, 0, -7)),
			api.Before("createdAt", now.AddDate(0, 0, -1)),
		}
	}}
	ThirtyDays = Group{Name: cache.ThirtyDays, Title: "Previous 30 days", Limit: 30, Filters: func(now time.Time) api.Filters {
		return api.Filters{
			api.Eq("favorite", "false"),
			api.Since("createdAt", now.AddDate(0, 0, -30)),
			api.Before("createdAt", now.AddDate(0, 0, -7)),
		}
	}}
)

// Groups is the panel order.
var Groups = []Group{Favorites, Today, SevenDays, ThirtyDays}

// ByName finds a group by its cache name or a short alias used on the
// command line.
func ByName(name string) (Group, bool) {
	switch name {
	case "week", "7d":
		return SevenDays, true
	case "month", "30d":
		return ThirtyDays, true
	}
	for _, g := range Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// Lister is the part of the API client that lists chats.
type Lister interface {
	ListChats(ctx context.Context, filters api.Filters, limit int) api.Response[[]domain.ChatSession]
}

// Load returns the group's chats through the cache. A failed listing is empty
// and is not cached.
func Load(ctx context.Context, c *cache.Cache, l Lister, g Group, now time.Time) ([]domain.ChatSession, error) {
	return cache.Get(ctx, c, cache.K(g.Name), cache.TenMinutes, func(ctx context.Context) ([]domain.ChatSession, error) {
		resp := l.ListChats(ctx, g.Filters(now), g.Limit)
		return resp.Data, resp.Err()
	})
}
