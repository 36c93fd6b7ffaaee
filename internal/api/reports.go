package api

import (
	"context"
	"net/http"
	"net/url"

	"scout-tui/internal/domain"
)

func (c *Client) Me(ctx context.Context) Response[*domain.UserProfile] {
	var out struct {
		Data *domain.UserProfile `json:"data"`
	}
	return fetch(ctx, c, call{method: http.MethodGet, path: "/user/me"}, &out, func() (*domain.UserProfile, bool) {
		return out.Data, out.Data != nil
	})
}

// UserActivity fetches one page of the activity report. query is the raw
// query string, e.g. "limit=10&order_by=createdAt:desc".
func (c *Client) UserActivity(ctx context.Context, query string) Response[[]domain.UserActivity] {
	return listing[domain.UserActivity](ctx, c, call{method: http.MethodGet, path: "/report/user-activity", rawQuery: query})
}

// AggregateCount returns the total for one report metric, such as
// "new-chats" or "resumed-chats". A failure yields 0.
func (c *Client) AggregateCount(ctx context.Context, metric string) Response[int] {
	var out struct {
		Total *int `json:"total"`
	}
	r := call{method: http.MethodGet, path: "/report/aggregation/count/" + url.PathEscape(metric)}
	return fetch(ctx, c, r, &out, func() (int, bool) {
		if out.Total == nil {
			return 0, false
		}
		return *out.Total, true
	})
}
