// Package dashboard assembles the usage report: five aggregate counters and
// the paginated per-user activity table.
package dashboard

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"scout-tui/internal/api"
	"scout-tui/internal/cache"
	"scout-tui/internal/domain"
)

type Metric string

const (
	NewChats     Metric = "new-chats"
	Messages     Metric = "msgs"
	Uploads      Metric = "uploads"
	NewKBs       Metric = "new-kbs"
	ResumedChats Metric = "resumed-chats"
)

// Metrics is the display order of the counters.
var Metrics = []Metric{NewChats, Messages, Uploads, NewKBs, ResumedChats}

func (m Metric) Label() string {
	switch m {
	case NewChats:
		return "New chats"
	case Messages:
		return "Messages"
	case Uploads:
		return "Uploads"
	case NewKBs:
		return "New knowledge bases"
	case ResumedChats:
		return "Resumed chats"
	default:
		return string(m)
	}
}

// Source is the part of the API client the dashboard reads from.
type Source interface {
	AggregateCount(ctx context.Context, metric string) api.Response[int]
	UserActivity(ctx context.Context, query string) api.Response[[]domain.UserActivity]
}

// Aggregates holds the counters by name. Values are only exposed once every
// metric has resolved.
type Aggregates struct {
	values map[Metric]int
}

// With returns a copy of a with m resolved to v.
func (a Aggregates) With(m Metric, v int) Aggregates {
	next := make(map[Metric]int, len(a.values)+1)
	for k, val := range a.values {
		next[k] = val
	}
	next[m] = v
	return Aggregates{values: next}
}

func (a Aggregates) Complete() bool {
	for _, m := range Metrics {
		if _, ok := a.values[m]; !ok {
			return false
		}
	}
	return true
}

// Totals returns every metric's value, or all zeros while any is missing.
func (a Aggregates) Totals() map[Metric]int {
	out := make(map[Metric]int, len(Metrics))
	complete := a.Complete()
	for _, m := range Metrics {
		if complete {
			out[m] = a.values[m]
		} else {
			out[m] = 0
		}
	}
	return out
}

// Count fetches one counter through the cache. A failed request counts as 0
// and is not cached.
func Count(ctx context.Context, c *cache.Cache, src Source, m Metric) int {
	v, _ := cache.Get(ctx, c, cache.K(cache.Aggregate, string(m)), cache.TenMinutes, func(ctx context.Context) (int, error) {
		resp := src.AggregateCount(ctx, string(m))
		return resp.Data, resp.Err()
	})
	return v
}

// FetchAggregates loads all counters concurrently and returns once all of
// them have resolved.
func FetchAggregates(ctx context.Context, c *cache.Cache, src Source) Aggregates {
	values := make([]int, len(Metrics))
	var g errgroup.Group
	for i, m := range Metrics {
		i, m := i, m
		g.Go(func() error {
			values[i] = Count(ctx, c, src, m)
			return nil
		})
	}
	_ = g.Wait()

	var agg Aggregates
	for i, m := range Metrics {
		agg = agg.With(m, values[i])
	}
	return agg
}

const activityPageSize = 10

// SearchFilter turns a search box value into the activity filter; an empty
// search means no filter.
func SearchFilter(search string) string {
	search = strings.TrimSpace(search)
	if search == "" {
		return ""
	}
	return api.Filter{Field: "email", Op: api.OpEq, Value: search}.String()
}

// ActivityQuery renders the query string for one page of the activity report.
func ActivityQuery(cursor, filter string) string {
	q := "limit=" + strconv.Itoa(activityPageSize)
	if cursor != "" {
		q += "&cursor=" + cursor
	}
	q += "&order_by=createdAt:desc"
	if filter != "" {
		q += "&" + filter
	}
	return q
}

// Activity is the paginated activity table.
type Activity struct {
	src   Source
	pager *cache.Pager[domain.UserActivity]
}

func NewActivity(src Source) *Activity {
	return &Activity{
		src:   src,
		pager: cache.NewPager(func(u domain.UserActivity) string { return u.ID }),
	}
}

// Search switches the table to a new search box value, dropping loaded rows
// when the resulting filter differs.
func (a *Activity) Search(search string) bool {
	return a.pager.Reset(SearchFilter(search))
}

// More loads the next page and returns every row loaded so far.
func (a *Activity) More(ctx context.Context) ([]domain.UserActivity, error) {
	return a.pager.NextPage(ctx, func(ctx context.Context, filter, cursor string) ([]domain.UserActivity, error) {
		resp := a.src.UserActivity(ctx, ActivityQuery(cursor, filter))
		return resp.Data, resp.Err()
	})
}

// Filter is the activity filter the loaded rows belong to.
func (a *Activity) Filter() string { return a.pager.Filter() }

func (a *Activity) Rows() []domain.UserActivity { return a.pager.Items() }

func (a *Activity) Done() bool { return a.pager.Done() }
