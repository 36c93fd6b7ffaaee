package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"scout-tui/internal/api"
	"scout-tui/internal/cache"
	"scout-tui/internal/domain"
)

type fakeSource struct {
	mu      sync.Mutex
	totals  map[string]int
	failing map[string]bool
	calls   atomic.Int32
	queries []string
	pages   map[string][]domain.UserActivity
}

func (s *fakeSource) AggregateCount(_ context.Context, metric string) api.Response[int] {
	s.calls.Add(1)
	if s.failing[metric] {
		return api.Response[int]{StatusCode: http.StatusInternalServerError}
	}
	return api.Response[int]{Data: s.totals[metric], Success: true, StatusCode: http.StatusOK}
}

func (s *fakeSource) UserActivity(_ context.Context, query string) api.Response[[]domain.UserActivity] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	return api.Response[[]domain.UserActivity]{Data: s.pages[query], Success: true, StatusCode: http.StatusOK}
}

func TestTotalsZeroUntilComplete(t *testing.T) {
	var agg Aggregates
	for i, m := range Metrics[:4] {
		agg = agg.With(m, (i+1)*10)
		require.False(t, agg.Complete())
		for _, v := range agg.Totals() {
			require.Zero(t, v)
		}
	}
	agg = agg.With(ResumedChats, 7)
	require.True(t, agg.Complete())
	require.Equal(t, map[Metric]int{NewChats: 10, Messages: 20, Uploads: 30, NewKBs: 40, ResumedChats: 7}, agg.Totals())
}

func TestWithDoesNotShareState(t *testing.T) {
	a := Aggregates{}.With(NewChats, 1)
	b := a.With(NewChats, 2)
	require.Equal(t, 0, a.Totals()[NewChats])
	require.Equal(t, 1, a.values[NewChats])
	require.Equal(t, 2, b.values[NewChats])
}

func TestFetchAggregatesByName(t *testing.T) {
	src := &fakeSource{
		totals:  map[string]int{"new-chats": 3, "msgs": 40, "uploads": 5, "new-kbs": 2, "resumed-chats": 9},
		failing: map[string]bool{},
	}
	c := cache.New()

	agg := FetchAggregates(context.Background(), c, src)
	require.True(t, agg.Complete())
	totals := agg.Totals()
	require.Equal(t, 40, totals[Messages])
	require.Equal(t, 9, totals[ResumedChats])
	require.Equal(t, int32(5), src.calls.Load())

	FetchAggregates(context.Background(), c, src)
	require.Equal(t, int32(5), src.calls.Load(), "second fetch should be served from cache")
}

func TestFailedCounterResolvesToZero(t *testing.T) {
	src := &fakeSource{
		totals:  map[string]int{"new-chats": 3, "msgs": 40, "uploads": 5, "new-kbs": 2, "resumed-chats": 9},
		failing: map[string]bool{"uploads": true},
	}
	c := cache.New()

	agg := FetchAggregates(context.Background(), c, src)
	require.True(t, agg.Complete())
	require.Zero(t, agg.Totals()[Uploads])
	require.Equal(t, 3, agg.Totals()[NewChats])

	FetchAggregates(context.Background(), c, src)
	require.Equal(t, int32(6), src.calls.Load(), "failures are retried on the next read")
}

func TestActivityQuery(t *testing.T) {
	require.Equal(t, "limit=10&order_by=createdAt:desc", ActivityQuery("", ""))
	require.Equal(t, "limit=10&cursor=u9&order_by=createdAt:desc&filters=email:==:a%40b.c", ActivityQuery("u9", SearchFilter(" a@b.c ")))
	require.Equal(t, "", SearchFilter("  "))
}

func TestSearchFilterEscapesValue(t *testing.T) {
	q := ActivityQuery("", SearchFilter("a+b&c@x.io"))
	require.Equal(t, "limit=10&order_by=createdAt:desc&filters=email:==:a%2Bb%26c%40x.io", q)

	values, err := url.ParseQuery(q)
	require.NoError(t, err)
	require.Equal(t, "email:==:a+b&c@x.io", values.Get("filters"))
}

func TestActivityPagesAndResetsOnSearch(t *testing.T) {
	row := func(id string) domain.UserActivity { return domain.UserActivity{ID: id, Email: id + "@x.io"} }
	src := &fakeSource{pages: map[string][]domain.UserActivity{
		"limit=10&order_by=createdAt:desc":                                {row("u1"), row("u2")},
		"limit=10&cursor=u2&order_by=createdAt:desc":                      {row("u3")},
		"limit=10&order_by=createdAt:desc&filters=email:==:u9%40x.io":       {row("u9")},
		"limit=10&cursor=u9&order_by=createdAt:desc&filters=email:==:u9%40x.io": nil,
	}}
	a := NewActivity(src)
	ctx := context.Background()

	rows, err := a.More(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	rows, _ = a.More(ctx)
	require.Len(t, rows, 3)
	require.Equal(t, "u3", rows[2].ID)

	require.True(t, a.Search("u9@x.io"))
	require.Empty(t, a.Rows())
	rows, _ = a.More(ctx)
	require.Equal(t, []string{"u9"}, ids(rows))
	_, _ = a.More(ctx)
	require.True(t, a.Done())
	require.False(t, a.Search("u9@x.io"))
}

func ids(rows []domain.UserActivity) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestMetricLabels(t *testing.T) {
	for _, m := range Metrics {
		require.NotEqual(t, string(m), m.Label(), fmt.Sprintf("metric %s needs a label", m))
	}
}
