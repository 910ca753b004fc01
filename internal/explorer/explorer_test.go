package explorer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"donationhub/internal/api"
	apperrors "donationhub/internal/errors"
	"donationhub/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeFetcher struct {
	mu      sync.Mutex
	calls   []api.CampaignFilter
	respond func(ctx context.Context, f api.CampaignFilter) (models.CampaignPage, error)
}

func (f *fakeFetcher) Campaigns(ctx context.Context, filter api.CampaignFilter) (models.CampaignPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filter)
	respond := f.respond
	f.mu.Unlock()
	return respond(ctx, filter)
}

func (f *fakeFetcher) Calls() []api.CampaignFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.CampaignFilter(nil), f.calls...)
}

// pages serves totalPages pages of two campaigns each.
func pages(totalPages int) func(context.Context, api.CampaignFilter) (models.CampaignPage, error) {
	return func(_ context.Context, f api.CampaignFilter) (models.CampaignPage, error) {
		page := max(f.Page, 1)
		return models.CampaignPage{
			Campaigns: []models.Campaign{
				{ID: fmt.Sprintf("p%d-a", page), Title: f.Search},
				{ID: fmt.Sprintf("p%d-b", page), Title: f.Search},
			},
			Pagination: models.Pagination{Page: page, Limit: f.Limit, Pages: totalPages, HasNext: page < totalPages},
			Filters:    models.CampaignFilters{Categories: []string{"Health", "Education"}, Locations: []string{fmt.Sprintf("City%d", page)}},
		}, nil
	}
}

func TestStartLoadsFirstPage(t *testing.T) {
	fetcher := &fakeFetcher{respond: pages(3)}
	e := New(fetcher)
	defer e.Close()

	assert.Equal(t, Idle, e.Snapshot().Phase)

	e.Start()
	e.Wait()

	s := e.Snapshot()
	assert.Equal(t, Success, s.Phase)
	assert.Len(t, s.Campaigns, 2)
	assert.True(t, s.CanLoadMore())

	calls := fetcher.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "active", calls[0].Status)
	assert.Equal(t, api.SortNewest, calls[0].SortBy)
	assert.Equal(t, 12, calls[0].Limit)
	assert.Equal(t, 1, calls[0].Page)
}

func TestLoadMoreAppends(t *testing.T) {
	fetcher := &fakeFetcher{respond: pages(2)}
	e := New(fetcher)
	defer e.Close()

	e.Start()
	e.Wait()

	require.True(t, e.LoadMore())
	e.Wait()

	s := e.Snapshot()
	assert.Equal(t, Success, s.Phase)
	assert.Equal(t, []string{"p1-a", "p1-b", "p2-a", "p2-b"}, ids(s.Campaigns))
	assert.Equal(t, 2, s.Filters.Page)
	assert.False(t, s.CanLoadMore())

	assert.False(t, e.LoadMore())
	assert.Len(t, fetcher.Calls(), 2)
}

func TestLoadMoreIgnoredWhileLoading(t *testing.T) {
	release := make(chan struct{})
	fetcher := &fakeFetcher{respond: pages(5)}
	e := New(fetcher)
	defer e.Close()

	e.Start()
	e.Wait()

	fetcher.mu.Lock()
	fetcher.respond = func(ctx context.Context, f api.CampaignFilter) (models.CampaignPage, error) {
		<-release
		return pages(5)(ctx, f)
	}
	fetcher.mu.Unlock()

	require.True(t, e.LoadMore())
	assert.Equal(t, LoadingMore, e.Snapshot().Phase)
	assert.False(t, e.LoadMore())

	close(release)
	e.Wait()
	assert.Len(t, e.Snapshot().Campaigns, 4)
	assert.Len(t, fetcher.Calls(), 2)
}

func TestSetFilterResetsToFirstPage(t *testing.T) {
	fetcher := &fakeFetcher{respond: pages(3)}
	e := New(fetcher)
	defer e.Close()

	e.Start()
	e.Wait()
	e.LoadMore()
	e.Wait()
	require.Len(t, e.Snapshot().Campaigns, 4)

	require.NoError(t, e.SetFilter(KeyCategory, "Health"))
	e.Wait()

	s := e.Snapshot()
	assert.Equal(t, []string{"p1-a", "p1-b"}, ids(s.Campaigns))
	assert.Equal(t, 1, s.Filters.Page)

	last := fetcher.Calls()[2]
	assert.Equal(t, "Health", last.Category)
	assert.Equal(t, 1, last.Page)
}

func TestSetFilterRejectsUnknown(t *testing.T) {
	e := New(&fakeFetcher{respond: pages(1)})
	defer e.Close()

	err := e.SetFilter(KeySort, "cheapest")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	err = e.SetFilter("colour", "red")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Equal(t, Idle, e.Snapshot().Phase)
}

func TestAvailableFiltersCapturedOnce(t *testing.T) {
	fetcher := &fakeFetcher{respond: pages(3)}
	e := New(fetcher)
	defer e.Close()

	e.Start()
	e.Wait()
	e.LoadMore()
	e.Wait()

	assert.Equal(t, []string{"City1"}, e.Snapshot().Available.Locations)
}

func TestSearchIsDebounced(t *testing.T) {
	fetcher := &fakeFetcher{respond: pages(1)}
	e := New(fetcher, WithDebounce(40*time.Millisecond))
	defer e.Close()

	e.Start()
	e.Wait()

	var lastKey time.Time
	for _, text := range []string{"w", "wa", "wat"} {
		e.Search(text)
		lastKey = time.Now()
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return len(fetcher.Calls()) == 2 }, time.Second, 5*time.Millisecond)
	fired := time.Now()
	e.Wait()
	time.Sleep(60 * time.Millisecond)

	calls := fetcher.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "wat", calls[1].Search)
	assert.Equal(t, 1, calls[1].Page)
	assert.GreaterOrEqual(t, fired.Sub(lastKey), 40*time.Millisecond)
	assert.Equal(t, "wat", e.Snapshot().Filters.Search)
}

func TestFlushSearch(t *testing.T) {
	fetcher := &fakeFetcher{respond: pages(1)}
	e := New(fetcher, WithDebounce(time.Hour))
	defer e.Close()

	e.Start()
	e.Wait()
	assert.False(t, e.FlushSearch(), "nothing typed yet")

	e.Search("  school  ")
	require.True(t, e.FlushSearch())
	e.Wait()

	calls := fetcher.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "school", calls[1].Search)
	assert.False(t, e.FlushSearch())
}

func TestSearchUnchangedTextDoesNotFetch(t *testing.T) {
	fetcher := &fakeFetcher{respond: pages(1)}
	e := New(fetcher, WithDebounce(10*time.Millisecond))
	defer e.Close()

	e.Start()
	e.Wait()

	e.Search("x")
	e.Search("")
	time.Sleep(50 * time.Millisecond)
	e.Wait()

	assert.Len(t, fetcher.Calls(), 1)
}

func TestStaleResponseIsDropped(t *testing.T) {
	release := make(chan struct{})
	fetcher := &fakeFetcher{}
	fetcher.respond = func(ctx context.Context, f api.CampaignFilter) (models.CampaignPage, error) {
		if f.Category == "Slow" {
			// Ignores cancellation so the stale response really arrives.
			<-release
			return models.CampaignPage{Campaigns: []models.Campaign{{ID: "stale"}}}, nil
		}
		return models.CampaignPage{Campaigns: []models.Campaign{{ID: "fresh"}}}, nil
	}
	e := New(fetcher)
	defer e.Close()

	require.NoError(t, e.SetFilter(KeyCategory, "Slow"))
	require.NoError(t, e.SetFilter(KeyCategory, "Fast"))

	require.Eventually(t, func() bool { return e.Snapshot().Phase == Success }, time.Second, 5*time.Millisecond)
	close(release)
	e.Wait()

	s := e.Snapshot()
	assert.Equal(t, []string{"fresh"}, ids(s.Campaigns))
	assert.Equal(t, "Fast", s.Filters.Category)
}

func TestSupersededFetchIsCancelled(t *testing.T) {
	cancelled := make(chan struct{})
	fetcher := &fakeFetcher{}
	fetcher.respond = func(ctx context.Context, f api.CampaignFilter) (models.CampaignPage, error) {
		if f.Category == "Slow" {
			<-ctx.Done()
			close(cancelled)
			return models.CampaignPage{}, ctx.Err()
		}
		return pages(1)(ctx, f)
	}
	e := New(fetcher)
	defer e.Close()

	require.NoError(t, e.SetFilter(KeyCategory, "Slow"))
	require.NoError(t, e.SetFilter(KeyCategory, "Fast"))

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("superseded fetch was not cancelled")
	}
	e.Wait()
	assert.Equal(t, Success, e.Snapshot().Phase)
}

func TestFetchError(t *testing.T) {
	fetcher := &fakeFetcher{respond: func(context.Context, api.CampaignFilter) (models.CampaignPage, error) {
		return models.CampaignPage{}, &apperrors.APIError{StatusCode: 500, Message: "backend down"}
	}}
	e := New(fetcher)
	defer e.Close()

	e.Start()
	e.Wait()

	s := e.Snapshot()
	assert.Equal(t, Error, s.Phase)
	assert.Equal(t, "backend down", s.Message())
}

func TestCloseCancelsInFlight(t *testing.T) {
	fetcher := &fakeFetcher{respond: func(ctx context.Context, _ api.CampaignFilter) (models.CampaignPage, error) {
		<-ctx.Done()
		return models.CampaignPage{}, ctx.Err()
	}}
	e := New(fetcher, WithDebounce(time.Hour))

	e.Start()
	e.Search("pending")
	e.Close()

	assert.Equal(t, Loading, e.Snapshot().Phase)
	e.Start()
	assert.Len(t, fetcher.Calls(), 1)
}

func TestSubscribe(t *testing.T) {
	var (
		mu     sync.Mutex
		phases []Phase
	)
	e := New(&fakeFetcher{respond: pages(1)})
	defer e.Close()

	unsubscribe := e.Subscribe(func(s State) {
		mu.Lock()
		phases = append(phases, s.Phase)
		mu.Unlock()
	})

	e.Start()
	e.Wait()
	unsubscribe()
	e.Start()
	e.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Phase{Loading, Success}, phases)
}

func TestParseFilters(t *testing.T) {
	q := url.Values{
		"category": {"Health"},
		"search":   {"  water "},
		"sortBy":   {"most_funded"},
		"page":     {"3"},
	}
	f := ParseFilters(q, 0)
	assert.Equal(t, Filters{
		Category: "Health",
		Location: "All",
		Status:   "active",
		Search:   "water",
		SortBy:   api.SortMostFunded,
		Page:     3,
		Limit:    12,
	}, f)

	bad := ParseFilters(url.Values{"sortBy": {"nope"}, "page": {"-1"}}, 24)
	assert.Equal(t, api.SortNewest, bad.SortBy)
	assert.Equal(t, 1, bad.Page)
	assert.Equal(t, 24, bad.Limit)
}

func TestFiltersOmitPlaceholderValues(t *testing.T) {
	f := DefaultFilters(12)
	f.Category = "Health"

	v := f.Values()
	assert.Equal(t, "Health", v.Get("category"))
	assert.False(t, v.Has("location"))
}

func ids(campaigns []models.Campaign) []string {
	out := make([]string, len(campaigns))
	for i, c := range campaigns {
		out[i] = c.ID
	}
	return out
}
