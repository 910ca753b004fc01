// Package explorer is the campaign browsing state machine behind the explore
// page: filters, debounced search, paginated loading and stale-response
// protection.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"donationhub/internal/api"
	"donationhub/internal/debounce"
	apperrors "donationhub/internal/errors"
	"donationhub/internal/logger"
	"donationhub/internal/models"
)

const (
	DefaultPageSize = 12
	DefaultDebounce = 500 * time.Millisecond
	DefaultStatus   = "active"
)

// Phase is the explorer's load state.
type Phase string

const (
	Idle        Phase = "idle"
	Loading     Phase = "loading"
	LoadingMore Phase = "loadingMore"
	Success     Phase = "success"
	Error       Phase = "error"
)

// Busy reports whether a fetch is in flight.
func (p Phase) Busy() bool {
	return p == Loading || p == LoadingMore
}

// Key names a filter that SetFilter can change.
type Key string

const (
	KeyCategory Key = "category"
	KeyLocation Key = "location"
	KeyStatus   Key = "status"
	KeySort     Key = "sort"
	KeySearch   Key = "search"
)

// Filters is the applied filter state.
type Filters struct {
	Category string        `json:"category"`
	Location string        `json:"location"`
	Status   string        `json:"status"`
	Search   string        `json:"search"`
	SortBy   api.SortOrder `json:"sortBy"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
}

// DefaultFilters is the state of a freshly opened explore page.
func DefaultFilters(limit int) Filters {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return Filters{
		Category: "All",
		Location: "All",
		Status:   DefaultStatus,
		SortBy:   api.SortNewest,
		Page:     1,
		Limit:    limit,
	}
}

// ParseFilters reads filters from an explore page query string. Unknown sort
// orders and bad page numbers fall back to the defaults.
func ParseFilters(q url.Values, limit int) Filters {
	f := DefaultFilters(limit)
	if v := q.Get("category"); v != "" {
		f.Category = v
	}
	if v := q.Get("location"); v != "" {
		f.Location = v
	}
	if v := q.Get("status"); v != "" {
		f.Status = v
	}
	f.Search = strings.TrimSpace(q.Get("search"))
	if s := api.SortOrder(q.Get("sortBy")); s.Valid() {
		f.SortBy = s
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		f.Page = n
	}
	return f
}

// Query converts the filters into an API request.
func (f Filters) Query() api.CampaignFilter {
	return api.CampaignFilter{
		Category: f.Category,
		Location: f.Location,
		Status:   f.Status,
		Search:   f.Search,
		SortBy:   f.SortBy,
		Page:     f.Page,
		Limit:    f.Limit,
	}
}

// Values encodes the filters for an explore page link.
func (f Filters) Values() url.Values {
	return f.Query().Values()
}

func (f Filters) with(key Key, value string) (Filters, error) {
	switch key {
	case KeyCategory:
		f.Category = value
	case KeyLocation:
		f.Location = value
	case KeyStatus:
		f.Status = value
	case KeySearch:
		f.Search = strings.TrimSpace(value)
	case KeySort:
		s := api.SortOrder(value)
		if !s.Valid() {
			return f, apperrors.ValidationError{Field: "sortBy", Message: fmt.Sprintf("unknown sort order %q", value)}
		}
		f.SortBy = s
	default:
		return f, apperrors.ValidationError{Field: string(key), Message: "unknown filter"}
	}
	f.Page = 1
	return f, nil
}

// State is a snapshot of the explorer.
type State struct {
	Phase       Phase
	Filters     Filters
	SearchInput string
	Campaigns   []models.Campaign
	Pagination  models.Pagination
	Available   models.CampaignFilters
	Err         error
}

// Message is the error text to show, or "".
func (s State) Message() string {
	return apperrors.Message(s.Err)
}

// CanLoadMore reports whether LoadMore would fetch.
func (s State) CanLoadMore() bool {
	return s.Pagination.HasNext && !s.Phase.Busy()
}

func (s State) clone() State {
	s.Campaigns = append([]models.Campaign(nil), s.Campaigns...)
	s.Available.Categories = append([]string(nil), s.Available.Categories...)
	s.Available.Locations = append([]string(nil), s.Available.Locations...)
	return s
}

// Fetcher loads a page of campaigns. *api.PublicService implements it.
type Fetcher interface {
	Campaigns(ctx context.Context, filter api.CampaignFilter) (models.CampaignPage, error)
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithDebounce sets the search debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(e *Explorer) { e.delay = d }
}

// WithFilters sets the initial filters.
func WithFilters(f Filters) Option {
	return func(e *Explorer) { e.state.Filters = f }
}

// Explorer owns one browsing session. All methods are safe for concurrent
// use; subscribers are called outside the lock.
type Explorer struct {
	fetcher Fetcher
	delay   time.Duration
	search  *debounce.Debouncer

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu     sync.Mutex
	state  State
	seq    uint64
	cancel context.CancelFunc
	subs   map[int]func(State)
	nextID int
	closed bool
}

// New creates an idle explorer. Call Start to load the first page.
func New(fetcher Fetcher, opts ...Option) *Explorer {
	e := &Explorer{
		fetcher: fetcher,
		delay:   DefaultDebounce,
		state:   State{Phase: Idle, Filters: DefaultFilters(DefaultPageSize)},
		subs:    make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state.SearchInput = e.state.Filters.Search
	e.search = debounce.New(e.delay)
	e.ctx, e.stop = context.WithCancel(context.Background())
	return e
}

// Start loads the first page for the current filters.
func (e *Explorer) Start() {
	e.mu.Lock()
	e.state.Filters.Page = 1
	e.mu.Unlock()
	e.fetch(false)
}

// SetFilter changes one filter, resets to page 1 and reloads. Results are
// replaced when the response arrives.
func (e *Explorer) SetFilter(key Key, value string) error {
	e.mu.Lock()
	f, err := e.state.Filters.with(key, value)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.state.Filters = f
	if key == KeySearch {
		e.state.SearchInput = f.Search
	}
	e.mu.Unlock()

	if key == KeySearch {
		e.search.Cancel()
	}
	e.fetch(false)
	return nil
}

// ClearFilters restores the default filters and reloads.
func (e *Explorer) ClearFilters() {
	e.search.Cancel()
	e.mu.Lock()
	e.state.Filters = DefaultFilters(e.state.Filters.Limit)
	e.state.SearchInput = ""
	e.mu.Unlock()
	e.fetch(false)
}

// Search records typed text. The text is applied as a filter once no
// further input arrives within the debounce delay, and only if it differs
// from the applied search.
func (e *Explorer) Search(text string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.state.SearchInput = text
	e.mu.Unlock()

	e.search.Debounce(e.applySearch)
}

// FlushSearch applies typed search input now instead of after the debounce
// delay. It reports whether a search was waiting.
func (e *Explorer) FlushSearch() bool {
	if !e.search.Pending() {
		return false
	}
	e.search.Immediate(e.applySearch)
	return true
}

func (e *Explorer) applySearch() {
	e.mu.Lock()
	text := strings.TrimSpace(e.state.SearchInput)
	if e.closed || text == e.state.Filters.Search {
		e.mu.Unlock()
		return
	}
	e.state.Filters.Search = text
	e.state.Filters.Page = 1
	e.mu.Unlock()
	e.fetch(false)
}

// LoadMore fetches the next page and appends it. It returns false without
// fetching when there is no next page or a fetch is in flight.
func (e *Explorer) LoadMore() bool {
	e.mu.Lock()
	ok := e.state.CanLoadMore() && !e.closed
	e.mu.Unlock()
	if !ok {
		return false
	}
	e.fetch(true)
	return true
}

// Snapshot returns a copy of the current state.
func (e *Explorer) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Subscribe registers fn to receive a snapshot after every transition. The
// returned function removes it.
func (e *Explorer) Subscribe(fn func(State)) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// Wait blocks until no fetch is in flight.
func (e *Explorer) Wait() {
	e.wg.Wait()
}

// Close cancels the pending search and any in-flight fetch, then waits for
// fetch goroutines to exit.
func (e *Explorer) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.search.Stop()
	e.stop()
	e.wg.Wait()
}

// fetch starts a request for the current filters. A filter fetch cancels
// and supersedes whatever is in flight; a load-more fetch asks for the page
// after the last one received.
func (e *Explorer) fetch(more bool) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.seq++
	seq := e.seq

	filters := e.state.Filters
	if more {
		filters.Page = e.state.Pagination.Page + 1
		e.state.Phase = LoadingMore
	} else {
		filters.Page = 1
		e.state.Phase = Loading
	}
	e.state.Err = nil

	ctx, cancel := context.WithCancel(e.ctx)
	e.cancel = cancel
	e.wg.Add(1)
	snapshot, subs := e.publishLocked()
	e.mu.Unlock()

	notify(subs, snapshot)

	go func() {
		defer e.wg.Done()
		defer cancel()

		page, err := e.fetcher.Campaigns(ctx, filters.Query())
		e.finish(seq, more, filters, page, err)
	}()
}

func (e *Explorer) finish(seq uint64, more bool, filters Filters, page models.CampaignPage, err error) {
	e.mu.Lock()
	if seq != e.seq || e.closed {
		e.mu.Unlock()
		logger.Debug("dropping stale explorer response", "seq", seq)
		return
	}
	e.cancel = nil

	switch {
	case err != nil && errors.Is(err, context.Canceled):
		// Superseded fetches never reach here; a cancelled latest fetch
		// means the explorer is shutting down.
		e.mu.Unlock()
		return
	case err != nil:
		e.state.Phase = Error
		e.state.Err = err
		logger.Warn("explorer fetch failed", "page", filters.Page, "error", err)
	default:
		if more {
			e.state.Campaigns = append(e.state.Campaigns, page.Campaigns...)
		} else {
			e.state.Campaigns = append([]models.Campaign(nil), page.Campaigns...)
		}
		e.state.Pagination = page.Pagination
		if e.state.Pagination.Page == 0 {
			e.state.Pagination.Page = filters.Page
		}
		e.state.Filters.Page = e.state.Pagination.Page
		if e.state.Available.Empty() && !page.Filters.Empty() {
			e.state.Available = page.Filters
		}
		e.state.Phase = Success
	}

	snapshot, subs := e.publishLocked()
	e.mu.Unlock()
	notify(subs, snapshot)
}

func (e *Explorer) publishLocked() (State, []func(State)) {
	subs := make([]func(State), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	return e.state.clone(), subs
}

func notify(subs []func(State), s State) {
	for _, fn := range subs {
		fn(s)
	}
}
