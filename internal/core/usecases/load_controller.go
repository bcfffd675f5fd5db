package usecases

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dandedj/csp-client/internal/core/domain"
	"github.com/dandedj/csp-client/internal/core/ports"
	"github.com/dandedj/csp-client/internal/pkg/debounce"
	"github.com/dandedj/csp-client/internal/pkg/metrics"
)

// loadCause labels why a reload was triggered, for logs and metrics.
type loadCause string

const (
	causeInitial  loadCause = "initial"
	causeSearch   loadCause = "search"
	causeZoom     loadCause = "zoom"
	causeBounds   loadCause = "bounds"
	causeGrouped  loadCause = "grouped"
	causeLoadMore loadCause = "load_more"
)

const fetchErrorMessage = "There has been a problem with your fetch operation"

// LoadController owns the LoadState and orchestrates every fetch
// against the plaque source. It applies a last-request-wins discipline:
// each primary fetch carries a generation number and only the response
// matching the latest generation is committed; stale responses are
// dropped silently. There is no hard cancellation of in-flight
// requests; a hung request completes and is discarded harmlessly.
type LoadController struct {
	source              ports.PlaqueSource
	policy              DensityPolicy
	urlState            ports.URLState
	confidenceThreshold int
	log                 *slog.Logger

	mu          sync.Mutex
	state       domain.LoadState
	searchQuery string
	grouped     bool
	viewport    *domain.Viewport
	limit       int

	gen         uint64
	moreBusy    bool
	pendingID   string
	detailSent  bool

	searchDebounce *debounce.Debouncer[string]

	onChange func(domain.LoadState)
	onDetail func(domain.PlaqueRecord)
}

// NewLoadController wires the controller to a plaque source and URL
// mirror. searchDelay is the debounce applied to search-text changes.
func NewLoadController(source ports.PlaqueSource, policy DensityPolicy, urlState ports.URLState, confidenceThreshold int, searchDelay time.Duration, log *slog.Logger) *LoadController {
	c := &LoadController{
		source:              source,
		policy:              policy,
		urlState:            urlState,
		confidenceThreshold: confidenceThreshold,
		log:                 log,
		limit:               policy.MarkerLimit(18),
	}
	c.searchDebounce = debounce.New(searchDelay, c.commitSearch)
	return c
}

// OnChange registers the observer notified after every state
// transition with a copy of the LoadState.
func (c *LoadController) OnChange(fn func(domain.LoadState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// OnDetail registers the callback fired when a record seeded through
// the URL query parameter is located among loaded results.
func (c *LoadController) OnDetail(fn func(domain.PlaqueRecord)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDetail = fn
}

// Start seeds the controller from the URL's query parameter and issues
// the initial load. A value that looks like a record identifier is
// remembered so its detail view opens once the record shows up in a
// fetched result set.
func (c *LoadController) Start(urlQuery string) {
	c.mu.Lock()
	c.searchQuery = strings.TrimSpace(urlQuery)
	if looksLikeRecordID(urlQuery) {
		c.pendingID = strings.TrimSpace(urlQuery)
	}
	c.mu.Unlock()

	c.reload(causeInitial)
}

// SetSearchText feeds a keystroke-level search text change. Changes
// coalesce through the debouncer; only the settled value triggers a
// fetch and a URL update.
func (c *LoadController) SetSearchText(q string) {
	c.searchDebounce.Set(q)
}

func (c *LoadController) commitSearch(q string) {
	trimmed := strings.TrimSpace(q)

	c.mu.Lock()
	changed := trimmed != c.searchQuery
	c.searchQuery = trimmed
	c.mu.Unlock()

	if c.urlState != nil {
		c.urlState.SetQuery(trimmed)
	}
	if changed {
		c.reload(causeSearch)
	}
}

// OnViewport ingests a settled (already debounced) viewport. A reload
// happens when the zoom bucket changes the fetch limit, or when the
// bounds move while spatial filtering is active.
func (c *LoadController) OnViewport(v domain.Viewport) {
	c.mu.Lock()
	newLimit := c.policy.MarkerLimit(v.Zoom)
	limitChanged := newLimit != c.limit
	boundsChanged := c.policy.UseBoundsFilter(v.Zoom) &&
		(c.viewport == nil || c.viewport.Bounds != v.Bounds)
	c.viewport = &v
	c.limit = newLimit
	c.mu.Unlock()

	switch {
	case limitChanged:
		c.reload(causeZoom)
	case boundsChanged:
		c.reload(causeBounds)
	}
}

// SetGrouped toggles the "group nearby" fetch mode.
func (c *LoadController) SetGrouped(on bool) {
	c.mu.Lock()
	changed := on != c.grouped
	c.grouped = on
	c.mu.Unlock()

	if changed {
		c.reload(causeGrouped)
	}
}

// State returns a copy of the current LoadState.
func (c *LoadController) State() domain.LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Stop cancels the pending search debounce. In-flight fetches complete
// and are discarded by the generation check.
func (c *LoadController) Stop() {
	c.searchDebounce.Stop()
}

func (c *LoadController) snapshotLocked() domain.LoadState {
	s := c.state
	s.Records = make([]domain.PlaqueRecord, len(c.state.Records))
	copy(s.Records, c.state.Records)
	return s
}

// reload issues a new primary fetch, superseding any in-flight one.
func (c *LoadController) reload(cause loadCause) {
	metrics.LoadsTriggered.WithLabelValues(string(cause)).Inc()

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.state.Loading = true
	c.state.Error = ""
	c.state.HasMore = true
	query := c.searchQuery
	grouped := c.grouped
	limit := c.limit
	bounds := c.fetchBoundsLocked()
	snapshot := c.snapshotLocked()
	onChange := c.onChange
	c.mu.Unlock()

	c.log.Debug("reload", "cause", cause, "gen", gen, "query", query, "limit", limit)
	if onChange != nil {
		onChange(snapshot)
	}

	go func() {
		batch, err := c.fetch(context.Background(), query, grouped, limit, 0, bounds)
		c.apply(gen, batch, err)
	}()
}

// fetch routes to the search endpoint for a non-empty query and the
// listing endpoint otherwise. Spatial bounds only apply to listings.
func (c *LoadController) fetch(ctx context.Context, query string, grouped bool, limit, offset int, bounds *domain.ViewportBounds) (*domain.PlaqueBatch, error) {
	if query == "" {
		return c.source.FetchAll(ctx, ports.FetchOptions{
			ConfidenceThreshold: c.confidenceThreshold,
			Grouped:             grouped,
			Limit:               limit,
			Offset:              offset,
			Bounds:              bounds,
		})
	}
	return c.source.Search(ctx, query, ports.SearchOptions{
		ConfidenceThreshold: c.confidenceThreshold,
		Limit:               limit,
		Offset:              offset,
	})
}

// fetchBoundsLocked returns the spatial filter for the next listing
// fetch, or nil when zoomed out past the filtering threshold or the
// viewport is unknown or degenerate.
func (c *LoadController) fetchBoundsLocked() *domain.ViewportBounds {
	if c.viewport == nil || !c.policy.UseBoundsFilter(c.viewport.Zoom) {
		return nil
	}
	if !c.viewport.Bounds.Valid() {
		return nil
	}
	b := c.viewport.Bounds
	return &b
}

// apply commits a primary fetch response unless it went stale.
func (c *LoadController) apply(gen uint64, batch *domain.PlaqueBatch, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		metrics.StaleResponsesDropped.Inc()
		c.log.Debug("dropping stale response", "gen", gen)
		return
	}

	c.state.Loading = false
	if err != nil {
		c.state.Records = nil
		c.state.TotalCount = 0
		c.state.HasMore = false
		c.state.Error = fetchErrorMessage
		c.log.Warn("load failed", "gen", gen, "error", err)
	} else {
		c.state.Records = batch.Records
		c.state.TotalCount = batch.TotalCount
		c.state.Offset = batch.Offset
		c.state.Limit = batch.Limit
		c.state.HasMore = batch.TotalCount > len(batch.Records)
		c.state.Error = ""
	}

	snapshot := c.snapshotLocked()
	onChange := c.onChange
	detail, onDetail := c.pendingDetailLocked()
	c.mu.Unlock()

	if onChange != nil {
		onChange(snapshot)
	}
	if detail != nil && onDetail != nil {
		onDetail(*detail)
	}
}

// pendingDetailLocked resolves the URL-seeded record id against the
// freshly loaded records, at most once per session.
func (c *LoadController) pendingDetailLocked() (*domain.PlaqueRecord, func(domain.PlaqueRecord)) {
	if c.pendingID == "" || c.detailSent {
		return nil, nil
	}
	for i := range c.state.Records {
		if c.state.Records[i].ID == c.pendingID {
			c.detailSent = true
			rec := c.state.Records[i]
			return &rec, c.onDetail
		}
	}
	return nil, nil
}

// LoadMore appends the next page to the current record set. It is a
// no-op while a primary load or another append is running, or when the
// API reported nothing further.
func (c *LoadController) LoadMore() {
	c.mu.Lock()
	if c.state.Loading || c.moreBusy || !c.state.HasMore {
		c.mu.Unlock()
		return
	}
	c.moreBusy = true
	c.state.LoadingMore = true
	gen := c.gen
	query := c.searchQuery
	grouped := c.grouped
	limit := c.limit
	offset := len(c.state.Records)
	bounds := c.fetchBoundsLocked()
	snapshot := c.snapshotLocked()
	onChange := c.onChange
	c.mu.Unlock()

	metrics.LoadsTriggered.WithLabelValues(string(causeLoadMore)).Inc()
	if onChange != nil {
		onChange(snapshot)
	}

	go func() {
		batch, err := c.fetch(context.Background(), query, grouped, limit, offset, bounds)
		c.applyMore(gen, batch, err)
	}()
}

// applyMore merges an append response. A reload issued in the meantime
// bumps the generation and invalidates the append.
func (c *LoadController) applyMore(gen uint64, batch *domain.PlaqueBatch, err error) {
	c.mu.Lock()
	c.moreBusy = false
	c.state.LoadingMore = false

	if gen != c.gen {
		c.mu.Unlock()
		metrics.StaleResponsesDropped.Inc()
		return
	}

	if err != nil {
		c.state.Error = fetchErrorMessage
		c.state.HasMore = false
	} else {
		c.state.Records = append(c.state.Records, batch.Records...)
		if batch.TotalCount > 0 {
			c.state.TotalCount = batch.TotalCount
		}
		c.state.Offset = batch.Offset
		c.state.HasMore = c.state.TotalCount > len(c.state.Records)
	}

	snapshot := c.snapshotLocked()
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange(snapshot)
	}
}

// looksLikeRecordID applies the legacy heuristic distinguishing a
// plaque id from free text in the shared query parameter. Anything
// longer than 10 characters is treated as an id.
//
// TODO: replace with a distinct route parameter once the frontend can
// migrate off the shared "query" parameter.
func looksLikeRecordID(q string) bool {
	return len(strings.TrimSpace(q)) > 10
}
