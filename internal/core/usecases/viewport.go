package usecases

import (
	"log/slog"
	"time"

	"github.com/dandedj/csp-client/internal/core/domain"
	"github.com/dandedj/csp-client/internal/core/ports"
	"github.com/dandedj/csp-client/internal/pkg/debounce"
)

// ViewportTracker observes settled map movement, coalesces bursts of
// viewport changes and republishes the stable viewport to a single
// listener. Degenerate bounds reported mid-animation are dropped
// before they reach the listener.
type ViewportTracker struct {
	controller ports.MapController
	boundary   ports.BoundaryProvider
	log        *slog.Logger

	debouncer *debounce.Debouncer[domain.Viewport]
}

// NewViewportTracker subscribes to the map controller's settle events.
// delay is how long the viewport must stay stable before listener
// delivery. boundary may be nil.
func NewViewportTracker(controller ports.MapController, boundary ports.BoundaryProvider, delay time.Duration, log *slog.Logger, listen func(domain.Viewport)) *ViewportTracker {
	t := &ViewportTracker{
		controller: controller,
		boundary:   boundary,
		log:        log,
		debouncer:  debounce.New(delay, listen),
	}
	controller.OnViewportSettled(t.observe)
	return t
}

func (t *ViewportTracker) observe(v domain.Viewport) {
	if !v.Bounds.Valid() {
		t.log.Debug("ignoring degenerate viewport", "bounds", v.Bounds)
		return
	}
	t.debouncer.Set(v)
}

// FitToBoundary pans and zooms the map to the configured area outline.
// It quietly does nothing when no boundary is loaded, so a missing or
// malformed outline file degrades to manual navigation.
func (t *ViewportTracker) FitToBoundary() {
	if t.boundary == nil {
		return
	}
	env, ok := t.boundary.Envelope()
	if !ok {
		t.log.Debug("no boundary available, fit skipped")
		return
	}
	t.controller.FitToBounds(env)
}

// Stop cancels any pending delivery.
func (t *ViewportTracker) Stop() {
	t.debouncer.Stop()
}
