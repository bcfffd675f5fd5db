package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/dandedj/csp-client/internal/core/domain"
	"github.com/dandedj/csp-client/internal/core/ports"
	"github.com/dandedj/csp-client/internal/core/usecases"
	"github.com/dandedj/csp-client/internal/pkg/metrics"
)

// wsConn is the subset of *websocket.Conn the session uses, split out
// so tests can drive a session without a network socket.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// clientMessage is what the browser widget sends. Type selects the
// operation; the other fields are per-type.
type clientMessage struct {
	Type    string                 `json:"type"`
	Query   string                 `json:"query,omitempty"`   // init: seed from the page URL
	Text    string                 `json:"text,omitempty"`    // search
	Zoom    int                    `json:"zoom,omitempty"`    // viewport
	Bounds  *domain.ViewportBounds `json:"bounds,omitempty"`  // viewport
	Enabled bool                   `json:"enabled,omitempty"` // grouped
	ID      string                 `json:"id,omitempty"`      // marker_click
	Key     string                 `json:"key,omitempty"`     // cluster_click
}

// mapSession drives one connected map widget. The widget is a dumb
// renderer: it reports viewport settles and user input, and executes
// the imperative commands sent back (pan, zoom, fit_bounds, url). All
// coordination logic lives server-side in the session's own load
// controller and viewport tracker.
//
// The session is the concrete ports.MapController and ports.URLState
// for its connection: "commands to the map" become outbound messages.
type mapSession struct {
	conn wsConn
	deps *Dependencies
	log  *slog.Logger

	writeMu sync.Mutex

	loader  *usecases.LoadController
	tracker *usecases.ViewportTracker
	detail  *usecases.DetailService

	mu       sync.Mutex
	zoom     int
	settled  func(domain.Viewport)
	clusters map[string]*domain.ClusterGroup
}

var (
	_ ports.MapController = (*mapSession)(nil)
	_ ports.URLState      = (*mapSession)(nil)
)

// WebSocketHandler returns the /ws handler hosting map sessions.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		s := newMapSession(c, deps)
		s.run()
	}
}

func newMapSession(conn wsConn, deps *Dependencies) *mapSession {
	s := &mapSession{
		conn:     conn,
		deps:     deps,
		log:      deps.Log.With("component", "map_session"),
		detail:   deps.Detail,
		zoom:     deps.Cfg.Map.InitialZoom,
		clusters: map[string]*domain.ClusterGroup{},
	}

	s.loader = usecases.NewLoadController(
		deps.Source,
		deps.Policy,
		s,
		deps.Cfg.API.ConfidenceThreshold,
		time.Duration(deps.Cfg.Map.SearchDebounceMS)*time.Millisecond,
		s.log,
	)
	s.loader.OnChange(s.render)
	s.loader.OnDetail(func(rec domain.PlaqueRecord) {
		s.send(detailMessage(&rec))
	})

	s.tracker = usecases.NewViewportTracker(
		s,
		deps.Boundary,
		time.Duration(deps.Cfg.Map.BoundsDebounceMS)*time.Millisecond,
		s.log,
		s.loader.OnViewport,
	)

	return s
}

func (s *mapSession) run() {
	metrics.ActiveMapSessions.Inc()
	defer metrics.ActiveMapSessions.Dec()
	defer s.conn.Close()
	defer s.loader.Stop()
	defer s.tracker.Stop()

	s.log.Info("map session connected")

	// Keep-alive ping
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.writeMu.Lock()
				err := s.conn.WriteMessage(websocket.PingMessage, nil)
				s.writeMu.Unlock()
				if err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			break
		}

		var m clientMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			s.sendError("bad_message", "invalid JSON")
			continue
		}
		s.dispatch(m)
	}

	s.log.Info("map session disconnected")
}

func (s *mapSession) dispatch(m clientMessage) {
	switch m.Type {
	case "init":
		s.handleInit(m.Query)
	case "viewport":
		s.handleViewport(m)
	case "search":
		s.loader.SetSearchText(m.Text)
	case "grouped":
		s.loader.SetGrouped(m.Enabled)
	case "load_more":
		s.loader.LoadMore()
	case "marker_click":
		s.handleMarkerClick(m.ID)
	case "cluster_click":
		s.handleClusterClick(m.Key)
	case "fit_boundary":
		s.tracker.FitToBoundary()
	default:
		s.sendError("bad_message", "unknown message type: "+m.Type)
	}
}

// handleInit replies with the initial view and starts loading. A query
// seeded from the page URL flows into the controller, which opens the
// matching detail view if the value turns out to be a record id.
func (s *mapSession) handleInit(query string) {
	cfg := s.deps.Cfg.Map
	s.send(map[string]interface{}{
		"type":     "config",
		"center":   map[string]float64{"lat": cfg.CenterLat, "lng": cfg.CenterLng},
		"zoom":     cfg.InitialZoom,
		"min_zoom": cfg.MinZoom,
		"max_zoom": cfg.MaxZoom,
	})
	s.loader.Start(query)
}

func (s *mapSession) handleViewport(m clientMessage) {
	if m.Bounds == nil {
		s.sendError("bad_message", "viewport requires bounds")
		return
	}

	s.mu.Lock()
	s.zoom = m.Zoom
	fn := s.settled
	s.mu.Unlock()

	if fn != nil {
		fn(domain.Viewport{Bounds: *m.Bounds, Zoom: m.Zoom})
	}
}

func (s *mapSession) handleMarkerClick(id string) {
	if id == "" {
		s.sendError("bad_message", "marker_click requires id")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rec, err := s.detail.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPlaqueNotFound) {
			s.sendError("not_found", "plaque not found: "+id)
			return
		}
		s.sendError("upstream", "detail lookup failed")
		return
	}
	s.send(detailMessage(rec))
}

// handleClusterClick either steps the map closer to the cluster or, at
// detail zoom, sends the member list for a picker.
func (s *mapSession) handleClusterClick(key string) {
	s.mu.Lock()
	group := s.clusters[key]
	zoom := s.zoom
	s.mu.Unlock()

	if group == nil {
		s.sendError("not_found", "unknown cluster: "+key)
		return
	}

	action, target := usecases.ResolveClusterClick(group, zoom, s.deps.Policy)
	switch action {
	case usecases.ActionZoomIn:
		center := usecases.ClusterCenter(group)
		s.Pan(center.Lat, center.Lng)
		s.SetZoom(target)
	case usecases.ActionOpenDetail:
		if len(group.Members) == 0 {
			return
		}
		s.send(detailMessage(&group.Members[0]))
	}
}

// render projects a load-state snapshot into a marker render list and
// pushes it to the widget. Called by the load controller after every
// state transition.
func (s *mapSession) render(state domain.LoadState) {
	s.mu.Lock()
	zoom := s.zoom
	s.mu.Unlock()

	markers := usecases.BuildMarkers(state.Records, zoom, s.deps.Policy)

	clusters := map[string]*domain.ClusterGroup{}
	for i := range markers {
		if markers[i].Cluster != nil {
			clusters[markers[i].Cluster.Key] = markers[i].Cluster
		}
	}
	s.mu.Lock()
	s.clusters = clusters
	s.mu.Unlock()

	s.send(map[string]interface{}{
		"type":         "markers",
		"markers":      markers,
		"total":        state.TotalCount,
		"has_more":     state.HasMore,
		"loading":      state.Loading,
		"loading_more": state.LoadingMore,
		"error":        state.Error,
	})
}

// Pan commands the widget to pan. Part of ports.MapController.
func (s *mapSession) Pan(lat, lng float64) {
	s.send(map[string]interface{}{"type": "pan", "lat": lat, "lng": lng})
}

// SetZoom commands the widget to zoom.
func (s *mapSession) SetZoom(zoom int) {
	s.send(map[string]interface{}{"type": "zoom", "zoom": zoom})
}

// FitToBounds commands the widget to fit the given box.
func (s *mapSession) FitToBounds(b domain.ViewportBounds) {
	s.send(map[string]interface{}{"type": "fit_bounds", "bounds": b})
}

// OnViewportSettled registers the settle listener. Part of
// ports.MapController; the listener is fed from viewport messages.
func (s *mapSession) OnViewportSettled(fn func(v domain.Viewport)) {
	s.mu.Lock()
	s.settled = fn
	s.mu.Unlock()
}

// SetQuery mirrors the committed search text into the page URL. Part of
// ports.URLState.
func (s *mapSession) SetQuery(q string) {
	s.send(map[string]interface{}{"type": "url", "query": q})
}

func (s *mapSession) sendError(code, message string) {
	s.send(map[string]interface{}{"type": "error", "code": code, "message": message})
}

func (s *mapSession) send(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("marshal outbound message", "error", err)
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.log.Debug("write failed", "error", err)
	}
}

func detailMessage(rec *domain.PlaqueRecord) map[string]interface{} {
	return map[string]interface{}{"type": "detail", "plaque": rec}
}
