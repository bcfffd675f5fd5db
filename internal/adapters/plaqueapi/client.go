package plaqueapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dandedj/csp-client/internal/core/domain"
	"github.com/dandedj/csp-client/internal/core/ports"
	"github.com/dandedj/csp-client/internal/pkg/config"
	"github.com/dandedj/csp-client/internal/pkg/metrics"
)

const maxResponseBytes = 8 << 20

// Client talks to the remote plaque catalog API and implements
// ports.PlaqueSource. Listing and search calls fail soft: the caller
// always gets a usable (possibly empty) batch plus the typed error.
type Client struct {
	httpClient *http.Client
	listURL    string
	searchURL  string
	detailURL  string
	log        *slog.Logger
}

var _ ports.PlaqueSource = (*Client)(nil)

func NewClient(cfg config.APIConfig, log *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		listURL:    cfg.ListURL,
		searchURL:  cfg.SearchURL,
		detailURL:  cfg.DetailURL,
		log:        log,
	}
}

// FetchAll pages through the catalog listing. Bounds are appended only
// when the caller supplied a full valid box; a partial box is never
// sent.
func (c *Client) FetchAll(ctx context.Context, opts ports.FetchOptions) (*domain.PlaqueBatch, error) {
	params := url.Values{}
	params.Set("confidence_threshold", strconv.Itoa(opts.ConfidenceThreshold))
	params.Set("grouped", strconv.FormatBool(opts.Grouped))
	params.Set("limit", strconv.Itoa(opts.Limit))
	params.Set("offset", strconv.Itoa(opts.Offset))
	if b := opts.Bounds; b != nil && b.Valid() {
		params.Set("north", formatCoord(b.North))
		params.Set("south", formatCoord(b.South))
		params.Set("east", formatCoord(b.East))
		params.Set("west", formatCoord(b.West))
	}

	batch, err := c.getBatch(ctx, "list", c.listURL+"?"+params.Encode())
	if err != nil {
		c.log.Warn("listing fetch failed", "error", err)
		return emptyBatch(), err
	}
	return batch, nil
}

// Search queries the free-text endpoint. An empty query is the caller's
// bug; it is still sent rather than second-guessed here.
func (c *Client) Search(ctx context.Context, query string, opts ports.SearchOptions) (*domain.PlaqueBatch, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("confidence_threshold", strconv.Itoa(opts.ConfidenceThreshold))
	params.Set("limit", strconv.Itoa(opts.Limit))
	params.Set("offset", strconv.Itoa(opts.Offset))

	batch, err := c.getBatch(ctx, "search", c.searchURL+"?"+params.Encode())
	if err != nil {
		c.log.Warn("search fetch failed", "query", query, "error", err)
		return emptyBatch(), err
	}
	return batch, nil
}

// FetchByID looks a record up by its path-parameter endpoint, then
// retries once through the legacy query-parameter form. Exhausting both
// returns (nil, nil), never an error.
func (c *Client) FetchByID(ctx context.Context, id string) (*domain.PlaqueRecord, error) {
	rec, err := c.getOne(ctx, c.detailURL+"/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}

	// Older API deployments only understand ?id=.
	rec, err = c.getOne(ctx, c.detailURL+"?id="+url.QueryEscape(id))
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// FetchByPhotoID returns every plaque extracted from one source photo.
func (c *Client) FetchByPhotoID(ctx context.Context, photoID string, confidenceThreshold int) ([]domain.PlaqueRecord, error) {
	params := url.Values{}
	params.Set("photo_id", photoID)
	params.Set("confidence_threshold", strconv.Itoa(confidenceThreshold))

	batch, err := c.getBatch(ctx, "photo", c.listURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	return batch.Records, nil
}

func (c *Client) getBatch(ctx context.Context, kind, fullURL string) (*domain.PlaqueBatch, error) {
	body, err := c.get(ctx, kind, fullURL)
	if err != nil {
		return nil, err
	}
	batch, err := decodeBatch(body)
	if err != nil {
		metrics.PlaqueFetchErrors.WithLabelValues(kind, "parse").Inc()
		return nil, &ParseError{URL: fullURL, Err: err}
	}
	return batch, nil
}

func (c *Client) getOne(ctx context.Context, fullURL string) (*domain.PlaqueRecord, error) {
	body, err := c.get(ctx, "detail", fullURL)
	if err != nil {
		return nil, err
	}
	rec, err := decodeOne(body)
	if err != nil {
		metrics.PlaqueFetchErrors.WithLabelValues("detail", "parse").Inc()
		return nil, &ParseError{URL: fullURL, Err: err}
	}
	return rec, nil
}

func (c *Client) get(ctx context.Context, kind, fullURL string) ([]byte, error) {
	metrics.PlaqueFetchesTotal.WithLabelValues(kind).Inc()
	start := time.Now()
	defer func() {
		metrics.PlaqueFetchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: fullURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.PlaqueFetchErrors.WithLabelValues(kind, "network").Inc()
		return nil, &NetworkError{URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.PlaqueFetchErrors.WithLabelValues(kind, "network").Inc()
		return nil, &NetworkError{URL: fullURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.PlaqueFetchErrors.WithLabelValues(kind, "api").Inc()
		return nil, &APIError{
			URL:        fullURL,
			StatusCode: resp.StatusCode,
			Message:    apiMessage(body),
		}
	}
	return body, nil
}

// apiMessage pulls a human-readable message out of an error body when
// the API bothered to send one.
func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

func emptyBatch() *domain.PlaqueBatch {
	return &domain.PlaqueBatch{Records: []domain.PlaqueRecord{}}
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%g", v)
}
