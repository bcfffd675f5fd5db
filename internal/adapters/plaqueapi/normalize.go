package plaqueapi

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/dandedj/csp-client/internal/core/domain"
)

// The catalog API has grown several response shapes over time: a paged
// envelope or a legacy bare array at the top, per-record field aliases
// underneath. Everything is folded into domain.PlaqueRecord here so the
// rest of the service never sees the wire forms.

type wireEnvelope struct {
	Plaques       json.RawMessage `json:"plaques"`
	TotalCount    int             `json:"total_count"`
	FilteredCount int             `json:"filtered_count"`
	Limit         int             `json:"limit"`
	Offset        int             `json:"offset"`
}

type wireRecord struct {
	ID              string          `json:"id"`
	Location        *wireLocation   `json:"location"`
	Bearing         *float64        `json:"bearing"`
	Text            json.RawMessage `json:"text"`
	PlaqueText      json.RawMessage `json:"plaque_text"`
	Confidence      *float64        `json:"confidence"`
	Photo           *wirePhoto      `json:"photo"`
	ImageURL        string          `json:"image_url"`
	CroppedImageURL string          `json:"cropped_image_url"`
	Cropping        *wireCropping   `json:"cropping_coordinates"`
}

type wireLocation struct {
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Confidence *float64 `json:"confidence"`
}

type wirePhoto struct {
	URL            string `json:"url"`
	CameraPosition *struct {
		Latitude  float64  `json:"latitude"`
		Longitude float64  `json:"longitude"`
		Bearing   *float64 `json:"bearing"`
	} `json:"camera_position"`
}

type wireCropping struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// decodeBatch parses a listing or search response body, accepting both
// the paged envelope and the legacy bare-array shape.
func decodeBatch(body []byte) (*domain.PlaqueBatch, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		records := normalizeAll(items)
		return &domain.PlaqueBatch{Records: records, TotalCount: len(records)}, nil
	}

	var env wireEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if len(env.Plaques) > 0 {
		if err := json.Unmarshal(env.Plaques, &items); err != nil {
			return nil, err
		}
	}
	records := normalizeAll(items)
	total := env.TotalCount
	if total == 0 {
		total = len(records)
	}
	return &domain.PlaqueBatch{
		Records:       records,
		TotalCount:    total,
		FilteredCount: env.FilteredCount,
		Limit:         env.Limit,
		Offset:        env.Offset,
	}, nil
}

// decodeOne parses a detail response: a single object, a one-element
// array (first element used), or an empty array meaning not found.
func decodeOne(body []byte) (*domain.PlaqueRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, nil
		}
		rec, ok := normalizeRecord(items[0])
		if !ok {
			return nil, nil
		}
		return rec, nil
	}

	var raw json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, err
	}
	rec, ok := normalizeRecord(raw)
	if !ok {
		return nil, nil
	}
	return rec, nil
}

// normalizeAll drops non-object entries silently. Partial data quality
// problems are not user-facing failures.
func normalizeAll(items []json.RawMessage) []domain.PlaqueRecord {
	records := make([]domain.PlaqueRecord, 0, len(items))
	for _, item := range items {
		if rec, ok := normalizeRecord(item); ok {
			records = append(records, *rec)
		}
	}
	return records
}

func normalizeRecord(raw json.RawMessage) (*domain.PlaqueRecord, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var w wireRecord
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return nil, false
	}

	rec := &domain.PlaqueRecord{
		ID:              w.ID,
		Text:            collapseText(w.Text, w.PlaqueText),
		Bearing:         w.Bearing,
		CroppedImageURL: w.CroppedImageURL,
	}

	// Both coordinates or no location at all. A record with half a
	// coordinate pair cannot be placed and pretending otherwise puts
	// markers on the equator.
	if w.Location != nil && w.Location.Latitude != nil && w.Location.Longitude != nil {
		rec.Location = &domain.GeoLocation{
			Latitude:   *w.Location.Latitude,
			Longitude:  *w.Location.Longitude,
			Confidence: w.Location.Confidence,
		}
	}

	if w.Confidence != nil {
		c := int(math.Round(*w.Confidence))
		rec.Confidence = &c
	}

	rec.Photo = normalizePhoto(w.Photo, w.ImageURL)

	if w.Cropping != nil {
		rec.CroppingCoordinates = &domain.CroppingCoordinates{
			X:      w.Cropping.X,
			Y:      w.Cropping.Y,
			Width:  w.Cropping.Width,
			Height: w.Cropping.Height,
		}
	}
	return rec, true
}

// normalizePhoto prefers the structured photo object, falling back to
// the flat image_url alias older records carry.
func normalizePhoto(p *wirePhoto, imageURL string) *domain.Photo {
	if p == nil {
		if imageURL == "" {
			return nil
		}
		return &domain.Photo{URL: imageURL}
	}
	photo := &domain.Photo{URL: p.URL}
	if photo.URL == "" {
		photo.URL = imageURL
	}
	if p.CameraPosition != nil {
		photo.CameraPosition = &domain.CameraPosition{
			Latitude:  p.CameraPosition.Latitude,
			Longitude: p.CameraPosition.Longitude,
			Bearing:   p.CameraPosition.Bearing,
		}
	}
	if photo.URL == "" && photo.CameraPosition == nil {
		return nil
	}
	return photo
}

// collapseText folds the wire text forms into one string: a plain
// string passes through, an array collapses to its first element or the
// placeholder when empty. plaque_text is the older alias for the same
// field and is consulted only when text itself is absent.
func collapseText(text, plaqueText json.RawMessage) string {
	if s, ok := foldText(text); ok {
		return s
	}
	if s, ok := foldText(plaqueText); ok {
		return s
	}
	return ""
}

func foldText(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s, true
	}
	var many []string
	if err := json.Unmarshal(trimmed, &many); err == nil {
		if len(many) == 0 {
			return domain.DefaultPlaqueText, true
		}
		return many[0], true
	}
	return "", false
}
