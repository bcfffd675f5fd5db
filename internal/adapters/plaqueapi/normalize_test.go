package plaqueapi

import (
	"testing"

	"github.com/dandedj/csp-client/internal/core/domain"
)

func TestDecodeBatch_FiltersNonObjectEntries(t *testing.T) {
	body := []byte(`{"plaques": [
		{"id": "p1", "text": "keep"},
		"just a string",
		42,
		null,
		{"id": "p2", "text": "also keep"}
	], "total_count": 5}`)

	batch, err := decodeBatch(body)
	if err != nil {
		t.Fatalf("decodeBatch: %v", err)
	}
	if len(batch.Records) != 2 {
		t.Fatalf("records = %d, want 2 after filtering", len(batch.Records))
	}
	if batch.Records[0].ID != "p1" || batch.Records[1].ID != "p2" {
		t.Fatalf("records = %+v", batch.Records)
	}
}

func TestDecodeBatch_EmptyTextArrayGetsPlaceholder(t *testing.T) {
	batch, err := decodeBatch([]byte(`{"plaques": [{"id": "p1", "text": []}]}`))
	if err != nil {
		t.Fatalf("decodeBatch: %v", err)
	}
	if got := batch.Records[0].Text; got != domain.DefaultPlaqueText {
		t.Fatalf("Text = %q, want %q", got, domain.DefaultPlaqueText)
	}
}

func TestDecodeBatch_TextWinsOverLegacyAlias(t *testing.T) {
	body := []byte(`{"plaques": [
		{"id": "both", "text": "current text", "plaque_text": "legacy alias"},
		{"id": "alias-only", "plaque_text": "legacy alias"}
	]}`)

	batch, err := decodeBatch(body)
	if err != nil {
		t.Fatalf("decodeBatch: %v", err)
	}
	if got := batch.Records[0].Text; got != "current text" {
		t.Errorf("Text = %q, want the text field over the alias", got)
	}
	if got := batch.Records[1].Text; got != "legacy alias" {
		t.Errorf("Text = %q, want the alias when text is absent", got)
	}
}

func TestDecodeBatch_PartialLocationDropped(t *testing.T) {
	body := []byte(`{"plaques": [
		{"id": "lat-only", "location": {"latitude": 34.8}},
		{"id": "lng-only", "location": {"longitude": -82.4}},
		{"id": "full", "location": {"latitude": 34.8, "longitude": -82.4, "confidence": 0.9}}
	]}`)

	batch, err := decodeBatch(body)
	if err != nil {
		t.Fatalf("decodeBatch: %v", err)
	}
	if len(batch.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(batch.Records))
	}
	if batch.Records[0].HasLocation() || batch.Records[1].HasLocation() {
		t.Error("partial coordinates must not produce a location")
	}
	full := batch.Records[2]
	if !full.HasLocation() || full.Location.Latitude != 34.8 {
		t.Errorf("full location = %+v", full.Location)
	}
	if full.Location.Confidence == nil || *full.Location.Confidence != 0.9 {
		t.Errorf("location confidence = %v", full.Location.Confidence)
	}
}

func TestDecodeBatch_PhotoAndCroppingCarriedThrough(t *testing.T) {
	body := []byte(`{"plaques": [{
		"id": "p1",
		"photo": {"url": "https://img/p1.jpg", "camera_position": {"latitude": 34.8, "longitude": -82.4, "bearing": 120}},
		"cropped_image_url": "https://img/p1-crop.jpg",
		"cropping_coordinates": {"x": 10, "y": 20, "width": 300, "height": 150},
		"confidence": 87.6
	}]}`)

	batch, err := decodeBatch(body)
	if err != nil {
		t.Fatalf("decodeBatch: %v", err)
	}
	rec := batch.Records[0]
	if rec.Photo == nil || rec.Photo.URL != "https://img/p1.jpg" {
		t.Fatalf("photo = %+v", rec.Photo)
	}
	if rec.Photo.CameraPosition == nil || *rec.Photo.CameraPosition.Bearing != 120 {
		t.Errorf("camera position = %+v", rec.Photo.CameraPosition)
	}
	if rec.CroppedImageURL != "https://img/p1-crop.jpg" {
		t.Errorf("CroppedImageURL = %q", rec.CroppedImageURL)
	}
	if rec.CroppingCoordinates == nil || rec.CroppingCoordinates.Width != 300 {
		t.Errorf("cropping = %+v", rec.CroppingCoordinates)
	}
	if rec.Confidence == nil || *rec.Confidence != 88 {
		t.Errorf("confidence = %v, want rounded 88", rec.Confidence)
	}
}

func TestDecodeOne_SingleElementArray(t *testing.T) {
	rec, err := decodeOne([]byte(`[{"id": "p1", "text": "only"}]`))
	if err != nil {
		t.Fatalf("decodeOne: %v", err)
	}
	if rec == nil || rec.ID != "p1" {
		t.Fatalf("rec = %+v", rec)
	}
}

func TestDecodeOne_EmptyArrayIsNotFound(t *testing.T) {
	rec, err := decodeOne([]byte(`[]`))
	if err != nil {
		t.Fatalf("decodeOne: %v", err)
	}
	if rec != nil {
		t.Fatalf("rec = %+v, want nil", rec)
	}
}
