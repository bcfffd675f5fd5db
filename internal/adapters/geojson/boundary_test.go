package geojson

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

const parkPolygon = `{
	"type": "Polygon",
	"coordinates": [[
		[-82.403, 34.839],
		[-82.394, 34.839],
		[-82.394, 34.846],
		[-82.403, 34.846],
		[-82.403, 34.839]
	]]
}`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boundary.geojson")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_PolygonEnvelope(t *testing.T) {
	b := Load(writeTemp(t, parkPolygon), slog.Default())

	env, ok := b.Envelope()
	if !ok {
		t.Fatal("Envelope() not ok for valid polygon")
	}
	if env.West != -82.403 || env.East != -82.394 || env.South != 34.839 || env.North != 34.846 {
		t.Fatalf("envelope = %+v", env)
	}

	raw, ok := b.GeoJSON()
	if !ok || len(raw) == 0 {
		t.Fatal("GeoJSON() did not return the document")
	}
}

func TestLoad_FeatureCollection(t *testing.T) {
	doc := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"name": "park"}, "geometry": ` + parkPolygon + `}
		]
	}`
	b := Load(writeTemp(t, doc), slog.Default())

	env, ok := b.Envelope()
	if !ok {
		t.Fatal("Envelope() not ok for feature collection")
	}
	if env.North != 34.846 || env.West != -82.403 {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestLoad_MissingFileDegrades(t *testing.T) {
	b := Load(filepath.Join(t.TempDir(), "nope.geojson"), slog.Default())

	if _, ok := b.Envelope(); ok {
		t.Fatal("Envelope() ok for missing file")
	}
	if _, ok := b.GeoJSON(); ok {
		t.Fatal("GeoJSON() ok for missing file")
	}
}

func TestLoad_MalformedDocumentDegrades(t *testing.T) {
	b := Load(writeTemp(t, `{"type": "Polygon", "coordinates": `), slog.Default())

	if _, ok := b.Envelope(); ok {
		t.Fatal("Envelope() ok for malformed document")
	}
}
