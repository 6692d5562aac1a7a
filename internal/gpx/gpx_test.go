package gpx

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"route-planner-service/internal/domain"
)

func TestExportThenImport(t *testing.T) {
	pins := []domain.Pin{
		{Lat: 39.66486, Lng: 20.85189},
		{Lat: 39.52692, Lng: 20.87215},
	}
	path := []domain.Coordinate{
		{Lat: 39.66486, Lng: 20.85189, Elevation: 480},
		{Lat: 39.60000, Lng: 20.86000, Elevation: 510},
		{Lat: 39.52692, Lng: 20.87215, Elevation: 495},
	}

	data, err := Export("Ioannina ride", pins, path, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	text := string(data)
	for _, want := range []string{
		`xmlns="http://www.topografix.com/GPX/1/1"`,
		"<name>Pin 1</name>",
		"<name>Pin 2</name>",
		"<trkseg>",
		"<ele>510</ele>",
		"<time>2026-08-01T12:00:00Z</time>",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("export missing %q:\n%s", want, text)
		}
	}

	result, err := Import("ride.gpx", data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Truncated {
		t.Error("small file reported as truncated")
	}
	if len(result.Pins) != 2 {
		t.Fatalf("got %d pins, want 2", len(result.Pins))
	}
	if result.Pins[0] != pins[0] || result.Pins[1] != pins[1] {
		t.Errorf("pins = %+v, want %+v", result.Pins, pins)
	}
}

func TestExportWithoutPathSkipsTrack(t *testing.T) {
	data, err := Export("Pins only", []domain.Pin{{Lat: 39.66, Lng: 20.85}}, nil, time.Now())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if strings.Contains(string(data), "<trk>") {
		t.Error("export without a routed path should not emit a track")
	}
}

func TestImportRejectsWrongExtension(t *testing.T) {
	_, err := Import("route.kml", []byte("<gpx/>"))
	if !errors.Is(err, ErrNotGPX) {
		t.Errorf("err = %v, want ErrNotGPX", err)
	}
}

func TestImportRejectsMalformedXML(t *testing.T) {
	_, err := Import("route.gpx", []byte("<gpx><wpt lat="))
	if err == nil {
		t.Error("expected error for malformed XML")
	}
}

func TestImportRejectsNoWaypoints(t *testing.T) {
	doc := `<?xml version="1.0"?><gpx version="1.1" creator="x" xmlns="http://www.topografix.com/GPX/1/1"><trk><trkseg><trkpt lat="39.6" lon="20.8"/></trkseg></trk></gpx>`
	_, err := Import("route.gpx", []byte(doc))
	if !errors.Is(err, ErrNoWaypoints) {
		t.Errorf("err = %v, want ErrNoWaypoints", err)
	}
}

func TestImportTruncatesAtPinLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><gpx version="1.1" creator="x" xmlns="http://www.topografix.com/GPX/1/1">`)
	for i := 0; i < domain.MaxPins+5; i++ {
		fmt.Fprintf(&b, `<wpt lat="%f" lon="20.85"><name>Pin %d</name></wpt>`, 39.0+float64(i)*0.001, i+1)
	}
	b.WriteString(`</gpx>`)

	result, err := Import("big.gpx", []byte(b.String()))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !result.Truncated {
		t.Error("oversized file not reported as truncated")
	}
	if len(result.Pins) != domain.MaxPins {
		t.Errorf("got %d pins, want %d", len(result.Pins), domain.MaxPins)
	}
}

func TestImportCaseInsensitiveExtension(t *testing.T) {
	doc := `<?xml version="1.0"?><gpx version="1.1" creator="x" xmlns="http://www.topografix.com/GPX/1/1"><wpt lat="39.6" lon="20.8"/></gpx>`
	if _, err := Import("ROUTE.GPX", []byte(doc)); err != nil {
		t.Errorf("uppercase extension rejected: %v", err)
	}
}
