package report

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"testing"

	"route-planner-service/internal/domain"
)

// fixedMeasurer returns constant heights so chunking math is exercised in
// isolation from the renderer.
type fixedMeasurer struct {
	header, combined float64
}

func (m fixedMeasurer) MeasureHeader() (float64, error)        { return m.header, nil }
func (m fixedMeasurer) MeasureHeaderWithRow() (float64, error) { return m.combined, nil }

func TestRowsPerPage(t *testing.T) {
	if got := RowsPerPage(400, 100, 50); got != 6 {
		t.Errorf("RowsPerPage(400, 100, 50) = %d, want 6", got)
	}
	// A row taller than the page still makes progress.
	if got := RowsPerPage(400, 100, 500); got != 1 {
		t.Errorf("oversized row: RowsPerPage = %d, want 1", got)
	}
	if got := RowsPerPage(400, 100, 0); got != 1 {
		t.Errorf("zero row height: RowsPerPage = %d, want 1", got)
	}
}

func TestPlanChunksRows(t *testing.T) {
	plan, err := Plan(13, fixedMeasurer{header: 100, combined: 150}, 400)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if plan.RowsPerPage != 6 {
		t.Fatalf("RowsPerPage = %d, want 6", plan.RowsPerPage)
	}
	if len(plan.Chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(plan.Chunks))
	}

	sizes := []int{6, 6, 1}
	for i, chunk := range plan.Chunks {
		if chunk.End-chunk.Start != sizes[i] {
			t.Errorf("chunk %d size = %d, want %d", i, chunk.End-chunk.Start, sizes[i])
		}
	}
	if !plan.Chunks[0].First || plan.Chunks[1].First || plan.Chunks[2].First {
		t.Error("First flag wrong")
	}
	if plan.Chunks[0].Last || plan.Chunks[1].Last || !plan.Chunks[2].Last {
		t.Error("Last flag wrong")
	}
}

func TestPlanEmptyTableStillHasOnePage(t *testing.T) {
	plan, err := Plan(0, fixedMeasurer{header: 100, combined: 150}, 400)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(plan.Chunks))
	}
	if !plan.Chunks[0].First || !plan.Chunks[0].Last {
		t.Errorf("single chunk flags = %+v", plan.Chunks[0])
	}
}

func TestMeasurementIsConsistent(t *testing.T) {
	table := waypointTable(
		[]domain.Pin{{Lat: 39.66, Lng: 20.85}},
		[]domain.AddressEntry{{Status: domain.AddressSuccess, Address: "Dodonis, Ioannina, Greece"}},
	)

	header, err := table.MeasureHeader()
	if err != nil {
		t.Fatalf("MeasureHeader: %v", err)
	}
	combined, err := table.MeasureHeaderWithRow()
	if err != nil {
		t.Fatalf("MeasureHeaderWithRow: %v", err)
	}
	if combined <= header {
		t.Fatalf("combined height %v not larger than header height %v", combined, header)
	}
}

func buildInput(pinCount int) Input {
	in := Input{
		RouteName: "Ioannina ride",
		Stats:     domain.RouteStats{DistanceMeters: 14250, ElevationGainM: 320, SteepUphillMeters: 900},
		Segments: []domain.Segment{
			{StartKm: 0, EndKm: 5.1, AverageGradient: 0.02, IsSteep: false, LengthMeters: 5100},
			{StartKm: 5.1, EndKm: 6.0, AverageGradient: 0.07, IsSteep: true, LengthMeters: 900},
		},
	}
	for i := 0; i < pinCount; i++ {
		pin := domain.Pin{Lat: 39.0 + float64(i)*0.01, Lng: 20.85}
		in.Pins = append(in.Pins, pin)
		in.Addresses = append(in.Addresses, domain.AddressEntry{
			Status:  domain.AddressSuccess,
			Address: fmt.Sprintf("Street %d, Ioannina, Greece", i+1),
			Pin:     pin,
		})
	}
	return in
}

func TestBuildProducesDecodablePages(t *testing.T) {
	in := buildInput(3)
	in.MapSnapshot = image.NewRGBA(image.Rect(0, 0, 640, 480))

	pages, err := Build(context.Background(), in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Stats, one waypoint page, one steepness page, one map page.
	if len(pages) != 4 {
		t.Fatalf("got %d pages, want 4", len(pages))
	}

	for i, page := range pages {
		img, err := png.Decode(bytes.NewReader(page))
		if err != nil {
			t.Fatalf("page %d is not a PNG: %v", i+1, err)
		}
		bounds := img.Bounds()
		if i == len(pages)-1 {
			if bounds.Dx() <= bounds.Dy() {
				t.Errorf("map page is not landscape: %v", bounds)
			}
			continue
		}
		if bounds.Dx() != ContentWidth*CanvasScale {
			t.Errorf("page %d width = %d, want %d", i+1, bounds.Dx(), ContentWidth*CanvasScale)
		}
		if bounds.Dy() <= bounds.Dx() {
			t.Errorf("portrait page %d has bounds %v", i+1, bounds)
		}
	}
}

func TestBuildWithoutMapSkipsFinalPage(t *testing.T) {
	pages, err := Build(context.Background(), buildInput(2))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}
}

func TestLongWaypointTableSpansPages(t *testing.T) {
	table := waypointTable(manyPins(200), nil)
	pages, err := table.renderPages()
	if err != nil {
		t.Fatalf("renderPages: %v", err)
	}
	if len(pages) < 2 {
		t.Fatalf("200 rows produced %d page(s), want a multi-page table", len(pages))
	}
}

func manyPins(n int) []domain.Pin {
	pins := make([]domain.Pin, n)
	for i := range pins {
		pins[i] = domain.Pin{Lat: 39.0 + float64(i)*0.001, Lng: 20.85}
	}
	return pins
}
