package report

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
)

// Input is everything one export needs, captured up front so the build is
// not affected by session edits while it runs.
type Input struct {
	RouteName string
	Stats     domain.RouteStats
	Pins      []domain.Pin
	Addresses []domain.AddressEntry
	Segments  []domain.Segment
	// MapSnapshot, when present, becomes the final landscape page.
	MapSnapshot image.Image
}

// Build renders the full report and returns its pages as PNG bytes in
// order: stats, waypoint table, steepness table, map.
func Build(ctx context.Context, in Input) (_ [][]byte, err error) {
	defer obs.Time(ctx, "report.Build")(&err)

	contexts := []*gg.Context{renderStatsPage(in.RouteName, statsLines(in.Stats))}

	waypointPages, err := waypointTable(in.Pins, in.Addresses).renderPages()
	if err != nil {
		return nil, err
	}
	contexts = append(contexts, waypointPages...)

	steepnessPages, err := steepnessTable(in.Segments).renderPages()
	if err != nil {
		return nil, err
	}
	contexts = append(contexts, steepnessPages...)

	if in.MapSnapshot != nil {
		contexts = append(contexts, renderMapPage(in.MapSnapshot))
	}

	pages := make([][]byte, 0, len(contexts))
	for i, dc := range contexts {
		var buf bytes.Buffer
		if err := dc.EncodePNG(&buf); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", i+1, err)
		}
		pages = append(pages, buf.Bytes())
	}
	return pages, nil
}

func statsLines(stats domain.RouteStats) []string {
	return []string{
		fmt.Sprintf("Total distance: %s", domain.FormatDistance(stats.DistanceMeters)),
		fmt.Sprintf("Elevation gain: %.0f m", stats.ElevationGainM),
		fmt.Sprintf("Steep uphill distance: %s", domain.FormatDistance(stats.SteepUphillMeters)),
	}
}

func waypointTable(pins []domain.Pin, addresses []domain.AddressEntry) *tableRenderer {
	rows := make([]Row, 0, len(pins))
	for i, p := range pins {
		address := "-"
		if i < len(addresses) && addresses[i].Status == domain.AddressSuccess {
			address = addresses[i].Address
		}
		rows = append(rows, Row{Cells: []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.5f", p.Lat),
			fmt.Sprintf("%.5f", p.Lng),
			address,
		}})
	}

	return &tableRenderer{
		title:   "Waypoints",
		columns: []string{"#", "Latitude", "Longitude", "Address"},
		widths:  []float64{0.08, 0.16, 0.16, 0.60},
		rows:    rows,
	}
}

func steepnessTable(segments []domain.Segment) *tableRenderer {
	rows := make([]Row, 0, len(segments))
	var steepMeters float64
	for _, seg := range segments {
		classification := "No"
		if seg.IsSteep {
			classification = "Yes"
			steepMeters += seg.LengthMeters
		}
		rows = append(rows, Row{
			Cells: []string{
				fmt.Sprintf("%.2f km", seg.StartKm),
				fmt.Sprintf("%.2f km", seg.EndKm),
				fmt.Sprintf("%.1f%%", seg.AverageGradient*100),
				domain.FormatDistance(seg.LengthMeters),
				classification,
			},
			Highlight: seg.IsSteep,
		})
	}

	return &tableRenderer{
		title:   "Steepness analysis",
		columns: []string{"From", "To", "Avg gradient", "Length", "Steep"},
		widths:  []float64{0.2, 0.2, 0.2, 0.25, 0.15},
		rows:    rows,
		summary: fmt.Sprintf("Total steep distance: %s", domain.FormatDistance(steepMeters)),
	}
}
