// Package gpx reads and writes GPX 1.1 documents for route import/export.
package gpx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"route-planner-service/internal/domain"
)

const (
	gpxNamespace = "http://www.topografix.com/GPX/1/1"
	creator      = "route-planner-service"
)

var (
	// ErrNotGPX is returned for uploads without a .gpx extension.
	ErrNotGPX = errors.New("not a gpx file")
	// ErrNoWaypoints is returned when a parsed document carries no <wpt>
	// elements.
	ErrNoWaypoints = errors.New("gpx file has no waypoints")
)

type document struct {
	XMLName   xml.Name   `xml:"gpx"`
	Namespace string     `xml:"xmlns,attr"`
	Version   string     `xml:"version,attr"`
	Creator   string     `xml:"creator,attr"`
	Metadata  *metadata  `xml:"metadata,omitempty"`
	Waypoints []waypoint `xml:"wpt"`
	Track     *track     `xml:"trk,omitempty"`
}

type metadata struct {
	Name string `xml:"name,omitempty"`
	Time string `xml:"time,omitempty"`
}

type waypoint struct {
	Lat  float64 `xml:"lat,attr"`
	Lon  float64 `xml:"lon,attr"`
	Name string  `xml:"name,omitempty"`
}

type track struct {
	Name     string       `xml:"name,omitempty"`
	Segments []trkSegment `xml:"trkseg"`
}

type trkSegment struct {
	Points []trackPoint `xml:"trkpt"`
}

type trackPoint struct {
	Lat       float64  `xml:"lat,attr"`
	Lon       float64  `xml:"lon,attr"`
	Elevation *float64 `xml:"ele,omitempty"`
}

// Export renders the pins as waypoints and, when a routed path is present,
// a single track with elevation.
func Export(name string, pins []domain.Pin, path []domain.Coordinate, now time.Time) ([]byte, error) {
	doc := document{
		Namespace: gpxNamespace,
		Version:   "1.1",
		Creator:   creator,
		Metadata:  &metadata{Name: name, Time: now.UTC().Format(time.RFC3339)},
	}

	for i, p := range pins {
		doc.Waypoints = append(doc.Waypoints, waypoint{
			Lat:  p.Lat,
			Lon:  p.Lng,
			Name: fmt.Sprintf("Pin %d", i+1),
		})
	}

	if len(path) > 0 {
		seg := trkSegment{Points: make([]trackPoint, 0, len(path))}
		for _, c := range path {
			pt := trackPoint{Lat: c.Lat, Lon: c.Lng}
			if c.HasElevation() {
				ele := c.Elevation
				pt.Elevation = &ele
			}
			seg.Points = append(seg.Points, pt)
		}
		doc.Track = &track{Name: name, Segments: []trkSegment{seg}}
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal gpx: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// ImportResult carries the pins read from an upload plus whether the file
// held more than the pin limit allows.
type ImportResult struct {
	Pins      []domain.Pin
	Truncated bool
}

// Import parses an uploaded GPX file into pins. Only <wpt> elements are
// read; tracks and routes in the file are ignored. The filename must end in
// .gpx, the document must parse, and at least one waypoint must be present.
// Files holding more than MaxPins waypoints are truncated, reported via the
// result.
func Import(filename string, data []byte) (ImportResult, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".gpx") {
		return ImportResult{}, fmt.Errorf("%w: %q", ErrNotGPX, filename)
	}

	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return ImportResult{}, fmt.Errorf("parse gpx: %w", err)
	}
	if len(doc.Waypoints) == 0 {
		return ImportResult{}, ErrNoWaypoints
	}

	waypoints := doc.Waypoints
	truncated := false
	if len(waypoints) > domain.MaxPins {
		waypoints = waypoints[:domain.MaxPins]
		truncated = true
	}

	pins := make([]domain.Pin, 0, len(waypoints))
	for _, w := range waypoints {
		if w.Lat < -90 || w.Lat > 90 || w.Lon < -180 || w.Lon > 180 {
			return ImportResult{}, fmt.Errorf("waypoint %f,%f out of range", w.Lat, w.Lon)
		}
		pins = append(pins, domain.Pin{Lat: w.Lat, Lng: w.Lon})
	}

	return ImportResult{Pins: pins, Truncated: truncated}, nil
}
