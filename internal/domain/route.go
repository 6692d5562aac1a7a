package domain

import (
	"fmt"
	"math"
)

// RouteResult is the normalized output of a routing provider: the full
// path-following coordinate sequence and the provider-reported distance.
// A recalculation produces a fresh RouteResult; results are never mutated.
type RouteResult struct {
	Coordinates    []Coordinate
	DistanceMeters float64
}

// Segment is a maximal contiguous run of route point-pairs that share the
// same steep/non-steep classification. Segments partition the route: they
// are contiguous, non-overlapping, and their lengths sum to the total route
// distance within floating-point tolerance.
type Segment struct {
	StartKm         float64
	EndKm           float64
	AverageGradient float64
	IsSteep         bool
	LengthMeters    float64
}

// ProfilePoint is one sample of the elevation chart: cumulative distance,
// elevation, and whether the pair ending at this point exceeds the
// steepness threshold.
type ProfilePoint struct {
	DistanceMeters float64
	Elevation      float64
	IsSteep        bool
}

// RouteStats are the headline numbers shown with a computed route.
// SteepUphillMeters counts only pairs that are both steep and climbing;
// segment classification ignores the sign on purpose, this statistic does not.
type RouteStats struct {
	DistanceMeters    float64
	ElevationGainM    float64
	SteepUphillMeters float64
}

// SteepRun is a maximal sequence of consecutive steep uphill pairs,
// rendered as a separate overlay line on top of the route.
type SteepRun struct {
	Coordinates []Coordinate
}

// FormatDistance renders meters the way the UI and reports show them:
// kilometers with two decimals above one kilometer, whole meters below.
func FormatDistance(meters float64) string {
	if meters > 1000 {
		return fmt.Sprintf("%.2f km", meters/1000)
	}
	return fmt.Sprintf("%d m", int(math.Round(meters)))
}
