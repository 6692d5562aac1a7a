package domain

import "math"

// Mean Earth radius in meters, used by the haversine formula.
const EarthRadiusMeters = 6371000.0

// Maximum number of pins a planning session may hold.
const MaxPins = 40

// Pin is a user-placed waypoint (latitude, longitude). Pins are ordered;
// a pin's position in the session slice determines its number.
type Pin struct {
	Lat float64
	Lng float64
}

// Coordinate is a single point of a routed path. Elevation is NaN until a
// provider (or the elevation backfill) has supplied it.
type Coordinate struct {
	Lat       float64
	Lng       float64
	Elevation float64
}

// NoElevation marks a coordinate whose elevation has not been resolved yet.
func NoElevation() float64 { return math.NaN() }

// HasElevation reports whether the coordinate carries a numeric elevation.
func (c Coordinate) HasElevation() bool { return !math.IsNaN(c.Elevation) }

func (c Coordinate) Pin() Pin { return Pin{Lat: c.Lat, Lng: c.Lng} }

// Haversine returns the great-circle distance in meters between two points.
// Downstream gradient thresholds are meter-sensitive, so this is the full
// haversine formula, not an equirectangular approximation.
func Haversine(a, b Pin) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// Gradient returns elevation change divided by horizontal distance.
// A zero horizontal distance yields a zero gradient.
func Gradient(elevationDelta, horizontalDistance float64) float64 {
	if horizontalDistance == 0 {
		return 0
	}
	return elevationDelta / horizontalDistance
}

// Midpoint returns the arithmetic midpoint of two pins. Good enough for the
// waypoint insertion heuristic, which only compares relative distances.
func Midpoint(a, b Pin) Pin {
	return Pin{Lat: (a.Lat + b.Lat) / 2, Lng: (a.Lng + b.Lng) / 2}
}
