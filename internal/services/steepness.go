package services

import (
	"route-planner-service/internal/domain"
)

// SteepGradientThreshold is the gradient (ratio, not percent) above which a
// point pair is classified as steep.
const SteepGradientThreshold = 0.05

// MaxProfilePoints caps the elevation profile sent to the chart.
const MaxProfilePoints = 300

// AnalyzeSteepness walks consecutive point pairs of a routed path and merges
// runs of identical steep/non-steep classification into segments.
//
// The per-segment gradient is the plain arithmetic mean of the per-pair
// gradients, not a distance-weighted mean. Reports have always been produced
// with the unweighted mean, so changing it would silently alter their
// numbers; keep it.
func AnalyzeSteepness(coords []domain.Coordinate) []domain.Segment {
	if len(coords) < 2 {
		return nil
	}

	var segments []domain.Segment
	var gradients []float64
	var segmentMeters, startMeters float64
	var cumulativeMeters float64
	var lastSteep bool

	closeSegment := func(endMeters float64, steep bool) {
		// Zero-length runs are never emitted.
		if segmentMeters <= 0 {
			return
		}
		var sum float64
		for _, g := range gradients {
			sum += g
		}
		n := len(gradients)
		if n == 0 {
			n = 1
		}
		segments = append(segments, domain.Segment{
			StartKm:         startMeters / 1000,
			EndKm:           endMeters / 1000,
			AverageGradient: sum / float64(n),
			IsSteep:         steep,
			LengthMeters:    segmentMeters,
		})
	}

	for i := 1; i < len(coords); i++ {
		p1 := coords[i-1]
		p2 := coords[i]
		pairMeters := domain.Haversine(p1.Pin(), p2.Pin())
		gradient := domain.Gradient(p2.Elevation-p1.Elevation, pairMeters)
		// Sign is deliberately ignored here: a steep descent still closes
		// and opens segments. Only the uphill statistic filters on sign.
		isSteep := gradient > SteepGradientThreshold

		if i == 1 {
			lastSteep = isSteep
		}

		if isSteep != lastSteep {
			closeSegment(cumulativeMeters, lastSteep)
			gradients = nil
			segmentMeters = 0
			startMeters = cumulativeMeters
		}

		gradients = append(gradients, gradient)
		segmentMeters += pairMeters
		cumulativeMeters += pairMeters
		lastSteep = isSteep
	}

	closeSegment(cumulativeMeters, lastSteep)

	return segments
}

// ComputeStats produces the headline route numbers from a path with
// elevations. Steep uphill distance counts a pair only when its gradient
// exceeds the threshold AND it climbs; downhill-but-steep pairs are excluded
// from this statistic even though segment classification keeps them.
func ComputeStats(coords []domain.Coordinate) domain.RouteStats {
	var stats domain.RouteStats
	for i := 1; i < len(coords); i++ {
		prev := coords[i-1]
		cur := coords[i]
		pairMeters := domain.Haversine(prev.Pin(), cur.Pin())
		stats.DistanceMeters += pairMeters

		delta := cur.Elevation - elevationOrZero(prev)
		if delta > 0 {
			stats.ElevationGainM += delta
		}
		if pairMeters > 0 {
			gradient := delta / pairMeters
			if gradient > SteepGradientThreshold && delta > 0 {
				stats.SteepUphillMeters += pairMeters
			}
		}
	}
	return stats
}

// ElevationProfile samples the per-point chart data: cumulative distance,
// elevation, and the steepness flag of the pair ending at each point. Paths
// longer than maxPoints are thinned to every Nth point (N = len/maxPoints).
func ElevationProfile(coords []domain.Coordinate, maxPoints int) []domain.ProfilePoint {
	if maxPoints <= 0 {
		maxPoints = MaxProfilePoints
	}

	profile := make([]domain.ProfilePoint, 0, len(coords))
	var cumulativeMeters float64
	for i, c := range coords {
		isSteep := false
		if i > 0 {
			prev := coords[i-1]
			pairMeters := domain.Haversine(prev.Pin(), c.Pin())
			cumulativeMeters += pairMeters
			if pairMeters > 0 {
				gradient := (c.Elevation - elevationOrZero(prev)) / pairMeters
				isSteep = gradient > SteepGradientThreshold
			}
		}
		profile = append(profile, domain.ProfilePoint{
			DistanceMeters: cumulativeMeters,
			Elevation:      c.Elevation,
			IsSteep:        isSteep,
		})
	}

	if len(profile) <= maxPoints {
		return profile
	}

	step := len(profile) / maxPoints
	sampled := make([]domain.ProfilePoint, 0, maxPoints+1)
	for i := 0; i < len(profile); i += step {
		sampled = append(sampled, profile[i])
	}
	return sampled
}

// SteepRuns extracts the maximal runs of consecutive steep uphill pairs used
// for the red overlay. Unlike segment classification, the overlay applies the
// uphill-only rule: a steep descent is not highlighted.
func SteepRuns(coords []domain.Coordinate) []domain.SteepRun {
	var runs []domain.SteepRun
	var current []domain.Coordinate

	flush := func() {
		if len(current) > 1 {
			runs = append(runs, domain.SteepRun{Coordinates: current})
		}
		current = nil
	}

	for i := 1; i < len(coords); i++ {
		start := coords[i-1]
		end := coords[i]
		pairMeters := domain.Haversine(start.Pin(), end.Pin())
		if pairMeters <= 0 {
			continue
		}
		delta := end.Elevation - start.Elevation
		gradient := delta / pairMeters
		if gradient > SteepGradientThreshold && delta > 0 {
			if len(current) == 0 {
				current = append(current, start)
			}
			current = append(current, end)
		} else {
			flush()
		}
	}
	flush()

	return runs
}

func elevationOrZero(c domain.Coordinate) float64 {
	if !c.HasElevation() {
		return 0
	}
	return c.Elevation
}
