package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
)

// ElevationPointCap bounds how many points a single elevation lookup may
// carry. Longer paths are thinned before the call and re-interpolated after.
const ElevationPointCap = 300

// ErrAllProvidersFailed is returned when every routing provider in the
// fallback chain failed for one calculation.
var ErrAllProvidersFailed = errors.New("all routing providers failed")

// ErrNotEnoughPins is returned when fewer than two pins are supplied.
var ErrNotEnoughPins = errors.New("at least two pins are required")

// RouteAcquisition obtains a routed path with elevation for an ordered pin
// list. Providers are tried in their configured order; the first success
// wins. If the winning provider did not include elevation, the elevation
// provider fills it in, downsampling paths above ElevationPointCap.
type RouteAcquisition struct {
	Providers []ports.RouteProvider
	Elevation ports.ElevationProvider
}

func NewRouteAcquisition(providers []ports.RouteProvider, elevation ports.ElevationProvider) *RouteAcquisition {
	return &RouteAcquisition{Providers: providers, Elevation: elevation}
}

// Acquire fetches a route through the pins. With roundTrip set, a final leg
// back to the first pin is appended before calling the providers.
func (a *RouteAcquisition) Acquire(ctx context.Context, pins []domain.Pin, roundTrip bool) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, "acquisition.Acquire")(&err)

	routePins := pins
	if roundTrip && len(pins) >= 2 {
		routePins = make([]domain.Pin, 0, len(pins)+1)
		routePins = append(routePins, pins...)
		routePins = append(routePins, pins[0])
	}

	if len(routePins) < 2 {
		return domain.RouteResult{}, ErrNotEnoughPins
	}

	result, err := a.fetchWithFallback(ctx, routePins)
	if err != nil {
		return domain.RouteResult{}, err
	}

	// Presence of a numeric elevation on the first coordinate decides
	// whether the whole path needs the backfill.
	if len(result.Coordinates) > 0 && !result.Coordinates[0].HasElevation() {
		log.Printf("op=acquisition msg=%q", "provider returned no elevation, backfilling")
		coords, err := a.backfillElevation(ctx, result.Coordinates)
		if err != nil {
			return domain.RouteResult{}, fmt.Errorf("backfill elevation: %w", err)
		}
		result.Coordinates = coords
	}

	return result, nil
}

// fetchWithFallback tries each provider in order and stops at the first
// success. Individual failures are logged and swallowed; only the aggregate
// is surfaced.
func (a *RouteAcquisition) fetchWithFallback(ctx context.Context, pins []domain.Pin) (domain.RouteResult, error) {
	if len(a.Providers) == 0 {
		return domain.RouteResult{}, ErrAllProvidersFailed
	}

	var lastErr error
	for _, p := range a.Providers {
		result, err := p.FetchRoute(ctx, pins)
		if err != nil {
			log.Printf("op=acquisition provider=%s err=%v", p.Name(), err)
			lastErr = err
			continue
		}
		return result, nil
	}

	return domain.RouteResult{}, fmt.Errorf("%w: last error: %v", ErrAllProvidersFailed, lastErr)
}

// backfillElevation resolves elevations for every coordinate, thinning the
// request to at most ElevationPointCap points and linearly interpolating the
// responses back onto the full sequence.
func (a *RouteAcquisition) backfillElevation(ctx context.Context, coords []domain.Coordinate) ([]domain.Coordinate, error) {
	if a.Elevation == nil {
		return nil, errors.New("no elevation provider configured")
	}

	points := make([]domain.Pin, len(coords))
	for i, c := range coords {
		points[i] = c.Pin()
	}

	step := sampleStep(len(points), ElevationPointCap)
	request := points
	if step > 1 {
		request = make([]domain.Pin, 0, len(points)/step+1)
		for i := 0; i < len(points); i += step {
			request = append(request, points[i])
		}
	}

	elevations, err := a.Elevation.Elevations(ctx, request)
	if err != nil {
		return nil, err
	}
	if len(elevations) != len(request) {
		return nil, fmt.Errorf("elevation provider returned %d values for %d points", len(elevations), len(request))
	}

	full := elevations
	if step > 1 {
		full = interpolateElevations(elevations, len(points), step)
	}

	out := make([]domain.Coordinate, len(coords))
	for i, c := range coords {
		out[i] = domain.Coordinate{Lat: c.Lat, Lng: c.Lng, Elevation: full[i]}
	}
	return out, nil
}

// sampleStep returns the stride that keeps a thinned point list within cap.
// Returns 1 when no thinning is needed.
func sampleStep(count, limit int) int {
	if count <= limit {
		return 1
	}
	step := count / limit
	// A floor stride can still exceed the cap (e.g. 301 points, cap 300);
	// widen until the sampled count fits.
	for (count+step-1)/step > limit {
		step++
	}
	return step
}

// interpolateElevations maps sampled elevations (taken at indices 0, step,
// 2*step, ...) back onto the full sequence by fractional position inside each
// stride. The upper index clamps to the last sample for the final, possibly
// short, stride.
func interpolateElevations(sampled []float64, count, step int) []float64 {
	full := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		prev := i / step
		if prev > len(sampled)-1 {
			prev = len(sampled) - 1
		}
		next := prev + 1
		if next > len(sampled)-1 {
			next = len(sampled) - 1
		}
		if prev == next {
			full = append(full, sampled[prev])
			continue
		}
		ratio := float64(i%step) / float64(step)
		full = append(full, sampled[prev]+(sampled[next]-sampled[prev])*ratio)
	}
	return full
}
