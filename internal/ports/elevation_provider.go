package ports

import (
	"context"
	"route-planner-service/internal/domain"
)

// Contract for resolving elevations for a list of points.
// The returned slice is parallel to the input: one elevation in meters per
// point. There is no fallback elevation source; a failure here fails the
// whole acquisition.
type ElevationProvider interface {
	Elevations(ctx context.Context, points []domain.Pin) ([]float64, error)
}
