package elevation

import (
	"context"

	"route-planner-service/internal/domain"
)

// MockElevationProvider records every batch it is asked for and answers with
// either canned or generated values.
type MockElevationProvider struct {
	Err error
	// Fn, when set, produces the response for a batch. Otherwise every
	// point resolves to zero.
	Fn       func(points []domain.Pin) []float64
	Requests [][]domain.Pin
}

func (m *MockElevationProvider) Elevations(ctx context.Context, points []domain.Pin) ([]float64, error) {
	batch := make([]domain.Pin, len(points))
	copy(batch, points)
	m.Requests = append(m.Requests, batch)

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Fn != nil {
		return m.Fn(points), nil
	}
	return make([]float64, len(points)), nil
}
