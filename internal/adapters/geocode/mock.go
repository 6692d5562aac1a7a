package geocode

import (
	"context"
	"sync"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
)

// MockGeocoder answers reverse lookups from a canned table and records what
// it was asked.
type MockGeocoder struct {
	mu sync.Mutex

	// Address is returned for every reverse lookup unless Err is set.
	Address string
	Err     error
	Places  []ports.Place

	ReverseCalls []domain.Pin
	SearchCalls  []string
}

func (m *MockGeocoder) ReverseGeocode(ctx context.Context, pin domain.Pin) (string, error) {
	m.mu.Lock()
	m.ReverseCalls = append(m.ReverseCalls, pin)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	return m.Address, nil
}

func (m *MockGeocoder) Search(ctx context.Context, query string, opts ports.SearchOptions) ([]ports.Place, error) {
	m.mu.Lock()
	m.SearchCalls = append(m.SearchCalls, query)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Places, nil
}

func (m *MockGeocoder) ReverseCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ReverseCalls)
}
