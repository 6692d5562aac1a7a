package routing

import (
	"context"

	"route-planner-service/internal/domain"
)

// MockRouteProvider returns a canned result or error. Used by service and
// handler tests to script the fallback chain.
type MockRouteProvider struct {
	ProviderName string
	Result       domain.RouteResult
	Err          error
	Calls        int
}

func (m *MockRouteProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

func (m *MockRouteProvider) FetchRoute(ctx context.Context, pins []domain.Pin) (domain.RouteResult, error) {
	m.Calls++
	if m.Err != nil {
		return domain.RouteResult{}, m.Err
	}
	return m.Result, nil
}
