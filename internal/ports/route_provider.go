package ports

import (
	"context"
	"route-planner-service/internal/domain"
)

// Contract for obtaining a routed path through an external routing service.
// Implementations normalize their wire shape (GeoJSON feature, paths array)
// into a RouteResult. A provider either returns a usable result or an error;
// the acquisition loop treats any error as "try the next provider".
type RouteProvider interface {
	// Name identifies the provider in logs and failure messages.
	Name() string
	// FetchRoute requests a driving route through the given pins, in order.
	FetchRoute(ctx context.Context, pins []domain.Pin) (domain.RouteResult, error)
}
