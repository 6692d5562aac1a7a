package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
)

// GraphHopperRouteProvider is the secondary routing provider. GraphHopper
// answers in the paths-array shape: paths[0].points carries the positions
// and paths[0].distance the total meters.
type GraphHopperRouteProvider struct {
	client *proxyClient
}

func NewGraphHopperRouteProvider(proxyBaseURL string) *GraphHopperRouteProvider {
	return &GraphHopperRouteProvider{client: newProxyClient(proxyBaseURL, 15*time.Second)}
}

func (g *GraphHopperRouteProvider) Name() string { return "graphhopper" }

type graphHopperResponse struct {
	Paths []struct {
		Distance float64 `json:"distance"`
		Points   struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"points"`
	} `json:"paths"`
}

func (g *GraphHopperRouteProvider) FetchRoute(ctx context.Context, pins []domain.Pin) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, "graphhopper.FetchRoute")(&err)

	if len(pins) < 2 {
		return domain.RouteResult{}, errors.New("graphhopper: at least two pins are required")
	}

	q := url.Values{}
	for _, p := range pins {
		q.Add("point", fmt.Sprintf("%v,%v", p.Lat, p.Lng))
	}
	q.Set("vehicle", "car")
	q.Set("calc_points", "true")
	q.Set("points_encoded", "false")
	q.Set("type", "json")
	q.Set("elevation", "true")

	path := "/gh/route?" + q.Encode()
	resp, err := g.client.doWithRetry(ctx, func() (*http.Request, error) {
		return g.client.newRequest(ctx, http.MethodGet, path, nil)
	})
	if err != nil {
		return domain.RouteResult{}, fmt.Errorf("graphhopper: route request: %w", err)
	}
	defer resp.Body.Close()

	var decoded graphHopperResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.RouteResult{}, fmt.Errorf("graphhopper: decode route response: %w", err)
	}

	if len(decoded.Paths) == 0 {
		return domain.RouteResult{}, errors.New("graphhopper: no route in response")
	}

	p := decoded.Paths[0]
	if len(p.Points.Coordinates) == 0 {
		return domain.RouteResult{}, errors.New("graphhopper: empty path in response")
	}

	return domain.RouteResult{
		Coordinates:    normalizePositions(p.Points.Coordinates),
		DistanceMeters: p.Distance,
	}, nil
}
