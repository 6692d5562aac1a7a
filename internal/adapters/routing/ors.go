package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
)

// ORSRouteProvider fetches driving routes from OpenRouteService through the
// proxy. ORS answers in the GeoJSON-feature shape: one feature whose geometry
// carries [lon, lat, ele] positions and whose properties carry the summary.
type ORSRouteProvider struct {
	client  *proxyClient
	profile string
}

func NewORSRouteProvider(proxyBaseURL string) *ORSRouteProvider {
	return &ORSRouteProvider{
		client:  newProxyClient(proxyBaseURL, 15*time.Second),
		profile: "driving-car",
	}
}

func (o *ORSRouteProvider) Name() string { return "openrouteservice" }

type orsDirectionsRequest struct {
	Coordinates  [][]float64 `json:"coordinates"`
	Instructions bool        `json:"instructions"`
	Elevation    bool        `json:"elevation"`
}

type orsDirectionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

func (o *ORSRouteProvider) FetchRoute(ctx context.Context, pins []domain.Pin) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, "ors.FetchRoute")(&err)

	if len(pins) < 2 {
		return domain.RouteResult{}, errors.New("ors: at least two pins are required")
	}

	coords := make([][]float64, 0, len(pins))
	for _, p := range pins {
		coords = append(coords, []float64{p.Lng, p.Lat})
	}

	payload, err := json.Marshal(orsDirectionsRequest{
		Coordinates:  coords,
		Instructions: false,
		Elevation:    true,
	})
	if err != nil {
		return domain.RouteResult{}, fmt.Errorf("ors: marshal directions request: %w", err)
	}

	path := fmt.Sprintf("/ors/v2/directions/%s/geojson", o.profile)
	resp, err := o.client.doWithRetry(ctx, func() (*http.Request, error) {
		return o.client.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	})
	if err != nil {
		return domain.RouteResult{}, fmt.Errorf("ors: directions request: %w", err)
	}
	defer resp.Body.Close()

	var decoded orsDirectionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.RouteResult{}, fmt.Errorf("ors: decode directions response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.RouteResult{}, errors.New("ors: no route in response")
	}

	feature := decoded.Features[0]
	if len(feature.Geometry.Coordinates) == 0 {
		return domain.RouteResult{}, errors.New("ors: empty path in response")
	}

	return domain.RouteResult{
		Coordinates:    normalizePositions(feature.Geometry.Coordinates),
		DistanceMeters: feature.Properties.Summary.Distance,
	}, nil
}

// normalizePositions converts wire [lon, lat, ele?] positions into
// coordinates. Two-value positions get a NaN elevation so the acquisition
// layer knows to backfill.
func normalizePositions(positions [][]float64) []domain.Coordinate {
	out := make([]domain.Coordinate, 0, len(positions))
	for _, p := range positions {
		c := domain.Coordinate{Elevation: domain.NoElevation()}
		if len(p) >= 2 {
			c.Lng = p[0]
			c.Lat = p[1]
		}
		if len(p) >= 3 {
			c.Elevation = p[2]
		}
		out = append(out, c)
	}
	return out
}
