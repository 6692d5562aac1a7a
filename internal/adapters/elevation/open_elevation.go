package elevation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
)

// OpenElevationProvider resolves elevations through the open-elevation
// lookup endpoint. One POST carries the whole batch.
type OpenElevationProvider struct {
	session *http.Client
	baseURL string
}

func NewOpenElevationProvider(baseURL string) *OpenElevationProvider {
	return &OpenElevationProvider{
		session: &http.Client{Timeout: 20 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type openElevationRequest struct {
	Locations []openElevationLocation `json:"locations"`
}

type openElevationLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type openElevationResponse struct {
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
}

func (p *OpenElevationProvider) Elevations(ctx context.Context, points []domain.Pin) (_ []float64, err error) {
	defer obs.Time(ctx, "elevation.OpenElevation")(&err)

	payload := openElevationRequest{Locations: make([]openElevationLocation, len(points))}
	for i, pt := range points {
		payload.Locations[i] = openElevationLocation{Latitude: pt.Lat, Longitude: pt.Lng}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal lookup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/v1/lookup", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevation lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("elevation lookup: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var parsed openElevationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}
	if len(parsed.Results) != len(points) {
		return nil, fmt.Errorf("elevation lookup: %d results for %d points", len(parsed.Results), len(points))
	}

	out := make([]float64, len(parsed.Results))
	for i, r := range parsed.Results {
		out[i] = r.Elevation
	}
	return out, nil
}
