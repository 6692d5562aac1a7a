package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
)

// MapTilerGeocoder talks to the MapTiler geocoding API through the
// credential-injecting proxy.
type MapTilerGeocoder struct {
	session  *http.Client
	baseURL  string
	language string
}

func NewMapTilerGeocoder(baseURL string) *MapTilerGeocoder {
	return &MapTilerGeocoder{
		session:  &http.Client{Timeout: 10 * time.Second},
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: "el",
	}
}

type featureCollection struct {
	Features []struct {
		Text      string    `json:"text"`
		PlaceName string    `json:"place_name"`
		Center    []float64 `json:"center"`
	} `json:"features"`
}

func (g *MapTilerGeocoder) ReverseGeocode(ctx context.Context, pin domain.Pin) (_ string, err error) {
	defer obs.Time(ctx, "geocode.Reverse")(&err)

	endpoint := fmt.Sprintf("%s/maptiler/geocoding/%f,%f.json?language=%s",
		g.baseURL, pin.Lng, pin.Lat, g.language)

	var parsed featureCollection
	if err := g.getJSON(ctx, endpoint, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Features) == 0 {
		return "", fmt.Errorf("no address found for %.5f,%.5f", pin.Lat, pin.Lng)
	}
	return parsed.Features[0].PlaceName, nil
}

func (g *MapTilerGeocoder) Search(ctx context.Context, query string, opts ports.SearchOptions) (_ []ports.Place, err error) {
	defer obs.Time(ctx, "geocode.Search")(&err)

	// Coordinate literals skip the provider entirely.
	if pin, ok := ParseCoordinateQuery(query); ok {
		return []ports.Place{{
			Name:      fmt.Sprintf("%.5f, %.5f", pin.Lat, pin.Lng),
			PlaceName: fmt.Sprintf("Coordinates %.5f, %.5f", pin.Lat, pin.Lng),
			Center:    pin,
		}}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("language", g.language)
	if opts.Proximity != nil {
		params.Set("proximity", fmt.Sprintf("%f,%f", opts.Proximity.Lng, opts.Proximity.Lat))
	}

	endpoint := fmt.Sprintf("%s/maptiler/geocoding/%s.json?%s",
		g.baseURL, url.PathEscape(query), params.Encode())

	var parsed featureCollection
	if err := g.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	places := make([]ports.Place, 0, len(parsed.Features))
	for _, f := range parsed.Features {
		p := ports.Place{Name: f.Text, PlaceName: f.PlaceName}
		if len(f.Center) >= 2 {
			p.Center = domain.Pin{Lat: f.Center[1], Lng: f.Center[0]}
		}
		places = append(places, p)
	}
	return places, nil
}

func (g *MapTilerGeocoder) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.session.Do(req)
	if err != nil {
		return fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("geocoding request: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode geocoding response: %w", err)
	}
	return nil
}

var coordinateQueryRE = regexp.MustCompile(`^\s*(-?\d{1,2}(?:\.\d+)?)\s*[, ]\s*(-?\d{1,3}(?:\.\d+)?)\s*$`)

// ParseCoordinateQuery recognizes "lat, lng" literals so users can jump to a
// coordinate without a geocoder round trip.
func ParseCoordinateQuery(query string) (domain.Pin, bool) {
	m := coordinateQueryRE.FindStringSubmatch(query)
	if m == nil {
		return domain.Pin{}, false
	}

	lat, err1 := strconv.ParseFloat(m[1], 64)
	lng, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return domain.Pin{}, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return domain.Pin{}, false
	}
	return domain.Pin{Lat: lat, Lng: lng}, true
}
