package elevation

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tkrajina/go-elevations/geoelevations"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
)

// SRTMProvider resolves elevations from the SRTM tiles instead of the HTTP
// lookup service. Tiles are fetched and cached by the library, so the first
// query in a region is slow and later ones are local.
type SRTMProvider struct {
	client *http.Client
	srtm   *geoelevations.Srtm
}

func NewSRTMProvider(client *http.Client) (*SRTMProvider, error) {
	if client == nil {
		client = http.DefaultClient
	}
	srtm, err := geoelevations.NewSrtm(client)
	if err != nil {
		return nil, fmt.Errorf("init srtm: %w", err)
	}
	return &SRTMProvider{client: client, srtm: srtm}, nil
}

func (p *SRTMProvider) Elevations(ctx context.Context, points []domain.Pin) (_ []float64, err error) {
	defer obs.Time(ctx, "elevation.SRTM")(&err)

	out := make([]float64, len(points))
	for i, pt := range points {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ele, err := p.srtm.GetElevation(p.client, pt.Lat, pt.Lng)
		if err != nil {
			return nil, fmt.Errorf("srtm elevation for %.5f,%.5f: %w", pt.Lat, pt.Lng, err)
		}
		out[i] = ele
	}
	return out, nil
}
