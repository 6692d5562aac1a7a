package handlers

import (
	"net/http"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/session"
)

// Route returns the computed route with stats, steepness segments and the
// elevation profile. While a recalculation is in flight the state is
// reported as accepted-but-pending.
func (h *SessionHandler) Route(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	v := s.View()
	switch {
	case v.Computing:
		writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "computing"})
		return
	case v.ComputeErr != nil:
		writeError(w, r, http.StatusBadGateway, "route calculation failed")
		return
	case v.Computation == nil:
		writeError(w, r, http.StatusConflict, "at least two pins are required")
		return
	}

	writeJSON(w, r, http.StatusOK, routeResponse(v.Computation))
}

// Overlay returns the route and its steep runs as a GeoJSON feature
// collection for map rendering. Steep runs are included only when the
// highlight flag is on.
func (h *SessionHandler) Overlay(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	v := s.View()
	switch {
	case v.Computing:
		writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "computing"})
		return
	case v.Computation == nil:
		writeError(w, r, http.StatusConflict, "no computed route")
		return
	}

	fc := geojson.NewFeatureCollection()

	route := geojson.NewFeature(lineString(v.Computation.Route.Coordinates))
	route.Properties["kind"] = "route"
	fc.Append(route)

	if v.ShowSteepHighlight {
		for _, run := range v.Computation.SteepRuns {
			f := geojson.NewFeature(lineString(run.Coordinates))
			f.Properties["kind"] = "steep"
			fc.Append(f)
		}
	}

	writeJSON(w, r, http.StatusOK, fc)
}

func lineString(coords []domain.Coordinate) orb.LineString {
	line := make(orb.LineString, 0, len(coords))
	for _, c := range coords {
		line = append(line, orb.Point{c.Lng, c.Lat})
	}
	return line
}

func routeResponse(c *session.Computation) dto.RouteResponse {
	res := dto.RouteResponse{
		DistanceMeters:    c.Stats.DistanceMeters,
		DistanceLabel:     domain.FormatDistance(c.Stats.DistanceMeters),
		ElevationGainM:    c.Stats.ElevationGainM,
		SteepUphillMeters: c.Stats.SteepUphillMeters,
		Segments:          make([]dto.SegmentResponse, 0, len(c.Segments)),
		Profile:           make([]dto.ProfilePointResponse, 0, len(c.Profile)),
	}
	for _, seg := range c.Segments {
		res.Segments = append(res.Segments, dto.SegmentResponse{
			StartKm:         seg.StartKm,
			EndKm:           seg.EndKm,
			AverageGradient: seg.AverageGradient,
			IsSteep:         seg.IsSteep,
			LengthMeters:    seg.LengthMeters,
		})
	}
	for _, p := range c.Profile {
		res.Profile = append(res.Profile, dto.ProfilePointResponse{
			DistanceMeters: p.DistanceMeters,
			Elevation:      p.Elevation,
			IsSteep:        p.IsSteep,
		})
	}
	return res
}
