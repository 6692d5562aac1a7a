package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
)

// SearchHandler serves forward geocoding for the location search box.
type SearchHandler struct {
	Geocoder ports.Geocoder
}

// Search answers free-text queries with candidate places. Optional lat/lng
// parameters bias results toward the map center.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, r, http.StatusBadRequest, "q is required")
		return
	}

	opts := ports.SearchOptions{}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 || n > 20 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 20")
			return
		}
		opts.Limit = n
	}

	latParam := r.URL.Query().Get("lat")
	lngParam := r.URL.Query().Get("lng")
	if latParam != "" && lngParam != "" {
		lat, errLat := strconv.ParseFloat(latParam, 64)
		lng, errLng := strconv.ParseFloat(lngParam, 64)
		if errLat != nil || errLng != nil || !validCoordinate(lat, lng) {
			writeError(w, r, http.StatusBadRequest, "invalid proximity coordinate")
			return
		}
		opts.Proximity = &domain.Pin{Lat: lat, Lng: lng}
	}

	places, err := h.Geocoder.Search(r.Context(), query, opts)
	if err != nil {
		log.Printf("op=search q=%q err=%v", query, err)
		writeError(w, r, http.StatusBadGateway, "search failed")
		return
	}

	res := dto.SearchResponse{Places: make([]dto.PlaceResponse, 0, len(places))}
	for _, p := range places {
		res.Places = append(res.Places, dto.PlaceResponse{
			Name:      p.Name,
			PlaceName: p.PlaceName,
			Lat:       p.Center.Lat,
			Lng:       p.Center.Lng,
		})
	}
	writeJSON(w, r, http.StatusOK, res)
}
