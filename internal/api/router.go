package api

import (
	"net/http"

	"route-planner-service/internal/api/handlers"
	"route-planner-service/internal/ports"
	"route-planner-service/internal/session"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(store *session.Store, geocoder ports.Geocoder) http.Handler {
	mux := http.NewServeMux()

	sessions := &handlers.SessionHandler{Store: store}
	search := &handlers.SearchHandler{Geocoder: geocoder}

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("POST /sessions", sessions.Create)
	mux.HandleFunc("POST /sessions/restore", sessions.Restore)
	mux.HandleFunc("GET /sessions/{id}", sessions.Get)
	mux.HandleFunc("POST /sessions/{id}/undo", sessions.Undo)
	mux.HandleFunc("PUT /sessions/{id}/round-trip", sessions.SetRoundTrip)
	mux.HandleFunc("PUT /sessions/{id}/steep-highlight", sessions.SetSteepHighlight)
	mux.HandleFunc("PUT /sessions/{id}/name", sessions.SetRouteName)

	mux.HandleFunc("POST /sessions/{id}/pins", sessions.Add)
	mux.HandleFunc("POST /sessions/{id}/pins/insert", sessions.Insert)
	mux.HandleFunc("PUT /sessions/{id}/pins/{index}", sessions.Move)
	mux.HandleFunc("DELETE /sessions/{id}/pins/{index}", sessions.Remove)
	mux.HandleFunc("DELETE /sessions/{id}/pins", sessions.Clear)

	mux.HandleFunc("POST /sessions/{id}/addresses/{index}/fetch", sessions.FetchAddress)
	mux.HandleFunc("POST /sessions/{id}/addresses/retry", sessions.RetryAddresses)

	mux.HandleFunc("GET /sessions/{id}/route", sessions.Route)
	mux.HandleFunc("GET /sessions/{id}/route/overlay", sessions.Overlay)

	mux.HandleFunc("GET /sessions/{id}/gpx", sessions.ExportGPX)
	mux.HandleFunc("POST /sessions/{id}/gpx", sessions.ImportGPX)
	mux.HandleFunc("GET /sessions/{id}/share", sessions.Share)
	mux.HandleFunc("POST /sessions/{id}/report", sessions.Report)

	mux.HandleFunc("GET /search", search.Search)

	return loggingMiddleware(mux)
}
