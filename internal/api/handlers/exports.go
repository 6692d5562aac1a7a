package handlers

import (
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/gpx"
	"route-planner-service/internal/report"
	"route-planner-service/internal/share"
)

const (
	maxGPXUploadBytes = 4 << 20
	maxMapUploadBytes = 8 << 20
)

// ExportGPX downloads the session as a GPX file: pins as waypoints plus the
// computed path as a track when one exists.
func (h *SessionHandler) ExportGPX(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	v := s.View()
	if len(v.Pins) == 0 {
		writeError(w, r, http.StatusConflict, "no pins to export")
		return
	}

	var track []domain.Coordinate
	if v.Computation != nil {
		track = v.Computation.Route.Coordinates
	}

	data, err := gpx.Export(v.RouteName, v.Pins, track, time.Now())
	if err != nil {
		log.Printf("op=gpx.export session=%s err=%v", v.ID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/gpx+xml")
	w.Header().Set("Content-Disposition", `attachment; filename="route.gpx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ImportGPX replaces the session's pins with the waypoints of an uploaded
// GPX file. Validation failures leave the session untouched.
func (h *SessionHandler) ImportGPX(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxGPXUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxGPXUploadBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "could not read upload")
		return
	}

	result, err := gpx.Import(header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, gpx.ErrNotGPX):
			writeError(w, r, http.StatusBadRequest, "only .gpx files are accepted")
		case errors.Is(err, gpx.ErrNoWaypoints):
			writeError(w, r, http.StatusBadRequest, "gpx file has no waypoints")
		default:
			writeError(w, r, http.StatusBadRequest, "gpx file could not be parsed")
		}
		return
	}

	s.ImportPins(r.Context(), result.Pins)
	writeJSON(w, r, http.StatusOK, dto.ImportResponse{
		Imported:  len(result.Pins),
		Truncated: result.Truncated,
	})
}

// Share encodes the session's editable state as a URL fragment.
func (h *SessionHandler) Share(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	v := s.View()
	fragment, err := share.Encode(share.State{
		Pins:               v.Pins,
		IsRoundTrip:        v.IsRoundTrip,
		ShowSteepHighlight: v.ShowSteepHighlight,
	})
	if err != nil {
		log.Printf("op=share.encode session=%s err=%v", v.ID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ShareResponse{Fragment: fragment})
}

// Report builds the multi-page report and streams it as a PDF document.
// The map engine is a client-side collaborator, so the request may carry a
// multipart "map" image part that becomes the final landscape page. One
// report at a time per session; a second request while one is running is
// refused.
func (h *SessionHandler) Report(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	snapshot, ok := mapSnapshot(w, r)
	if !ok {
		return
	}

	if err := s.BeginReport(); err != nil {
		writeError(w, r, http.StatusConflict, "report generation already in progress")
		return
	}
	defer s.EndReport()

	v := s.View()
	if v.Computation == nil {
		writeError(w, r, http.StatusConflict, "no computed route to report on")
		return
	}

	pages, err := report.Build(r.Context(), report.Input{
		RouteName:   v.RouteName,
		Stats:       v.Computation.Stats,
		Pins:        v.Pins,
		Addresses:   v.Addresses,
		Segments:    v.Computation.Segments,
		MapSnapshot: snapshot,
	})
	if err != nil {
		log.Printf("op=report.build session=%s err=%v", v.ID, err)
		writeError(w, r, http.StatusInternalServerError, "report generation failed")
		return
	}

	doc, err := report.AssemblePDF(pages)
	if err != nil {
		log.Printf("op=report.pdf session=%s err=%v", v.ID, err)
		writeError(w, r, http.StatusInternalServerError, "report generation failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// mapSnapshot extracts the optional map image from a multipart report
// request. A non-multipart request simply has no snapshot; a snapshot that
// does not decode is a client error.
func mapSnapshot(w http.ResponseWriter, r *http.Request) (image.Image, bool) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return nil, true
	}
	if err := r.ParseMultipartForm(maxMapUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart upload")
		return nil, false
	}
	file, _, err := r.FormFile("map")
	if err != nil {
		// Multipart body without a map part: treat as no snapshot.
		return nil, true
	}
	defer file.Close()

	img, _, err := image.Decode(io.LimitReader(file, maxMapUploadBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "map image could not be decoded")
		return nil, false
	}
	return img, true
}
