// Package share encodes the editable route state into a compact URL-safe
// fragment and back.
package share

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"route-planner-service/internal/domain"
)

// ErrInvalidShare is returned for fragments that do not decode to a valid
// payload. Callers treat it as "ignore the fragment", not a hard failure.
var ErrInvalidShare = errors.New("invalid share payload")

const payloadVersion = "v1"

// State is the shareable subset of a session.
type State struct {
	Pins               []domain.Pin
	IsRoundTrip        bool
	ShowSteepHighlight bool
}

// Encode renders the state as a versioned pipe-delimited payload,
// deflate-compressed and base64url-encoded. Coordinates are written at five
// decimals, about one meter of precision.
func Encode(state State) (string, error) {
	parts := make([]string, 0, len(state.Pins)+3)
	parts = append(parts, payloadVersion)
	for _, p := range state.Pins {
		parts = append(parts, fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lng))
	}
	parts = append(parts, boolFlag(state.IsRoundTrip), boolFlag(state.ShowSteepHighlight))

	return encodeRaw(strings.Join(parts, "|"))
}

func encodeRaw(payload string) (string, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("init compressor: %w", err)
	}
	if _, err := w.Write([]byte(payload)); err != nil {
		return "", fmt.Errorf("compress payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("compress payload: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode reverses Encode. Any malformed fragment, wrong version, bad
// coordinate or out-of-range value yields ErrInvalidShare.
func Decode(fragment string) (State, error) {
	raw, err := base64.RawURLEncoding.DecodeString(fragment)
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}

	r := flate.NewReader(bytes.NewReader(raw))
	payload, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}

	parts := strings.Split(string(payload), "|")
	if len(parts) < 3 || parts[0] != payloadVersion {
		return State{}, fmt.Errorf("%w: missing %s prefix", ErrInvalidShare, payloadVersion)
	}

	// The two flags sit at the end; everything between them and the
	// version marker is a coordinate.
	steep, err := parseFlag(parts[len(parts)-1])
	if err != nil {
		return State{}, err
	}
	roundTrip, err := parseFlag(parts[len(parts)-2])
	if err != nil {
		return State{}, err
	}

	coordParts := parts[1 : len(parts)-2]
	if len(coordParts) > domain.MaxPins {
		return State{}, fmt.Errorf("%w: %d pins exceed the limit", ErrInvalidShare, len(coordParts))
	}

	pins := make([]domain.Pin, 0, len(coordParts))
	for _, part := range coordParts {
		pin, err := parsePin(part)
		if err != nil {
			return State{}, err
		}
		pins = append(pins, pin)
	}

	return State{Pins: pins, IsRoundTrip: roundTrip, ShowSteepHighlight: steep}, nil
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseFlag(s string) (bool, error) {
	switch s {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: bad flag %q", ErrInvalidShare, s)
}

func parsePin(s string) (domain.Pin, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Pin{}, fmt.Errorf("%w: bad coordinate %q", ErrInvalidShare, s)
	}
	latV, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return domain.Pin{}, fmt.Errorf("%w: bad latitude %q", ErrInvalidShare, lat)
	}
	lngV, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return domain.Pin{}, fmt.Errorf("%w: bad longitude %q", ErrInvalidShare, lng)
	}
	if latV < -90 || latV > 90 || lngV < -180 || lngV > 180 {
		return domain.Pin{}, fmt.Errorf("%w: coordinate %q out of range", ErrInvalidShare, s)
	}
	return domain.Pin{Lat: latV, Lng: lngV}, nil
}
