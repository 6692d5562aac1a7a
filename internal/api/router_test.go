package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"route-planner-service/internal/adapters/geocode"
	"route-planner-service/internal/adapters/routing"
	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"route-planner-service/internal/services"
	"route-planner-service/internal/session"
)

func testRouteResult() domain.RouteResult {
	return domain.RouteResult{
		Coordinates: []domain.Coordinate{
			{Lat: 39.66, Lng: 20.85, Elevation: 480},
			{Lat: 39.70, Lng: 20.90, Elevation: 520},
		},
		DistanceMeters: 6100,
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *geocode.MockGeocoder) {
	t.Helper()
	return newTestServerWithProvider(t, &routing.MockRouteProvider{Result: testRouteResult()})
}

func newTestServerWithProvider(t *testing.T, provider ports.RouteProvider) (*httptest.Server, *geocode.MockGeocoder) {
	t.Helper()

	geocoder := &geocode.MockGeocoder{Address: "Dodonis, Ioannina, Greece"}
	acq := services.NewRouteAcquisition([]ports.RouteProvider{provider}, nil)
	store := session.NewStore(acq, geocoder)

	srv := httptest.NewServer(NewRouter(store, geocoder))
	t.Cleanup(srv.Close)
	return srv, geocoder
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeSession(t *testing.T, resp *http.Response) dto.SessionResponse {
	t.Helper()
	defer resp.Body.Close()

	var out dto.SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode session response: %v", err)
	}
	return out
}

func createSession(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, srv.URL+"/sessions", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: status %d", resp.StatusCode)
	}
	s := decodeSession(t, resp)
	if s.ID == "" {
		t.Fatal("create session: empty id")
	}
	return s.ID
}

func TestSessionLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv)

	resp := doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/pins", dto.PinRequest{Lat: 39.66, Lng: 20.85})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add pin: status %d", resp.StatusCode)
	}
	s := decodeSession(t, resp)
	if len(s.Pins) != 1 || len(s.Addresses) != 1 {
		t.Fatalf("after add: %d pins, %d addresses", len(s.Pins), len(s.Addresses))
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/pins", dto.PinRequest{Lat: 39.70, Lng: 20.90})
	s = decodeSession(t, resp)
	if len(s.Pins) != 2 {
		t.Fatalf("after second add: %d pins", len(s.Pins))
	}
	if !s.CanUndo {
		t.Error("two edits in, undo should be available")
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/undo", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("undo: status %d", resp.StatusCode)
	}
	s = decodeSession(t, resp)
	if len(s.Pins) != 1 {
		t.Errorf("after undo: %d pins, want 1", len(s.Pins))
	}
}

func TestAddPinRejectsInvalidCoordinate(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv)

	resp := doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/pins", dto.PinRequest{Lat: 91, Lng: 20.85})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/sessions/nope", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRouteEndpointStates(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv)

	// No pins yet: nothing to route.
	resp := doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id+"/route", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("empty route: status %d, want 409", resp.StatusCode)
	}

	doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/pins", dto.PinRequest{Lat: 39.66, Lng: 20.85}).Body.Close()
	doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/pins", dto.PinRequest{Lat: 39.70, Lng: 20.90}).Body.Close()

	// The acquisition runs asynchronously; poll until it lands.
	deadline := time.Now().Add(2 * time.Second)
	var route dto.RouteResponse
	for {
		resp = doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id+"/route", nil)
		if resp.StatusCode == http.StatusOK {
			if err := json.NewDecoder(resp.Body).Decode(&route); err != nil {
				t.Fatalf("decode route: %v", err)
			}
			resp.Body.Close()
			break
		}
		resp.Body.Close()
		if time.Now().After(deadline) {
			t.Fatalf("route never became available, last status %d", resp.StatusCode)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if route.DistanceMeters <= 0 {
		t.Errorf("route distance = %v", route.DistanceMeters)
	}
	if route.DistanceLabel == "" {
		t.Error("route has no distance label")
	}
}

func TestShareRestoreRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv)

	doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/pins", dto.PinRequest{Lat: 39.66397, Lng: 20.85277}).Body.Close()
	doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/pins", dto.PinRequest{Lat: 39.70, Lng: 20.90}).Body.Close()
	doJSON(t, http.MethodPut, srv.URL+"/sessions/"+id+"/steep-highlight", dto.ToggleRequest{Enabled: true}).Body.Close()

	resp := doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id+"/share", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("share: status %d", resp.StatusCode)
	}
	var shareRes dto.ShareResponse
	if err := json.NewDecoder(resp.Body).Decode(&shareRes); err != nil {
		t.Fatalf("decode share: %v", err)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/sessions/restore", dto.RestoreRequest{Fragment: shareRes.Fragment})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("restore: status %d", resp.StatusCode)
	}
	restored := decodeSession(t, resp)

	if restored.ID == id {
		t.Error("restore should create a new session")
	}
	if len(restored.Pins) != 2 || !restored.ShowSteepHighlight || restored.IsRoundTrip {
		t.Fatalf("restored state = %+v", restored)
	}
	if fmt.Sprintf("%.5f", restored.Pins[0].Lat) != "39.66397" {
		t.Errorf("restored pin lat = %v", restored.Pins[0].Lat)
	}
}

func TestRestoreRejectsBadFragment(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/sessions/restore", dto.RestoreRequest{Fragment: "garbage"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGPXImportValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv)
	doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/pins", dto.PinRequest{Lat: 39.66, Lng: 20.85}).Body.Close()

	upload := func(filename, content string) *http.Response {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write([]byte(content))
		mw.Close()

		req, err := http.NewRequest(http.MethodPost, srv.URL+"/sessions/"+id+"/gpx", &buf)
		if err != nil {
			t.Fatalf("create request: %v", err)
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		return resp
	}

	gpxDoc := `<?xml version="1.0"?><gpx version="1.1" creator="x" xmlns="http://www.topografix.com/GPX/1/1"><wpt lat="39.5" lon="20.8"/><wpt lat="39.6" lon="20.9"/></gpx>`

	// Wrong extension and waypoint-free files are rejected without touching
	// the session.
	for _, c := range []struct{ filename, content string }{
		{"route.kml", gpxDoc},
		{"route.gpx", `<?xml version="1.0"?><gpx version="1.1" creator="x" xmlns="http://www.topografix.com/GPX/1/1"></gpx>`},
	} {
		resp := upload(c.filename, c.content)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("upload %s: status %d, want 400", c.filename, resp.StatusCode)
		}
		s := decodeSession(t, doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id, nil))
		if len(s.Pins) != 1 {
			t.Fatalf("failed import mutated the session: %d pins", len(s.Pins))
		}
	}

	resp := upload("route.gpx", gpxDoc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("valid import: status %d", resp.StatusCode)
	}
	var importRes dto.ImportResponse
	if err := json.NewDecoder(resp.Body).Decode(&importRes); err != nil {
		t.Fatalf("decode import response: %v", err)
	}
	resp.Body.Close()
	if importRes.Imported != 2 || importRes.Truncated {
		t.Errorf("import response = %+v", importRes)
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv, geocoder := newTestServer(t)
	geocoder.Places = []ports.Place{{
		Name:      "Lake Pamvotida",
		PlaceName: "Lake Pamvotida, Ioannina, Greece",
		Center:    domain.Pin{Lat: 39.66, Lng: 20.88},
	}}

	resp := doJSON(t, http.MethodGet, srv.URL+"/search?q=pamvotida&lat=39.66&lng=20.85", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search: status %d", resp.StatusCode)
	}
	var res dto.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode search response: %v", err)
	}
	resp.Body.Close()

	if len(res.Places) != 1 || res.Places[0].Name != "Lake Pamvotida" {
		t.Fatalf("places = %+v", res.Places)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/search", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing q: status %d, want 400", resp.StatusCode)
	}
}

func TestReportRequiresComputedRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv)

	resp := doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/report", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func waitForRoute(t *testing.T, srv *httptest.Server, id string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp := doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id+"/route", nil)
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("route never became available, last status %d", resp.StatusCode)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestReportStreamsPDF(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv)

	doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/pins", dto.PinRequest{Lat: 39.66, Lng: 20.85}).Body.Close()
	doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/pins", dto.PinRequest{Lat: 39.70, Lng: 20.90}).Body.Close()
	waitForRoute(t, srv, id)

	uploadMap := func(content []byte) *http.Response {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("map", "map.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(content)
		mw.Close()

		req, err := http.NewRequest(http.MethodPost, srv.URL+"/sessions/"+id+"/report", &buf)
		if err != nil {
			t.Fatalf("create request: %v", err)
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		return resp
	}

	var snapshot bytes.Buffer
	if err := png.Encode(&snapshot, image.NewRGBA(image.Rect(0, 0, 320, 200))); err != nil {
		t.Fatalf("encode snapshot: %v", err)
	}

	resp := uploadMap(snapshot.Bytes())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report with snapshot: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", ct)
	}
	doc, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF-")) {
		t.Fatal("report body is not a PDF document")
	}

	// A snapshot-free request still produces a PDF, just without the map
	// page.
	resp = doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/report", nil)
	doc, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if resp.StatusCode != http.StatusOK || !bytes.HasPrefix(doc, []byte("%PDF-")) {
		t.Fatalf("snapshot-free report: status %d", resp.StatusCode)
	}

	resp = uploadMap([]byte("not an image"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("undecodable snapshot: status %d, want 400", resp.StatusCode)
	}
}

// blockingRouteProvider holds every fetch until released, so tests can
// observe the in-flight state over the API.
type blockingRouteProvider struct {
	release chan struct{}
	result  domain.RouteResult
}

func (p *blockingRouteProvider) Name() string { return "blocking" }

func (p *blockingRouteProvider) FetchRoute(ctx context.Context, pins []domain.Pin) (domain.RouteResult, error) {
	<-p.release
	return p.result, nil
}

func TestOverlayReportsComputingState(t *testing.T) {
	provider := &blockingRouteProvider{release: make(chan struct{}), result: testRouteResult()}
	srv, _ := newTestServerWithProvider(t, provider)
	id := createSession(t, srv)

	doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/pins", dto.PinRequest{Lat: 39.66, Lng: 20.85}).Body.Close()
	doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/pins", dto.PinRequest{Lat: 39.70, Lng: 20.90}).Body.Close()

	resp := doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id+"/route/overlay", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("overlay while computing: status %d, want 202", resp.StatusCode)
	}

	close(provider.release)
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp = doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id+"/route/overlay", nil)
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("overlay never became available, last status %d", resp.StatusCode)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestOverlayIncludesSteepRunsOnlyWhenEnabled(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv)

	doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/pins", dto.PinRequest{Lat: 39.66, Lng: 20.85}).Body.Close()
	doJSON(t, http.MethodPost, srv.URL+"/sessions/"+id+"/pins", dto.PinRequest{Lat: 39.70, Lng: 20.90}).Body.Close()

	deadline := time.Now().Add(2 * time.Second)
	var body string
	for {
		resp := doJSON(t, http.MethodGet, srv.URL+"/sessions/"+id+"/route/overlay", nil)
		if resp.StatusCode == http.StatusOK {
			data, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				t.Fatalf("read overlay: %v", err)
			}
			body = string(data)
			break
		}
		resp.Body.Close()
		if time.Now().After(deadline) {
			t.Fatalf("overlay never became available, last status %d", resp.StatusCode)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !strings.Contains(body, `"FeatureCollection"`) {
		t.Errorf("overlay is not a feature collection: %s", body)
	}
	if !strings.Contains(body, `"route"`) {
		t.Errorf("overlay missing the route feature: %s", body)
	}
}
