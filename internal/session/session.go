package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"route-planner-service/internal/services"
)

var (
	// ErrPinLimit is returned when adding a pin would exceed MaxPins.
	ErrPinLimit = errors.New("pin limit reached")
	// ErrIndexOutOfRange is returned for pin operations with a bad index.
	ErrIndexOutOfRange = errors.New("pin index out of range")
	// ErrReportInProgress is returned when a report build is already running
	// for the session.
	ErrReportInProgress = errors.New("report generation already in progress")
)

// Computation is the derived state of one completed route acquisition.
// It is built once and then treated as read-only.
type Computation struct {
	Route     domain.RouteResult
	Stats     domain.RouteStats
	Segments  []domain.Segment
	Profile   []domain.ProfilePoint
	SteepRuns []domain.SteepRun
}

// Session is the single-writer state of one planning session. All access
// goes through the mutex; route acquisition runs in its own goroutine and
// re-enters under the lock to apply its result.
//
// Every mutation follows the same sequence: change the state, save an undo
// snapshot immediately, then start an asynchronous recalculation. The
// snapshot is saved before the route arrives, so undo history tracks the
// user's edits, not network timing. A generation counter makes sure a
// recalculation that was started before a later edit is discarded when it
// finally returns.
type Session struct {
	ID string

	mu          sync.Mutex
	pins        []domain.Pin
	addresses   []domain.AddressEntry
	history     *HistoryStore
	isRoundTrip bool
	showSteep   bool

	routeName      string
	nameOverridden bool

	generation  uint64
	computing   bool
	computation *Computation
	computeErr  error

	reportBusy bool

	acquisition *services.RouteAcquisition
	geocoder    ports.Geocoder
}

// View is an immutable copy of session state for handlers and rendering.
type View struct {
	ID                 string
	Pins               []domain.Pin
	Addresses          []domain.AddressEntry
	IsRoundTrip        bool
	ShowSteepHighlight bool
	RouteName          string
	NameOverridden     bool
	CanUndo            bool
	Computing          bool
	Computation        *Computation
	ComputeErr         error
}

func New(acquisition *services.RouteAcquisition, geocoder ports.Geocoder) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		history:     NewHistoryStore(HistoryCap),
		acquisition: acquisition,
		geocoder:    geocoder,
	}
	// Seed history with the empty state so the first edit is undoable.
	s.history.Save(s.snapshotLocked())
	return s
}

// View returns a copy of the current state. The Computation pointer is
// shared but never mutated after publication.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return View{
		ID:                 s.ID,
		Pins:               append([]domain.Pin(nil), s.pins...),
		Addresses:          append([]domain.AddressEntry(nil), s.addresses...),
		IsRoundTrip:        s.isRoundTrip,
		ShowSteepHighlight: s.showSteep,
		RouteName:          s.routeNameLocked(),
		NameOverridden:     s.nameOverridden,
		CanUndo:            s.history.CanUndo(),
		Computing:          s.computing,
		Computation:        s.computation,
		ComputeErr:         s.computeErr,
	}
}

// AddPin appends a pin at the end of the route.
func (s *Session) AddPin(ctx context.Context, pin domain.Pin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pins) >= domain.MaxPins {
		return ErrPinLimit
	}

	s.pins = append(s.pins, pin)
	s.addresses = append(s.addresses, domain.AddressEntry{Status: domain.AddressEmpty, Pin: pin})
	s.mutatedLocked(ctx)
	s.fetchAddressAsync(ctx, len(s.pins)-1, false)
	return nil
}

// InsertPin places a pin into the leg it most likely belongs to: the pair of
// consecutive pins whose midpoint is closest to the new point.
func (s *Session) InsertPin(ctx context.Context, pin domain.Pin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pins) >= domain.MaxPins {
		return ErrPinLimit
	}

	idx := bestInsertIndex(s.pins, pin)
	s.pins = append(s.pins, domain.Pin{})
	copy(s.pins[idx+1:], s.pins[idx:])
	s.pins[idx] = pin

	entry := domain.AddressEntry{Status: domain.AddressEmpty, Pin: pin}
	s.addresses = append(s.addresses, domain.AddressEntry{})
	copy(s.addresses[idx+1:], s.addresses[idx:])
	s.addresses[idx] = entry

	s.mutatedLocked(ctx)
	s.fetchAddressAsync(ctx, idx, false)
	return nil
}

func (s *Session) RemovePin(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.pins) {
		return ErrIndexOutOfRange
	}

	s.pins = append(s.pins[:index], s.pins[index+1:]...)
	s.addresses = append(s.addresses[:index], s.addresses[index+1:]...)
	s.mutatedLocked(ctx)
	return nil
}

// MovePin replaces a pin's position, as after a marker drag. The address is
// stale at the new position and is re-resolved.
func (s *Session) MovePin(ctx context.Context, index int, pin domain.Pin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.pins) {
		return ErrIndexOutOfRange
	}

	s.pins[index] = pin
	s.addresses[index] = domain.AddressEntry{Status: domain.AddressEmpty, Pin: pin}
	s.mutatedLocked(ctx)
	s.fetchAddressAsync(ctx, index, false)
	return nil
}

// Clear removes every pin and resets the name override.
func (s *Session) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pins = nil
	s.addresses = nil
	s.routeName = ""
	s.nameOverridden = false
	s.mutatedLocked(ctx)
}

func (s *Session) SetRoundTrip(ctx context.Context, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRoundTrip == on {
		return
	}
	s.isRoundTrip = on
	s.mutatedLocked(ctx)
}

// SetSteepHighlight toggles the overlay flag. The flag is part of the undo
// snapshot but does not change the routed path, so no recalculation runs.
func (s *Session) SetSteepHighlight(ctx context.Context, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.showSteep == on {
		return
	}
	s.showSteep = on
	s.history.Save(s.snapshotLocked())
}

// SetRouteName applies a user-chosen name. An empty name, or one equal to
// the generated default, clears the override so composition takes back over.
// The second return reports whether the name was cut at the length cap.
func (s *Session) SetRouteName(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, truncated := services.TruncateRouteName(name)

	s.nameOverridden = false
	generated := s.routeNameLocked()
	if name == "" || name == generated {
		s.routeName = ""
		return generated, truncated
	}

	s.routeName = name
	s.nameOverridden = true
	return name, truncated
}

// Undo reverts to the previous snapshot. Derived state (addresses, route)
// is rebuilt for the restored pins.
func (s *Session) Undo(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.applySnapshotLocked(ctx, snap)
	return true
}

// ImportPins replaces the route with an imported pin list, as from a GPX
// upload. The caller validates and caps the list first.
func (s *Session) ImportPins(ctx context.Context, pins []domain.Pin) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setPinsLocked(pins)
	s.mutatedLocked(ctx)
	s.fetchMissingAddressesLocked(ctx)
}

// Restore replaces the whole editable state, as from a share link.
func (s *Session) Restore(ctx context.Context, pins []domain.Pin, roundTrip, steepHighlight bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setPinsLocked(pins)
	s.isRoundTrip = roundTrip
	s.showSteep = steepHighlight
	s.mutatedLocked(ctx)
	s.fetchMissingAddressesLocked(ctx)
}

// FetchAddress resolves the address for one pin. Entries already loading or
// resolved are left alone unless force is set. A fetch whose pin was edited
// away while the lookup ran is dropped.
func (s *Session) FetchAddress(ctx context.Context, index int, force bool) error {
	if s.geocoder == nil {
		return nil
	}

	s.mu.Lock()
	if index < 0 || index >= len(s.addresses) {
		s.mu.Unlock()
		return ErrIndexOutOfRange
	}
	entry := s.addresses[index]
	if !force && (entry.Status == domain.AddressLoading || entry.Status == domain.AddressSuccess) {
		s.mu.Unlock()
		return nil
	}
	pin := s.pins[index]
	s.addresses[index] = domain.AddressEntry{Status: domain.AddressLoading, Pin: pin}
	s.mu.Unlock()

	address, err := s.geocoder.ReverseGeocode(ctx, pin)

	s.mu.Lock()
	defer s.mu.Unlock()

	if index >= len(s.addresses) || s.addresses[index].Pin != pin {
		return nil
	}
	if err != nil {
		log.Printf("session=%s op=FetchAddress index=%d err=%v", s.ID, index, err)
		s.addresses[index] = domain.AddressEntry{Status: domain.AddressError, Pin: pin}
		return err
	}
	s.addresses[index] = domain.AddressEntry{Status: domain.AddressSuccess, Address: address, Pin: pin}
	return nil
}

// RetryFailedAddresses re-issues lookups for every entry that previously
// failed.
func (s *Session) RetryFailedAddresses(ctx context.Context) {
	s.mu.Lock()
	var failed []int
	for i, e := range s.addresses {
		if e.Status == domain.AddressError {
			failed = append(failed, i)
		}
	}
	s.mu.Unlock()

	for _, i := range failed {
		go func(i int) {
			_ = s.FetchAddress(context.WithoutCancel(ctx), i, true)
		}(i)
	}
}

// BeginReport claims the per-session report slot. EndReport must be called
// when the build finishes, on every path.
func (s *Session) BeginReport() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reportBusy {
		return ErrReportInProgress
	}
	s.reportBusy = true
	return nil
}

func (s *Session) EndReport() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportBusy = false
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Pins:               append([]domain.Pin(nil), s.pins...),
		IsRoundTrip:        s.isRoundTrip,
		ShowSteepHighlight: s.showSteep,
	}
}

// mutatedLocked runs the post-edit sequence: snapshot first, then the
// recalculation. Callers hold the lock.
func (s *Session) mutatedLocked(ctx context.Context) {
	s.history.Save(s.snapshotLocked())
	s.recomputeLocked(ctx)
}

func (s *Session) applySnapshotLocked(ctx context.Context, snap Snapshot) {
	s.setPinsLocked(snap.Pins)
	s.isRoundTrip = snap.IsRoundTrip
	s.showSteep = snap.ShowSteepHighlight
	s.recomputeLocked(ctx)
	s.fetchMissingAddressesLocked(ctx)
}

func (s *Session) setPinsLocked(pins []domain.Pin) {
	s.pins = append([]domain.Pin(nil), pins...)
	s.addresses = make([]domain.AddressEntry, len(pins))
	for i, p := range pins {
		s.addresses[i] = domain.AddressEntry{Status: domain.AddressEmpty, Pin: p}
	}
}

// recomputeLocked invalidates any in-flight acquisition and, with two or
// more pins, starts a new one. The goroutine applies its result only if no
// later edit bumped the generation while it ran.
func (s *Session) recomputeLocked(ctx context.Context) {
	s.generation++
	gen := s.generation

	if len(s.pins) < 2 || s.acquisition == nil {
		s.computing = false
		s.computation = nil
		s.computeErr = nil
		return
	}

	pins := append([]domain.Pin(nil), s.pins...)
	roundTrip := s.isRoundTrip
	s.computing = true
	s.computeErr = nil

	go func() {
		result, err := s.acquisition.Acquire(context.WithoutCancel(ctx), pins, roundTrip)

		s.mu.Lock()
		defer s.mu.Unlock()

		if gen != s.generation {
			log.Printf("session=%s op=recompute msg=%q", s.ID, "superseded result discarded")
			return
		}

		s.computing = false
		if err != nil {
			// The previous route stays on screen through a provider
			// outage; only the error is surfaced.
			s.computeErr = err
			return
		}
		s.computation = &Computation{
			Route:     result,
			Stats:     services.ComputeStats(result.Coordinates),
			Segments:  services.AnalyzeSteepness(result.Coordinates),
			Profile:   services.ElevationProfile(result.Coordinates, services.MaxProfilePoints),
			SteepRuns: services.SteepRuns(result.Coordinates),
		}
	}()
}

func (s *Session) fetchAddressAsync(ctx context.Context, index int, force bool) {
	if s.geocoder == nil {
		return
	}
	go func() {
		_ = s.FetchAddress(context.WithoutCancel(ctx), index, force)
	}()
}

func (s *Session) fetchMissingAddressesLocked(ctx context.Context) {
	for i, e := range s.addresses {
		if e.Status == domain.AddressEmpty {
			s.fetchAddressAsync(ctx, i, false)
		}
	}
}

func (s *Session) routeNameLocked() string {
	if s.nameOverridden {
		return s.routeName
	}
	return services.ComposeRouteName(s.addresses, s.isRoundTrip)
}

// bestInsertIndex picks where a new pin slots into an existing sequence:
// after the start of whichever consecutive pair has the closest midpoint.
func bestInsertIndex(pins []domain.Pin, pin domain.Pin) int {
	if len(pins) < 2 {
		return len(pins)
	}

	best := len(pins)
	bestDist := -1.0
	for i := 0; i < len(pins)-1; i++ {
		d := domain.Haversine(pin, domain.Midpoint(pins[i], pins[i+1]))
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = i + 1
		}
	}
	return best
}
