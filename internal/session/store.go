package session

import (
	"sync"

	"route-planner-service/internal/ports"
	"route-planner-service/internal/services"
)

// Store holds live sessions by ID and owns the shared dependencies new
// sessions are wired with.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	acquisition *services.RouteAcquisition
	geocoder    ports.Geocoder
}

func NewStore(acquisition *services.RouteAcquisition, geocoder ports.Geocoder) *Store {
	return &Store{
		sessions:    make(map[string]*Session),
		acquisition: acquisition,
		geocoder:    geocoder,
	}
}

func (st *Store) Create() *Session {
	s := New(st.acquisition, st.geocoder)

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	return s
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}
