package session

import (
	"route-planner-service/internal/domain"
)

// HistoryCap bounds how many past states an undo history retains beyond the
// current one.
const HistoryCap = 40

// Snapshot is one undoable state: the pin list plus the two flags that
// change what a recalculation produces. Addresses and computed routes are
// derived data and are rebuilt after a restore, not stored.
type Snapshot struct {
	Pins               []domain.Pin
	IsRoundTrip        bool
	ShowSteepHighlight bool
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Pins = append([]domain.Pin(nil), s.Pins...)
	return out
}

// HistoryStore is a bounded linear undo history. Saving while rewound
// discards the forward entries, like an editor. The store holds at most
// cap+1 snapshots: the current state plus cap undoable ones.
type HistoryStore struct {
	entries []Snapshot
	index   int
	limit   int
}

func NewHistoryStore(limit int) *HistoryStore {
	if limit <= 0 {
		limit = HistoryCap
	}
	return &HistoryStore{index: -1, limit: limit}
}

// Save records a new current state. Snapshots are value-copied on the way
// in, so later pin mutations cannot corrupt history.
func (h *HistoryStore) Save(s Snapshot) {
	if h.index < len(h.entries)-1 {
		h.entries = h.entries[:h.index+1]
	}
	h.entries = append(h.entries, s.clone())
	h.index++

	if len(h.entries) > h.limit+1 {
		h.entries = h.entries[1:]
		h.index--
	}
}

// Undo steps back one state and returns it. At the oldest entry it reports
// false and returns the zero Snapshot.
func (h *HistoryStore) Undo() (Snapshot, bool) {
	if h.index <= 0 {
		return Snapshot{}, false
	}
	h.index--
	return h.entries[h.index].clone(), true
}

func (h *HistoryStore) CanUndo() bool {
	return h.index > 0
}

func (h *HistoryStore) Len() int {
	return len(h.entries)
}

func (h *HistoryStore) Index() int {
	return h.index
}
