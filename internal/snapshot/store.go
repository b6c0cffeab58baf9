package snapshot

import (
	"sort"
	"sync"

	"github.com/1broseidon/canvaslist/internal/geometry"
	"github.com/1broseidon/canvaslist/internal/window"
)

// Entry is one window's saved geometry.
type Entry struct {
	Position geometry.Point `json:"position"`
	Size     geometry.Size  `json:"size"`
	ZOrder   int            `json:"z_order"`
}

// Rect returns the saved rectangle.
func (e Entry) Rect() geometry.Rect {
	return geometry.NewRect(e.Position, e.Size)
}

// Registry is the subset of window.Registry the store needs.
type Registry interface {
	ListAll() []window.Record
	Get(id int) (window.Record, bool)
	Place(id int, rect geometry.Rect, z int) (window.Record, bool)
}

// Store keeps one arrangement per view for the life of the process.
type Store struct {
	mu    sync.RWMutex
	views map[ViewKey]map[int]Entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{views: make(map[ViewKey]map[int]Entry)}
}

// Save records every visible window under key, replacing any previous
// snapshot, and returns how many windows were captured.
func (s *Store) Save(key ViewKey, reg Registry) int {
	entries := make(map[int]Entry)
	for _, rec := range reg.ListAll() {
		if rec.Minimized {
			continue
		}
		entries[rec.ID] = Entry{Position: rec.Position, Size: rec.Size, ZOrder: rec.ZOrder}
	}

	s.mu.Lock()
	s.views[key] = entries
	s.mu.Unlock()
	return len(entries)
}

// Restore reapplies the snapshot for key through the registry. ok is false
// when nothing was saved for key. Entries for destroyed or minimized windows
// are skipped; every applied rectangle is validated against the current
// viewport by the registry.
func (s *Store) Restore(key ViewKey, reg Registry) (applied int, ok bool) {
	s.mu.RLock()
	saved, ok := s.views[key]
	ids := make([]int, 0, len(saved))
	for id := range saved {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	if !ok {
		return 0, false
	}

	// Ascending z so later placements land on top.
	sort.Slice(ids, func(i, j int) bool {
		a, b := saved[ids[i]], saved[ids[j]]
		if a.ZOrder != b.ZOrder {
			return a.ZOrder < b.ZOrder
		}
		return ids[i] < ids[j]
	})

	for _, id := range ids {
		rec, exists := reg.Get(id)
		if !exists || rec.Minimized {
			continue
		}
		entry := saved[id]
		if _, placed := reg.Place(id, entry.Rect(), entry.ZOrder); placed {
			applied++
		}
	}
	return applied, true
}

// Get returns a copy of the snapshot for key.
func (s *Store) Get(key ViewKey) (map[int]Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	saved, ok := s.views[key]
	if !ok {
		return nil, false
	}
	out := make(map[int]Entry, len(saved))
	for id, e := range saved {
		out[id] = e
	}
	return out, true
}

// Keys returns every saved key, sorted.
func (s *Store) Keys() []ViewKey {
	s.mu.RLock()
	keys := make([]ViewKey, 0, len(s.views))
	for k := range s.views {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
