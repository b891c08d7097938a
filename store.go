package ontoshop

import (
	"sync"

	"github.com/underlay/ontoshop/graph"
)

// Store serializes every load-mutate-persist sequence in the process.
// Writers in other processes are not coordinated with: two processes that
// update the same file concurrently can lose each other's changes.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

// NewStore wraps a backend
func NewStore(backend Backend) *Store { return &Store{backend: backend} }

// View loads the graph and passes it to fn without persisting
func (s *Store) View(fn func(g *graph.Graph) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.backend.Load())
}

// Update loads the graph, passes it to fn, and persists it once if fn
// succeeds. A graph that fn rejected is discarded unsaved.
func (s *Store) Update(fn func(g *graph.Graph) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.backend.Load()
	if err := fn(g); err != nil {
		return err
	}
	return s.backend.Save(g)
}

// Snapshot returns a copy of the current graph
func (s *Store) Snapshot() *graph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Load()
}

// Import merges every triple of other into the graph and returns how many
// were new
func (s *Store) Import(other *graph.Graph) (added int, err error) {
	err = s.Update(func(g *graph.Graph) error {
		added = g.Merge(other)
		return nil
	})
	return
}
