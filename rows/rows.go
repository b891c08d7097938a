// Package rows is the auxiliary record store that mirrors feedback entities
// outside the ontology graph. Rows are keyed by the same token as the
// feedback subject.
package rows

import (
	"errors"
	"sort"
	"time"
)

// ErrNotFound indicates that no row exists for the given id
var ErrNotFound = errors.New("Row not found")

// A Row is the flat record of a single feedback entry
type Row struct {
	ID          string    `json:"id"`
	User        string    `json:"user"`
	Email       string    `json:"email"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Store persists feedback rows
type Store interface {
	Put(row *Row) error
	Get(id string) (*Row, error)
	Delete(id string) error
	List() ([]*Row, error)
	Close() error
}

type memoryStore struct {
	rows map[string]Row
	ids  []string
}

// NewMemoryStore returns a Store that keeps rows in process memory
func NewMemoryStore() Store {
	return &memoryStore{rows: map[string]Row{}, ids: []string{}}
}

func (m *memoryStore) Put(row *Row) error {
	if _, has := m.rows[row.ID]; !has {
		i := sort.SearchStrings(m.ids, row.ID)
		m.ids = append(m.ids, "")
		copy(m.ids[i+1:], m.ids[i:])
		m.ids[i] = row.ID
	}
	m.rows[row.ID] = *row
	return nil
}

func (m *memoryStore) Get(id string) (*Row, error) {
	row, has := m.rows[id]
	if !has {
		return nil, ErrNotFound
	}
	return &row, nil
}

func (m *memoryStore) Delete(id string) error {
	if _, has := m.rows[id]; !has {
		return ErrNotFound
	}
	delete(m.rows, id)
	i := sort.SearchStrings(m.ids, id)
	m.ids = append(m.ids[:i], m.ids[i+1:]...)
	return nil
}

func (m *memoryStore) List() ([]*Row, error) {
	rows := make([]*Row, len(m.ids))
	for i, id := range m.ids {
		row := m.rows[id]
		rows[i] = &row
	}
	return rows, nil
}

func (m *memoryStore) Close() error { return nil }
