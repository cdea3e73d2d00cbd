package storage

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"notes-api/domain"
)

var (
	// ErrNotFound is returned when the requested note id is not in the store.
	ErrNotFound = errors.New("note not found")
	// ErrExists is returned when inserting a note whose id is already taken.
	ErrExists = errors.New("note id already exists")
)

// Memory holds every note in process memory. A single lock guards all reads
// and writes so each operation is atomic; notes go in and out by value, so
// callers never share memory with the store.
type Memory struct {
	mu    sync.RWMutex
	notes map[uuid.UUID]domain.Note
	order []uuid.UUID
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{notes: make(map[uuid.UUID]domain.Note)}
}

// List returns every note in insertion order. The result is never nil and is
// owned by the caller.
func (m *Memory) List() []domain.Note {
	m.mu.RLock()
	defer m.mu.RUnlock()
	notes := make([]domain.Note, 0, len(m.order))
	for _, id := range m.order {
		notes = append(notes, m.notes[id])
	}
	return notes
}

// Get returns the note stored under id and whether it exists.
func (m *Memory) Get(id uuid.UUID) (domain.Note, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	note, ok := m.notes[id]
	return note, ok
}

// Insert adds a new note. The note's id must not already be in use.
func (m *Memory) Insert(note domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[note.ID]; ok {
		return ErrExists
	}
	m.notes[note.ID] = note
	m.order = append(m.order, note.ID)
	return nil
}

// Replace swaps the note stored under id. Replacing keeps the note's
// position in insertion order.
func (m *Memory) Replace(id uuid.UUID, note domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok {
		return ErrNotFound
	}
	m.notes[id] = note
	return nil
}

// Remove deletes the note stored under id and reports whether it existed.
func (m *Memory) Remove(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok {
		return false
	}
	delete(m.notes, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Len reports the number of stored notes.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.notes)
}
