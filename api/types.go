package api

import (
	"github.com/google/uuid"

	"notes-api/domain"
)

// NoteStore abstracts the note collection for handlers. The one store is
// created in main and injected here; handlers never hold notes across
// requests.
type NoteStore interface {
	// List returns every note in insertion order.
	List() []domain.Note
	// Get returns the note stored under id and whether it exists.
	Get(id uuid.UUID) (domain.Note, bool)
	// Insert adds a note under a previously unused id.
	Insert(note domain.Note) error
	// Replace swaps the note stored under an existing id.
	Replace(id uuid.UUID, note domain.Note) error
	// Remove deletes the note under id, reporting whether it existed.
	Remove(id uuid.UUID) bool
}
