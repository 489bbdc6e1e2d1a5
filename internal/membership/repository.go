package membership

import (
	"sync"

	"github.com/google/uuid"
)

// Repository is the in-memory reader store.
type Repository struct {
	mu      sync.RWMutex
	readers map[uuid.UUID]Reader
	order   []uuid.UUID
}

// NewRepository creates an empty reader repository.
func NewRepository() *Repository {
	return &Repository{
		readers: make(map[uuid.UUID]Reader),
	}
}

// Add inserts a reader, rejecting a duplicate ID.
func (r *Repository) Add(reader Reader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.readers[reader.ID]; exists {
		return ErrDuplicateReader
	}

	r.readers[reader.ID] = reader
	r.order = append(r.order, reader.ID)
	return nil
}

// Remove deletes a reader by ID, reporting whether one existed.
func (r *Repository) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.readers[id]; !exists {
		return false
	}

	delete(r.readers, id)
	for i, key := range r.order {
		if key == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns a copy of the reader with the given ID.
func (r *Repository) Get(id uuid.UUID) (Reader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reader, ok := r.readers[id]
	return reader, ok
}

// All returns all readers in registration order.
func (r *Repository) All() []Reader {
	r.mu.RLock()
	defer r.mu.RUnlock()

	readers := make([]Reader, 0, len(r.order))
	for _, id := range r.order {
		readers = append(readers, r.readers[id])
	}
	return readers
}
