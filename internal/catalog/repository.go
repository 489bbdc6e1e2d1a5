package catalog

import "sync"

// Repository is the in-memory book store. Books are stored by value and
// handed out as copies, so callers never hold a reference into the store.
type Repository struct {
	mu    sync.RWMutex
	books map[string]Book
	order []string
}

// NewRepository creates an empty book repository.
func NewRepository() *Repository {
	return &Repository{
		books: make(map[string]Book),
	}
}

// Add inserts a book, rejecting a duplicate ISBN.
func (r *Repository) Add(book Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.books[book.ISBN]; exists {
		return ErrDuplicateISBN
	}

	r.books[book.ISBN] = book
	r.order = append(r.order, book.ISBN)
	return nil
}

// Remove deletes a book by ISBN, reporting whether it existed.
func (r *Repository) Remove(isbn string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.books[isbn]; !exists {
		return false
	}

	delete(r.books, isbn)
	for i, key := range r.order {
		if key == isbn {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns a copy of the book with the given ISBN.
func (r *Repository) Get(isbn string) (Book, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.books[isbn]
	return book, ok
}

// All returns all books in insertion order.
func (r *Repository) All() []Book {
	r.mu.RLock()
	defer r.mu.RUnlock()

	books := make([]Book, 0, len(r.order))
	for _, isbn := range r.order {
		books = append(books, r.books[isbn])
	}
	return books
}

// Update replaces the stored book with the same ISBN.
func (r *Repository) Update(book Book) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.books[book.ISBN]; !exists {
		return false
	}

	r.books[book.ISBN] = book
	return true
}
