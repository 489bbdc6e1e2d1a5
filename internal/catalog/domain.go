package catalog

import "errors"

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrDuplicateISBN = errors.New("book with this ISBN already exists")
	ErrBookOnLoan    = errors.New("book is currently on loan")
)

// Book is a single-copy catalog entry identified by its ISBN.
type Book struct {
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Available bool   `json:"available"`
}

// BookAddedEvent is published when a new book enters the catalog.
type BookAddedEvent struct {
	ISBN   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// BookUpdatedEvent is published when a book's title or author changes.
type BookUpdatedEvent struct {
	ISBN   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// BookRemovedEvent is published when a book leaves the catalog.
type BookRemovedEvent struct {
	ISBN string `json:"isbn"`
}

// AvailabilityChangedEvent is published when a book is loaned out or returned.
type AvailabilityChangedEvent struct {
	ISBN      string `json:"isbn"`
	Available bool   `json:"available"`
}
