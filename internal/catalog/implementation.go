package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"libralend/pkg/eventlog"
)

const aggregateType = "book"

// service implements the Service interface.
type service struct {
	repo    *Repository
	journal *eventlog.Log
	logger  *slog.Logger
}

// NewService creates a new catalog service instance.
func NewService(repo *Repository, journal *eventlog.Log, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:    repo,
		journal: journal,
		logger:  logger,
	}
}

// AddBook creates a new book in the catalog. New books start available.
func (s *service) AddBook(ctx context.Context, isbn, title, author string) (*Book, error) {
	if _, exists := s.repo.Get(isbn); exists {
		s.logger.InfoContext(ctx, "book already in catalog", "isbn", isbn)
		return nil, ErrDuplicateISBN
	}

	book := Book{
		ISBN:      isbn,
		Title:     title,
		Author:    author,
		Available: true,
	}

	if err := s.record(ctx, isbn, "BookAdded", BookAddedEvent{ISBN: isbn, Title: title, Author: author}); err != nil {
		return nil, err
	}
	if err := s.repo.Add(book); err != nil {
		return nil, err
	}

	return &book, nil
}

// UpdateBook changes a book's mutable fields. The ISBN is immutable.
func (s *service) UpdateBook(ctx context.Context, isbn, title, author string) error {
	book, exists := s.repo.Get(isbn)
	if !exists {
		return ErrBookNotFound
	}

	book.Title = title
	book.Author = author

	if err := s.record(ctx, isbn, "BookUpdated", BookUpdatedEvent{ISBN: isbn, Title: title, Author: author}); err != nil {
		return err
	}
	s.repo.Update(book)

	return nil
}

// RemoveBook deletes a book from the catalog. Removal is refused while the
// book is on loan, so loans never dangle.
func (s *service) RemoveBook(ctx context.Context, isbn string) error {
	book, exists := s.repo.Get(isbn)
	if !exists {
		return ErrBookNotFound
	}
	if !book.Available {
		s.logger.InfoContext(ctx, "refusing to remove loaned book", "isbn", isbn)
		return ErrBookOnLoan
	}

	if err := s.record(ctx, isbn, "BookRemoved", BookRemovedEvent{ISBN: isbn}); err != nil {
		return err
	}
	s.repo.Remove(isbn)

	return nil
}

// BookByISBN retrieves a book from the catalog by its ISBN.
func (s *service) BookByISBN(ctx context.Context, isbn string) (*Book, error) {
	book, exists := s.repo.Get(isbn)
	if !exists {
		return nil, ErrBookNotFound
	}
	return &book, nil
}

// SearchByTitle finds books whose title contains the query, case-insensitively.
// An empty query matches every book. Results are recomputed on each call.
func (s *service) SearchByTitle(ctx context.Context, query string) []Book {
	return s.search(query, func(b Book) string { return b.Title })
}

// SearchByAuthor finds books whose author contains the query, case-insensitively.
func (s *service) SearchByAuthor(ctx context.Context, query string) []Book {
	return s.search(query, func(b Book) string { return b.Author })
}

func (s *service) search(query string, field func(Book) string) []Book {
	needle := strings.ToLower(query)

	var matches []Book
	for _, book := range s.repo.All() {
		if strings.Contains(strings.ToLower(field(book)), needle) {
			matches = append(matches, book)
		}
	}
	return matches
}

// AvailableBooks returns all books not currently on loan.
func (s *service) AvailableBooks(ctx context.Context) []Book {
	return s.partition(true)
}

// LoanedBooks returns all books currently on loan.
func (s *service) LoanedBooks(ctx context.Context) []Book {
	return s.partition(false)
}

func (s *service) partition(available bool) []Book {
	var books []Book
	for _, book := range s.repo.All() {
		if book.Available == available {
			books = append(books, book)
		}
	}
	return books
}

// SetAvailability flips a book's availability flag. The circulation service
// calls this when loans are issued and completed.
func (s *service) SetAvailability(ctx context.Context, isbn string, available bool) error {
	book, exists := s.repo.Get(isbn)
	if !exists {
		return ErrBookNotFound
	}
	if book.Available == available {
		return nil
	}

	book.Available = available

	if err := s.record(ctx, isbn, "AvailabilityChanged", AvailabilityChangedEvent{ISBN: isbn, Available: available}); err != nil {
		return err
	}
	s.repo.Update(book)

	return nil
}

func (s *service) record(ctx context.Context, isbn, eventType string, payload interface{}) error {
	data, err := eventlog.MarshalPayload(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	event := eventlog.Event{
		EventType: eventType,
		Payload:   data,
	}

	version := s.journal.CurrentVersion(ctx, isbn)
	if err := s.journal.Append(ctx, isbn, aggregateType, version, event); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}
