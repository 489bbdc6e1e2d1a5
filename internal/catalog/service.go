package catalog

import "context"

// Service defines the interface for the catalog service.
type Service interface {
	AddBook(ctx context.Context, isbn, title, author string) (*Book, error)
	UpdateBook(ctx context.Context, isbn, title, author string) error
	RemoveBook(ctx context.Context, isbn string) error
	BookByISBN(ctx context.Context, isbn string) (*Book, error)
	SearchByTitle(ctx context.Context, query string) []Book
	SearchByAuthor(ctx context.Context, query string) []Book
	AvailableBooks(ctx context.Context) []Book
	LoanedBooks(ctx context.Context) []Book
	SetAvailability(ctx context.Context, isbn string, available bool) error
}
