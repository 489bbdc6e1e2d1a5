package circulation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"libralend/internal/catalog"
	"libralend/internal/membership"
)

// CatalogService is the slice of the catalog the circulation service needs.
type CatalogService interface {
	BookByISBN(ctx context.Context, isbn string) (*catalog.Book, error)
	SetAvailability(ctx context.Context, isbn string, available bool) error
}

// MembershipService is the slice of membership the circulation service needs.
type MembershipService interface {
	Reader(ctx context.Context, id uuid.UUID) (*membership.Reader, error)
}

// Service defines the interface for the circulation service.
type Service interface {
	IssueLoan(ctx context.Context, isbn string, readerID uuid.UUID, loanDate, dueDate time.Time, issuedBy *Librarian) (*Loan, error)
	ReturnBook(ctx context.Context, loanID uuid.UUID) error
	MarkOverdue(ctx context.Context, loanID uuid.UUID) error
	SweepOverdue(ctx context.Context, now time.Time) []Loan
	Loan(ctx context.Context, id uuid.UUID) (*Loan, error)
	AllLoans(ctx context.Context) []Loan
	ActiveLoansForReader(ctx context.Context, readerID uuid.UUID) []Loan
}
