package membership

import (
	"context"

	"github.com/google/uuid"
)

// LoanGuard reports whether a reader currently has active loans. The loan
// repository satisfies this; it keeps removal from leaving loans dangling.
type LoanGuard interface {
	HasActiveLoans(readerID uuid.UUID) bool
}

// Service defines the interface for the membership service.
type Service interface {
	RegisterReader(ctx context.Context, name, email string) (*Reader, error)
	RemoveReader(ctx context.Context, id uuid.UUID) error
	Reader(ctx context.Context, id uuid.UUID) (*Reader, error)
	AllReaders(ctx context.Context) []Reader
}
