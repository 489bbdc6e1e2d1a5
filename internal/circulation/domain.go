package circulation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBookUnavailable = errors.New("book is currently unavailable")
	ErrLoanNotFound    = errors.New("loan not found")
	ErrLoanNotActive   = errors.New("loan is not active")
)

// Status is the lifecycle state of a loan. Transitions go from active to
// completed or overdue; non-active loans never change again.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

// Librarian is the staff member who issued a loan. Librarians are not
// stored anywhere; they exist only as values attached to loans.
type Librarian struct {
	Name     string `json:"name"`
	Position string `json:"position"`
}

// Loan records one book lent to one reader over a date range. It references
// the book and the reader by key, never by pointer.
type Loan struct {
	ID       uuid.UUID  `json:"id"`
	BookISBN string     `json:"book_isbn"`
	ReaderID uuid.UUID  `json:"reader_id"`
	LoanDate time.Time  `json:"loan_date"`
	DueDate  time.Time  `json:"due_date"`
	IssuedBy *Librarian `json:"issued_by,omitempty"`
	Status   Status     `json:"status"`
}

// LoanIssuedEvent is published when a loan is created.
type LoanIssuedEvent struct {
	LoanID   uuid.UUID `json:"loan_id"`
	BookISBN string    `json:"book_isbn"`
	ReaderID uuid.UUID `json:"reader_id"`
	DueDate  time.Time `json:"due_date"`
}

// BookReturnedEvent is published when a loan completes.
type BookReturnedEvent struct {
	LoanID     uuid.UUID `json:"loan_id"`
	BookISBN   string    `json:"book_isbn"`
	ReaderID   uuid.UUID `json:"reader_id"`
	ReturnDate time.Time `json:"return_date"`
}

// LoanMarkedOverdueEvent is published when an active loan passes its due date.
type LoanMarkedOverdueEvent struct {
	LoanID   uuid.UUID `json:"loan_id"`
	BookISBN string    `json:"book_isbn"`
	ReaderID uuid.UUID `json:"reader_id"`
}
