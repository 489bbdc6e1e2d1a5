package circulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"libralend/pkg/eventlog"
)

const aggregateType = "loan"

// service implements the Service interface.
type service struct {
	repo       *Repository
	catalog    CatalogService
	membership MembershipService
	journal    *eventlog.Log
	logger     *slog.Logger
}

// NewService creates a new circulation service instance.
func NewService(repo *Repository, catalogSvc CatalogService, membershipSvc MembershipService, journal *eventlog.Log, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:       repo,
		catalog:    catalogSvc,
		membership: membershipSvc,
		journal:    journal,
		logger:     logger,
	}
}

// IssueLoan validates preconditions in order (book exists, book available,
// reader exists), then creates an active loan and marks the book unavailable.
func (s *service) IssueLoan(ctx context.Context, isbn string, readerID uuid.UUID, loanDate, dueDate time.Time, issuedBy *Librarian) (*Loan, error) {
	// Step 1: the book must exist
	book, err := s.catalog.BookByISBN(ctx, isbn)
	if err != nil {
		s.logger.InfoContext(ctx, "cannot issue loan: book not found", "isbn", isbn)
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	// Step 2: the book must be available
	if !book.Available {
		s.logger.InfoContext(ctx, "cannot issue loan: book unavailable", "isbn", isbn)
		return nil, ErrBookUnavailable
	}

	// Step 3: the reader must exist
	if _, err := s.membership.Reader(ctx, readerID); err != nil {
		s.logger.InfoContext(ctx, "cannot issue loan: reader not found", "reader_id", readerID)
		return nil, fmt.Errorf("failed to get reader: %w", err)
	}

	// Step 4: take the book out of circulation
	if err := s.catalog.SetAvailability(ctx, isbn, false); err != nil {
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}

	// Compensation restores availability if the loan cannot be recorded.
	compensate := func() {
		if err := s.catalog.SetAvailability(ctx, isbn, true); err != nil {
			s.logger.ErrorContext(ctx, "failed to compensate availability", "isbn", isbn, "error", err)
		}
	}

	// Step 5: record and store the loan
	loan := Loan{
		ID:       uuid.New(),
		BookISBN: isbn,
		ReaderID: readerID,
		LoanDate: loanDate,
		DueDate:  dueDate,
		IssuedBy: issuedBy,
		Status:   StatusActive,
	}

	payload := LoanIssuedEvent{LoanID: loan.ID, BookISBN: isbn, ReaderID: readerID, DueDate: dueDate}
	if err := s.record(ctx, loan.ID, "LoanIssued", payload); err != nil {
		compensate()
		return nil, err
	}

	s.repo.Add(loan)

	return &loan, nil
}

// ReturnBook completes an active loan and puts the book back in circulation.
func (s *service) ReturnBook(ctx context.Context, loanID uuid.UUID) error {
	loan, ok := s.repo.Get(loanID)
	if !ok {
		s.logger.InfoContext(ctx, "cannot return book: loan not found", "loan_id", loanID)
		return ErrLoanNotFound
	}
	if loan.Status != StatusActive {
		s.logger.InfoContext(ctx, "cannot return book: loan not active", "loan_id", loanID, "status", string(loan.Status))
		return ErrLoanNotActive
	}

	payload := BookReturnedEvent{LoanID: loanID, BookISBN: loan.BookISBN, ReaderID: loan.ReaderID, ReturnDate: time.Now().UTC()}
	if err := s.record(ctx, loanID, "BookReturned", payload); err != nil {
		return err
	}

	if err := s.repo.Transition(loanID, StatusCompleted); err != nil {
		return err
	}
	if err := s.catalog.SetAvailability(ctx, loan.BookISBN, true); err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
	}

	return nil
}

// MarkOverdue transitions an active loan to overdue. The book stays out of
// circulation until it is returned.
func (s *service) MarkOverdue(ctx context.Context, loanID uuid.UUID) error {
	loan, ok := s.repo.Get(loanID)
	if !ok {
		return ErrLoanNotFound
	}
	if loan.Status != StatusActive {
		return ErrLoanNotActive
	}

	payload := LoanMarkedOverdueEvent{LoanID: loanID, BookISBN: loan.BookISBN, ReaderID: loan.ReaderID}
	if err := s.record(ctx, loanID, "LoanMarkedOverdue", payload); err != nil {
		return err
	}

	return s.repo.Transition(loanID, StatusOverdue)
}

// SweepOverdue marks every active loan past its due date as overdue and
// returns the loans it transitioned.
func (s *service) SweepOverdue(ctx context.Context, now time.Time) []Loan {
	var swept []Loan
	for _, loan := range s.repo.All() {
		if loan.Status != StatusActive || !loan.DueDate.Before(now) {
			continue
		}
		if err := s.MarkOverdue(ctx, loan.ID); err != nil {
			s.logger.ErrorContext(ctx, "overdue sweep failed for loan", "loan_id", loan.ID, "error", err)
			continue
		}
		loan.Status = StatusOverdue
		swept = append(swept, loan)
	}
	return swept
}

// Loan retrieves a loan by its ID.
func (s *service) Loan(ctx context.Context, id uuid.UUID) (*Loan, error) {
	loan, ok := s.repo.Get(id)
	if !ok {
		return nil, ErrLoanNotFound
	}
	return &loan, nil
}

// AllLoans returns every loan ever issued, in issue order.
func (s *service) AllLoans(ctx context.Context) []Loan {
	return s.repo.All()
}

// ActiveLoansForReader returns the reader's active loans.
func (s *service) ActiveLoansForReader(ctx context.Context, readerID uuid.UUID) []Loan {
	return s.repo.ActiveForReader(readerID)
}

func (s *service) record(ctx context.Context, loanID uuid.UUID, eventType string, payload interface{}) error {
	data, err := eventlog.MarshalPayload(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	event := eventlog.Event{
		EventType: eventType,
		Payload:   data,
	}

	aggregateID := loanID.String()
	version := s.journal.CurrentVersion(ctx, aggregateID)
	if err := s.journal.Append(ctx, aggregateID, aggregateType, version, event); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}
