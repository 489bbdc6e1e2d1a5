package circulation_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libralend/internal/catalog"
	"libralend/internal/circulation"
	"libralend/internal/membership"
	"libralend/pkg/eventlog"
)

type stack struct {
	catalog     catalog.Service
	membership  membership.Service
	circulation circulation.Service
	journal     *eventlog.Log
}

func newStack(t *testing.T) *stack {
	t.Helper()
	journal := eventlog.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	loanRepo := circulation.NewRepository()
	catalogSvc := catalog.NewService(catalog.NewRepository(), journal, logger)
	membershipSvc := membership.NewService(membership.NewRepository(), journal, logger, membership.WithLoanGuard(loanRepo))
	circulationSvc := circulation.NewService(loanRepo, catalogSvc, membershipSvc, journal, logger)

	return &stack{
		catalog:     catalogSvc,
		membership:  membershipSvc,
		circulation: circulationSvc,
		journal:     journal,
	}
}

func (s *stack) seed(t *testing.T) (string, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	_, err := s.catalog.AddBook(ctx, "978-0261102217", "Хоббит", "Дж. Р. Р. Толкин")
	require.NoError(t, err)

	reader, err := s.membership.RegisterReader(ctx, "Иван Петров", "ivan@example.com")
	require.NoError(t, err)

	return "978-0261102217", reader.ID
}

func dates() (time.Time, time.Time) {
	loanDate := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	return loanDate, loanDate.AddDate(0, 0, 14)
}

func TestIssueLoanMakesBookUnavailable(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	isbn, readerID := s.seed(t)
	loanDate, dueDate := dates()

	librarian := &circulation.Librarian{Name: "Елена Смирнова", Position: "Главный библиотекарь"}
	loan, err := s.circulation.IssueLoan(ctx, isbn, readerID, loanDate, dueDate, librarian)
	require.NoError(t, err)

	assert.Equal(t, circulation.StatusActive, loan.Status)
	assert.Equal(t, isbn, loan.BookISBN)
	assert.Equal(t, readerID, loan.ReaderID)
	assert.Equal(t, "Елена Смирнова", loan.IssuedBy.Name)

	book, err := s.catalog.BookByISBN(ctx, isbn)
	require.NoError(t, err)
	assert.False(t, book.Available)

	events := s.journal.Load(ctx, loan.ID.String(), 0, 0)
	require.Len(t, events, 1)
	assert.Equal(t, "LoanIssued", events[0].EventType)
}

func TestIssueLoanFailsForUnknownBook(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	_, readerID := s.seed(t)
	loanDate, dueDate := dates()

	_, err := s.circulation.IssueLoan(ctx, "missing-isbn", readerID, loanDate, dueDate, nil)
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
}

func TestIssueLoanFailsWhileBookOnLoan(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	isbn, readerID := s.seed(t)
	loanDate, dueDate := dates()

	_, err := s.circulation.IssueLoan(ctx, isbn, readerID, loanDate, dueDate, nil)
	require.NoError(t, err)

	// same reader
	_, err = s.circulation.IssueLoan(ctx, isbn, readerID, loanDate, dueDate, nil)
	assert.ErrorIs(t, err, circulation.ErrBookUnavailable)

	// different reader
	other, err := s.membership.RegisterReader(ctx, "Ольга Иванова", "olga@example.com")
	require.NoError(t, err)
	_, err = s.circulation.IssueLoan(ctx, isbn, other.ID, loanDate, dueDate, nil)
	assert.ErrorIs(t, err, circulation.ErrBookUnavailable)
}

func TestIssueLoanFailsForUnknownReader(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	isbn, _ := s.seed(t)
	loanDate, dueDate := dates()

	_, err := s.circulation.IssueLoan(ctx, isbn, uuid.New(), loanDate, dueDate, nil)
	assert.ErrorIs(t, err, membership.ErrReaderNotFound)

	// a failed precondition must not consume the book
	book, err := s.catalog.BookByISBN(ctx, isbn)
	require.NoError(t, err)
	assert.True(t, book.Available)
}

func TestReturnBookCompletesLoanAndRestoresAvailability(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	isbn, readerID := s.seed(t)
	loanDate, dueDate := dates()

	loan, err := s.circulation.IssueLoan(ctx, isbn, readerID, loanDate, dueDate, nil)
	require.NoError(t, err)

	require.NoError(t, s.circulation.ReturnBook(ctx, loan.ID))

	got, err := s.circulation.Loan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, circulation.StatusCompleted, got.Status)

	book, err := s.catalog.BookByISBN(ctx, isbn)
	require.NoError(t, err)
	assert.True(t, book.Available)

	// a completed loan cannot be returned again
	assert.ErrorIs(t, s.circulation.ReturnBook(ctx, loan.ID), circulation.ErrLoanNotActive)
}

func TestReturnBookFailsForUnknownLoan(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	s.seed(t)

	assert.ErrorIs(t, s.circulation.ReturnBook(ctx, uuid.New()), circulation.ErrLoanNotFound)
}

func TestMarkOverdueKeepsBookOut(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	isbn, readerID := s.seed(t)
	loanDate, dueDate := dates()

	loan, err := s.circulation.IssueLoan(ctx, isbn, readerID, loanDate, dueDate, nil)
	require.NoError(t, err)

	require.NoError(t, s.circulation.MarkOverdue(ctx, loan.ID))

	got, err := s.circulation.Loan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, circulation.StatusOverdue, got.Status)

	book, err := s.catalog.BookByISBN(ctx, isbn)
	require.NoError(t, err)
	assert.False(t, book.Available)

	// overdue is terminal for MarkOverdue and ReturnBook alike
	assert.ErrorIs(t, s.circulation.MarkOverdue(ctx, loan.ID), circulation.ErrLoanNotActive)
	assert.ErrorIs(t, s.circulation.ReturnBook(ctx, loan.ID), circulation.ErrLoanNotActive)
}

func TestSweepOverdue(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	isbn, readerID := s.seed(t)

	_, err := s.catalog.AddBook(ctx, "978-0140449136", "Одиссея", "Гомер")
	require.NoError(t, err)

	loanDate := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	pastDue := loanDate.AddDate(0, 0, 7)
	farDue := loanDate.AddDate(0, 0, 60)

	late, err := s.circulation.IssueLoan(ctx, isbn, readerID, loanDate, pastDue, nil)
	require.NoError(t, err)
	onTime, err := s.circulation.IssueLoan(ctx, "978-0140449136", readerID, loanDate, farDue, nil)
	require.NoError(t, err)

	now := loanDate.AddDate(0, 0, 30)
	swept := s.circulation.SweepOverdue(ctx, now)

	require.Len(t, swept, 1)
	assert.Equal(t, late.ID, swept[0].ID)
	assert.Equal(t, circulation.StatusOverdue, swept[0].Status)

	still, err := s.circulation.Loan(ctx, onTime.ID)
	require.NoError(t, err)
	assert.Equal(t, circulation.StatusActive, still.Status)

	// a second sweep finds nothing left to transition
	assert.Empty(t, s.circulation.SweepOverdue(ctx, now))
}

func TestActiveLoansForReaderBacksRemovalGuard(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	isbn, readerID := s.seed(t)
	loanDate, dueDate := dates()

	loan, err := s.circulation.IssueLoan(ctx, isbn, readerID, loanDate, dueDate, nil)
	require.NoError(t, err)
	require.Len(t, s.circulation.ActiveLoansForReader(ctx, readerID), 1)

	// the reader cannot be removed while the loan is active
	assert.ErrorIs(t, s.membership.RemoveReader(ctx, readerID), membership.ErrReaderHasLoans)

	require.NoError(t, s.circulation.ReturnBook(ctx, loan.ID))
	assert.Empty(t, s.circulation.ActiveLoansForReader(ctx, readerID))
	assert.NoError(t, s.membership.RemoveReader(ctx, readerID))
}

func TestAllLoansKeepsCompletedLoans(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	isbn, readerID := s.seed(t)
	loanDate, dueDate := dates()

	first, err := s.circulation.IssueLoan(ctx, isbn, readerID, loanDate, dueDate, nil)
	require.NoError(t, err)
	require.NoError(t, s.circulation.ReturnBook(ctx, first.ID))

	second, err := s.circulation.IssueLoan(ctx, isbn, readerID, loanDate, dueDate, nil)
	require.NoError(t, err)

	loans := s.circulation.AllLoans(ctx)
	require.Len(t, loans, 2)
	assert.Equal(t, first.ID, loans[0].ID)
	assert.Equal(t, circulation.StatusCompleted, loans[0].Status)
	assert.Equal(t, second.ID, loans[1].ID)
	assert.Equal(t, circulation.StatusActive, loans[1].Status)
}
