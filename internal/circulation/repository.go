package circulation

import (
	"sync"

	"github.com/google/uuid"

	"libralend/internal/membership"
)

// Repository is the in-memory loan store. Loans are never removed, only
// status-transitioned.
type Repository struct {
	mu    sync.RWMutex
	loans map[uuid.UUID]Loan
	order []uuid.UUID
}

// The loan repository backs the membership removal guard.
var _ membership.LoanGuard = (*Repository)(nil)

// NewRepository creates an empty loan repository.
func NewRepository() *Repository {
	return &Repository{
		loans: make(map[uuid.UUID]Loan),
	}
}

// Add inserts a loan.
func (r *Repository) Add(loan Loan) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loans[loan.ID] = loan
	r.order = append(r.order, loan.ID)
}

// Get returns a copy of the loan with the given ID.
func (r *Repository) Get(id uuid.UUID) (Loan, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loan, ok := r.loans[id]
	return loan, ok
}

// All returns all loans in issue order.
func (r *Repository) All() []Loan {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loans := make([]Loan, 0, len(r.order))
	for _, id := range r.order {
		loans = append(loans, r.loans[id])
	}
	return loans
}

// Transition moves a loan from active to the given status. It returns
// ErrLoanNotFound for unknown IDs and ErrLoanNotActive when the loan has
// already completed or gone overdue.
func (r *Repository) Transition(id uuid.UUID, to Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	loan, ok := r.loans[id]
	if !ok {
		return ErrLoanNotFound
	}
	if loan.Status != StatusActive {
		return ErrLoanNotActive
	}

	loan.Status = to
	r.loans[id] = loan
	return nil
}

// ActiveForReader returns the reader's active loans in issue order.
func (r *Repository) ActiveForReader(readerID uuid.UUID) []Loan {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var loans []Loan
	for _, id := range r.order {
		loan := r.loans[id]
		if loan.ReaderID == readerID && loan.Status == StatusActive {
			loans = append(loans, loan)
		}
	}
	return loans
}

// HasActiveLoans reports whether the reader holds any active loan.
func (r *Repository) HasActiveLoans(readerID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, loan := range r.loans {
		if loan.ReaderID == readerID && loan.Status == StatusActive {
			return true
		}
	}
	return false
}
