package membership

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"libralend/pkg/eventlog"
)

const aggregateType = "reader"

// service implements the Service interface.
type service struct {
	repo    *Repository
	journal *eventlog.Log
	guard   LoanGuard
	logger  *slog.Logger
}

// Option configures the membership service.
type Option func(*service)

// WithLoanGuard makes RemoveReader refuse readers that still hold active loans.
func WithLoanGuard(guard LoanGuard) Option {
	return func(s *service) {
		s.guard = guard
	}
}

// NewService creates a new membership service instance.
func NewService(repo *Repository, journal *eventlog.Log, logger *slog.Logger, opts ...Option) Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &service{
		repo:    repo,
		journal: journal,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterReader creates a new reader with a generated ID.
func (s *service) RegisterReader(ctx context.Context, name, email string) (*Reader, error) {
	reader := Reader{
		ID:    uuid.New(),
		Name:  name,
		Email: email,
	}

	if err := s.record(ctx, reader.ID, "ReaderRegistered", ReaderRegisteredEvent{ID: reader.ID, Email: email, Name: name}); err != nil {
		return nil, err
	}
	if err := s.repo.Add(reader); err != nil {
		return nil, err
	}

	return &reader, nil
}

// RemoveReader deletes a reader. Removal is refused while the reader holds
// active loans.
func (s *service) RemoveReader(ctx context.Context, id uuid.UUID) error {
	if _, exists := s.repo.Get(id); !exists {
		s.logger.InfoContext(ctx, "reader not found", "reader_id", id)
		return ErrReaderNotFound
	}
	if s.guard != nil && s.guard.HasActiveLoans(id) {
		s.logger.InfoContext(ctx, "refusing to remove reader with active loans", "reader_id", id)
		return ErrReaderHasLoans
	}

	if err := s.record(ctx, id, "ReaderRemoved", ReaderRemovedEvent{ID: id}); err != nil {
		return err
	}
	s.repo.Remove(id)

	return nil
}

// Reader retrieves a reader by their ID.
func (s *service) Reader(ctx context.Context, id uuid.UUID) (*Reader, error) {
	reader, exists := s.repo.Get(id)
	if !exists {
		return nil, ErrReaderNotFound
	}
	return &reader, nil
}

// AllReaders returns all registered readers.
func (s *service) AllReaders(ctx context.Context) []Reader {
	return s.repo.All()
}

func (s *service) record(ctx context.Context, id uuid.UUID, eventType string, payload interface{}) error {
	data, err := eventlog.MarshalPayload(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	event := eventlog.Event{
		EventType: eventType,
		Payload:   data,
	}

	aggregateID := id.String()
	version := s.journal.CurrentVersion(ctx, aggregateID)
	if err := s.journal.Append(ctx, aggregateID, aggregateType, version, event); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}
