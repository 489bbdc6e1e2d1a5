package membership_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libralend/internal/membership"
	"libralend/pkg/eventlog"
)

type stubLoanGuard struct {
	busy map[uuid.UUID]bool
}

func (g *stubLoanGuard) HasActiveLoans(readerID uuid.UUID) bool {
	return g.busy[readerID]
}

func newTestService(t *testing.T, guard membership.LoanGuard) (membership.Service, *eventlog.Log) {
	t.Helper()
	journal := eventlog.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var opts []membership.Option
	if guard != nil {
		opts = append(opts, membership.WithLoanGuard(guard))
	}
	return membership.NewService(membership.NewRepository(), journal, logger, opts...), journal
}

func TestRegisterReaderGeneratesID(t *testing.T) {
	ctx := context.Background()
	svc, journal := newTestService(t, nil)

	reader, err := svc.RegisterReader(ctx, "Иван Петров", "ivan.petrov@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, reader.ID)

	got, err := svc.Reader(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, "Иван Петров", got.Name)
	assert.Equal(t, "ivan.petrov@example.com", got.Email)

	events := journal.Load(ctx, reader.ID.String(), 0, 0)
	require.Len(t, events, 1)
	assert.Equal(t, "ReaderRegistered", events[0].EventType)
}

func TestDuplicateEmailsAreAllowed(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	first, err := svc.RegisterReader(ctx, "Иван Петров", "shared@example.com")
	require.NoError(t, err)
	second, err := svc.RegisterReader(ctx, "Ольга Иванова", "shared@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, svc.AllReaders(ctx), 2)
}

func TestRemoveReaderDecrementsCount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	keep, err := svc.RegisterReader(ctx, "Иван Петров", "ivan@example.com")
	require.NoError(t, err)
	gone, err := svc.RegisterReader(ctx, "Ольга Иванова", "olga@example.com")
	require.NoError(t, err)
	require.Len(t, svc.AllReaders(ctx), 2)

	require.NoError(t, svc.RemoveReader(ctx, gone.ID))
	assert.Len(t, svc.AllReaders(ctx), 1)

	_, err = svc.Reader(ctx, gone.ID)
	assert.ErrorIs(t, err, membership.ErrReaderNotFound)

	_, err = svc.Reader(ctx, keep.ID)
	assert.NoError(t, err)
}

func TestRemoveUnknownReader(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	err := svc.RemoveReader(ctx, uuid.New())
	assert.ErrorIs(t, err, membership.ErrReaderNotFound)
}

func TestRemoveReaderRefusedWhileLoansActive(t *testing.T) {
	ctx := context.Background()
	guard := &stubLoanGuard{busy: make(map[uuid.UUID]bool)}
	svc, _ := newTestService(t, guard)

	reader, err := svc.RegisterReader(ctx, "Иван Петров", "ivan@example.com")
	require.NoError(t, err)
	guard.busy[reader.ID] = true

	err = svc.RemoveReader(ctx, reader.ID)
	assert.ErrorIs(t, err, membership.ErrReaderHasLoans)
	assert.Len(t, svc.AllReaders(ctx), 1)

	guard.busy[reader.ID] = false
	assert.NoError(t, svc.RemoveReader(ctx, reader.ID))
}

func TestRepositoryRejectsDuplicateID(t *testing.T) {
	repo := membership.NewRepository()
	reader := membership.Reader{ID: uuid.New(), Name: "x", Email: "x@example.com"}

	require.NoError(t, repo.Add(reader))
	assert.ErrorIs(t, repo.Add(reader), membership.ErrDuplicateReader)
}
