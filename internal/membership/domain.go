package membership

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrReaderNotFound  = errors.New("reader not found")
	ErrDuplicateReader = errors.New("reader with this ID already exists")
	ErrReaderHasLoans  = errors.New("reader has active loans")
)

// Reader represents a registered library reader.
type Reader struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ReaderRegisteredEvent is published when a new reader registers.
type ReaderRegisteredEvent struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// ReaderRemovedEvent is published when a reader is removed.
type ReaderRemovedEvent struct {
	ID uuid.UUID `json:"id"`
}
