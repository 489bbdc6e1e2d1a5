package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrVersionConflict = errors.New("version conflict: version mismatch")
	ErrInvalidVersion  = errors.New("invalid version number")
	ErrNoEvents        = errors.New("no events to append")
)

var payloadCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// Event represents a domain event with full metadata.
type Event struct {
	ID            int64                  `json:"id"`
	AggregateID   string                 `json:"aggregate_id"`
	AggregateType string                 `json:"aggregate_type"`
	EventType     string                 `json:"event_type"`
	Payload       json.RawMessage        `json:"payload"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	Version       int                    `json:"version"`
	RecordedAt    time.Time              `json:"recorded_at"`
}

// MarshalPayload serializes an event payload for storage in the journal.
func MarshalPayload(payload interface{}) (json.RawMessage, error) {
	data, err := payloadCodec.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return data, nil
}

// UnmarshalPayload deserializes a stored event payload into target.
func UnmarshalPayload(event Event, target interface{}) error {
	if err := payloadCodec.Unmarshal(event.Payload, target); err != nil {
		return fmt.Errorf("unmarshal event payload: %w", err)
	}
	return nil
}

// Log is an in-memory, append-only journal of domain events with
// optimistic concurrency control per aggregate.
type Log struct {
	mu       sync.RWMutex
	events   []Event
	versions map[string]int
	nextID   int64
	tracer   trace.Tracer
}

// New creates an empty event journal.
func New() *Log {
	return &Log{
		versions: make(map[string]int),
		nextID:   1,
		tracer:   otel.Tracer("libralend/eventlog"),
	}
}

// Append atomically appends events for one aggregate, verifying the
// expected version against the journal's current version.
func (l *Log) Append(ctx context.Context, aggregateID, aggregateType string, expectedVersion int, events ...Event) error {
	_, span := l.tracer.Start(ctx, "eventlog.append",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID),
			attribute.String("aggregate.type", aggregateType),
			attribute.Int("expected.version", expectedVersion),
			attribute.Int("event.count", len(events)),
		),
	)
	defer span.End()

	if expectedVersion < 0 {
		return ErrInvalidVersion
	}
	if len(events) == 0 {
		return ErrNoEvents
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	currentVersion := l.versions[aggregateID]
	if currentVersion != expectedVersion {
		span.SetAttributes(
			attribute.Int("actual.version", currentVersion),
			attribute.Bool("conflict.detected", true),
		)
		return ErrVersionConflict
	}

	for i, event := range events {
		event.ID = l.nextID
		event.AggregateID = aggregateID
		event.AggregateType = aggregateType
		event.Version = expectedVersion + i + 1
		event.RecordedAt = time.Now().UTC()

		l.events = append(l.events, event)
		l.nextID++

		span.AddEvent("event.appended", trace.WithAttributes(
			attribute.Int64("event.id", event.ID),
			attribute.Int("event.version", event.Version),
			attribute.String("event.type", event.EventType),
		))
	}

	l.versions[aggregateID] = expectedVersion + len(events)

	span.SetAttributes(attribute.Bool("append.success", true))
	return nil
}

// Load retrieves all events for an aggregate with an optional version range.
// A toVersion of zero means no upper bound.
func (l *Log) Load(ctx context.Context, aggregateID string, fromVersion, toVersion int) []Event {
	_, span := l.tracer.Start(ctx, "eventlog.load",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID),
			attribute.Int("from.version", fromVersion),
			attribute.Int("to.version", toVersion),
		),
	)
	defer span.End()

	l.mu.RLock()
	defer l.mu.RUnlock()

	var events []Event
	for _, event := range l.events {
		if event.AggregateID != aggregateID || event.Version < fromVersion {
			continue
		}
		if toVersion > 0 && event.Version > toVersion {
			continue
		}
		events = append(events, event)
	}

	span.SetAttributes(attribute.Int("events.loaded", len(events)))
	return events
}

// CurrentVersion returns the latest version for an aggregate, zero if the
// aggregate has no events.
func (l *Log) CurrentVersion(ctx context.Context, aggregateID string) int {
	_, span := l.tracer.Start(ctx, "eventlog.current_version",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID),
		),
	)
	defer span.End()

	l.mu.RLock()
	defer l.mu.RUnlock()

	version := l.versions[aggregateID]
	span.SetAttributes(attribute.Int("current.version", version))
	return version
}

// Stream provides a cursor-based batch of events across all aggregates,
// ordered by journal ID.
func (l *Log) Stream(ctx context.Context, fromID int64, batchSize int) []Event {
	_, span := l.tracer.Start(ctx, "eventlog.stream",
		trace.WithAttributes(
			attribute.Int64("from.id", fromID),
			attribute.Int("batch.size", batchSize),
		),
	)
	defer span.End()

	l.mu.RLock()
	defer l.mu.RUnlock()

	var events []Event
	for _, event := range l.events {
		if event.ID <= fromID {
			continue
		}
		events = append(events, event)
		if batchSize > 0 && len(events) == batchSize {
			break
		}
	}

	span.SetAttributes(attribute.Int("events.streamed", len(events)))
	return events
}

// Len returns the total number of events in the journal.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
