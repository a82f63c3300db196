package eventstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LineageEventStore defines methods for appending and querying lineage events.
// It is the concrete form of the persistence contract's `log_event` and
// associated lookups; the engine depends only on this interface.
type LineageEventStore interface {
	Append(ctx context.Context, event LineageEvent) error
	ByLineage(ctx context.Context, lineageCode string) ([]LineageEvent, error)
	ByType(ctx context.Context, eventType EventType, fromTurn, toTurn int) ([]LineageEvent, error)
	ByTurn(ctx context.Context, turn int) ([]LineageEvent, error)
}

// PostgresLineageEventStore implements LineageEventStore using PostgreSQL.
type PostgresLineageEventStore struct {
	pool *pgxpool.Pool
}

// NewPostgresLineageEventStore creates a new PostgresLineageEventStore.
func NewPostgresLineageEventStore(pool *pgxpool.Pool) *PostgresLineageEventStore {
	return &PostgresLineageEventStore{pool: pool}
}

func (s *PostgresLineageEventStore) Append(ctx context.Context, event LineageEvent) error {
	query := `
		INSERT INTO lineage_events (id, lineage_code, event_type, turn, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.pool.Exec(ctx, query,
		event.ID,
		event.LineageCode,
		event.EventType,
		event.Turn,
		event.Payload,
		event.CreatedAt,
	)
	return err
}

func (s *PostgresLineageEventStore) ByLineage(ctx context.Context, lineageCode string) ([]LineageEvent, error) {
	query := `
		SELECT id, lineage_code, event_type, turn, payload, created_at
		FROM lineage_events
		WHERE lineage_code = $1
		ORDER BY turn ASC
	`
	rows, err := s.pool.Query(ctx, query, lineageCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLineageEvents(rows)
}

func (s *PostgresLineageEventStore) ByType(ctx context.Context, eventType EventType, fromTurn, toTurn int) ([]LineageEvent, error) {
	query := `
		SELECT id, lineage_code, event_type, turn, payload, created_at
		FROM lineage_events
		WHERE event_type = $1 AND turn >= $2 AND turn <= $3
		ORDER BY turn ASC
	`
	rows, err := s.pool.Query(ctx, query, eventType, fromTurn, toTurn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLineageEvents(rows)
}

func (s *PostgresLineageEventStore) ByTurn(ctx context.Context, turn int) ([]LineageEvent, error) {
	query := `
		SELECT id, lineage_code, event_type, turn, payload, created_at
		FROM lineage_events
		WHERE turn = $1
		ORDER BY lineage_code ASC
	`
	rows, err := s.pool.Query(ctx, query, turn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLineageEvents(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanLineageEvents(rows pgxRows) ([]LineageEvent, error) {
	var events []LineageEvent
	for rows.Next() {
		var e LineageEvent
		if err := rows.Scan(&e.ID, &e.LineageCode, &e.EventType, &e.Turn, &e.Payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// MemoryLineageEventStore is an in-process LineageEventStore used by the
// engine's own tests and by CLI runs with no database configured.
type MemoryLineageEventStore struct {
	mu     sync.RWMutex
	events []LineageEvent
}

func NewMemoryLineageEventStore() *MemoryLineageEventStore {
	return &MemoryLineageEventStore{}
}

func (s *MemoryLineageEventStore) Append(_ context.Context, event LineageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryLineageEventStore) ByLineage(_ context.Context, lineageCode string) ([]LineageEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []LineageEvent
	for _, e := range s.events {
		if e.LineageCode == lineageCode {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryLineageEventStore) ByType(_ context.Context, eventType EventType, fromTurn, toTurn int) ([]LineageEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []LineageEvent
	for _, e := range s.events {
		if e.EventType == eventType && e.Turn >= fromTurn && e.Turn <= toTurn {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Turn < out[j].Turn })
	return out, nil
}

func (s *MemoryLineageEventStore) ByTurn(_ context.Context, turn int) ([]LineageEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []LineageEvent
	for _, e := range s.events {
		if e.Turn == turn {
			out = append(out, e)
		}
	}
	return out, nil
}
