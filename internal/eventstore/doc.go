// Package eventstore records the append-only lineage log described in the
// core's persistence contract: every speciation, milestone, extinction and
// adaptation event a species undergoes, keyed by lineage code.
//
// This is a log, not a source of truth for current state — the species,
// habitat and genus tables are read-write directly by the engine; the
// lineage log exists so a turn report and downstream tooling can answer
// "what happened to this lineage and when" without replaying state.
//
// # Core Types
//
//   - LineageEvent: immutable fact about a lineage (speciation, milestone, extinction, adaptation)
//   - LineageEventStore: interface for appending and querying the log
//   - PostgresLineageEventStore: production implementation using PostgreSQL
//   - MemoryLineageEventStore: in-process implementation used by engine tests
//
// # Usage
//
//	store := eventstore.NewPostgresLineageEventStore(pool)
//	store.Append(ctx, eventstore.LineageEvent{
//	    ID:          uuid.New().String(),
//	    LineageCode: "A1a2b",
//	    EventType:   eventstore.EventSpeciation,
//	    Turn:        42,
//	    Payload:     json.RawMessage(`{"offspring_count": 2}`),
//	    CreatedAt:   time.Now(),
//	})
package eventstore
