package eventstore

import (
	"encoding/json"
	"time"
)

// EventType discriminates the kind of lineage event, matching the four
// event_type values the persistence contract allows.
type EventType string

const (
	EventSpeciation EventType = "speciation"
	EventMilestone  EventType = "milestone"
	EventExtinction EventType = "extinction"
	EventAdaptation EventType = "adaptation"
)

// LineageEvent is an immutable fact recorded against a lineage code.
type LineageEvent struct {
	ID          string          `json:"id"`
	LineageCode string          `json:"lineage_code"`
	EventType   EventType       `json:"event_type"`
	Turn        int             `json:"turn"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
}
