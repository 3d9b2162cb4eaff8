package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/plexbot/pkg/llm"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnRecorded is emitted after a settled turn is recorded.
	EventTypeTurnRecorded = "plexbot.turn.recorded"
)

// TurnRecordedEvent is a transport-neutral event payload for one settled turn.
type TurnRecordedEvent struct {
	SchemaVersion  int         `json:"schema_version"`
	EventType      string      `json:"event_type"`
	EventID        string      `json:"event_id"`
	EmittedAt      time.Time   `json:"emitted_at"`
	ConversationID string      `json:"conversation_id"`
	Request        RequestMeta `json:"request"`
	DAG            DAGMeta     `json:"dag"`

	Question string   `json:"question"`
	Reply    llm.Turn `json:"reply"`
}

// RequestMeta captures the completion call lifecycle.
type RequestMeta struct {
	Model        string    `json:"model,omitempty"`
	MessageCount int       `json:"message_count"`
	StartedAt    time.Time `json:"started_at"`
	DurationMs   int64     `json:"duration_ms"`
	Failed       bool      `json:"failed"`
}

// DAGMeta captures where the turn landed in the transcript store.
// It is empty when no store is configured.
type DAGMeta struct {
	RootHash      string   `json:"root_hash,omitempty"`
	HeadHash      string   `json:"head_hash,omitempty"`
	NewNodeHashes []string `json:"new_node_hashes,omitempty"`
}

// NewTurnRecordedEvent stamps a new event with a fresh id and the emit time.
func NewTurnRecordedEvent(conversationID string, now time.Time) *TurnRecordedEvent {
	return &TurnRecordedEvent{
		SchemaVersion:  SchemaVersionV1,
		EventType:      EventTypeTurnRecorded,
		EventID:        uuid.NewString(),
		EmittedAt:      now.UTC(),
		ConversationID: conversationID,
	}
}
