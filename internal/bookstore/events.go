package bookstore

import (
	"encoding/json"
	"time"
)

const (
	ResourceUser   = "user"
	ResourceBook   = "book"
	ResourceOrder  = "order"
	ResourceReview = "review"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

const EventVersion = 1

// EventType is "<resource>.<action>", e.g. "book.created".
func EventType(resource string, a Action) string { return resource + "." + string(a) }

type Envelope struct {
	EventID       string          `json:"event_id"` // uuid
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g. "bookstore-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // resource id
	Actor         string          `json:"actor,omitempty"`          // session identity id
	Payload       json.RawMessage `json:"payload"`
}

// ChangePayload is the payload of every resource change event. Document is
// the stored document after the change; it is omitted on delete.
type ChangePayload struct {
	Resource   string          `json:"resource"`
	Action     Action          `json:"action"`
	ResourceID string          `json:"resource_id"`
	Document   json.RawMessage `json:"document,omitempty"`
}
