package kafka

import (
	"encoding/json"
	"fmt"
	"github.com/ariefcatur/go-bookstore-api/internal/bookstore"
	"github.com/segmentio/kafka-go"
	"strconv"
)

const (
	HeaderEventType    = "x-event-type"
	HeaderEventVersion = "x-event-version"
)

func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// EnvelopeHeaders are the routing headers set on every change event.
func EnvelopeHeaders(env bookstore.Envelope) []kafka.Header {
	return []kafka.Header{
		{Key: HeaderEventType, Value: []byte(env.EventType)},
		{Key: HeaderEventVersion, Value: []byte(strconv.Itoa(env.EventVersion))},
	}
}

// UnwrapPayload decodes the payload of an envelope.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
