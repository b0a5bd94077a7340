package httpx

import (
	"github.com/ariefcatur/go-bookstore-api/internal/bookstore"
	kafkax "github.com/ariefcatur/go-bookstore-api/internal/kafka"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"net/http"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type emitter struct {
	pub      Publisher
	producer string
}

// emit publishes a change event for a committed write. A nil publisher
// disables events.
func (e *emitter) emit(r *http.Request, resource string, action bookstore.Action, id primitive.ObjectID, doc any) {
	if e == nil || e.pub == nil {
		return
	}
	resourceID := id.Hex()
	p := bookstore.ChangePayload{Resource: resource, Action: action, ResourceID: resourceID}
	if doc != nil {
		p.Document = kafkax.MustMarshal(doc)
	}
	env := bookstore.Envelope{
		EventID:       uuid.NewString(),
		EventType:     bookstore.EventType(resource, action),
		EventVersion:  bookstore.EventVersion,
		OccurredAt:    bookstore.Now(),
		Producer:      e.producer,
		TraceID:       middleware.GetReqID(r.Context()),
		CorrelationID: resourceID,
		Payload:       kafkax.MustMarshal(p),
	}
	if who, ok := IdentityFrom(r.Context()); ok {
		env.Actor = who.ID
	}
	e.pub.Publish(bookstore.PartitionKey(resourceID), kafkax.MustMarshal(env), kafkax.EnvelopeHeaders(env)...)
}
