// Package audit turns resource change events into an append-only audit
// trail.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ariefcatur/go-bookstore-api/internal/bookstore"
	kafkax "github.com/ariefcatur/go-bookstore-api/internal/kafka"
	"github.com/ariefcatur/go-bookstore-api/internal/metrics"
	"github.com/ariefcatur/go-bookstore-api/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"time"
)

// Entry is one row of the audit trail.
type Entry struct {
	EventID    string
	EventType  string
	Resource   string
	ResourceID string
	Actor      string
	Producer   string
	TraceID    string
	OccurredAt time.Time
	Document   json.RawMessage
}

type Recorder interface {
	Record(ctx context.Context, e Entry) (inserted bool, err error)
}

type Service struct {
	Recorder    Recorder
	Redis       *redis.Client
	ServiceName string
	Log         *logrus.Logger
}

// HandleChange is installed as the consumer handler.
func (s *Service) HandleChange(ctx context.Context, m kafkago.Message) error {
	var env bookstore.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// Poison message: log and let the offset move on.
		metrics.EventAudited("failed")
		s.Log.WithError(err).WithField("offset", m.Offset).Warn("undecodable envelope, skipped")
		return nil
	}
	if _, err := uuid.Parse(env.EventID); err != nil {
		metrics.EventAudited("failed")
		s.Log.WithField("event_id", env.EventID).Warn("envelope without a valid event id, skipped")
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	seen, err := redisx.Exists(ctx, s.Redis, dkey)
	if err != nil {
		// redis hanya cache, postgres tetap menolak duplikat
		s.Log.WithError(err).WithField("event_id", env.EventID).Warn("dedup lookup failed")
	}
	if seen {
		metrics.EventAudited("duplicate")
		return nil
	}

	p, err := kafkax.UnwrapPayload[bookstore.ChangePayload](env.Payload)
	if err != nil {
		metrics.EventAudited("failed")
		s.Log.WithError(err).WithField("event_id", env.EventID).Warn("undecodable payload, skipped")
		return nil
	}

	inserted, err := s.Recorder.Record(ctx, Entry{
		EventID:    env.EventID,
		EventType:  env.EventType,
		Resource:   p.Resource,
		ResourceID: p.ResourceID,
		Actor:      env.Actor,
		Producer:   env.Producer,
		TraceID:    env.TraceID,
		OccurredAt: env.OccurredAt,
		Document:   p.Document,
	})
	if err != nil {
		metrics.EventAudited("failed")
		return err
	}
	if inserted {
		metrics.EventAudited("recorded")
	} else {
		metrics.EventAudited("duplicate")
	}
	if err := s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err(); err != nil {
		s.Log.WithError(err).WithField("event_id", env.EventID).Warn("dedup mark failed")
	}

	s.Log.WithFields(logrus.Fields{
		"event_id":    env.EventID,
		"event_type":  env.EventType,
		"resource_id": p.ResourceID,
		"inserted":    inserted,
	}).Debug("audited")
	return nil
}
