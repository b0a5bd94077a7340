package redisx

import "time"

const (
	// Session values: sess:{session_id} -> gob-encoded session values
	KeySession = "sess:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLDedup = 48 * time.Hour
)
