package redisx

import "time"

const (
	// Conversation context per chat: session:{chat_id} -> json Session
	KeySession = "session:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	// Sessions outlive a lunch break but not a forgotten cart from last month.
	TTLSession = 7 * 24 * time.Hour
	TTLDedup   = 48 * time.Hour
)
