// Package redisx holds the redis client plus the session store built on it.
package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pizzadrive/orderbot/internal/flow"
)

func New(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	_ = r.WithTimeout(2 * time.Second)
	return r
}

// SessionStore persists flow sessions as JSON under session:{chat_id}.
type SessionStore struct {
	RDB *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{RDB: rdb}
}

// Get returns (nil, nil) for an unknown session id. A value that fails to
// decode is reported as an error: the caller drops the event rather than
// guessing at the state.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*flow.Session, error) {
	raw, err := s.RDB.Get(ctx, fmt.Sprintf(KeySession, sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	var sess flow.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Set(ctx context.Context, sessionID string, sess *flow.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.RDB.Set(ctx, fmt.Sprintf(KeySession, sessionID), b, TTLSession).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.RDB.Del(ctx, fmt.Sprintf(KeySession, sessionID)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

// Deduper marks event ids as seen, for consumer-side dedup.
type Deduper struct {
	RDB     *redis.Client
	Service string
}

// Seen marks the id and reports whether it was already marked.
func (d *Deduper) Seen(ctx context.Context, eventID string) (bool, error) {
	key := fmt.Sprintf(KeyDedup, d.Service, eventID)
	ok, err := d.RDB.SetNX(ctx, key, "1", TTLDedup).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}
