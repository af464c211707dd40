// Package auth owns the bearer credential used for every commerce call.
package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Token is an opaque bearer value with its expiry instant. It is replaced
// wholesale on refresh, never mutated in place.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

func (t Token) ValidAt(now time.Time) bool {
	return t.Value != "" && now.Before(t.ExpiresAt)
}

// RefreshFunc calls the external authorization endpoint and returns a fresh
// token. It must not be called by anyone but the Guard.
type RefreshFunc func(ctx context.Context) (Token, error)

// Guard hands out a valid credential, refreshing on demand. Concurrent
// callers with an expired credential share a single in-flight refresh.
type Guard struct {
	mu      sync.Mutex
	tok     Token
	refresh RefreshFunc
	group   singleflight.Group
	now     func() time.Time
}

func NewGuard(refresh RefreshFunc) *Guard {
	return &Guard{refresh: refresh, now: time.Now}
}

// Ensure returns a credential valid at the moment of the call. A refresh
// failure propagates to the caller; the stale value is never handed out.
func (g *Guard) Ensure(ctx context.Context) (string, error) {
	g.mu.Lock()
	tok := g.tok
	g.mu.Unlock()
	if tok.ValidAt(g.now()) {
		return tok.Value, nil
	}

	v, err, _ := g.group.Do("refresh", func() (any, error) {
		// A waiter that queued behind a finished refresh sees the new token here.
		g.mu.Lock()
		cur := g.tok
		g.mu.Unlock()
		if cur.ValidAt(g.now()) {
			return cur.Value, nil
		}
		fresh, err := g.refresh(ctx)
		if err != nil {
			return "", err
		}
		g.mu.Lock()
		g.tok = fresh
		g.mu.Unlock()
		return fresh.Value, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
