package reminder

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu    sync.Mutex
	fired []string
}

func (r *recorder) NotifyDelay(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, sessionID)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fired)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestArmFiresOnce(t *testing.T) {
	rec := &recorder{}
	s := NewScheduler(rec)
	defer s.Stop()

	s.Arm("chat1", 10*time.Millisecond)
	waitFor(t, func() bool { return rec.count() == 1 })
	assert.False(t, s.Pending("chat1"))

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestCancelPreventsFire(t *testing.T) {
	rec := &recorder{}
	s := NewScheduler(rec)
	defer s.Stop()

	s.Arm("chat1", 20*time.Millisecond)
	assert.True(t, s.Pending("chat1"))
	s.Cancel("chat1")
	assert.False(t, s.Pending("chat1"))

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, rec.count())
}

func TestArmReplacesPendingReminder(t *testing.T) {
	rec := &recorder{}
	s := NewScheduler(rec)
	defer s.Stop()

	s.Arm("chat1", 15*time.Millisecond)
	s.Arm("chat1", 15*time.Millisecond)
	waitFor(t, func() bool { return rec.count() == 1 })

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 1, rec.count(), "replacement must not double-fire")
}

func TestCancelAfterFireIsNoOp(t *testing.T) {
	rec := &recorder{}
	s := NewScheduler(rec)
	defer s.Stop()

	s.Arm("chat1", 5*time.Millisecond)
	waitFor(t, func() bool { return rec.count() == 1 })
	s.Cancel("chat1") // already fired, nothing to do
	assert.Equal(t, 1, rec.count())
}

func TestSessionsAreIndependent(t *testing.T) {
	rec := &recorder{}
	s := NewScheduler(rec)
	defer s.Stop()

	s.Arm("chat1", 10*time.Millisecond)
	s.Arm("chat2", 10*time.Millisecond)
	s.Cancel("chat1")

	waitFor(t, func() bool { return rec.count() == 1 })
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"chat2"}, rec.fired)
}
