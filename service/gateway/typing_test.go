package gateway

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expireRecorder struct {
	mu    sync.Mutex
	fired []string // channel:user
}

func (r *expireRecorder) record(channelID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, channelID+":"+userID)
}

func (r *expireRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fired...)
}

func TestTypingStartStop(t *testing.T) {
	rec := &expireRecorder{}
	tr := NewTypingTracker(time.Minute, rec.record)
	defer tr.Close()

	tr.Start("10", "u1")
	assert.True(t, tr.IsTyping("10", "u1"))

	assert.True(t, tr.Stop("10", "u1"))
	assert.False(t, tr.IsTyping("10", "u1"))
	// second stop is a no-op
	assert.False(t, tr.Stop("10", "u1"))
	assert.Empty(t, rec.snapshot())
}

// Entries expire on the server-owned timer even without a stop event.
func TestTypingExpires(t *testing.T) {
	rec := &expireRecorder{}
	tr := NewTypingTracker(50*time.Millisecond, rec.record)
	defer tr.Close()

	tr.Start("10", "u1")
	require.Eventually(t, func() bool {
		return !tr.IsTyping("10", "u1")
	}, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"10:u1"}, rec.snapshot())
}

// Repeat keystrokes push the deadline out instead of stacking timers.
func TestTypingRestartResetsTimer(t *testing.T) {
	rec := &expireRecorder{}
	tr := NewTypingTracker(80*time.Millisecond, rec.record)
	defer tr.Close()

	tr.Start("10", "u1")
	time.Sleep(50 * time.Millisecond)
	tr.Start("10", "u1")
	time.Sleep(50 * time.Millisecond)
	// 100ms after the first start, but only 50ms after the reset
	assert.True(t, tr.IsTyping("10", "u1"))

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)
}

// Disconnect cleanup clears entries without firing the expiry broadcast.
func TestTypingClearUserIsSilent(t *testing.T) {
	rec := &expireRecorder{}
	tr := NewTypingTracker(50*time.Millisecond, rec.record)
	defer tr.Close()

	tr.Start("10", "u1")
	tr.Start("11", "u1")
	tr.ClearUser("u1", []string{"10", "11"})

	assert.False(t, tr.IsTyping("10", "u1"))
	assert.False(t, tr.IsTyping("11", "u1"))

	time.Sleep(120 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestTypingCloseStopsTimers(t *testing.T) {
	rec := &expireRecorder{}
	tr := NewTypingTracker(30*time.Millisecond, rec.record)
	tr.Start("10", "u1")
	tr.Close()

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
	// Start after Close is ignored
	tr.Start("10", "u2")
	assert.False(t, tr.IsTyping("10", "u2"))
}
