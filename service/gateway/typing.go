package gateway

import (
	"sync"
	"time"
)

// TypingTracker holds the per-channel typing sets with a server-owned expiry
// timer per (channel, user). A client that drops mid-typing never sends a
// stop event, so expiry must not depend on client cooperation.
type TypingTracker struct {
	mu       sync.Mutex
	ttl      time.Duration
	entries  map[string]map[string]*time.Timer // channel -> user -> timer
	onExpire func(channelID, userID string)
	closed   bool
}

func NewTypingTracker(ttl time.Duration, onExpire func(channelID, userID string)) *TypingTracker {
	if ttl <= 0 {
		ttl = 6 * time.Second
	}
	return &TypingTracker{
		ttl:      ttl,
		entries:  make(map[string]map[string]*time.Timer),
		onExpire: onExpire,
	}
}

// Start marks the user as typing in the channel, resetting the expiry timer
// on repeat keystrokes.
func (t *TypingTracker) Start(channelID, userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	users := t.entries[channelID]
	if users == nil {
		users = make(map[string]*time.Timer)
		t.entries[channelID] = users
	}
	if timer, ok := users[userID]; ok {
		timer.Reset(t.ttl)
		return
	}
	users[userID] = time.AfterFunc(t.ttl, func() {
		t.expire(channelID, userID)
	})
}

// Stop clears the entry and reports whether the user was actually typing,
// so a redundant stop does not trigger a broadcast.
func (t *TypingTracker) Stop(channelID, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeLocked(channelID, userID)
}

// ClearUser silently drops the user's typing entries for the given channels.
// Used on disconnect, where user_left already tells the room everything.
func (t *TypingTracker) ClearUser(userID string, channelIDs []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range channelIDs {
		t.removeLocked(ch, userID)
	}
}

func (t *TypingTracker) IsTyping(channelID, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	users := t.entries[channelID]
	if users == nil {
		return false
	}
	_, ok := users[userID]
	return ok
}

func (t *TypingTracker) removeLocked(channelID, userID string) bool {
	users := t.entries[channelID]
	if users == nil {
		return false
	}
	timer, ok := users[userID]
	if !ok {
		return false
	}
	timer.Stop()
	delete(users, userID)
	if len(users) == 0 {
		delete(t.entries, channelID)
	}
	return true
}

func (t *TypingTracker) expire(channelID, userID string) {
	t.mu.Lock()
	removed := t.removeLocked(channelID, userID)
	cb := t.onExpire
	t.mu.Unlock()

	// Callback runs outside the lock; it broadcasts user_stop_typing.
	if removed && cb != nil {
		cb(channelID, userID)
	}
}

// Close stops every timer; no expiry callbacks fire after Close.
func (t *TypingTracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	for ch, users := range t.entries {
		for u, timer := range users {
			timer.Stop()
			delete(users, u)
		}
		delete(t.entries, ch)
	}
}
