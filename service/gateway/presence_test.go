package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newSession(userID, connID string) *Session {
	return &Session{
		ConnID:      connID,
		UserID:      userID,
		Username:    "name-" + userID,
		Avatar:      "avatar-" + userID,
		ConnectedAt: time.Now(),
	}
}

func TestPresenceSessionTransitions(t *testing.T) {
	p := NewPresenceRegistry()

	assert.True(t, p.Add(newSession("u1", "c1")))
	// second device: no 0→1 transition
	assert.False(t, p.Add(newSession("u1", "c2")))
	assert.True(t, p.Online("u1"))
	assert.Equal(t, 2, p.Count())

	_, last := p.Remove("c1")
	assert.False(t, last)
	assert.True(t, p.Online("u1"))

	s, last := p.Remove("c2")
	assert.True(t, last)
	assert.Equal(t, "u1", s.UserID)
	assert.False(t, p.Online("u1"))
	assert.Equal(t, 0, p.Count())
}

func TestPresenceRemoveUnknownConn(t *testing.T) {
	p := NewPresenceRegistry()
	s, last := p.Remove("missing")
	assert.Nil(t, s)
	assert.False(t, last)
}

func TestPresenceDisplay(t *testing.T) {
	p := NewPresenceRegistry()
	p.Add(newSession("u1", "c1"))

	username, avatar, ok := p.Display("u1")
	assert.True(t, ok)
	assert.Equal(t, "name-u1", username)
	assert.Equal(t, "avatar-u1", avatar)

	_, _, ok = p.Display("u2")
	assert.False(t, ok)
}

func TestPresenceConnsOf(t *testing.T) {
	p := NewPresenceRegistry()
	p.Add(newSession("u1", "c1"))
	p.Add(newSession("u1", "c2"))
	p.Add(newSession("u2", "c3"))

	assert.ElementsMatch(t, []string{"c1", "c2"}, p.ConnsOf("u1"))
	assert.Nil(t, p.ConnsOf("u9"))
}
