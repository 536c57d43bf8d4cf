package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	ChannelID string `json:"channelId"`
	Limit     int    `json:"limit"`
}

func TestMapDecodesByJSONTag(t *testing.T) {
	p, err := Map[samplePayload](map[string]any{"channelId": "10", "limit": 5})
	require.NoError(t, err)
	assert.Equal(t, "10", p.ChannelID)
	assert.Equal(t, 5, p.Limit)
}

// JSON numbers arrive as float64; weak typing converts them.
func TestMapWeakTyping(t *testing.T) {
	p, err := Map[samplePayload](map[string]any{"channelId": 10, "limit": "5"})
	require.NoError(t, err)
	assert.Equal(t, "10", p.ChannelID)
	assert.Equal(t, 5, p.Limit)
}

func TestMapStrictTypingRejects(t *testing.T) {
	_, err := Map[samplePayload](map[string]any{"limit": "5"}, Options{WeaklyTypedInput: false})
	assert.Error(t, err)
}

func TestMapNilInput(t *testing.T) {
	_, err := Map[samplePayload](nil)
	assert.Error(t, err)
}

func TestMapIgnoresUnknownFields(t *testing.T) {
	p, err := Map[samplePayload](map[string]any{"channelId": "10", "extra": true})
	require.NoError(t, err)
	assert.Equal(t, "10", p.ChannelID)
}
