package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrame(t *testing.T) {
	f, err := ParseFrame([]byte(`{"event":"join_channel","data":{"channelId":"10"}}`))
	require.NoError(t, err)
	assert.Equal(t, EvtJoinChannel, f.Event)

	ch, err := f.ChannelID()
	require.NoError(t, err)
	assert.Equal(t, "10", ch)
}

// Older clients send typing events with a bare channel id as payload.
func TestFrameChannelIDBareString(t *testing.T) {
	f, err := ParseFrame([]byte(`{"event":"typing_start","data":"10"}`))
	require.NoError(t, err)

	ch, err := f.ChannelID()
	require.NoError(t, err)
	assert.Equal(t, "10", ch)
}

// Numeric ids decode too; the weak decoder stringifies them.
func TestFrameChannelIDNumeric(t *testing.T) {
	f, err := ParseFrame([]byte(`{"event":"join_channel","data":{"channelId":10}}`))
	require.NoError(t, err)

	ch, err := f.ChannelID()
	require.NoError(t, err)
	assert.Equal(t, "10", ch)
}

func TestParseFrameRejects(t *testing.T) {
	cases := map[string]string{
		"not json":      `{"event":`,
		"missing event": `{"data":{"channelId":"10"}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFrame([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestFrameChannelIDRejects(t *testing.T) {
	cases := map[string]string{
		"no data":      `{"event":"join_channel"}`,
		"empty string": `{"event":"typing_start","data":""}`,
		"no channelId": `{"event":"join_channel","data":{"x":1}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := ParseFrame([]byte(raw))
			require.NoError(t, err)
			_, err = f.ChannelID()
			assert.Error(t, err)
		})
	}
}

func TestEncodeFrame(t *testing.T) {
	raw := encodeFrame(EvtUserJoined, userJoinedPayload{UserID: "u1", Username: "ann", Avatar: "a.png"})
	require.NotNil(t, raw)

	var f Frame
	require.NoError(t, json.Unmarshal(raw, &f))
	assert.Equal(t, EvtUserJoined, f.Event)

	var p userJoinedPayload
	require.NoError(t, json.Unmarshal(f.Data, &p))
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "ann", p.Username)
}
