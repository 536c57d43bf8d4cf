package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomNames(t *testing.T) {
	assert.Equal(t, "channel_10", ChannelRoom("10").Name())
	assert.Equal(t, "voice_10", VoiceRoom("10").Name())
	assert.Equal(t, "guild_7", GuildRoom("7").Name())
}

// The three namespaces must never collide, even for the same id.
func TestRoomNamespacesDisjoint(t *testing.T) {
	names := map[string]bool{}
	for _, r := range []RoomID{ChannelRoom("42"), VoiceRoom("42"), GuildRoom("42")} {
		names[r.Name()] = true
	}
	assert.Len(t, names, 3)

	assert.NotEqual(t, ChannelRoom("42"), VoiceRoom("42"))
	assert.NotEqual(t, ChannelRoom("42"), GuildRoom("42"))
}

// Typed room ids are comparable, so they key maps directly.
func TestRoomIDAsMapKey(t *testing.T) {
	m := map[RoomID]int{}
	m[ChannelRoom("1")] = 1
	m[ChannelRoom("1")] = 2
	m[VoiceRoom("1")] = 3
	assert.Len(t, m, 2)
	assert.Equal(t, 2, m[ChannelRoom("1")])
}
