package gateway

import "fmt"

// RoomKind separates the three broadcast namespaces. Text-channel, voice and
// guild rooms must never collide, so room identity is a tagged value and the
// wire name is derived in exactly one place.
type RoomKind int

const (
	RoomChannel RoomKind = iota
	RoomVoice
	RoomGuild
)

type RoomID struct {
	Kind RoomKind
	ID   string
}

func ChannelRoom(channelID string) RoomID { return RoomID{Kind: RoomChannel, ID: channelID} }
func VoiceRoom(channelID string) RoomID   { return RoomID{Kind: RoomVoice, ID: channelID} }
func GuildRoom(guildID string) RoomID     { return RoomID{Kind: RoomGuild, ID: guildID} }

// Name is the transport-level room name. This is the only translation from
// typed room ids to strings.
func (r RoomID) Name() string {
	switch r.Kind {
	case RoomChannel:
		return "channel_" + r.ID
	case RoomVoice:
		return "voice_" + r.ID
	case RoomGuild:
		return "guild_" + r.ID
	default:
		return fmt.Sprintf("room_%d_%s", r.Kind, r.ID)
	}
}
