package gateway

import (
	"encoding/json"

	"github.com/covechat/cove/tools/decode"
	"github.com/covechat/cove/tools/errs"
)

// Client → server events.
const (
	EvtJoinGuilds   = "join_guilds"
	EvtJoinChannel  = "join_channel"
	EvtLeaveChannel = "leave_channel"
	EvtTypingStart  = "typing_start"
	EvtTypingStop   = "typing_stop"
	EvtJoinVoice    = "join_voice"
	EvtLeaveVoice   = "leave_voice"
)

// Server → client events. The message/reaction/pin/status ones originate in
// the REST layer and pass through the emit helpers.
const (
	EvtUserJoined        = "user_joined"
	EvtUserLeft          = "user_left"
	EvtUserTyping        = "user_typing"
	EvtUserStopTyping    = "user_stop_typing"
	EvtChannelUsers      = "channel_users"
	EvtUserJoinedVoice   = "user_joined_voice"
	EvtUserLeftVoice     = "user_left_voice"
	EvtError             = "error"
	EvtNewMessage        = "new_message"
	EvtMessageEdited     = "message_edited"
	EvtMessageDeleted    = "message_deleted"
	EvtMessagePinned     = "message_pinned"
	EvtMessageUnpinned   = "message_unpinned"
	EvtReactionAdded     = "reaction_added"
	EvtReactionRemoved   = "reaction_removed"
	EvtUserStatusChanged = "user_status_changed"
)

// Frame is the wire envelope, both directions: {"event": ..., "data": ...}.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func ParseFrame(raw []byte) (*Frame, error) {
	f := &Frame{}
	if err := json.Unmarshal(raw, f); err != nil {
		return nil, errs.ErrBadPayload.WithDetail(err.Error())
	}
	if f.Event == "" {
		return nil, errs.ErrBadPayload.WithDetail("missing event")
	}
	return f, nil
}

// ChannelID extracts the channel id from a frame whose payload is either an
// object {"channelId": "..."} or a bare string (older clients send the id
// alone for typing events).
func (f *Frame) ChannelID() (string, error) {
	if len(f.Data) == 0 {
		return "", errs.ErrBadPayload.WithDetail("missing channelId")
	}

	var bare string
	if err := json.Unmarshal(f.Data, &bare); err == nil {
		if bare == "" {
			return "", errs.ErrBadPayload.WithDetail("empty channelId")
		}
		return bare, nil
	}

	var m map[string]any
	if err := json.Unmarshal(f.Data, &m); err != nil {
		return "", errs.ErrBadPayload.WithDetail(err.Error())
	}
	p, err := decode.Map[channelPayload](m)
	if err != nil || p.ChannelID == "" {
		return "", errs.ErrBadPayload.WithDetail("missing channelId")
	}
	return p.ChannelID, nil
}

type channelPayload struct {
	ChannelID string `json:"channelId"`
}

// RoomUser is one entry of a channel_users snapshot.
type RoomUser struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type userJoinedPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type userLeftPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type typingPayload struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	ChannelID string `json:"channelId"`
}

type stopTypingPayload struct {
	UserID    string `json:"userId"`
	ChannelID string `json:"channelId"`
}

type channelUsersPayload struct {
	ChannelID string     `json:"channelId"`
	Users     []RoomUser `json:"users"`
}

type voicePayload struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Avatar    string `json:"avatar"`
	ChannelID string `json:"channelId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// encodeFrame marshals an outbound frame. Payload structs above are all
// marshalable, so an error here is a programming bug; callers treat nil as
// "drop the send".
func encodeFrame(event string, data any) []byte {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil
		}
		raw = b
	}
	b, err := json.Marshal(Frame{Event: event, Data: raw})
	if err != nil {
		return nil
	}
	return b
}
