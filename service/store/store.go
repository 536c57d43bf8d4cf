package store

import "context"

// ChannelKind mirrors the channels.type column.
type ChannelKind string

const (
	KindText  ChannelKind = "text"
	KindVoice ChannelKind = "voice"
)

// User is the minimal identity the gateway needs: display fields are
// snapshotted into the Session at connect time.
type User struct {
	ID          string
	Username    string
	Avatar      string
	Deactivated bool
}

// Channel describes one channel a user may subscribe to.
type Channel struct {
	ID      string
	GuildID string
	Kind    ChannelKind
}

// UserStore resolves token subjects to identities.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*User, error)
}

// MembershipResolver answers which rooms a user may subscribe to, derived
// from active guild-membership rows. ResolveChannel must agree with
// ChannelsForUser: any channel returned by the bulk call resolves to
// allowed=true and vice versa.
type MembershipResolver interface {
	ChannelsForUser(ctx context.Context, userID string) ([]Channel, error)
	GuildsForUser(ctx context.Context, userID string) ([]string, error)
	ResolveChannel(ctx context.Context, userID, channelID string) (ch Channel, allowed bool, err error)
}
