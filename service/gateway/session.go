package gateway

import "time"

// Session is one authenticated connection. Display fields are snapshotted at
// connect time; the user id is stable across reconnects while the connection
// id is fresh per connection. A user may hold several live Sessions at once
// (multi-device), each with its own Client.
type Session struct {
	ConnID      string
	UserID      string
	Username    string
	Avatar      string
	ConnectedAt time.Time

	client *Client // owning Client; PresenceRegistry refs are non-owning
}
