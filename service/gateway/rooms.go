package gateway

import "sync"

// RoomTracker is the derived view of who is subscribed where. It maps each
// room to its member users, each user entry to the connections backing it,
// and keeps a reverse index so a disconnect clears everything in one pass.
// Empty user sets and empty rooms are pruned.
type RoomTracker struct {
	mu      sync.RWMutex
	members map[RoomID]map[string]map[string]struct{} // room -> user -> conns
	byConn  map[string]map[RoomID]struct{}            // conn -> rooms
}

func NewRoomTracker() *RoomTracker {
	return &RoomTracker{
		members: make(map[RoomID]map[string]map[string]struct{}),
		byConn:  make(map[string]map[RoomID]struct{}),
	}
}

// Add joins a connection to a room and reports whether the user was newly
// added to the room (first connection of that user). Re-adding the same
// connection is idempotent.
func (t *RoomTracker) Add(room RoomID, userID, connID string) (userAdded bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	users := t.members[room]
	if users == nil {
		users = make(map[string]map[string]struct{})
		t.members[room] = users
	}
	conns := users[userID]
	if conns == nil {
		conns = make(map[string]struct{})
		users[userID] = conns
		userAdded = true
	}
	conns[connID] = struct{}{}

	rooms := t.byConn[connID]
	if rooms == nil {
		rooms = make(map[RoomID]struct{})
		t.byConn[connID] = rooms
	}
	rooms[room] = struct{}{}
	return userAdded
}

// Remove detaches a connection from a room. wasMember reports whether the
// connection was actually joined; userGone whether the user's last
// connection left the room. Removing an un-joined room is a no-op.
func (t *RoomTracker) Remove(room RoomID, userID, connID string) (wasMember, userGone bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeLocked(room, userID, connID)
}

func (t *RoomTracker) removeLocked(room RoomID, userID, connID string) (wasMember, userGone bool) {
	users := t.members[room]
	if users == nil {
		return false, false
	}
	conns := users[userID]
	if conns == nil {
		return false, false
	}
	if _, ok := conns[connID]; !ok {
		return false, false
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(users, userID)
		userGone = true
	}
	if len(users) == 0 {
		delete(t.members, room)
	}
	if rooms := t.byConn[connID]; rooms != nil {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(t.byConn, connID)
		}
	}
	return true, userGone
}

// Departure records one room a disconnecting connection was removed from.
type Departure struct {
	Room     RoomID
	UserGone bool
}

// DropConn removes a connection from every room it joined. The returned
// slice drives the per-room user_left broadcasts.
func (t *RoomTracker) DropConn(userID, connID string) []Departure {
	t.mu.Lock()
	defer t.mu.Unlock()

	rooms := t.byConn[connID]
	if len(rooms) == 0 {
		return nil
	}
	out := make([]Departure, 0, len(rooms))
	for room := range rooms {
		_, gone := t.removeLocked(room, userID, connID)
		out = append(out, Departure{Room: room, UserGone: gone})
	}
	return out
}

// Users snapshots the member user ids of a room.
func (t *RoomTracker) Users(room RoomID) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	users := t.members[room]
	if len(users) == 0 {
		return nil
	}
	out := make([]string, 0, len(users))
	for id := range users {
		out = append(out, id)
	}
	return out
}

// Conns snapshots every connection id joined to a room.
func (t *RoomTracker) Conns(room RoomID) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	users := t.members[room]
	if len(users) == 0 {
		return nil
	}
	var out []string
	for _, conns := range users {
		for id := range conns {
			out = append(out, id)
		}
	}
	return out
}

func (t *RoomTracker) IsUserIn(room RoomID, userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	users := t.members[room]
	if users == nil {
		return false
	}
	_, ok := users[userID]
	return ok
}

// RoomsOf snapshots the rooms a connection is joined to.
func (t *RoomTracker) RoomsOf(connID string) []RoomID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rooms := t.byConn[connID]
	if len(rooms) == 0 {
		return nil
	}
	out := make([]RoomID, 0, len(rooms))
	for r := range rooms {
		out = append(out, r)
	}
	return out
}

// RoomCount is exposed for tests and stats.
func (t *RoomTracker) RoomCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.members)
}
