package gateway

import "sync"

// PresenceRegistry tracks every live Session, indexed by connection id and by
// user id. All mutation goes through Add/Remove; nothing else touches the
// maps. State is process-local only and rebuilt from live reconnections.
type PresenceRegistry struct {
	mu     sync.RWMutex
	byConn map[string]*Session
	byUser map[string]map[string]*Session // user -> conn -> session
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		byConn: make(map[string]*Session),
		byUser: make(map[string]map[string]*Session),
	}
}

// Add registers a session and reports whether this is the user's first live
// connection (0→1 transition).
func (p *PresenceRegistry) Add(s *Session) (first bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.byConn[s.ConnID] = s
	mm := p.byUser[s.UserID]
	if mm == nil {
		mm = make(map[string]*Session)
		p.byUser[s.UserID] = mm
	}
	first = len(mm) == 0
	mm[s.ConnID] = s
	return first
}

// Remove drops a session by connection id and reports whether the user has
// no connections left (1→0 transition). Unknown conn ids are a no-op.
func (p *PresenceRegistry) Remove(connID string) (s *Session, last bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.byConn[connID]
	if !ok {
		return nil, false
	}
	delete(p.byConn, connID)
	if mm := p.byUser[s.UserID]; mm != nil {
		delete(mm, connID)
		if len(mm) == 0 {
			delete(p.byUser, s.UserID)
			last = true
		}
	}
	return s, last
}

func (p *PresenceRegistry) GetByConn(connID string) *Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.byConn[connID]
}

func (p *PresenceRegistry) Online(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byUser[userID]) > 0
}

// Display returns snapshotted display fields from any live session of the
// user. Sessions of one user agree on these within their lifetime.
func (p *PresenceRegistry) Display(userID string) (username, avatar string, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, s := range p.byUser[userID] {
		return s.Username, s.Avatar, true
	}
	return "", "", false
}

// ConnsOf lists the user's live connection ids.
func (p *PresenceRegistry) ConnsOf(userID string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	mm := p.byUser[userID]
	if len(mm) == 0 {
		return nil
	}
	out := make([]string, 0, len(mm))
	for id := range mm {
		out = append(out, id)
	}
	return out
}

func (p *PresenceRegistry) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byConn)
}
