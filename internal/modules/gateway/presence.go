package gateway

import "sync"

// Presence maps an owner user id to the connection that should receive
// pushes. It is process-wide, mutex-guarded, and rebuilt from scratch on
// restart; nothing here is persisted.
//
// Last writer wins: when a user identifies from a second connection the
// newer connection replaces the older one, and only the most recent
// connection receives pushes. A missing entry is not an error; the
// owner picks the event up by polling instead.
type Presence struct {
	mu       sync.RWMutex
	userConn map[string]string
	connUser map[string]string
}

func NewPresence() *Presence {
	return &Presence{
		userConn: make(map[string]string),
		connUser: make(map[string]string),
	}
}

// Identify binds a connection to a user, displacing any prior binding
// for either side.
func (p *Presence) Identify(userID, connID string) {
	if userID == "" || connID == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if oldConn, ok := p.userConn[userID]; ok {
		delete(p.connUser, oldConn)
	}
	if oldUser, ok := p.connUser[connID]; ok {
		delete(p.userConn, oldUser)
	}
	p.userConn[userID] = connID
	p.connUser[connID] = userID
}

// Disconnect clears the binding for connID. A stale connection that was
// already displaced by a newer identify is a no-op: it must not clobber
// the newer binding.
func (p *Presence) Disconnect(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID, ok := p.connUser[connID]
	if !ok {
		return
	}
	delete(p.connUser, connID)
	if p.userConn[userID] == connID {
		delete(p.userConn, userID)
	}
}

// ConnFor returns the current connection for a user, if any.
func (p *Presence) ConnFor(userID string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	connID, ok := p.userConn[userID]
	return connID, ok
}

// Count returns the number of identified connections.
func (p *Presence) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.userConn)
}
