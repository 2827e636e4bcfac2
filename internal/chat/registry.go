// Package chat tracks which player identities are currently connected and
// enforces that each identity holds at most one live connection.
package chat

import (
	"errors"
	"log"
	"sync"
)

// ErrDuplicateIdentity is returned when a verified identity is already
// registered with a live connection.
var ErrDuplicateIdentity = errors.New("player id already registered")

// Conn is the transport handle the core holds for a registered player. The
// transport layer owns the connection; the core only sends outbound frames,
// closes with a code/reason pair, and queries liveness.
type Conn interface {
	Send(payload []byte) error
	Close(code int, reason string) error
	IsAlive() bool
}

// Registry maps each active player identity to its live connection. All
// methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	players map[string]Conn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{players: make(map[string]Conn)}
}

// TryRegister inserts the identity if it is not already present. The check
// and insert happen as one step under the registry lock, so two admissions
// racing on the same identity cannot both succeed. The existing entry is
// never overwritten.
func (r *Registry) TryRegister(playerID string, conn Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.players[playerID]; exists {
		return ErrDuplicateIdentity
	}
	r.players[playerID] = conn
	return nil
}

// Unregister removes the identity. Removing an absent identity is a no-op.
func (r *Registry) Unregister(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.players, playerID)
}

// ForEach calls fn for every registered player. The iteration works on a
// snapshot, so fn may send frames or close connections without holding the
// registry lock.
func (r *Registry) ForEach(fn func(playerID string, conn Conn)) {
	r.mu.RLock()
	snapshot := make(map[string]Conn, len(r.players))
	for id, conn := range r.players {
		snapshot[id] = conn
	}
	r.mu.RUnlock()

	for id, conn := range snapshot {
		fn(id, conn)
	}
}

// SweepDead removes entries whose connection reports a closed transport.
// Invoked opportunistically after each admission attempt so entries left
// behind by ungracefully closed sockets do not accumulate. Returns the
// number of entries removed.
func (r *Registry) SweepDead() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, conn := range r.players {
		if !conn.IsAlive() {
			delete(r.players, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("Swept %d dead chat connection(s). Active players: %d", removed, len(r.players))
	}
	return removed
}

// Len returns the number of registered players.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
