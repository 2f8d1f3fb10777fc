// Package registry is the process-wide room directory: it maps (role, code)
// pairs to the actor owning that room. Entries are leases, released by the
// owning actor on exit, so a lookup never returns a terminated actor for
// longer than its own shutdown takes.
package registry

import "sync"

// Role distinguishes the two actors a room code can own.
type Role string

const (
	RoleLobby Role = "lobby"
	RoleGame  Role = "game"
)

type key struct {
	role Role
	code string
}

// Registry is the only structure shared between room actors. All access is
// guarded by a single RWMutex; actors hold it only for map operations.
type Registry struct {
	mu      sync.RWMutex
	entries map[key]any
}

func New() *Registry {
	return &Registry{entries: make(map[key]any)}
}

// Register claims (role, code) for handle. It reports false when the key is
// already held, leaving the existing entry untouched.
func (r *Registry) Register(role Role, code string, handle any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{role: role, code: code}
	if _, exists := r.entries[k]; exists {
		return false
	}
	r.entries[k] = handle
	return true
}

// Lookup returns the handle registered under (role, code), if any.
func (r *Registry) Lookup(role Role, code string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.entries[key{role: role, code: code}]
	return h, ok
}

// Release removes the entry for (role, code), but only while handle still
// owns it. A stale owner releasing after its successor registered must not
// evict the successor.
func (r *Registry) Release(role Role, code string, handle any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{role: role, code: code}
	if r.entries[k] == handle {
		delete(r.entries, k)
	}
}

// Codes lists the room codes currently registered under role. The snapshot
// is taken under the read lock; rooms may terminate before the caller gets
// to them, which callers treat as "not found".
func (r *Registry) Codes(role Role) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.entries))
	for k := range r.entries {
		if k.role == role {
			codes = append(codes, k.code)
		}
	}
	return codes
}
