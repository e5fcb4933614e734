package gateway

import (
	"log/slog"
	"sort"
	"sync"
)

// Registry owns the device-identity to session mapping. Sessions are
// created on first sight and live for the process lifetime; a disconnect
// only detaches the connection handle. Safe for concurrent use from many
// connection goroutines.
type Registry struct {
	log *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty Registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Resolve returns the session for the device identity, creating it on
// first sight, and always reattaches the given connection and refreshes
// the last-seen timestamp.
func (r *Registry) Resolve(id string, conn Sender) *Session {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		s = newSession(id)
		r.sessions[id] = s
		r.log.Info("session created", "device", id, "sessions", len(r.sessions))
	}
	r.mu.Unlock()
	s.attach(conn)
	return s
}

// Get returns the session for the device identity, or nil if never seen.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// MarkOffline detaches whichever session currently holds conn. The session
// itself survives for a later reconnect.
func (r *Registry) MarkOffline(conn Sender) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.detach(conn) {
			r.log.Info("session offline", "device", s.ID)
			return
		}
	}
}

// Len returns the number of known sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Infos summarizes all sessions, sorted by device identity.
func (r *Registry) Infos() []SessionInfo {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}
