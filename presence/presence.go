// Package presence tracks which identities are connected and their
// status, and broadcasts every transition globally: any user's status
// may be rendered in another user's contact list.
package presence

import (
	"log"
	"sync"
	"time"

	"atomgram-service/hub"
	"atomgram-service/model"
	"atomgram-service/store"
)

// StatusChange is the payload of a userStatus broadcast.
type StatusChange struct {
	UserID   string    `json:"userId"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"lastSeen"`
}

// Registry counts live sessions per identity. A user is online while at
// least one of their sessions is connected; away/busy are explicit
// states set through profile updates, never inferred.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]int
	statuses map[string]string

	hub   *hub.Hub
	users store.UserStore
}

func NewRegistry(h *hub.Hub, users store.UserStore) *Registry {
	return &Registry{
		sessions: make(map[string]int),
		statuses: make(map[string]string),
		hub:      h,
		users:    users,
	}
}

// Connect records a new session for the identity. The first session
// flips the user online and broadcasts the change.
func (r *Registry) Connect(userID string) {
	r.mu.Lock()
	r.sessions[userID]++
	first := r.sessions[userID] == 1
	if first {
		r.statuses[userID] = model.StatusOnline
	}
	r.mu.Unlock()

	if first {
		r.announce(userID, model.StatusOnline, time.Now())
	}
}

// Disconnect drops one session. When the identity's last session goes,
// the user turns offline with lastSeen stamped now.
func (r *Registry) Disconnect(userID string) {
	r.mu.Lock()
	if r.sessions[userID] == 0 {
		r.mu.Unlock()
		return
	}
	r.sessions[userID]--
	last := r.sessions[userID] == 0
	if last {
		delete(r.sessions, userID)
		delete(r.statuses, userID)
	}
	r.mu.Unlock()

	if last {
		r.announce(userID, model.StatusOffline, time.Now())
	}
}

// Set applies an explicit status (away, busy, back to online) for a
// connected identity.
func (r *Registry) Set(userID string, status string) {
	r.mu.Lock()
	if r.sessions[userID] == 0 {
		r.mu.Unlock()
		return
	}
	changed := r.statuses[userID] != status
	r.statuses[userID] = status
	r.mu.Unlock()

	if changed {
		r.announce(userID, status, time.Now())
	}
}

// Status answers with the live status, falling back to offline for
// identities without a connected session.
func (r *Registry) Status(userID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if status, ok := r.statuses[userID]; ok {
		return status
	}
	return model.StatusOffline
}

// Online reports whether the identity has at least one live session.
func (r *Registry) Online(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[userID] > 0
}

func (r *Registry) announce(userID string, status string, lastSeen time.Time) {
	if err := r.users.UpdateUserStatus(userID, status, lastSeen); err != nil {
		log.Printf("presence: failed to persist status of %s: %v", userID, err)
	}

	r.hub.Publish(hub.Event{
		Name: hub.EventUserStatus,
		Payload: StatusChange{
			UserID:   userID,
			Status:   status,
			LastSeen: lastSeen,
		},
	})
}
