// Package hub keeps the per-chat subscriber sets and fans chat events
// out to every subscribed session. Lock discipline is scoped per chat:
// publishing into one chat never blocks another chat's broadcasts, and
// the hub-level mutex only guards the session and chat maps.
package hub

import (
	"log"
	"sync"
)

// Event names pushed over a session's stream.
const (
	EventMessageAdded   = "message"
	EventMessageUpdated = "messageUpdated"
	EventMessageDeleted = "messageDeleted"
	EventUserStatus     = "userStatus"
	EventTyping         = "typing"
)

// Event is one fan-out unit. ChatID is empty for global events
// (presence). ExcludeSession suppresses the author's own echo on
// self-authored message adds.
type Event struct {
	Name           string
	ChatID         string
	Payload        interface{}
	ExcludeSession string
}

// Session is one live connection bound to an authenticated identity.
// Events arrive on a single ordered buffered channel; a full buffer
// drops the event for that session only.
type Session struct {
	ID     string
	UserID string
	events chan Event
	joined map[string]struct{}
}

// Events is the session's ordered event stream.
func (s *Session) Events() <-chan Event {
	return s.events
}

type chatEntry struct {
	mu          sync.Mutex
	subscribers map[string]*Session
}

type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	chats    map[string]*chatEntry
	buffer   int
}

func New() *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		chats:    make(map[string]*chatEntry),
		buffer:   256,
	}
}

// Register binds a new session to the identity and opens its stream.
func (h *Hub) Register(sessionID string, userID string) *Session {
	session := &Session{
		ID:     sessionID,
		UserID: userID,
		events: make(chan Event, h.buffer),
		joined: make(map[string]struct{}),
	}

	h.mu.Lock()
	h.sessions[sessionID] = session
	h.mu.Unlock()

	return session
}

// Unregister removes the session from every chat's subscriber set and
// closes its stream. Safe to call for an unknown session. The hub lock
// is held until the channel is closed so no publisher can still hold a
// reference to the session. Chats left without subscribers drop out of
// the index.
func (h *Hub) Unregister(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	delete(h.sessions, sessionID)

	for chatID := range session.joined {
		entry, ok := h.chats[chatID]
		if !ok {
			continue
		}
		entry.mu.Lock()
		delete(entry.subscribers, sessionID)
		empty := len(entry.subscribers) == 0
		entry.mu.Unlock()
		if empty {
			delete(h.chats, chatID)
		}
	}

	close(session.events)
}

// Join subscribes the session to the chat. Joining twice is a no-op.
// The hub lock is held through the subscriber insert so a concurrent
// Unregister can never close the stream between the membership check
// and the insert.
func (h *Hub) Join(sessionID string, chatID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	session.joined[chatID] = struct{}{}

	entry, ok := h.chats[chatID]
	if !ok {
		entry = &chatEntry{subscribers: make(map[string]*Session)}
		h.chats[chatID] = entry
	}

	entry.mu.Lock()
	entry.subscribers[sessionID] = session
	entry.mu.Unlock()
}

// Subscribers returns the session ids currently joined to the chat.
func (h *Hub) Subscribers(chatID string) []string {
	h.mu.RLock()
	entry, ok := h.chats[chatID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	ids := make([]string, 0, len(entry.subscribers))
	for id := range entry.subscribers {
		ids = append(ids, id)
	}
	return ids
}

// Publish delivers the event to every subscriber of its chat, or to
// every registered session when the event is global. The chat's lock is
// held across the whole enqueue loop, so all subscribers observe the
// same per-chat order.
func (h *Hub) Publish(event Event) {
	if event.ChatID == "" {
		h.publishGlobal(event)
		return
	}

	h.mu.RLock()
	entry, ok := h.chats[event.ChatID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	for id, session := range entry.subscribers {
		if id == event.ExcludeSession {
			continue
		}
		h.enqueue(session, event)
	}
}

func (h *Hub) publishGlobal(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, session := range h.sessions {
		if id == event.ExcludeSession {
			continue
		}
		h.enqueue(session, event)
	}
}

// enqueue never blocks: a subscriber that cannot keep up loses the
// event and resynchronizes with a full refetch on reconnect.
func (h *Hub) enqueue(session *Session, event Event) {
	select {
	case session.events <- event:
	default:
		log.Printf("hub: dropped %s event for slow session %s", event.Name, session.ID)
	}
}
