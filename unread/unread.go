// Package unread is the client-side companion that keeps per-chat
// unread counters from the same event stream used for realtime sync.
package unread

import (
	"sync"

	"atomgram-service/hub"
)

// Tracker increments a chat's counter for every message that arrives
// while the chat is not the active one, and resets on activation.
// Observing and activating are mutually exclusive, so a counter is
// never incremented and reset within one step.
type Tracker struct {
	mu     sync.Mutex
	active string
	counts map[string]int
	notify func(chatID string)
}

// NewTracker creates a tracker. notify fires once per counted message
// (sound, toast); it may be nil.
func NewTracker(notify func(chatID string)) *Tracker {
	return &Tracker{
		counts: make(map[string]int),
		notify: notify,
	}
}

// Observe applies one incoming event. Only message adds for inactive
// chats count; edits, deletes and presence never touch the counters.
func (t *Tracker) Observe(event hub.Event) {
	if event.Name != hub.EventMessageAdded || event.ChatID == "" {
		return
	}

	t.mu.Lock()
	if event.ChatID == t.active {
		t.mu.Unlock()
		return
	}
	t.counts[event.ChatID]++
	notify := t.notify
	t.mu.Unlock()

	if notify != nil {
		notify(event.ChatID)
	}
}

// Activate marks the chat as the open one and clears its counter.
func (t *Tracker) Activate(chatID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = chatID
	delete(t.counts, chatID)
}

// Deactivate clears the active chat; subsequent messages count again.
func (t *Tracker) Deactivate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = ""
}

// Count returns the chat's unread counter.
func (t *Tracker) Count(chatID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[chatID]
}

// Total sums the counters across all chats, the number shown in the
// window title.
func (t *Tracker) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := 0
	for _, n := range t.counts {
		total += n
	}
	return total
}
