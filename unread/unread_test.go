package unread

import (
	"testing"

	"atomgram-service/hub"

	"github.com/stretchr/testify/require"
)

func added(chatID string) hub.Event {
	return hub.Event{Name: hub.EventMessageAdded, ChatID: chatID}
}

func TestCountsMessagesForInactiveChats(t *testing.T) {
	tracker := NewTracker(nil)

	for i := 0; i < 3; i++ {
		tracker.Observe(added("CHAT01"))
	}
	tracker.Observe(added("CHAT02"))

	require.Equal(t, 3, tracker.Count("CHAT01"))
	require.Equal(t, 1, tracker.Count("CHAT02"))
	require.Equal(t, 4, tracker.Total())
}

func TestActiveChatNeverCounts(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.Activate("CHAT01")

	tracker.Observe(added("CHAT01"))
	tracker.Observe(added("CHAT02"))

	require.Equal(t, 0, tracker.Count("CHAT01"))
	require.Equal(t, 1, tracker.Count("CHAT02"))
}

func TestActivateResetsCounter(t *testing.T) {
	tracker := NewTracker(nil)

	tracker.Observe(added("CHAT01"))
	tracker.Observe(added("CHAT01"))
	require.Equal(t, 2, tracker.Count("CHAT01"))

	tracker.Activate("CHAT01")
	require.Equal(t, 0, tracker.Count("CHAT01"))
	require.Equal(t, 0, tracker.Total())
}

func TestDeactivateCountsAgain(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.Activate("CHAT01")
	tracker.Observe(added("CHAT01"))
	require.Equal(t, 0, tracker.Count("CHAT01"))

	tracker.Deactivate()
	tracker.Observe(added("CHAT01"))
	require.Equal(t, 1, tracker.Count("CHAT01"))
}

func TestOnlyMessageAddsCount(t *testing.T) {
	tracker := NewTracker(nil)

	tracker.Observe(hub.Event{Name: hub.EventMessageUpdated, ChatID: "CHAT01"})
	tracker.Observe(hub.Event{Name: hub.EventMessageDeleted, ChatID: "CHAT01"})
	tracker.Observe(hub.Event{Name: hub.EventUserStatus})
	tracker.Observe(hub.Event{Name: hub.EventTyping, ChatID: "CHAT01"})

	require.Equal(t, 0, tracker.Total())
}

func TestNotifyFiresOncePerCountedMessage(t *testing.T) {
	var notified []string
	tracker := NewTracker(func(chatID string) {
		notified = append(notified, chatID)
	})
	tracker.Activate("CHAT02")

	tracker.Observe(added("CHAT01"))
	tracker.Observe(added("CHAT01"))
	tracker.Observe(added("CHAT02"))
	tracker.Observe(hub.Event{Name: hub.EventMessageUpdated, ChatID: "CHAT01"})

	require.Equal(t, []string{"CHAT01", "CHAT01"}, notified)
}
