package event

import (
	"encoding/json"
	"log"
	"time"

	"atomgram-service/hub"
)

// Envelope is the shape pushed onto the notifications queue.
type Envelope struct {
	Time    int64       `json:"time"`
	Action  string      `json:"action"`
	ChatID  string      `json:"chatId,omitempty"`
	Payload interface{} `json:"payload"`
}

// Notifier wraps the hub's publisher: every event still fans out to
// sessions first, then message adds and status changes are mirrored to
// the notifications queue.
type Notifier struct {
	Next interface{ Publish(event hub.Event) }
}

func (n *Notifier) Publish(e hub.Event) {
	n.Next.Publish(e)

	if !Enabled() {
		return
	}
	switch e.Name {
	case hub.EventMessageAdded, hub.EventUserStatus:
	default:
		return
	}

	body, err := json.Marshal(Envelope{
		Time:    time.Now().UnixMicro(),
		Action:  e.Name,
		ChatID:  e.ChatID,
		Payload: e.Payload,
	})
	if err != nil {
		log.Printf("event: failed to encode %s envelope: %v", e.Name, err)
		return
	}

	Emit(NotificationsQueue, e.Name, body)
}
