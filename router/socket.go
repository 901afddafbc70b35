package router

import (
	"atomgram-service/errors"
	"atomgram-service/hub"
	"atomgram-service/messenger"
	"atomgram-service/model"
	"atomgram-service/presence"
	"atomgram-service/store"
	"atomgram-service/utils"

	"github.com/samber/lo"
	"github.com/zishang520/socket.io/v2/socket"
)

var (
	Hub       *hub.Hub
	Messenger *messenger.Service
	Presence  *presence.Registry
	Store     store.Store
)

// Init wires the socket gateway to the core singletons.
func Init(h *hub.Hub, svc *messenger.Service, reg *presence.Registry, st store.Store) {
	Hub = h
	Messenger = svc
	Presence = reg
	Store = st
}

type InitConnection struct {
	Chats      []ChatSummary `json:"chats"`
	UserStatus []UserStatus  `json:"userStatus"`
}

type ChatSummary struct {
	ChatID       string         `json:"chatId"`
	Type         string         `json:"type"`
	Name         string         `json:"name"`
	Participants []string       `json:"participants"`
	LastMessage  *model.Message `json:"lastMessage"`
}

type UserStatus struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

type SocketError struct {
	Op      string `json:"op"`
	Message string `json:"message"`
}

func Socket(server *socket.Server) {
	server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// Sockets without a verified token get no session and no events
		if client.Data() == nil {
			client.Emit("error", SocketError{Op: "connect", Message: errors.ErrUnauthenticated.Error()})
			client.Disconnect(true)
			return
		}

		claims := client.Data().(*utils.TokenMetadata)
		sessionID := string(client.Id())
		identity := messenger.Identity{
			SessionID: sessionID,
			UserID:    claims.Id,
			Name:      claims.Name,
		}

		session := Hub.Register(sessionID, claims.Id)

		// One pump per connection keeps per-chat delivery order: the
		// session channel is the single ordered path to this client.
		go func() {
			for event := range session.Events() {
				client.Emit(event.Name, event.Payload)
			}
		}()

		Presence.Connect(claims.Id)

		// Join every chat the user participates in up front, so
		// fan-out reaches this session without an explicit join.
		if chats, err := Messenger.Chats(identity); err == nil {
			for _, chat := range chats {
				Hub.Join(sessionID, chat.ChatID)
			}
		}

		client.On("init", func(args ...interface{}) {
			chats, err := Messenger.Chats(identity)
			if err != nil {
				client.Emit("error", SocketError{Op: "init", Message: err.Error()})
				return
			}

			summaries := []ChatSummary{}
			statuses := []UserStatus{}
			seen := map[string]bool{}
			for _, chat := range chats {
				var last *model.Message
				if history, err := Store.FindMessagesByChat(chat.ChatID); err == nil && len(history) > 0 {
					last = &history[len(history)-1]
				}

				summaries = append(summaries, ChatSummary{
					ChatID: chat.ChatID,
					Type:   chat.Type,
					Name:   chat.Name,
					Participants: lo.Map(chat.Participants, func(p model.ChatParticipant, _ int) string {
						return p.UserID
					}),
					LastMessage: last,
				})

				for _, p := range chat.Participants {
					if !seen[p.UserID] {
						seen[p.UserID] = true
						statuses = append(statuses, UserStatus{
							UserID: p.UserID,
							Status: Presence.Status(p.UserID),
						})
					}
				}
			}

			client.Emit("init", InitConnection{
				Chats:      summaries,
				UserStatus: statuses,
			})
		})

		client.On("chat_join", func(args ...interface{}) {
			chatID, ok := stringArg(args, 0)
			if !ok {
				return
			}

			// Membership gates the subscription, not just the history
			if _, err := Messenger.Chat(identity, chatID); err != nil {
				client.Emit("error", SocketError{Op: "chat_join", Message: err.Error()})
				return
			}
			Hub.Join(sessionID, chatID)
		})

		client.On("message_send", func(args ...interface{}) {
			chatID, ok := stringArg(args, 0)
			text, ok2 := stringArg(args, 1)
			if !ok || !ok2 {
				return
			}

			message, err := Messenger.Send(identity, chatID, text, nil)
			if err != nil {
				client.Emit("error", SocketError{Op: "message_send", Message: err.Error()})
				return
			}

			// The author's own copy goes back directly; fan-out
			// excluded this session.
			client.Emit("message_sent", message)
		})

		client.On("message_edit", func(args ...interface{}) {
			messageID, ok := stringArg(args, 0)
			text, ok2 := stringArg(args, 1)
			if !ok || !ok2 {
				return
			}

			if _, err := Messenger.Edit(identity, messageID, text); err != nil {
				client.Emit("error", SocketError{Op: "message_edit", Message: err.Error()})
			}
		})

		client.On("message_delete", func(args ...interface{}) {
			messageID, ok := stringArg(args, 0)
			if !ok {
				return
			}

			if err := Messenger.Delete(identity, messageID); err != nil {
				client.Emit("error", SocketError{Op: "message_delete", Message: err.Error()})
			}
		})

		client.On("message_forward", func(args ...interface{}) {
			messageID, ok := stringArg(args, 0)
			targetChatID, ok2 := stringArg(args, 1)
			if !ok || !ok2 {
				return
			}

			message, err := Messenger.Forward(identity, messageID, targetChatID)
			if err != nil {
				client.Emit("error", SocketError{Op: "message_forward", Message: err.Error()})
				return
			}
			client.Emit("message_sent", message)
		})

		client.On("typing", func(args ...interface{}) {
			chatID, ok := stringArg(args, 0)
			if !ok {
				return
			}

			if err := Messenger.Typing(identity, chatID); err != nil {
				client.Emit("error", SocketError{Op: "typing", Message: err.Error()})
			}
		})

		client.On("disconnect", func(args ...interface{}) {
			Hub.Unregister(sessionID)
			Presence.Disconnect(claims.Id)
		})
	})
}

func stringArg(args []interface{}, i int) (string, bool) {
	if len(args) <= i {
		return "", false
	}
	value, ok := args[i].(string)
	return value, ok
}
