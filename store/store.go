// Package store is the persistence boundary of the messenger core.
// The gorm implementation owns canonical state; everything above it
// (fan-out, clients) holds eventually-consistent projections.
package store

import (
	"time"

	"atomgram-service/model"
)

type UserStore interface {
	CreateUser(user *model.User) error
	FindUserByID(userID string) (*model.User, error)
	FindUserByUsername(username string) (*model.User, error)
	FindUsers() ([]model.User, error)
	SaveUser(user *model.User) error
	UpdateUserStatus(userID string, status string, lastSeen time.Time) error
}

type ChatStore interface {
	CreateChat(chat *model.Chat) error
	FindChatByID(chatID string) (*model.Chat, error)
	FindChatsByParticipant(userID string) ([]model.Chat, error)
	// FindPrivateChat returns the existing private chat between the two
	// identities, or ErrChatNotFound.
	FindPrivateChat(userA string, userB string) (*model.Chat, error)
	FindFavoritesChat(userID string) (*model.Chat, error)
	// TouchChat bumps the chat's last-activity marker.
	TouchChat(chatID string) error
}

type MessageStore interface {
	CreateMessage(message *model.Message) error
	GetMessage(messageID string) (*model.Message, error)
	// UpdateMessageText rewrites the text and raises the monotonic
	// edited flag in one atomic update.
	UpdateMessageText(messageID string, text string) error
	DeleteMessage(messageID string) error
	// FindMessagesByChat returns the chat history ordered by timestamp,
	// ties broken by insertion order.
	FindMessagesByChat(chatID string) ([]model.Message, error)
	FindMessagesWithFiles() ([]model.Message, error)
}

// Store bundles the three record families behind one dependency.
type Store interface {
	UserStore
	ChatStore
	MessageStore
}
