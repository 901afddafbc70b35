package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	ChatTypePrivate   = "private"
	ChatTypeGroup     = "group"
	ChatTypeFavorites = "favorites"
)

const (
	MessageTypeText = "text"
	MessageTypeFile = "file"
)

// Chat groups participants by their short user ids. Private chats hold
// exactly two participants, favorites exactly one; names of private
// chats are derived at read time from the other participant.
type Chat struct {
	gorm.Model
	ChatID       string            `gorm:"uniqueIndex;not null" json:"chatId"`
	Type         string            `gorm:"not null;default:private" json:"type"`
	Name         string            `json:"name"`
	Participants []ChatParticipant `gorm:"foreignKey:ChatRef;references:ChatID" json:"participants"`
}

type ChatParticipant struct {
	gorm.Model
	ChatRef string `gorm:"index;not null" json:"-"`
	UserID  string `gorm:"index;not null" json:"userId"`
}

// HasParticipant reports whether the identity belongs to the chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Message rows order by (Timestamp, ID): the autoincrement key breaks
// ties between messages committed within the same clock tick.
type Message struct {
	gorm.Model
	MessageID         string        `gorm:"uniqueIndex;not null" json:"_id"`
	ChatID            string        `gorm:"index;not null" json:"chat"`
	AuthorID          string        `gorm:"index;not null" json:"userId"`
	AuthorName        string        `json:"fullName"`
	Text              string        `json:"text"`
	Type              string        `gorm:"not null;default:text" json:"type"`
	Edited            bool          `gorm:"not null;default:false" json:"edited"`
	ForwardedFrom     string        `json:"forwardedFrom,omitempty"`
	OriginalMessageID string        `json:"originalMessage,omitempty"`
	Timestamp         time.Time     `gorm:"index;not null" json:"timestamp"`
	Files             []MessageFile `gorm:"foreignKey:MessageRef;references:MessageID" json:"files"`
}

// IsForward marks immutable forwarded copies.
func (m *Message) IsForward() bool {
	return m.ForwardedFrom != "" || m.OriginalMessageID != ""
}

type MessageFile struct {
	gorm.Model
	MessageRef string `gorm:"index;not null" json:"-"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	Mime       string `json:"type"`
	Locator    string `json:"url"`
}
