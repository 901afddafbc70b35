package store

import (
	"testing"
	"time"

	"atomgram-service/errors"
	"atomgram-service/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Gorm {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Chat{},
		&model.ChatParticipant{},
		&model.Message{},
		&model.MessageFile{},
	))
	return NewGorm(db)
}

func seedChat(t *testing.T, s *Gorm, chatID string, chatType string, userIDs ...string) {
	t.Helper()
	participants := make([]model.ChatParticipant, 0, len(userIDs))
	for _, id := range userIDs {
		participants = append(participants, model.ChatParticipant{UserID: id})
	}
	require.NoError(t, s.CreateChat(&model.Chat{
		ChatID:       chatID,
		Type:         chatType,
		Participants: participants,
	}))
}

func TestDeleteMessageRemovesFileRows(t *testing.T) {
	s := newTestStore(t)

	message := &model.Message{
		MessageID: "msg-1",
		ChatID:    "CHAT01",
		AuthorID:  "AAA111",
		Type:      model.MessageTypeFile,
		Timestamp: time.Now(),
		Files: []model.MessageFile{
			{Name: "a.png", Locator: "/uploads/x_a.png"},
			{Name: "b.png", Locator: "/uploads/x_b.png"},
		},
	}
	require.NoError(t, s.CreateMessage(message))

	stored, err := s.GetMessage("msg-1")
	require.NoError(t, err)
	require.Len(t, stored.Files, 2)

	require.NoError(t, s.DeleteMessage("msg-1"))

	_, err = s.GetMessage("msg-1")
	require.ErrorIs(t, err, errors.ErrMessageNotFound)

	var orphans int64
	require.NoError(t, s.DB.Model(&model.MessageFile{}).
		Where(&model.MessageFile{MessageRef: "msg-1"}).
		Count(&orphans).Error)
	require.Zero(t, orphans)
}

func TestDeleteMessageNotFound(t *testing.T) {
	s := newTestStore(t)
	require.ErrorIs(t, s.DeleteMessage("missing"), errors.ErrMessageNotFound)
}

func TestUpdateMessageTextRaisesEdited(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateMessage(&model.Message{
		MessageID: "msg-1",
		ChatID:    "CHAT01",
		AuthorID:  "AAA111",
		Text:      "hi",
		Type:      model.MessageTypeText,
		Timestamp: time.Now(),
	}))

	require.NoError(t, s.UpdateMessageText("msg-1", "hi!"))

	stored, err := s.GetMessage("msg-1")
	require.NoError(t, err)
	require.Equal(t, "hi!", stored.Text)
	require.True(t, stored.Edited)

	require.ErrorIs(t, s.UpdateMessageText("missing", "x"), errors.ErrMessageNotFound)
}

func TestFindMessagesByChatOrdersByTimestampThenInsertion(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().Truncate(time.Second)
	for _, m := range []struct {
		id   string
		text string
		at   time.Time
	}{
		{"msg-2", "second", base.Add(time.Second)},
		{"msg-3", "third", base.Add(time.Second)},
		{"msg-1", "first", base},
	} {
		require.NoError(t, s.CreateMessage(&model.Message{
			MessageID: m.id,
			ChatID:    "CHAT01",
			AuthorID:  "AAA111",
			Text:      m.text,
			Type:      model.MessageTypeText,
			Timestamp: m.at,
		}))
	}

	messages, err := s.FindMessagesByChat("CHAT01")
	require.NoError(t, err)
	require.Len(t, messages, 3)
	require.Equal(t, "first", messages[0].Text)
	require.Equal(t, "second", messages[1].Text)
	require.Equal(t, "third", messages[2].Text)
}

func TestFindPrivateAndFavoritesChats(t *testing.T) {
	s := newTestStore(t)
	seedChat(t, s, "PRIV01", model.ChatTypePrivate, "AAA111", "BBB222")
	seedChat(t, s, "GRP001", model.ChatTypeGroup, "AAA111", "BBB222", "CCC333")
	seedChat(t, s, "FAV001", model.ChatTypeFavorites, "AAA111")

	chat, err := s.FindPrivateChat("AAA111", "BBB222")
	require.NoError(t, err)
	require.Equal(t, "PRIV01", chat.ChatID)

	_, err = s.FindPrivateChat("AAA111", "CCC333")
	require.ErrorIs(t, err, errors.ErrChatNotFound)

	favorites, err := s.FindFavoritesChat("AAA111")
	require.NoError(t, err)
	require.Equal(t, "FAV001", favorites.ChatID)

	_, err = s.FindFavoritesChat("BBB222")
	require.ErrorIs(t, err, errors.ErrChatNotFound)

	chats, err := s.FindChatsByParticipant("CCC333")
	require.NoError(t, err)
	require.Len(t, chats, 1)
	require.Equal(t, "GRP001", chats[0].ChatID)
}

func TestUpdateUserStatusPersists(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateUser(&model.User{
		UserID:   "AAA111",
		Username: "alice",
		Email:    "alice@example.com",
		Password: "x",
	}))

	lastSeen := time.Now().Truncate(time.Second)
	require.NoError(t, s.UpdateUserStatus("AAA111", model.StatusAway, lastSeen))

	user, err := s.FindUserByID("AAA111")
	require.NoError(t, err)
	require.Equal(t, model.StatusAway, user.Status)
	require.Equal(t, lastSeen.Unix(), user.LastSeen.Unix())

	_, err = s.FindUserByID("ZZZ999")
	require.ErrorIs(t, err, errors.ErrUserNotFound)
}
