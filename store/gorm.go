package store

import (
	"time"

	"atomgram-service/errors"
	"atomgram-service/model"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Gorm is the postgres-backed Store.
type Gorm struct {
	DB *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{DB: db}
}

func (s *Gorm) CreateUser(user *model.User) error {
	return s.DB.Create(user).Error
}

func (s *Gorm) FindUserByID(userID string) (*model.User, error) {
	user := new(model.User)
	if err := s.DB.Where(&model.User{UserID: userID}).First(user).Error; err != nil {
		return nil, userErr(err)
	}
	return user, nil
}

func (s *Gorm) FindUserByUsername(username string) (*model.User, error) {
	user := new(model.User)
	if err := s.DB.Where(&model.User{Username: username}).First(user).Error; err != nil {
		return nil, userErr(err)
	}
	return user, nil
}

func (s *Gorm) FindUsers() ([]model.User, error) {
	users := []model.User{}
	if err := s.DB.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Gorm) SaveUser(user *model.User) error {
	return s.DB.Save(user).Error
}

func (s *Gorm) UpdateUserStatus(userID string, status string, lastSeen time.Time) error {
	return s.DB.Model(&model.User{}).
		Where(&model.User{UserID: userID}).
		Updates(map[string]interface{}{"status": status, "last_seen": lastSeen}).Error
}

func (s *Gorm) CreateChat(chat *model.Chat) error {
	return s.DB.Create(chat).Error
}

func (s *Gorm) FindChatByID(chatID string) (*model.Chat, error) {
	chat := new(model.Chat)
	if err := s.DB.Preload("Participants").Where(&model.Chat{ChatID: chatID}).First(chat).Error; err != nil {
		return nil, chatErr(err)
	}
	return chat, nil
}

func (s *Gorm) FindChatsByParticipant(userID string) ([]model.Chat, error) {
	chats := []model.Chat{}
	err := s.DB.Preload("Participants").
		Joins("JOIN chat_participants ON chat_participants.chat_ref = chats.chat_id AND chat_participants.deleted_at IS NULL").
		Where("chat_participants.user_id = ?", userID).
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

func (s *Gorm) FindPrivateChat(userA string, userB string) (*model.Chat, error) {
	chats, err := s.FindChatsByParticipant(userA)
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].Type != model.ChatTypePrivate {
			continue
		}
		if chats[i].HasParticipant(userB) {
			return &chats[i], nil
		}
	}
	return nil, errors.ErrChatNotFound
}

func (s *Gorm) FindFavoritesChat(userID string) (*model.Chat, error) {
	chats, err := s.FindChatsByParticipant(userID)
	if err != nil {
		return nil, err
	}
	chat, found := lo.Find(chats, func(c model.Chat) bool {
		return c.Type == model.ChatTypeFavorites
	})
	if !found {
		return nil, errors.ErrChatNotFound
	}
	return &chat, nil
}

func (s *Gorm) TouchChat(chatID string) error {
	return s.DB.Model(&model.Chat{}).
		Where(&model.Chat{ChatID: chatID}).
		Update("updated_at", time.Now()).Error
}

func (s *Gorm) CreateMessage(message *model.Message) error {
	return s.DB.Create(message).Error
}

func (s *Gorm) GetMessage(messageID string) (*model.Message, error) {
	message := new(model.Message)
	if err := s.DB.Preload("Files").Where(&model.Message{MessageID: messageID}).First(message).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrMessageNotFound
		}
		return nil, err
	}
	return message, nil
}

func (s *Gorm) UpdateMessageText(messageID string, text string) error {
	result := s.DB.Model(&model.Message{}).
		Where(&model.Message{MessageID: messageID}).
		Updates(map[string]interface{}{"text": text, "edited": true})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrMessageNotFound
	}
	return nil
}

// DeleteMessage hard-deletes the message and its file rows in one
// transaction, so a crash never orphans the file records.
func (s *Gorm) DeleteMessage(messageID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Unscoped().Where(&model.Message{MessageID: messageID}).Delete(&model.Message{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.ErrMessageNotFound
		}
		return tx.Unscoped().Where(&model.MessageFile{MessageRef: messageID}).Delete(&model.MessageFile{}).Error
	})
}

func (s *Gorm) FindMessagesByChat(chatID string) ([]model.Message, error) {
	messages := []model.Message{}
	err := s.DB.Preload("Files").
		Where(&model.Message{ChatID: chatID}).
		Order("timestamp asc, id asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *Gorm) FindMessagesWithFiles() ([]model.Message, error) {
	messages := []model.Message{}
	err := s.DB.Preload("Files").
		Where(&model.Message{Type: model.MessageTypeFile}).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func userErr(err error) error {
	if err == gorm.ErrRecordNotFound {
		return errors.ErrUserNotFound
	}
	return err
}

func chatErr(err error) error {
	if err == gorm.ErrRecordNotFound {
		return errors.ErrChatNotFound
	}
	return err
}
