// Package messenger validates and executes message operations against
// the store, then hands the committed event to the fan-out hub.
// Validation and authorization failures return to the caller and are
// never broadcast.
package messenger

import (
	"log"
	"strings"
	"time"

	"atomgram-service/errors"
	"atomgram-service/hub"
	"atomgram-service/model"
	"atomgram-service/store"
	"atomgram-service/utils"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Identity is the authenticated session acting on the core. The
// session id drives echo suppression on self-authored adds.
type Identity struct {
	SessionID string
	UserID    string
	Name      string
}

// Publisher is where committed events go. Satisfied by *hub.Hub.
type Publisher interface {
	Publish(event hub.Event)
}

// BlobDeleter removes stored file content, best-effort.
type BlobDeleter interface {
	Delete(locator string) bool
}

// UserNotifier pushes an event to every live session of one user,
// local or on another node. Satisfied by the socket.io per-user rooms.
type UserNotifier interface {
	NotifyUser(userID string, event string, payload interface{})
}

// EventChatCreated tells a participant a chat now includes them. It
// rides the per-user channel: the recipient has no hub subscription to
// a chat it does not yet know about.
const EventChatCreated = "chat"

// MessageDeleted is the payload of a messageDeleted event.
type MessageDeleted struct {
	MessageID string `json:"messageId"`
	ChatID    string `json:"chatId"`
}

// TypingNotice is the payload of a typing event.
type TypingNotice struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

// Service is the message lifecycle manager. Sends and forwards
// serialize per chat so publish order matches commit order; edits and
// deletes serialize per message so races resolve deterministically.
type Service struct {
	store     store.Store
	publisher Publisher
	blobs     BlobDeleter
	notifier  UserNotifier

	chatLocks    *keyedMutex
	messageLocks *keyedMutex

	now func() time.Time
}

func NewService(st store.Store, publisher Publisher, blobs BlobDeleter, notifier UserNotifier) *Service {
	return &Service{
		store:        st,
		publisher:    publisher,
		blobs:        blobs,
		notifier:     notifier,
		chatLocks:    newKeyedMutex(),
		messageLocks: newKeyedMutex(),
		now:          time.Now,
	}
}

// Send persists a new message and fans it out to every subscriber of
// the chat except the author's own session, which already holds an
// optimistic local copy.
func (s *Service) Send(identity Identity, chatID string, text string, files []model.MessageFile) (*model.Message, error) {
	if strings.TrimSpace(text) == "" && len(files) == 0 {
		return nil, errors.ErrEmptyMessage
	}

	chat, err := s.store.FindChatByID(chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(identity.UserID) {
		return nil, errors.ErrChatAccessDenied
	}

	messageType := model.MessageTypeText
	if len(files) > 0 {
		messageType = model.MessageTypeFile
	}

	message := &model.Message{
		MessageID:  uuid.NewString(),
		ChatID:     chatID,
		AuthorID:   identity.UserID,
		AuthorName: identity.Name,
		Text:       text,
		Type:       messageType,
		Timestamp:  s.now(),
		Files:      files,
	}

	unlock := s.chatLocks.Lock(chatID)
	defer unlock()

	if err := s.store.CreateMessage(message); err != nil {
		return nil, err
	}
	if err := s.store.TouchChat(chatID); err != nil {
		log.Printf("messenger: failed to touch chat %s: %v", chatID, err)
	}

	s.publisher.Publish(hub.Event{
		Name:           hub.EventMessageAdded,
		ChatID:         chatID,
		Payload:        message,
		ExcludeSession: identity.SessionID,
	})

	return message, nil
}

// Edit rewrites the text of the caller's own message. Forwarded copies
// are immutable. The update goes to every subscriber, the author's
// sessions included, so all replicas converge.
func (s *Service) Edit(identity Identity, messageID string, newText string) (*model.Message, error) {
	if strings.TrimSpace(newText) == "" {
		return nil, errors.ErrEmptyMessage
	}

	unlock := s.messageLocks.Lock(messageID)
	defer unlock()

	message, err := s.store.GetMessage(messageID)
	if err != nil {
		return nil, err
	}
	if message.AuthorID != identity.UserID {
		return nil, errors.ErrForbidden
	}
	if message.IsForward() {
		return nil, errors.ErrForbidden
	}

	if err := s.store.UpdateMessageText(messageID, newText); err != nil {
		return nil, err
	}
	message.Text = newText
	message.Edited = true

	s.publisher.Publish(hub.Event{
		Name:    hub.EventMessageUpdated,
		ChatID:  message.ChatID,
		Payload: message,
	})

	return message, nil
}

// Delete hard-deletes a message. Private and favorites chats allow any
// participant to delete; group chats only the author. File blobs go
// best-effort, a failed blob delete is logged and swallowed.
func (s *Service) Delete(identity Identity, messageID string) error {
	unlock := s.messageLocks.Lock(messageID)
	defer unlock()

	message, err := s.store.GetMessage(messageID)
	if err != nil {
		return err
	}

	chat, err := s.store.FindChatByID(message.ChatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(identity.UserID) {
		return errors.ErrChatAccessDenied
	}
	if !canDelete(chat, message, identity.UserID) {
		return errors.ErrForbidden
	}

	if err := s.store.DeleteMessage(messageID); err != nil {
		return err
	}

	for _, file := range message.Files {
		if !s.blobs.Delete(file.Locator) {
			log.Printf("messenger: blob %s of deleted message %s not removed", file.Locator, messageID)
		}
	}

	s.publisher.Publish(hub.Event{
		Name:   hub.EventMessageDeleted,
		ChatID: message.ChatID,
		Payload: MessageDeleted{
			MessageID: messageID,
			ChatID:    message.ChatID,
		},
	})

	return nil
}

// Forward copies a message into the target chat under the caller's
// authorship. The original author's display identity is captured at
// forward time; later renames never rewrite old forwards.
func (s *Service) Forward(identity Identity, messageID string, targetChatID string) (*model.Message, error) {
	original, err := s.store.GetMessage(messageID)
	if err != nil {
		return nil, err
	}

	target, err := s.store.FindChatByID(targetChatID)
	if err != nil {
		return nil, err
	}
	if !target.HasParticipant(identity.UserID) {
		return nil, errors.ErrChatAccessDenied
	}

	forwardedFrom := original.AuthorName
	if author, err := s.store.FindUserByID(original.AuthorID); err == nil {
		forwardedFrom = author.DisplayName()
	}

	files := lo.Map(original.Files, func(f model.MessageFile, _ int) model.MessageFile {
		return model.MessageFile{
			Name:    f.Name,
			Size:    f.Size,
			Mime:    f.Mime,
			Locator: f.Locator,
		}
	})

	forwarded := &model.Message{
		MessageID:         uuid.NewString(),
		ChatID:            targetChatID,
		AuthorID:          identity.UserID,
		AuthorName:        identity.Name,
		Text:              original.Text,
		Type:              original.Type,
		ForwardedFrom:     forwardedFrom,
		OriginalMessageID: original.MessageID,
		Timestamp:         s.now(),
		Files:             files,
	}

	unlock := s.chatLocks.Lock(targetChatID)
	defer unlock()

	if err := s.store.CreateMessage(forwarded); err != nil {
		return nil, err
	}
	if err := s.store.TouchChat(targetChatID); err != nil {
		log.Printf("messenger: failed to touch chat %s: %v", targetChatID, err)
	}

	s.publisher.Publish(hub.Event{
		Name:           hub.EventMessageAdded,
		ChatID:         targetChatID,
		Payload:        forwarded,
		ExcludeSession: identity.SessionID,
	})

	return forwarded, nil
}

// Typing fans a transient typing notice out to the chat's other
// sessions. Membership-gated like every chat-scoped operation; nothing
// is persisted.
func (s *Service) Typing(identity Identity, chatID string) error {
	chat, err := s.store.FindChatByID(chatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(identity.UserID) {
		return errors.ErrChatAccessDenied
	}

	s.publisher.Publish(hub.Event{
		Name:   hub.EventTyping,
		ChatID: chatID,
		Payload: TypingNotice{
			ChatID: chatID,
			UserID: identity.UserID,
		},
		ExcludeSession: identity.SessionID,
	})
	return nil
}

// History returns the chat's ordered message list, membership-gated.
// A reconnecting client resynchronizes through here; there is no
// per-session outbox of missed events.
func (s *Service) History(identity Identity, chatID string) ([]model.Message, error) {
	chat, err := s.store.FindChatByID(chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(identity.UserID) {
		return nil, errors.ErrChatAccessDenied
	}
	return s.store.FindMessagesByChat(chatID)
}

// CreatePrivateChat returns the existing private chat between the two
// identities or creates it, idempotently. Requesting a chat with
// oneself resolves to the favorites chat.
func (s *Service) CreatePrivateChat(identity Identity, otherUserID string) (*model.Chat, error) {
	if otherUserID == identity.UserID {
		return s.EnsureFavoritesChat(identity.UserID)
	}

	if _, err := s.store.FindUserByID(otherUserID); err != nil {
		return nil, err
	}

	unlock := s.chatLocks.Lock(pairKey(identity.UserID, otherUserID))
	defer unlock()

	if chat, err := s.store.FindPrivateChat(identity.UserID, otherUserID); err == nil {
		return chat, nil
	} else if !errors.Is(err, errors.ErrChatNotFound) {
		return nil, err
	}

	chat := &model.Chat{
		ChatID: utils.ShortID(),
		Type:   model.ChatTypePrivate,
		Participants: []model.ChatParticipant{
			{UserID: identity.UserID},
			{UserID: otherUserID},
		},
	}
	if err := s.store.CreateChat(chat); err != nil {
		return nil, err
	}
	s.notifyChatCreated(chat, identity.UserID)
	return chat, nil
}

// CreateGroupChat creates a named group with the caller as a member.
func (s *Service) CreateGroupChat(identity Identity, name string, participantIDs []string) (*model.Chat, error) {
	ids := lo.Uniq(append(participantIDs, identity.UserID))
	for _, id := range ids {
		if _, err := s.store.FindUserByID(id); err != nil {
			return nil, err
		}
	}

	chat := &model.Chat{
		ChatID: utils.ShortID(),
		Type:   model.ChatTypeGroup,
		Name:   name,
		Participants: lo.Map(ids, func(id string, _ int) model.ChatParticipant {
			return model.ChatParticipant{UserID: id}
		}),
	}
	if err := s.store.CreateChat(chat); err != nil {
		return nil, err
	}
	s.notifyChatCreated(chat, identity.UserID)
	return chat, nil
}

// EnsureFavoritesChat finds or creates the user's self chat. Called at
// registration and when a user opens a chat with themselves.
func (s *Service) EnsureFavoritesChat(userID string) (*model.Chat, error) {
	unlock := s.chatLocks.Lock("favorites:" + userID)
	defer unlock()

	if chat, err := s.store.FindFavoritesChat(userID); err == nil {
		return chat, nil
	} else if !errors.Is(err, errors.ErrChatNotFound) {
		return nil, err
	}

	chat := &model.Chat{
		ChatID:       utils.ShortID(),
		Type:         model.ChatTypeFavorites,
		Name:         "Favorites",
		Participants: []model.ChatParticipant{{UserID: userID}},
	}
	if err := s.store.CreateChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// Chats lists every chat the identity participates in.
func (s *Service) Chats(identity Identity) ([]model.Chat, error) {
	return s.store.FindChatsByParticipant(identity.UserID)
}

// Chat returns one chat, membership-gated.
func (s *Service) Chat(identity Identity, chatID string) (*model.Chat, error) {
	chat, err := s.store.FindChatByID(chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(identity.UserID) {
		return nil, errors.ErrChatNotFound
	}
	return chat, nil
}

// notifyChatCreated pushes the fresh chat to every participant except
// its creator, whose client already holds it as the call's result.
func (s *Service) notifyChatCreated(chat *model.Chat, creatorID string) {
	if s.notifier == nil {
		return
	}
	for _, p := range chat.Participants {
		if p.UserID == creatorID {
			continue
		}
		s.notifier.NotifyUser(p.UserID, EventChatCreated, chat)
	}
}

func pairKey(a string, b string) string {
	if b < a {
		a, b = b, a
	}
	return "pair:" + a + ":" + b
}
