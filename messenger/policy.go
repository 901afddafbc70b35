package messenger

import "atomgram-service/model"

// deleteRule says who may delete a message in a chat.
type deleteRule int

const (
	deleteByAuthorOnly deleteRule = iota
	deleteByAnyParticipant
)

// deletePolicy is keyed by chat type; new chat types extend the table
// instead of growing inline conditionals. Private chats carry
// mutual-delete semantics, favorites is the self chat.
var deletePolicy = map[string]deleteRule{
	model.ChatTypePrivate:   deleteByAnyParticipant,
	model.ChatTypeFavorites: deleteByAnyParticipant,
	model.ChatTypeGroup:     deleteByAuthorOnly,
}

// canDelete assumes the caller is already known to be a participant.
func canDelete(chat *model.Chat, message *model.Message, userID string) bool {
	rule, ok := deletePolicy[chat.Type]
	if !ok {
		rule = deleteByAuthorOnly
	}

	switch rule {
	case deleteByAnyParticipant:
		return true
	default:
		return message.AuthorID == userID
	}
}
