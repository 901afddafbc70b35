package controller

import (
	"io"
	"mime/multipart"
	"path"
	"strconv"

	"atomgram-service/blob"
	"atomgram-service/config"
	"atomgram-service/model"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type ChatCreatePrivateInput struct {
	OtherUserID string `json:"otherUserId" validate:"required"`
}

type ChatCreateGroupInput struct {
	Name         string   `json:"name" validate:"required,max=128"`
	Participants []string `json:"participants" validate:"required,min=1"`
}

// chatView derives the display name: private chats borrow the other
// participant's display name at read time.
func chatView(chat model.Chat, viewerID string) fiber.Map {
	name := chat.Name
	if chat.Type == model.ChatTypePrivate {
		other, found := lo.Find(chat.Participants, func(p model.ChatParticipant) bool {
			return p.UserID != viewerID
		})
		if found {
			if user, err := Store.FindUserByID(other.UserID); err == nil {
				name = user.DisplayName()
			}
		}
	}

	return fiber.Map{
		"chatId": chat.ChatID,
		"type":   chat.Type,
		"name":   name,
		"participants": lo.Map(chat.Participants, func(p model.ChatParticipant, _ int) string {
			return p.UserID
		}),
		"updatedAt": chat.UpdatedAt,
	}
}

func MessengerChats(c *fiber.Ctx) error {
	id := identity(c)
	chats, err := Messenger.Chats(id)
	if err != nil {
		return internalError(c)
	}
	return success(c, lo.Map(chats, func(chat model.Chat, _ int) fiber.Map {
		return chatView(chat, id.UserID)
	}))
}

func MessengerChat(c *fiber.Ctx) error {
	id := identity(c)
	chat, err := Messenger.Chat(id, c.Params("id"))
	if err != nil {
		return failure(c, err)
	}
	return success(c, chatView(*chat, id.UserID))
}

func MessengerCreatePrivateChat(c *fiber.Ctx) error {
	input := new(ChatCreatePrivateInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Review your input")
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(c, "Review your input")
	}

	id := identity(c)
	chat, err := Messenger.CreatePrivateChat(id, input.OtherUserID)
	if err != nil {
		return failure(c, err)
	}
	return success(c, chatView(*chat, id.UserID))
}

func MessengerCreateGroupChat(c *fiber.Ctx) error {
	input := new(ChatCreateGroupInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Review your input")
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(c, "Review your input")
	}

	id := identity(c)
	chat, err := Messenger.CreateGroupChat(id, input.Name, input.Participants)
	if err != nil {
		return failure(c, err)
	}
	return success(c, chatView(*chat, id.UserID))
}

// MessengerMessages returns a chat's full ordered history. This is
// also the resynchronization path after a reconnect.
func MessengerMessages(c *fiber.Ctx) error {
	messages, err := Messenger.History(identity(c), c.Params("chatId"))
	if err != nil {
		return failure(c, err)
	}
	return success(c, messages)
}

// MessengerUpload stores multipart files and sends one file message
// carrying their descriptors.
func MessengerUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "No files uploaded")
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		return badRequest(c, "No files uploaded")
	}

	chatID := c.FormValue("chatId")
	text := c.FormValue("text")
	limits := uploadLimits()

	files := make([]model.MessageFile, 0, len(uploads))
	for _, upload := range uploads {
		data, err := readMultipartFile(upload)
		if err != nil {
			return internalError(c)
		}

		mime, err := limits.Validate(data)
		if err != nil {
			return failure(c, err)
		}

		locator, err := Blobs.Put(data, upload.Filename)
		if err != nil {
			return internalError(c)
		}

		files = append(files, model.MessageFile{
			Name:    upload.Filename,
			Size:    upload.Size,
			Mime:    mime,
			Locator: locator,
		})
	}

	message, err := Messenger.Send(identity(c), chatID, text, files)
	if err != nil {
		// The message never existed; reclaim the blobs.
		for _, file := range files {
			Blobs.Delete(file.Locator)
		}
		return failure(c, err)
	}

	return success(c, message)
}

// MessengerFile streams a stored blob back by locator.
func MessengerFile(c *fiber.Ctx) error {
	locator := "/uploads/" + path.Base(c.Params("name"))
	data, err := Blobs.Get(locator)
	if err != nil {
		return failure(c, err)
	}
	return c.Send(data)
}

// AdminFilesCleanup sweeps blobs no longer referenced by any message
// or avatar. Casbin-gated to the admin role.
func AdminFilesCleanup(c *fiber.Ctx) error {
	used := map[string]struct{}{}

	messages, err := Store.FindMessagesWithFiles()
	if err != nil {
		return internalError(c)
	}
	for _, message := range messages {
		for _, file := range message.Files {
			used[file.Locator] = struct{}{}
		}
	}

	users, err := Store.FindUsers()
	if err != nil {
		return internalError(c)
	}
	for _, user := range users {
		if user.Avatar != "" {
			used[user.Avatar] = struct{}{}
		}
	}

	removed, err := Blobs.Sweep(used)
	if err != nil {
		return internalError(c)
	}
	return success(c, fiber.Map{"removed": removed})
}

func uploadLimits() blob.Limits {
	return blob.Limits{MaxSize: maxSize("UPLOAD_MAX_SIZE", 10<<20)}
}

func avatarLimits() blob.Limits {
	return blob.Limits{
		MaxSize:     maxSize("AVATAR_MAX_SIZE", 5<<20),
		AllowedMime: []string{"image/"},
	}
}

func maxSize(key string, fallback int64) int64 {
	if raw := config.Config(key); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}
