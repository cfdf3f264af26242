package handlers

import (
	"github.com/minnehack2026-blugolds/backend/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ChatHandler struct {
	Chat *services.ChatService
	Log  *zap.Logger
}

func NewChatHandler(chat *services.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{Chat: chat, Log: log}
}

// CreateConversationRequest defines payload for starting a chat about a post
type CreateConversationRequest struct {
	PostID uint `json:"post_id"`
}

// SendMessageRequest defines payload for posting a message
type SendMessageRequest struct {
	Body string `json:"body"`
}

// CreateConversation - POST /chat/conversations
// Returns the existing conversation when the caller already has one for the post.
func (h *ChatHandler) CreateConversation(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req CreateConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}
	if req.PostID == 0 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "post_id is required")
	}

	conv, err := h.Chat.CreateOrGet(c.UserContext(), req.PostID, user.ID)
	if err != nil {
		return serviceError(c, h.Log, err)
	}

	summary, err := h.Chat.Summary(c.UserContext(), user.ID, *conv)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return c.JSON(summary)
}

// ListConversations - GET /chat/conversations
func (h *ChatHandler) ListConversations(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	inbox, err := h.Chat.ListInbox(c.UserContext(), user.ID)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return c.JSON(inbox)
}

// ListMessages - GET /chat/conversations/:id/messages?limit=&before_id=
func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	convID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	limit := services.DefaultPageLimit
	if v, err := optionalInt(c, "limit"); err != nil {
		return err
	} else if v != nil {
		limit = int(*v)
	}

	var beforeID *uint
	if v, err := optionalInt(c, "before_id"); err != nil {
		return err
	} else if v != nil {
		if *v < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid before_id")
		}
		id := uint(*v)
		beforeID = &id
	}

	messages, err := h.Chat.ListPage(c.UserContext(), convID, user.ID, limit, beforeID)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return c.JSON(messages)
}

// SendMessage - POST /chat/conversations/:id/messages
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	convID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}

	msg, err := h.Chat.Append(c.UserContext(), convID, user.ID, req.Body)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return c.JSON(msg)
}

// MarkRead - POST /chat/conversations/:id/read
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	convID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	last, err := h.Chat.MarkRead(c.UserContext(), convID, user.ID)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return c.JSON(fiber.Map{
		"ok":                   true,
		"last_read_message_id": last,
	})
}
