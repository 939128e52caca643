package serverutils

import (
	"encoding/json"
	"time"

	"agent-assist-be/internal/entity"
	"agent-assist-be/internal/pkg/logger"
	"agent-assist-be/internal/repository/contract"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const conversationLocal = "conversation"

type chatKeyBody struct {
	ChatKey string `json:"chatkey"`
}

// ConversationContextMiddleware resolves the chat key of the request, holds
// the conversation lock for the whole request and loads or creates its
// context. The context is saved only when the handler succeeds.
func ConversationContextMiddleware(repo contract.ConversationContextRepository, log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		chatKey, err := resolveChatKey(ctx)
		if err != nil {
			return err
		}

		unlock := repo.Lock(chatKey)
		defer unlock()

		conv, found, err := repo.Get(ctx.UserContext(), chatKey)
		if err != nil {
			log.Error("ContextStore", "Failed to load conversation", map[string]interface{}{
				"chat_key": chatKey.String(),
				"error":    err.Error(),
			})
			return err
		}
		if !found {
			conv = entity.NewConversationContext(chatKey, time.Now())
			log.Debug("ContextStore", "Conversation created", map[string]interface{}{"chat_key": chatKey.String()})
		}

		ctx.Locals(conversationLocal, conv)

		if err := ctx.Next(); err != nil {
			return err
		}

		if err := repo.Save(ctx.UserContext(), conv); err != nil {
			log.Error("ContextStore", "Failed to save conversation", map[string]interface{}{
				"chat_key": chatKey.String(),
				"error":    err.Error(),
			})
			return err
		}
		return nil
	}
}

// Conversation returns the context loaded by ConversationContextMiddleware.
func Conversation(ctx *fiber.Ctx) *entity.ConversationContext {
	conv, _ := ctx.Locals(conversationLocal).(*entity.ConversationContext)
	return conv
}

func resolveChatKey(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw := ctx.Query("chatkey")
	if raw == "" && len(ctx.Body()) > 0 {
		var body chatKeyBody
		if err := json.Unmarshal(ctx.Body(), &body); err == nil {
			raw = body.ChatKey
		}
	}
	if raw == "" {
		return uuid.Nil, &ValidationError{Fields: map[string]string{"chatkey": "is required"}}
	}

	chatKey, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ValidationError{Fields: map[string]string{"chatkey": "must be a UUID"}}
	}
	return chatKey, nil
}
