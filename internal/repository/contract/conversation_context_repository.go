package contract

import (
	"context"

	"agent-assist-be/internal/entity"

	"github.com/google/uuid"
)

type ConversationContextRepository interface {
	// Get returns false when no live context exists for the chat key.
	Get(ctx context.Context, chatKey uuid.UUID) (*entity.ConversationContext, bool, error)
	Save(ctx context.Context, conv *entity.ConversationContext) error
	Delete(ctx context.Context, chatKey uuid.UUID) error
	// Lock serializes requests of one conversation. Callers must invoke the
	// returned unlock.
	Lock(chatKey uuid.UUID) (unlock func())
}
