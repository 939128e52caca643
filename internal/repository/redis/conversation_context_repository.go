package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agent-assist-be/internal/entity"
	"agent-assist-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "conversation:"

// ConversationContextRepository shares contexts between instances. Each
// context is one JSON value whose TTL is refreshed on every save. Locking
// is per process; a conversation is expected to stick to one instance.
type ConversationContextRepository struct {
	rdb      *redis.Client
	lifespan time.Duration
	locks    *memory.KeyedMutex
}

func NewConversationContextRepository(rdb *redis.Client, lifespan time.Duration) *ConversationContextRepository {
	if lifespan <= 0 {
		lifespan = time.Hour
	}
	return &ConversationContextRepository{
		rdb:      rdb,
		lifespan: lifespan,
		locks:    memory.NewKeyedMutex(),
	}
}

func key(chatKey uuid.UUID) string {
	return keyPrefix + chatKey.String()
}

func (r *ConversationContextRepository) Get(ctx context.Context, chatKey uuid.UUID) (*entity.ConversationContext, bool, error) {
	raw, err := r.rdb.Get(ctx, key(chatKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get conversation %s: %w", chatKey, err)
	}

	var conv entity.ConversationContext
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, false, fmt.Errorf("decode conversation %s: %w", chatKey, err)
	}
	conv.RestoreReferences()
	return &conv, true, nil
}

func (r *ConversationContextRepository) Save(ctx context.Context, conv *entity.ConversationContext) error {
	raw, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, key(conv.ChatKey), raw, r.lifespan).Err(); err != nil {
		return fmt.Errorf("save conversation %s: %w", conv.ChatKey, err)
	}
	return nil
}

func (r *ConversationContextRepository) Delete(ctx context.Context, chatKey uuid.UUID) error {
	return r.rdb.Del(ctx, key(chatKey)).Err()
}

func (r *ConversationContextRepository) Lock(chatKey uuid.UUID) func() {
	return r.locks.Lock(chatKey)
}
