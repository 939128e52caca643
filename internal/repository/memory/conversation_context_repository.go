package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agent-assist-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ConversationContextRepository keeps contexts in process memory. Entries
// expire lifespan after their last save. Each entry is an encoded snapshot,
// so changes to a context returned by Get are only kept once it is saved.
type ConversationContextRepository struct {
	cache *cache.Cache
	locks *KeyedMutex
}

func NewConversationContextRepository(lifespan time.Duration) *ConversationContextRepository {
	if lifespan <= 0 {
		lifespan = time.Hour
	}
	return &ConversationContextRepository{
		cache: cache.New(lifespan, 10*time.Minute),
		locks: NewKeyedMutex(),
	}
}

func (r *ConversationContextRepository) Get(ctx context.Context, chatKey uuid.UUID) (*entity.ConversationContext, bool, error) {
	x, found := r.cache.Get(chatKey.String())
	if !found {
		return nil, false, nil
	}

	var conv entity.ConversationContext
	if err := json.Unmarshal(x.([]byte), &conv); err != nil {
		return nil, false, fmt.Errorf("decode conversation %s: %w", chatKey, err)
	}
	conv.RestoreReferences()
	return &conv, true, nil
}

func (r *ConversationContextRepository) Save(ctx context.Context, conv *entity.ConversationContext) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode conversation %s: %w", conv.ChatKey, err)
	}
	r.cache.Set(conv.ChatKey.String(), data, cache.DefaultExpiration)
	return nil
}

func (r *ConversationContextRepository) Delete(ctx context.Context, chatKey uuid.UUID) error {
	r.cache.Delete(chatKey.String())
	return nil
}

func (r *ConversationContextRepository) Lock(chatKey uuid.UUID) func() {
	return r.locks.Lock(chatKey)
}
