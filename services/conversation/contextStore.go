package conversation

import (
	"context"
	"encoding/json"
	"time"

	"voicedesk/models"

	"github.com/go-redis/redis/v8"
)

const contextPrefix = "conv:ctx:"

// RedisContextStore holds conversation contexts with a TTL refreshed on every
// write, which doubles as the idle-eviction policy.
type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, sessionID string) (*models.ConversationContext, error) {
	key := contextPrefix + sessionID
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return newContext(sessionID), nil
	}
	if err != nil {
		return nil, err
	}
	var convCtx models.ConversationContext
	if err := json.Unmarshal([]byte(data), &convCtx); err != nil {
		return nil, err
	}
	if convCtx.Slots == nil {
		convCtx.Slots = make(map[string]string)
	}
	return &convCtx, nil
}

func (s *RedisContextStore) Set(ctx context.Context, sessionID string, convCtx *models.ConversationContext) error {
	key := contextPrefix + sessionID
	b, err := json.Marshal(convCtx)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, s.ttl).Err()
}

func (s *RedisContextStore) Clear(ctx context.Context, sessionID string) error {
	key := contextPrefix + sessionID
	return s.client.Del(ctx, key).Err()
}

func newContext(sessionID string) *models.ConversationContext {
	return &models.ConversationContext{
		SessionID: sessionID,
		State:     models.StateIdle,
		Intent:    models.IntentUnknown,
		Slots:     make(map[string]string),
	}
}
