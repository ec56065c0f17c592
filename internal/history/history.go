package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/XavierBriggs/fortuna/services/stake-advisor/pkg/models"
	"github.com/redis/go-redis/v9"
)

const historyKey = "stake-advisor:history"

// Store keeps a bounded list of recent evaluations.
type Store interface {
	Append(ctx context.Context, entry models.HistoryEntry) error
	Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}

// RedisStore keeps history in a capped Redis list, newest first.
type RedisStore struct {
	client *redis.Client
	maxLen int64
}

// NewRedisStore creates a history store capped at maxLen entries.
func NewRedisStore(client *redis.Client, maxLen int) *RedisStore {
	if maxLen <= 0 {
		maxLen = 50
	}
	return &RedisStore{
		client: client,
		maxLen: int64(maxLen),
	}
}

// Append pushes an entry and trims the list to its cap.
func (s *RedisStore) Append(ctx context.Context, entry models.HistoryEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, historyKey, payload)
	pipe.LTrim(ctx, historyKey, 0, s.maxLen-1)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *RedisStore) Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 || int64(limit) > s.maxLen {
		limit = int(s.maxLen)
	}

	raw, err := s.client.LRange(ctx, historyKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	entries := make([]models.HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var entry models.HistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			// Skip entries written by an incompatible version.
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
