package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/grand-tour/pkg/leaderboard"
	"github.com/jwebster45206/grand-tour/pkg/state"
)

const (
	sessionKeyPrefix = "session:"
	leaderboardKey   = "leaderboard"
)

// RedisStorage implements Storage on Redis: session blobs with a TTL,
// and the leaderboard as a sorted set trimmed to its cap.
type RedisStorage struct {
	client     *redis.Client
	logger     *slog.Logger
	sessionTTL time.Duration
	capacity   int
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance.
func NewRedisStorage(redisURL string, sessionTTL time.Duration, capacity int, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	if capacity <= 0 {
		capacity = leaderboard.DefaultCapacity
	}

	return &RedisStorage{
		client:     rdb,
		logger:     logger,
		sessionTTL: sessionTTL,
		capacity:   capacity,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// PlayerState operations

func (r *RedisStorage) SavePlayerState(ctx context.Context, id uuid.UUID, ps *state.PlayerState) error {
	ps.UpdatedAt = time.Now()

	data, err := json.Marshal(ps)
	if err != nil {
		r.logger.Error("Failed to marshal player state", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal player state: %w", err)
	}

	key := sessionKeyPrefix + id.String()
	cmd := r.client.Set(ctx, key, string(data), r.sessionTTL)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to save player state", "uuid", id, "error", err)
		return fmt.Errorf("failed to save player state: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadPlayerState(ctx context.Context, id uuid.UUID) (*state.PlayerState, error) {
	key := sessionKeyPrefix + id.String()
	cmd := r.client.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			r.logger.Warn("Player state not found", "uuid", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load player state", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load player state: %w", err)
	}

	data := cmd.Val()
	if data == "" {
		r.logger.Warn("Player state not found", "uuid", id)
		return nil, nil
	}

	var ps state.PlayerState
	if err := json.Unmarshal([]byte(data), &ps); err != nil {
		r.logger.Error("Failed to unmarshal player state", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal player state: %w", err)
	}

	return &ps, nil
}

func (r *RedisStorage) DeletePlayerState(ctx context.Context, id uuid.UUID) error {
	key := sessionKeyPrefix + id.String()
	cmd := r.client.Del(ctx, key)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to delete player state", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete player state: %w", err)
	}
	return nil
}

// Leaderboard operations (sorted set, score-ordered)

func (r *RedisStorage) RecordScore(ctx context.Context, entry leaderboard.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard entry: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(entry.Score),
		Member: string(data),
	})
	// Keep only the top entries.
	pipe.ZRemRangeByRank(ctx, leaderboardKey, 0, int64(-(r.capacity + 1)))
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to record score", "player", entry.PlayerName, "error", err)
		return fmt.Errorf("failed to record score: %w", err)
	}

	return nil
}

func (r *RedisStorage) TopScores(ctx context.Context, k int) ([]leaderboard.Entry, error) {
	if k <= 0 || k > r.capacity {
		k = r.capacity
	}

	cmd := r.client.ZRevRange(ctx, leaderboardKey, 0, int64(k-1))
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to read leaderboard", "error", err)
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	members := cmd.Val()
	entries := make([]leaderboard.Entry, 0, len(members))
	for _, m := range members {
		var e leaderboard.Entry
		if err := json.Unmarshal([]byte(m), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}
