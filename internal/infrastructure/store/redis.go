package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipe-clipper/internal/core/recipe"
	"recipe-clipper/internal/infrastructure/config"
	"recipe-clipper/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore 以 Redis 儲存食譜
//
//	<prefix>recipe:<id>  食譜 JSON，可設定 TTL
//	<prefix>recipes      以儲存時間為分數的 ID 有序集合
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore 建立 Redis 儲存並測試連線
func NewRedisStore(ctx context.Context, cfg *config.StoreConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis store connected",
		zap.String("addr", cfg.RedisAddr),
		zap.Int("db", cfg.DB),
		zap.String("prefix", cfg.KeyPrefix),
	)

	return NewRedisStoreWithClient(client, cfg.KeyPrefix, cfg.TTL), nil
}

// NewRedisStoreWithClient 以既有的 client 建立 Redis 儲存
func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *RedisStore) recipeKey(id string) string {
	return s.prefix + "recipe:" + id
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "recipes"
}

// Get 取得食譜
func (s *RedisStore) Get(ctx context.Context, id string) (*recipe.Recipe, error) {
	data, err := s.client.Get(ctx, s.recipeKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	var r recipe.Recipe
	if err := common.ParseJSONBytes(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe: %w", err)
	}
	return &r, nil
}

// Save 寫入食譜並更新索引
func (s *RedisStore) Save(ctx context.Context, r *recipe.Recipe) error {
	data, err := common.MarshalJSON(r)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recipeKey(r.ID), data, s.ttl)
		pipe.ZAdd(ctx, s.indexKey(), &redis.Z{
			Score:  float64(s.now().UnixNano()),
			Member: r.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// Delete 刪除食譜，不存在時回傳 ErrNotFound
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.recipeKey(id))
		pipe.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists 食譜是否存在
func (s *RedisStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.recipeKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check recipe: %w", err)
	}
	return n > 0, nil
}

// List 由新到舊列出食譜；已過期的 ID 會順便從索引移除
func (s *RedisStore) List(ctx context.Context, limit int) ([]*recipe.Recipe, error) {
	if limit <= 0 {
		return []*recipe.Recipe{}, nil
	}

	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe ids: %w", err)
	}
	if len(ids) == 0 {
		return []*recipe.Recipe{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recipeKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	recipes := make([]*recipe.Recipe, 0, len(values))
	var stale []interface{}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var r recipe.Recipe
		if err := common.ParseJSON(raw, &r); err != nil {
			common.LogWarn("Skipping unreadable recipe", zap.String("id", ids[i]), zap.Error(err))
			continue
		}
		recipes = append(recipes, &r)
	}

	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			common.LogWarn("Failed to prune recipe index", zap.Error(err))
		}
	}

	return recipes, nil
}

// Ping 測試連線
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
