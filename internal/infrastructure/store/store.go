package store

import (
	"context"
	"errors"
	"fmt"

	"recipe-clipper/internal/core/recipe"
	"recipe-clipper/internal/infrastructure/config"
)

// ErrNotFound 食譜不存在
var ErrNotFound = errors.New("recipe not found")

// Store 食譜儲存介面
// Save 以 ID upsert，同一網址重複擷取只會留下一筆
type Store interface {
	Get(ctx context.Context, id string) (*recipe.Recipe, error)
	Save(ctx context.Context, r *recipe.Recipe) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	// List 依儲存時間由新到舊回傳最多 limit 筆
	List(ctx context.Context, limit int) ([]*recipe.Recipe, error)
	Ping(ctx context.Context) error
	Close() error
}

// New 依設定建立儲存
func New(ctx context.Context, cfg *config.StoreConfig) (Store, error) {
	switch cfg.Type {
	case "redis":
		return NewRedisStore(ctx, cfg)
	case "memory", "":
		return NewMemoryStore(cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}
