package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"recipe-clipper/internal/core/recipe"
	"recipe-clipper/internal/pkg/common"
)

// memoryEntry 以 JSON 保存，讀取時得到新的副本，行為與 Redis 一致
type memoryEntry struct {
	data      []byte
	savedAt   time.Time
	expiresAt time.Time // 零值表示不過期
}

// MemoryStore 記憶體儲存，用於開發與測試
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryStore 建立記憶體儲存，ttl 為 0 表示不過期
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		data: make(map[string]memoryEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}

// Get 取得食譜
func (s *MemoryStore) Get(ctx context.Context, id string) (*recipe.Recipe, error) {
	s.mu.RLock()
	e, ok := s.data[id]
	s.mu.RUnlock()

	if !ok || s.expired(e) {
		return nil, ErrNotFound
	}

	var r recipe.Recipe
	if err := common.ParseJSONBytes(e.data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe: %w", err)
	}
	return &r, nil
}

// Save 寫入食譜
func (s *MemoryStore) Save(ctx context.Context, r *recipe.Recipe) error {
	data, err := common.MarshalJSON(r)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	now := s.now()
	e := memoryEntry{data: data, savedAt: now}
	if s.ttl > 0 {
		e.expiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	s.data[r.ID] = e
	s.mu.Unlock()
	return nil
}

// Delete 刪除食譜，不存在時回傳 ErrNotFound
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.data, id)
	if s.expired(e) {
		return ErrNotFound
	}
	return nil
}

// Exists 食譜是否存在
func (s *MemoryStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[id]
	return ok && !s.expired(e), nil
}

// List 由新到舊列出食譜
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*recipe.Recipe, error) {
	if limit <= 0 {
		return []*recipe.Recipe{}, nil
	}

	s.mu.RLock()
	entries := make([]memoryEntry, 0, len(s.data))
	for _, e := range s.data {
		if !s.expired(e) {
			entries = append(entries, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].savedAt.After(entries[j].savedAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	recipes := make([]*recipe.Recipe, 0, len(entries))
	for _, e := range entries {
		var r recipe.Recipe
		if err := common.ParseJSONBytes(e.data, &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recipe: %w", err)
		}
		recipes = append(recipes, &r)
	}
	return recipes, nil
}

// Ping 記憶體儲存永遠可用
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close 清空資料
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.data = make(map[string]memoryEntry)
	s.mu.Unlock()
	return nil
}
