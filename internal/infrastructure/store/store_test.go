package store

import (
	"context"
	"testing"
	"time"

	"recipe-clipper/internal/core/recipe"
	"recipe-clipper/internal/infrastructure/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecipe(url, name string) *recipe.Recipe {
	return &recipe.Recipe{
		ID:           recipe.GenerateID(url),
		Name:         name,
		URL:          url,
		SourceURL:    url,
		Image:        "https://example.com/img.jpg",
		Ingredients:  []string{"1 egg"},
		Instructions: []string{"Boil"},
		RecipeInstructions: []recipe.HowToStep{
			{Type: "HowToStep", Text: "Boil"},
		},
		Nutrition: recipe.Nutrition{"calories": "70 kcal"},
	}
}

// clock 每次呼叫前進一秒，讓儲存順序可預期
func clock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStoreWithClient(client, "test:", 0)
	s.now = clock()
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func newMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore(0)
	s.now = clock()
	return s
}

func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)

	pie := sampleRecipe("https://example.com/pie", "Pie")
	soup := sampleRecipe("https://example.com/soup", "Soup")
	require.NoError(t, s.Save(ctx, pie))
	require.NoError(t, s.Save(ctx, soup))

	got, err := s.Get(ctx, pie.ID)
	require.NoError(t, err)
	assert.Equal(t, pie, got)

	ok, err := s.Exists(ctx, soup.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// 同一 ID 再次儲存為覆寫
	updated := sampleRecipe("https://example.com/pie", "Better Pie")
	require.NoError(t, s.Save(ctx, updated))

	list, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Better Pie", list[0].Name)
	assert.Equal(t, "Soup", list[1].Name)

	list, err = s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = s.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, s.Delete(ctx, soup.ID))
	ok, err = s.Exists(ctx, soup.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.Ping(ctx))
}

func TestMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, newMemoryStore(t))
}

func TestRedisStore_Contract(t *testing.T) {
	s, _ := newRedisStore(t)
	runStoreContract(t, s)
}

func TestRedisStore_Keys(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	r := sampleRecipe("https://example.com/pie", "Pie")
	require.NoError(t, s.Save(ctx, r))

	assert.True(t, mr.Exists("test:recipe:"+r.ID))
	members, err := mr.ZMembers("test:recipes")
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, members)
}

func TestRedisStore_ListPrunesExpired(t *testing.T) {
	s, mr := newRedisStore(t)
	s.ttl = time.Minute
	ctx := context.Background()

	r := sampleRecipe("https://example.com/pie", "Pie")
	require.NoError(t, s.Save(ctx, r))

	mr.FastForward(2 * time.Minute)

	list, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	members, err := mr.ZMembers("test:recipes")
	if err == nil {
		assert.Empty(t, members)
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	r := sampleRecipe("https://example.com/pie", "Pie")
	require.NoError(t, s.Save(ctx, r))

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err := s.Get(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()

	r := sampleRecipe("https://example.com/pie", "Pie")
	require.NoError(t, s.Save(ctx, r))

	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	got.Ingredients[0] = "changed"

	again, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "1 egg", again.Ingredients[0])
}

func TestNew(t *testing.T) {
	s, err := New(context.Background(), &config.StoreConfig{Type: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = New(context.Background(), &config.StoreConfig{Type: "s3"})
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	s, err = New(context.Background(), &config.StoreConfig{Type: "redis", RedisAddr: mr.Addr(), KeyPrefix: "x:"})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	assert.NoError(t, s.Close())
}
