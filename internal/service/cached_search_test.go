package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/macrolog/backend/internal/model"
	"github.com/pageza/macrolog/backend/internal/testhelpers"
)

// fakeSearcher records queries and answers from a fixed table
type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	results map[string][]model.MacroRecord
	err     error
	delay   func(query string) time.Duration
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]model.MacroRecord, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	err := f.err
	records := f.results[query]
	delay := f.delay
	f.mu.Unlock()

	if delay != nil {
		select {
		case <-time.After(delay(query)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (f *fakeSearcher) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

var bananaRecord = model.MacroRecord{
	Name:        "Banana",
	Macros:      model.Macros{Calories: 89, Protein: 1.1, Carbs: 22.8, Fat: 0.3},
	ServingSize: "1 medium (118g)",
}

func TestCachedSearcherPassThroughWithoutRedis(t *testing.T) {
	inner := &fakeSearcher{results: map[string][]model.MacroRecord{"banana": {bananaRecord}}}
	cached := NewCachedSearcher(inner, nil, time.Minute, nil)

	for i := 0; i < 2; i++ {
		records, err := cached.Search(context.Background(), "banana")
		require.NoError(t, err)
		assert.Equal(t, []model.MacroRecord{bananaRecord}, records)
	}
	assert.Len(t, inner.Queries(), 2)
}

func TestCachedSearcherShortQuery(t *testing.T) {
	inner := &fakeSearcher{}
	cached := NewCachedSearcher(inner, nil, time.Minute, nil)

	records, err := cached.Search(context.Background(), " x ")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, inner.Queries())
}

func TestCachedSearcherRedis(t *testing.T) {
	client := testhelpers.SetupTestRedis(t)
	ctx := context.Background()

	t.Run("hit skips upstream", func(t *testing.T) {
		inner := &fakeSearcher{results: map[string][]model.MacroRecord{"banana": {bananaRecord}}}
		cached := NewCachedSearcher(inner, client, time.Minute, nil)

		first, err := cached.Search(ctx, "banana")
		require.NoError(t, err)
		second, err := cached.Search(ctx, "  BANANA ")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, []string{"banana"}, inner.Queries())

		ttl, err := client.TTL(ctx, searchCacheKey("banana")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("errors are not cached", func(t *testing.T) {
		inner := &fakeSearcher{err: errors.New("boom")}
		cached := NewCachedSearcher(inner, client, time.Minute, nil)

		_, err := cached.Search(ctx, "apple")
		require.Error(t, err)

		exists, err := client.Exists(ctx, searchCacheKey("apple")).Result()
		require.NoError(t, err)
		assert.Zero(t, exists)
	})

	t.Run("empty results are cached", func(t *testing.T) {
		inner := &fakeSearcher{results: map[string][]model.MacroRecord{}}
		cached := NewCachedSearcher(inner, client, time.Minute, nil)

		for i := 0; i < 3; i++ {
			records, err := cached.Search(ctx, "zzqx")
			require.NoError(t, err)
			assert.Empty(t, records)
		}
		assert.Len(t, inner.Queries(), 1)
	})

	t.Run("corrupt entry is replaced", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, searchCacheKey("kiwi"), "not json", time.Minute).Err())
		kiwi := model.MacroRecord{Name: "Kiwi", Macros: model.Macros{Calories: 61}, ServingSize: "100g"}
		inner := &fakeSearcher{results: map[string][]model.MacroRecord{"kiwi": {kiwi}}}
		cached := NewCachedSearcher(inner, client, time.Minute, nil)

		records, err := cached.Search(ctx, "kiwi")
		require.NoError(t, err)
		assert.Equal(t, []model.MacroRecord{kiwi}, records)
	})
}
