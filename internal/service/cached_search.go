package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/model"
)

const searchCacheKeyPrefix = "food:search:"

// CachedSearcher keeps normalized search results in Redis so repeated
// queries skip the remote database.
type CachedSearcher struct {
	next  Searcher
	redis *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedSearcher wraps next. A nil redis client disables caching.
func NewCachedSearcher(next Searcher, redisClient *redis.Client, ttl time.Duration, log *logger.Logger) *CachedSearcher {
	if log == nil {
		log = logger.Discard()
	}
	return &CachedSearcher{
		next:  next,
		redis: redisClient,
		ttl:   ttl,
		log:   log.WithComponent("search_cache"),
	}
}

func searchCacheKey(query string) string {
	return searchCacheKeyPrefix + strings.ToLower(strings.TrimSpace(query))
}

// Search serves from the cache when possible. Upstream errors are returned
// untouched and never stored.
func (s *CachedSearcher) Search(ctx context.Context, query string) ([]model.MacroRecord, error) {
	q, ok := NormalizeQuery(query)
	if !ok {
		return []model.MacroRecord{}, nil
	}
	if s.redis == nil {
		return s.next.Search(ctx, q)
	}

	key := searchCacheKey(q)
	data, err := s.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var records []model.MacroRecord
		if jerr := json.Unmarshal(data, &records); jerr == nil {
			return records, nil
		}
		s.log.Warn("discarding corrupt cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		s.log.Warn("search cache read failed", "key", key, "error", err)
	}

	records, err := s.next.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(records)
	if err == nil {
		err = s.redis.Set(ctx, key, payload, s.ttl).Err()
	}
	if err != nil {
		s.log.Warn("search cache write failed", "key", key, "error", err)
	}
	return records, nil
}
