// internal/search/suggestions.go
package search

import (
	"context"
	"strings"

	"bamaai-connect/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const (
	maxSuggestions   = 5
	suggestionZSet   = "search:queries"
	suggestionWindow = 200 // how many popular queries to scan per lookup
)

// SuggestionSource serves query completions ordered by popularity.
type SuggestionSource interface {
	Suggest(ctx context.Context, prefix string) []string
	RecordQuery(ctx context.Context, query string)
}

// RedisSuggestions keeps a popularity-scored set of historical query strings.
// Both lookup and recording are best-effort; failures return empty results.
type RedisSuggestions struct {
	rdb    *redis.Client
	logger logger.Logger
}

func NewRedisSuggestions(rdb *redis.Client, log logger.Logger) *RedisSuggestions {
	return &RedisSuggestions{
		rdb:    rdb,
		logger: log.WithFields(map[string]interface{}{"component": "suggestions"}),
	}
}

// Suggest returns up to five historical queries matching the prefix, most
// popular first.
func (s *RedisSuggestions) Suggest(ctx context.Context, prefix string) []string {
	out := []string{}
	prefix = normalizeQuery(prefix)
	if prefix == "" {
		return out
	}

	popular, err := s.rdb.ZRevRange(ctx, suggestionZSet, 0, suggestionWindow-1).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("suggestion lookup failed", map[string]interface{}{"error": err.Error()})
		}
		return out
	}

	for _, q := range popular {
		if strings.HasPrefix(q, prefix) && q != prefix {
			out = append(out, q)
			if len(out) >= maxSuggestions {
				break
			}
		}
	}
	return out
}

// RecordQuery bumps the popularity of a query string.
func (s *RedisSuggestions) RecordQuery(ctx context.Context, query string) {
	query = normalizeQuery(query)
	if query == "" {
		return
	}
	if err := s.rdb.ZIncrBy(ctx, suggestionZSet, 1, query).Err(); err != nil {
		s.logger.Warn("suggestion record failed", map[string]interface{}{"error": err.Error()})
	}
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// NoopSuggestions serves no completions; used when Redis is not configured.
type NoopSuggestions struct{}

func (NoopSuggestions) Suggest(context.Context, string) []string { return []string{} }
func (NoopSuggestions) RecordQuery(context.Context, string)      {}
