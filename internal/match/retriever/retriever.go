// internal/match/retriever/retriever.go

// Package retriever fetches the candidate set for a match or search request.
// It merges a text pass (semantic index when available, keyword filter
// otherwise) with a structured filter pass, deduplicates by business
// identity and caps the result ahead of scoring.
package retriever

import (
	"context"
	"errors"

	"bamaai-connect/internal/common/cache"
	stderrors "bamaai-connect/internal/common/errors"
	"bamaai-connect/internal/common/logger"
	"bamaai-connect/internal/common/metrics"
	"bamaai-connect/internal/models"
)

// BusinessStore is the keyword/filter retrieval capability over the catalog.
type BusinessStore interface {
	SearchKeyword(ctx context.Context, query string, limit int) ([]models.CandidateMatch, error)
	SearchFiltered(ctx context.Context, criteria models.SearchCriteria, limit int) ([]models.CandidateMatch, error)
	TopRated(ctx context.Context, limit int) ([]models.CandidateMatch, error)
}

// SemanticIndex is the optional vector/similarity search capability.
type SemanticIndex interface {
	Search(ctx context.Context, query string, threshold float64, limit int) ([]models.CandidateMatch, error)
}

// Config carries the retrieval knobs.
type Config struct {
	CandidateLimit      int
	SimilarityThreshold float64
}

// Retriever is read-only over its stores and safe for concurrent use.
type Retriever struct {
	store  BusinessStore
	index  SemanticIndex // nil when no semantic index is configured
	cache  *cache.Cache
	config Config
	logger logger.Logger
}

func New(store BusinessStore, index SemanticIndex, c *cache.Cache, cfg Config, log logger.Logger) *Retriever {
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = 20
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = 0.5
	}
	return &Retriever{
		store:  store,
		index:  index,
		cache:  c,
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"component": "retriever"}),
	}
}

// Retrieve returns the deduplicated, capped candidate set for the criteria.
// Store failures propagate as retrieval errors; there is no partial silent
// success. A semantic index failure alone degrades to the keyword pass.
func (r *Retriever) Retrieve(ctx context.Context, criteria models.SearchCriteria) ([]models.CandidateMatch, error) {
	cacheKey := cache.Key("candidates", criteria, r.config.CandidateLimit)
	var cached []models.CandidateMatch
	if r.cache.Get(ctx, cacheKey, &cached) {
		metrics.CacheHits.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.CacheHits.WithLabelValues("miss").Inc()

	var merged []models.CandidateMatch

	if criteria.QueryText != "" {
		textHits, err := r.textPass(ctx, criteria.QueryText)
		if err != nil {
			return nil, r.retrievalError(err)
		}
		merged = append(merged, textHits...)
	}

	if criteria.HasFilters() {
		filterHits, err := r.store.SearchFiltered(ctx, criteria, r.config.CandidateLimit)
		if err != nil {
			return nil, r.retrievalError(err)
		}
		merged = append(merged, filterHits...)
	}

	// Empty query and no filters: fall back to the top-rated businesses so
	// browsing without input still returns a useful set.
	if criteria.QueryText == "" && !criteria.HasFilters() {
		top, err := r.store.TopRated(ctx, r.config.CandidateLimit)
		if err != nil {
			return nil, r.retrievalError(err)
		}
		merged = append(merged, top...)
	}

	result := dedupe(merged, r.config.CandidateLimit)

	r.cache.Set(ctx, cacheKey, result, "businesses")
	return result, nil
}

// SemanticOnly runs just the similarity search, for the raw semantic task.
func (r *Retriever) SemanticOnly(ctx context.Context, query string, threshold float64, limit int) ([]models.SimilarityHit, error) {
	if r.index == nil {
		return []models.SimilarityHit{}, nil
	}
	if threshold <= 0 {
		threshold = r.config.SimilarityThreshold
	}
	if limit <= 0 || limit > r.config.CandidateLimit {
		limit = r.config.CandidateLimit
	}

	hits, err := r.index.Search(ctx, query, threshold, limit)
	if err != nil {
		return nil, r.retrievalError(err)
	}

	out := make([]models.SimilarityHit, 0, len(hits))
	for _, h := range hits {
		sim := 0.0
		if h.Similarity != nil {
			sim = *h.Similarity
		}
		out = append(out, models.SimilarityHit{Business: h.Business, Similarity: sim})
	}
	return out, nil
}

// textPass prefers the semantic index and degrades to the keyword filter
// when the index is missing or unreachable.
func (r *Retriever) textPass(ctx context.Context, query string) ([]models.CandidateMatch, error) {
	if r.index != nil {
		hits, err := r.index.Search(ctx, query, r.config.SimilarityThreshold, r.config.CandidateLimit)
		if err == nil {
			return hits, nil
		}
		stdErr := stderrors.NewSemanticUnavailableError(err)
		r.logger.Warn(stdErr.Message, map[string]interface{}{
			"code":  string(stdErr.Code),
			"error": err.Error(),
		})
	}
	return r.store.SearchKeyword(ctx, query, r.config.CandidateLimit)
}

func (r *Retriever) retrievalError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return stderrors.NewSearchTimeoutError("retrieve")
	}
	return stderrors.NewRetrievalFailedError(err)
}

// dedupe keeps the first occurrence of each business id and caps the result.
func dedupe(candidates []models.CandidateMatch, limit int) []models.CandidateMatch {
	seen := make(map[string]bool, len(candidates))
	out := make([]models.CandidateMatch, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.Business.ID] {
			continue
		}
		seen[c.Business.ID] = true
		out = append(out, c)
		if len(out) >= limit {
			break
		}
	}
	return out
}
