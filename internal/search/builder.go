// internal/search/builder.go

// Package search assembles the paginated response envelope: ranked results,
// facet counts over the full set, query suggestions and the best-effort
// analytics side effect.
package search

import (
	"context"
	"time"

	"bamaai-connect/internal/common/logger"
	"bamaai-connect/internal/models"
	"bamaai-connect/internal/search/analytics"
)

// Page describes the requested slice.
type Page struct {
	Number int // zero-based
	Size   int
}

// Builder assembles response envelopes. Facets and totalCount always cover
// the full pre-pagination set.
type Builder struct {
	suggestions SuggestionSource
	analytics   analytics.Recorder
	logger      logger.Logger
}

func NewBuilder(suggestions SuggestionSource, rec analytics.Recorder, log logger.Logger) *Builder {
	return &Builder{
		suggestions: suggestions,
		analytics:   rec,
		logger:      log.WithFields(map[string]interface{}{"component": "response-builder"}),
	}
}

// BuildMatches assembles a match response. The results must already be
// ranked; pagination slices them without reordering.
func (b *Builder) BuildMatches(ctx context.Context, results []models.MatchResult, query, sessionID string, filters map[string]interface{}, page Page, started time.Time) models.MatchResponse {
	records := make([]models.BusinessRecord, len(results))
	for i, r := range results {
		records[i] = r.Business
	}

	resp := models.MatchResponse{
		Matches:      paginateMatches(results, page),
		TotalCount:   len(results),
		Suggestions:  b.suggestions.Suggest(ctx, query),
		Facets:       ComputeFacets(records),
		SearchTimeMs: time.Since(started).Milliseconds(),
	}

	b.record(ctx, query, sessionID, filters, len(results), resp.SearchTimeMs)
	return resp
}

// BuildSearch assembles a plain directory search response from scored
// candidates.
func (b *Builder) BuildSearch(ctx context.Context, candidates []models.CandidateMatch, query, sessionID string, filters map[string]interface{}, page Page, started time.Time) models.SearchResponse {
	records := make([]models.BusinessRecord, len(candidates))
	results := make([]models.SearchResult, len(candidates))
	for i, c := range candidates {
		records[i] = c.Business
		results[i] = models.SearchResult{
			ID:       c.Business.ID,
			Name:     c.Business.Name,
			Category: c.Business.Category,
			Location: c.Business.Location,
			Rating:   c.Business.Rating,
			Verified: c.Business.Verified,
			Score:    c.BaseScore,
		}
	}

	resp := models.SearchResponse{
		Results:      paginateResults(results, page),
		TotalCount:   len(results),
		Suggestions:  b.suggestions.Suggest(ctx, query),
		Facets:       ComputeFacets(records),
		SearchTimeMs: time.Since(started).Milliseconds(),
	}

	b.record(ctx, query, sessionID, filters, len(results), resp.SearchTimeMs)
	return resp
}

func (b *Builder) record(ctx context.Context, query, sessionID string, filters map[string]interface{}, resultCount int, durationMs int64) {
	b.suggestions.RecordQuery(ctx, query)
	b.analytics.Record(ctx, models.AnalyticsEvent{
		SessionID:   sessionID,
		Query:       query,
		Filters:     filters,
		ResultCount: resultCount,
		DurationMs:  durationMs,
	})
}

func paginateMatches(results []models.MatchResult, page Page) []models.MatchResult {
	start, end := pageBounds(len(results), page)
	out := make([]models.MatchResult, 0, end-start)
	return append(out, results[start:end]...)
}

func paginateResults(results []models.SearchResult, page Page) []models.SearchResult {
	start, end := pageBounds(len(results), page)
	out := make([]models.SearchResult, 0, end-start)
	return append(out, results[start:end]...)
}

func pageBounds(total int, page Page) (int, int) {
	if page.Size <= 0 {
		page.Size = 10
	}
	if page.Number < 0 {
		page.Number = 0
	}
	start := page.Number * page.Size
	if start > total {
		start = total
	}
	end := start + page.Size
	if end > total {
		end = total
	}
	return start, end
}
