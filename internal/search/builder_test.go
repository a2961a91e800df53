// internal/search/builder_test.go
package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bamaai-connect/internal/common/logger"
	"bamaai-connect/internal/models"
	"bamaai-connect/internal/search/analytics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingSuggestions struct {
	recorded []string
	serve    []string
}

func (c *capturingSuggestions) Suggest(context.Context, string) []string {
	if c.serve == nil {
		return []string{}
	}
	return c.serve
}

func (c *capturingSuggestions) RecordQuery(_ context.Context, query string) {
	c.recorded = append(c.recorded, query)
}

type capturingRecorder struct {
	events []models.AnalyticsEvent
}

func (c *capturingRecorder) Record(_ context.Context, event models.AnalyticsEvent) {
	c.events = append(c.events, event)
}

func matchResults(n int) []models.MatchResult {
	out := make([]models.MatchResult, n)
	for i := range out {
		out[i] = models.MatchResult{
			Business: models.BusinessRecord{
				ID:       fmt.Sprintf("biz-%02d", i),
				Category: "Technology",
			},
			MatchScore: 100 - i,
		}
	}
	return out
}

func TestBuildMatches_PaginatesButCountsFullSet(t *testing.T) {
	sugg := &capturingSuggestions{serve: []string{"ai consulting"}}
	rec := &capturingRecorder{}
	b := NewBuilder(sugg, rec, logger.NewTestLogger(t))

	resp := b.BuildMatches(context.Background(), matchResults(25), "ai", "sess-1",
		map[string]interface{}{"category": "Technology"}, Page{Number: 1, Size: 10}, time.Now())

	assert.Equal(t, 25, resp.TotalCount)
	require.Len(t, resp.Matches, 10)
	assert.Equal(t, "biz-10", resp.Matches[0].Business.ID)
	assert.Equal(t, "biz-19", resp.Matches[9].Business.ID)

	// Facets cover all 25 results, not just the page.
	require.Len(t, resp.Facets.Categories, 1)
	assert.Equal(t, 25, resp.Facets.Categories[0].Count)

	assert.Equal(t, []string{"ai consulting"}, resp.Suggestions)
	assert.GreaterOrEqual(t, resp.SearchTimeMs, int64(0))
}

func TestBuildMatches_RecordsAnalytics(t *testing.T) {
	rec := &capturingRecorder{}
	b := NewBuilder(&capturingSuggestions{}, rec, logger.NewTestLogger(t))

	b.BuildMatches(context.Background(), matchResults(3), "robotics", "sess-9",
		map[string]interface{}{"location": "Huntsville"}, Page{Size: 10}, time.Now())

	require.Len(t, rec.events, 1)
	e := rec.events[0]
	assert.Equal(t, "robotics", e.Query)
	assert.Equal(t, "sess-9", e.SessionID)
	assert.Equal(t, 3, e.ResultCount)
	assert.Equal(t, map[string]interface{}{"location": "Huntsville"}, e.Filters)
}

func TestBuildMatches_RecordsQueryForSuggestions(t *testing.T) {
	sugg := &capturingSuggestions{}
	b := NewBuilder(sugg, &capturingRecorder{}, logger.NewTestLogger(t))

	b.BuildMatches(context.Background(), nil, "data analytics", "", nil, Page{Size: 10}, time.Now())

	assert.Equal(t, []string{"data analytics"}, sugg.recorded)
}

func TestBuildMatches_PageBeyondEnd(t *testing.T) {
	b := NewBuilder(&capturingSuggestions{}, &capturingRecorder{}, logger.NewTestLogger(t))

	resp := b.BuildMatches(context.Background(), matchResults(5), "q", "",
		nil, Page{Number: 3, Size: 10}, time.Now())

	assert.Equal(t, 5, resp.TotalCount)
	assert.NotNil(t, resp.Matches)
	assert.Empty(t, resp.Matches)
}

func TestBuildSearch_FlattensCandidates(t *testing.T) {
	rating := 4.2
	candidates := []models.CandidateMatch{
		{
			Business: models.BusinessRecord{
				ID: "b1", Name: "Vision Labs", Category: "Technology",
				Location: "Huntsville", Rating: &rating, Verified: true,
			},
			BaseScore: 90,
		},
		{
			Business:  models.BusinessRecord{ID: "b2", Name: "Acme"},
			BaseScore: 55,
		},
	}

	b := NewBuilder(&capturingSuggestions{}, &capturingRecorder{}, logger.NewTestLogger(t))
	resp := b.BuildSearch(context.Background(), candidates, "vision", "",
		nil, Page{Size: 10}, time.Now())

	assert.Equal(t, 2, resp.TotalCount)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, models.SearchResult{
		ID: "b1", Name: "Vision Labs", Category: "Technology",
		Location: "Huntsville", Rating: &rating, Verified: true, Score: 90,
	}, resp.Results[0])
	assert.Equal(t, 1, resp.Facets.Verified)
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		page       Page
		start, end int
	}{
		{"first page", 25, Page{Number: 0, Size: 10}, 0, 10},
		{"middle page", 25, Page{Number: 1, Size: 10}, 10, 20},
		{"partial last page", 25, Page{Number: 2, Size: 10}, 20, 25},
		{"past the end", 25, Page{Number: 9, Size: 10}, 25, 25},
		{"zero size defaults", 25, Page{Number: 0, Size: 0}, 0, 10},
		{"negative page clamps", 25, Page{Number: -2, Size: 10}, 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := pageBounds(tt.total, tt.page)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

var _ analytics.Recorder = (*capturingRecorder)(nil)
