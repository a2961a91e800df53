// internal/match/service_test.go
package match

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"bamaai-connect/internal/common/logger"
	"bamaai-connect/internal/events"
	"bamaai-connect/internal/match/retriever"
	"bamaai-connect/internal/models"
	"bamaai-connect/internal/search"
	"bamaai-connect/internal/search/analytics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	candidates []models.CandidateMatch
	err        error
}

func (m *memoryStore) SearchKeyword(context.Context, string, int) ([]models.CandidateMatch, error) {
	return m.candidates, m.err
}

func (m *memoryStore) SearchFiltered(context.Context, models.SearchCriteria, int) ([]models.CandidateMatch, error) {
	return m.candidates, m.err
}

func (m *memoryStore) TopRated(context.Context, int) ([]models.CandidateMatch, error) {
	return m.candidates, m.err
}

type countingPredictor struct {
	calls       int
	probability float64
	failAfter   int // fail on call number failAfter (1-based); 0 means never
}

func (p *countingPredictor) Predict(_ context.Context, features []float64) (float64, error) {
	p.calls++
	if p.failAfter > 0 && p.calls >= p.failAfter {
		return 0, errors.New("predictor down")
	}
	if len(features) != 10 {
		return 0, fmt.Errorf("bad feature vector: %d", len(features))
	}
	return p.probability, nil
}

type capturedEvents struct {
	events []events.MatchEvent
}

func (c *capturedEvents) MatchCompleted(e events.MatchEvent) {
	c.events = append(c.events, e)
}

func candidates(n int, base float64) []models.CandidateMatch {
	out := make([]models.CandidateMatch, n)
	for i := range out {
		out[i] = models.CandidateMatch{
			Business:  models.BusinessRecord{ID: fmt.Sprintf("b%d", i), Verified: true},
			BaseScore: base,
		}
	}
	return out
}

func newTestService(t *testing.T, store retriever.BusinessStore, p *countingPredictor, pub events.Publisher, cfg Config) *Service {
	t.Helper()
	log := logger.NewTestLogger(t)
	r := retriever.New(store, nil, nil, retriever.Config{}, log)
	b := search.NewBuilder(search.NoopSuggestions{}, analytics.NoopRecorder{}, log)

	if p == nil {
		return NewService(r, nil, b, pub, cfg, log)
	}
	return NewService(r, p, b, pub, cfg, log)
}

func TestFindAndScore_EnrichesWithMLProbabilities(t *testing.T) {
	store := &memoryStore{candidates: candidates(3, 60)}
	predictor := &countingPredictor{probability: 0.8}
	svc := newTestService(t, store, predictor, nil, Config{})

	resp, err := svc.FindAndScore(context.Background(), FindAndScoreInput{
		Request:  models.MatchRequest{Kind: models.KindB2B},
		Criteria: models.SearchCriteria{QueryText: "ai"},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, predictor.calls)
	require.Len(t, resp.Matches, 3)
	// Base 60 plus round(0.8 * 15) = 72.
	assert.Equal(t, 72, resp.Matches[0].MatchScore)
}

func TestFindAndScore_MLFailureDegradesGracefully(t *testing.T) {
	store := &memoryStore{candidates: candidates(5, 60)}
	predictor := &countingPredictor{probability: 0.8, failAfter: 3}
	svc := newTestService(t, store, predictor, nil, Config{})

	resp, err := svc.FindAndScore(context.Background(), FindAndScoreInput{
		Request:  models.MatchRequest{Kind: models.KindB2B},
		Criteria: models.SearchCriteria{QueryText: "ai"},
	})

	require.NoError(t, err)
	// Enrichment stops at the first failure; later candidates are not called.
	assert.Equal(t, 3, predictor.calls)
	require.Len(t, resp.Matches, 5)
	// The two enriched candidates rank ahead of the three without probability.
	assert.Equal(t, 72, resp.Matches[0].MatchScore)
	assert.Equal(t, 72, resp.Matches[1].MatchScore)
	assert.Equal(t, 60, resp.Matches[2].MatchScore)
}

func TestFindAndScore_RetrievalErrorPropagates(t *testing.T) {
	store := &memoryStore{err: errors.New("db down")}
	svc := newTestService(t, store, nil, nil, Config{})

	_, err := svc.FindAndScore(context.Background(), FindAndScoreInput{
		Criteria: models.SearchCriteria{QueryText: "x"},
	})

	assert.Error(t, err)
}

func TestFindAndScore_PublishesHighScoreEvent(t *testing.T) {
	rating := 4.5
	top := models.CandidateMatch{
		Business:  models.BusinessRecord{ID: "winner", Verified: true, Rating: &rating},
		BaseScore: 95,
	}
	store := &memoryStore{candidates: []models.CandidateMatch{top}}
	pub := &capturedEvents{}
	svc := newTestService(t, store, nil, pub, Config{HighScoreThreshold: 70})

	_, err := svc.FindAndScore(context.Background(), FindAndScoreInput{
		Request:   models.MatchRequest{Kind: models.KindB2B},
		Criteria:  models.SearchCriteria{QueryText: "ai"},
		SessionID: "sess-1",
	})

	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "winner", pub.events[0].BusinessID)
	assert.Equal(t, "b2b", pub.events[0].Kind)
	assert.Equal(t, "sess-1", pub.events[0].SessionID)
}

func TestFindAndScore_NoEventBelowThreshold(t *testing.T) {
	store := &memoryStore{candidates: candidates(1, 40)}
	pub := &capturedEvents{}
	svc := newTestService(t, store, nil, pub, Config{HighScoreThreshold: 70})

	_, err := svc.FindAndScore(context.Background(), FindAndScoreInput{
		Request:  models.MatchRequest{Kind: models.KindB2B},
		Criteria: models.SearchCriteria{QueryText: "ai"},
	})

	require.NoError(t, err)
	assert.Empty(t, pub.events)
}

func TestSearch_OrdersByBaseScore(t *testing.T) {
	store := &memoryStore{candidates: []models.CandidateMatch{
		{Business: models.BusinessRecord{ID: "low"}, BaseScore: 40},
		{Business: models.BusinessRecord{ID: "high"}, BaseScore: 90},
		{Business: models.BusinessRecord{ID: "mid"}, BaseScore: 70},
	}}
	svc := newTestService(t, store, nil, nil, Config{})

	resp, err := svc.Search(context.Background(), SearchInput{
		Criteria: models.SearchCriteria{QueryText: "anything"},
	})

	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "high", resp.Results[0].ID)
	assert.Equal(t, "mid", resp.Results[1].ID)
	assert.Equal(t, "low", resp.Results[2].ID)
}

func TestMLScore_WithoutPredictor(t *testing.T) {
	svc := newTestService(t, &memoryStore{}, nil, nil, Config{})

	_, err := svc.MLScore(context.Background(), make([]float64, 10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestPageClamping(t *testing.T) {
	svc := newTestService(t, &memoryStore{}, nil, nil, Config{DefaultPageSize: 10, MaxPageSize: 50})

	tests := []struct {
		name         string
		number, size int
		wantNumber   int
		wantSize     int
	}{
		{"defaults applied", 0, 0, 0, 10},
		{"max enforced", 0, 500, 0, 50},
		{"negative page clamps", -3, 20, 0, 20},
		{"valid passthrough", 2, 25, 2, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := svc.page(tt.number, tt.size)
			assert.Equal(t, tt.wantNumber, p.Number)
			assert.Equal(t, tt.wantSize, p.Size)
		})
	}
}

func TestFeaturesFor_FixedLengthVector(t *testing.T) {
	rating := 4.5
	employees := 42
	founded := 2016
	b := models.BusinessRecord{
		Rating:         &rating,
		EmployeesCount: &employees,
		FoundedYear:    &founded,
		Verified:       true,
		Tags:           []string{"ai", "ml"},
		Website:        "https://example.com",
	}

	f := featuresFor(b)
	require.Len(t, f, 10)
	assert.Equal(t, 4.5, f[0])
	assert.Equal(t, 42.0, f[1])
	assert.Equal(t, 1.0, f[5])
	assert.Equal(t, 2.0, f[6])
	assert.Equal(t, 1.0, f[9])
}
