// internal/match/service.go

// Package match orchestrates the matchmaking pipeline: retrieve candidates,
// enrich with the optional ML probability, score, rank, explain, and build
// the response envelope.
package match

import (
	"context"
	"sort"
	"time"

	stderrors "bamaai-connect/internal/common/errors"
	"bamaai-connect/internal/common/logger"
	"bamaai-connect/internal/common/metrics"
	"bamaai-connect/internal/events"
	"bamaai-connect/internal/match/mlclient"
	"bamaai-connect/internal/match/reasons"
	"bamaai-connect/internal/match/retriever"
	"bamaai-connect/internal/match/scoring"
	"bamaai-connect/internal/models"
	"bamaai-connect/internal/search"
)

// Config carries the pipeline knobs.
type Config struct {
	RetrievalTimeout   time.Duration
	MLTimeout          time.Duration
	DefaultPageSize    int
	MaxPageSize        int
	HighScoreThreshold int
}

// Service wires the pipeline stages. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	retriever *retriever.Retriever
	predictor mlclient.Predictor // nil when ML scoring is disabled
	builder   *search.Builder
	events    events.Publisher
	config    Config
	logger    logger.Logger
}

func NewService(r *retriever.Retriever, p mlclient.Predictor, b *search.Builder, pub events.Publisher, cfg Config, log logger.Logger) *Service {
	if cfg.RetrievalTimeout <= 0 {
		cfg.RetrievalTimeout = 3 * time.Second
	}
	if cfg.MLTimeout <= 0 {
		cfg.MLTimeout = 2 * time.Second
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 50
	}
	if cfg.HighScoreThreshold <= 0 {
		cfg.HighScoreThreshold = 70
	}
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &Service{
		retriever: r,
		predictor: p,
		builder:   b,
		events:    pub,
		config:    cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "match-service"}),
	}
}

// FindAndScoreInput is the validated input of the find_and_score task.
type FindAndScoreInput struct {
	Request   models.MatchRequest
	Criteria  models.SearchCriteria
	Page      int
	PageSize  int
	SessionID string
}

// FindAndScore runs the full matchmaking pipeline. Retrieval failures
// propagate; every downstream stage is pure in-memory work.
func (s *Service) FindAndScore(ctx context.Context, in FindAndScoreInput) (models.MatchResponse, error) {
	started := time.Now()

	rctx, cancel := context.WithTimeout(ctx, s.config.RetrievalTimeout)
	defer cancel()

	candidates, err := s.retriever.Retrieve(rctx, in.Criteria)
	if err != nil {
		return models.MatchResponse{}, err
	}

	s.enrichWithML(ctx, candidates)

	ranked := scoring.Rank(candidates, in.Request)
	metrics.CandidatesScored.WithLabelValues(string(in.Request.Kind)).Add(float64(len(ranked)))

	results := make([]models.MatchResult, len(ranked))
	for i, sc := range ranked {
		results[i] = models.MatchResult{
			Business:        sc.Candidate.Business,
			MatchScore:      sc.Score,
			MatchReasons:    reasons.Reasons(sc.Candidate, in.Request),
			ConfidenceLevel: reasons.Confidence(sc.Score, sc.Candidate.Business.Verified, sc.Candidate.Business.Rating),
			Recommendations: reasons.Recommendations(sc.Candidate.Business, in.Request.Kind),
		}
	}

	resp := s.builder.BuildMatches(ctx, results, in.Request.Description, in.SessionID,
		criteriaFilters(in.Criteria), s.page(in.Page, in.PageSize), started)

	if len(results) > 0 && results[0].MatchScore >= s.config.HighScoreThreshold {
		s.events.MatchCompleted(events.MatchEvent{
			BusinessID: results[0].Business.ID,
			Kind:       string(in.Request.Kind),
			MatchScore: results[0].MatchScore,
			SessionID:  in.SessionID,
			OccurredAt: time.Now().UTC(),
		})
	}

	s.logger.Info("match pipeline completed", map[string]interface{}{
		"kind":       string(in.Request.Kind),
		"candidates": len(candidates),
		"durationMs": resp.SearchTimeMs,
	})
	return resp, nil
}

// SearchInput is the validated input of the search_businesses task.
type SearchInput struct {
	Criteria  models.SearchCriteria
	Page      int
	PageSize  int
	SessionID string
}

// Search runs plain directory search: retrieval order by base relevance,
// stable on ties, no match scoring.
func (s *Service) Search(ctx context.Context, in SearchInput) (models.SearchResponse, error) {
	started := time.Now()

	rctx, cancel := context.WithTimeout(ctx, s.config.RetrievalTimeout)
	defer cancel()

	candidates, err := s.retriever.Retrieve(rctx, in.Criteria)
	if err != nil {
		return models.SearchResponse{}, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].BaseScore > candidates[j].BaseScore
	})

	return s.builder.BuildSearch(ctx, candidates, in.Criteria.QueryText, in.SessionID,
		criteriaFilters(in.Criteria), s.page(in.Page, in.PageSize), started), nil
}

// SemanticSearch exposes the raw similarity hits.
func (s *Service) SemanticSearch(ctx context.Context, query string, threshold float64, limit int) ([]models.SimilarityHit, error) {
	rctx, cancel := context.WithTimeout(ctx, s.config.RetrievalTimeout)
	defer cancel()
	return s.retriever.SemanticOnly(rctx, query, threshold, limit)
}

// MLScore proxies a single feature vector to the external predictor.
func (s *Service) MLScore(ctx context.Context, features []float64) (float64, error) {
	if s.predictor == nil {
		return 0, &noPredictorError{}
	}
	return s.predictor.Predict(ctx, features)
}

type noPredictorError struct{}

func (*noPredictorError) Error() string { return "ml scoring is not configured" }

// enrichWithML attaches success probabilities best-effort. One shared
// deadline bounds the whole pass, and the first failure stops further calls;
// candidates without a probability simply score without that contribution.
func (s *Service) enrichWithML(ctx context.Context, candidates []models.CandidateMatch) {
	if s.predictor == nil || len(candidates) == 0 {
		return
	}

	mctx, cancel := context.WithTimeout(ctx, s.config.MLTimeout)
	defer cancel()

	for i := range candidates {
		prob, err := s.predictor.Predict(mctx, featuresFor(candidates[i].Business))
		if err != nil {
			metrics.ScoringDegraded.WithLabelValues("ml_probability").Inc()
			stdErr := stderrors.NewScoringDegradedError("ml_probability", err)
			s.logger.Warn(stdErr.Message, map[string]interface{}{
				"code":   string(stdErr.Code),
				"scored": i,
				"total":  len(candidates),
				"error":  err.Error(),
			})
			return
		}
		candidates[i].SuccessProbability = &prob
	}
}

// featuresFor flattens a business record into the fixed-length numeric
// vector the external model expects. The model is a black box; the order
// here just has to stay stable.
func featuresFor(b models.BusinessRecord) []float64 {
	features := make([]float64, mlclient.FeatureCount)
	features[0] = b.RatingOrZero()
	if b.EmployeesCount != nil {
		features[1] = float64(*b.EmployeesCount)
	}
	if b.FoundedYear != nil {
		features[2] = float64(time.Now().Year() - *b.FoundedYear)
	}
	if b.ProjectBudgetMin != nil {
		features[3] = *b.ProjectBudgetMin
	}
	if b.ProjectBudgetMax != nil {
		features[4] = *b.ProjectBudgetMax
	}
	if b.Verified {
		features[5] = 1
	}
	features[6] = float64(len(b.Tags))
	features[7] = float64(len(b.Certifications))
	features[8] = float64(len(b.Description))
	if b.Website != "" {
		features[9] = 1
	}
	return features
}

func (s *Service) page(number, size int) search.Page {
	if size <= 0 {
		size = s.config.DefaultPageSize
	}
	if size > s.config.MaxPageSize {
		size = s.config.MaxPageSize
	}
	if number < 0 {
		number = 0
	}
	return search.Page{Number: number, Size: size}
}

func criteriaFilters(c models.SearchCriteria) map[string]interface{} {
	filters := make(map[string]interface{})
	if c.Industry != "" {
		filters["industry"] = c.Industry
	}
	if c.Location != "" {
		filters["location"] = c.Location
	}
	if c.Category != "" {
		filters["category"] = c.Category
	}
	if len(c.Tags) > 0 {
		filters["tags"] = c.Tags
	}
	if c.Verified != nil {
		filters["verified"] = *c.Verified
	}
	if c.MinRating != nil {
		filters["minRating"] = *c.MinRating
	}
	return filters
}
