// internal/router/router.go

// Package router is the thin dispatch boundary: it accepts {task, payload}
// envelopes, validates the payload against the task's schema, calls the
// pipeline, and wraps the answer in a {success, data, error} envelope.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"bamaai-connect/internal/common/cache"
	stderrors "bamaai-connect/internal/common/errors"
	"bamaai-connect/internal/common/logger"
	"bamaai-connect/internal/common/metrics"
	"bamaai-connect/internal/common/observability"
	"bamaai-connect/internal/match"
	"bamaai-connect/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type taskRequest struct {
	Task    string          `json:"task"`
	Payload json.RawMessage `json:"payload"`
}

type taskFunc func(ctx context.Context, payload json.RawMessage) (interface{}, error)

// Router dispatches task requests to the match service.
type Router struct {
	service *match.Service
	cache   *cache.Cache
	obs     *observability.Observability
	logger  logger.Logger
	schemas map[string]*gojsonschema.Schema
	tasks   map[string]taskFunc
}

func New(service *match.Service, resultCache *cache.Cache, obs *observability.Observability, log logger.Logger) (http.Handler, error) {
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	rt := &Router{
		service: service,
		cache:   resultCache,
		obs:     obs,
		logger:  log.WithFields(map[string]interface{}{"component": "router"}),
		schemas: schemas,
	}
	rt.tasks = map[string]taskFunc{
		TaskFindAndScore:     rt.findAndScore,
		TaskSemanticSearch:   rt.semanticSearch,
		TaskGetMLScore:       rt.getMLScore,
		TaskSearchBusinesses: rt.searchBusinesses,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Post("/match", rt.handleMatch)
	r.Post("/admin/cache/invalidate", rt.handleCacheInvalidate)
	r.Get("/health", rt.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r, nil
}

func (rt *Router) handleMatch(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.writeError(w, "", stderrors.NewValidationError("body", "malformed JSON"))
		return
	}
	if req.Task == "" {
		rt.writeError(w, "", stderrors.NewValidationError("task", "required"))
		return
	}

	run, ok := rt.tasks[req.Task]
	if !ok {
		rt.writeError(w, req.Task, stderrors.NewUnknownTaskError(req.Task))
		return
	}

	if len(req.Payload) == 0 {
		rt.writeError(w, req.Task, stderrors.NewValidationError("payload", "required"))
		return
	}
	if stdErr := rt.validate(req.Task, req.Payload); stdErr != nil {
		rt.writeError(w, req.Task, stdErr)
		return
	}

	data, err := run(r.Context(), req.Payload)
	duration := time.Since(started)
	metrics.MatchRequestDuration.WithLabelValues(req.Task).Observe(duration.Seconds())
	rt.obs.RecordDuration(r.Context(), duration, req.Task)

	if err != nil {
		rt.writeError(w, req.Task, stderrors.Normalize(err))
		return
	}

	metrics.MatchRequestsTotal.WithLabelValues(req.Task, "success").Inc()
	rt.obs.RecordRequest(r.Context(), req.Task, "success")
	rt.writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// validate checks the payload against the task schema and names the first
// offending field.
func (rt *Router) validate(task string, payload json.RawMessage) *stderrors.StandardError {
	result, err := rt.schemas[task].Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return stderrors.NewValidationError("payload", "malformed JSON")
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return stderrors.NewValidationError(first.Field(), first.Description())
	}
	return nil
}

func (rt *Router) findAndScore(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var in struct {
		Kind           models.MatchKind      `json:"kind"`
		Description    string                `json:"description"`
		SearchCriteria models.SearchCriteria `json:"searchCriteria"`
		Requirements   *models.Requirements  `json:"requirements"`
		Limit          int                   `json:"limit"`
		Page           int                   `json:"page"`
		PageSize       int                   `json:"pageSize"`
		SessionID      string                `json:"sessionId"`
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, stderrors.NewValidationError("payload", "malformed JSON")
	}
	if in.Kind == "" {
		in.Kind = models.KindB2B
	}
	if in.Description == "" {
		in.Description = in.SearchCriteria.QueryText
	}
	if in.PageSize == 0 {
		in.PageSize = in.Limit
	}

	return rt.service.FindAndScore(ctx, match.FindAndScoreInput{
		Request: models.MatchRequest{
			Kind:         in.Kind,
			Description:  in.Description,
			Requirements: in.Requirements,
		},
		Criteria:  in.SearchCriteria,
		Page:      in.Page,
		PageSize:  in.PageSize,
		SessionID: in.SessionID,
	})
}

func (rt *Router) semanticSearch(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var in struct {
		QueryText string  `json:"queryText"`
		Threshold float64 `json:"threshold"`
		Limit     int     `json:"limit"`
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, stderrors.NewValidationError("payload", "malformed JSON")
	}
	return rt.service.SemanticSearch(ctx, in.QueryText, in.Threshold, in.Limit)
}

func (rt *Router) getMLScore(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var in struct {
		BusinessFeatures []float64 `json:"businessFeatures"`
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, stderrors.NewValidationError("payload", "malformed JSON")
	}
	score, err := rt.service.MLScore(ctx, in.BusinessFeatures)
	if err != nil {
		return nil, err
	}
	return map[string]float64{"probability": score}, nil
}

func (rt *Router) searchBusinesses(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var in struct {
		SearchCriteria models.SearchCriteria `json:"searchCriteria"`
		Page           int                   `json:"page"`
		PageSize       int                   `json:"pageSize"`
		SessionID      string                `json:"sessionId"`
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, stderrors.NewValidationError("payload", "malformed JSON")
	}
	return rt.service.Search(ctx, match.SearchInput{
		Criteria:  in.SearchCriteria,
		Page:      in.Page,
		PageSize:  in.PageSize,
		SessionID: in.SessionID,
	})
}

func (rt *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	rt.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCacheInvalidate drops every cached result registered under the given
// tag. Used after catalog imports so stale candidate sets don't linger for a
// full TTL.
func (rt *Router) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Tag string `json:"tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		rt.writeError(w, "", stderrors.NewValidationError("body", "malformed JSON"))
		return
	}
	if in.Tag == "" {
		rt.writeError(w, "", stderrors.NewValidationError("tag", "required"))
		return
	}

	if err := rt.cache.Invalidate(r.Context(), in.Tag); err != nil {
		rt.writeError(w, "", stderrors.Normalize(err))
		return
	}

	rt.logger.Info("cache invalidated", map[string]interface{}{"tag": in.Tag})
	rt.writeJSON(w, http.StatusOK, envelope{Success: true})
}

func (rt *Router) writeError(w http.ResponseWriter, task string, stdErr *stderrors.StandardError) {
	status := stderrors.HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"task":   task,
		"code":   string(stdErr.Code),
		"status": status,
	}
	if stdErr.Details != "" {
		fields["details"] = stdErr.Details
	}
	if status >= http.StatusInternalServerError {
		rt.logger.Error(stdErr.Message, fields)
	} else {
		rt.logger.Warn(stdErr.Message, fields)
	}

	if task != "" {
		metrics.MatchRequestsTotal.WithLabelValues(task, "error").Inc()
		rt.obs.RecordRequest(context.Background(), task, "error")
	}

	rt.writeJSON(w, status, envelope{Success: false, Error: stdErr.SafeMessage()})
}

func (rt *Router) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		rt.logger.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}
