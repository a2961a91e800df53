// internal/models/result.go
package models

import "time"

// Confidence levels attached to a match result.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// CandidateMatch is a retrieved business carrying its retrieval-stage
// relevance and the optional enrichment signals the scorer consumes.
type CandidateMatch struct {
	Business  BusinessRecord `json:"business"`
	BaseScore float64        `json:"baseScore"`

	// Similarity is set when the candidate came through the semantic index.
	Similarity *float64 `json:"similarity,omitempty"`
	// SuccessProbability is set when the ML predictor was reachable.
	SuccessProbability *float64 `json:"successProbability,omitempty"`

	RetrievalReasons []string `json:"retrievalReasons,omitempty"`
}

// MatchResult is one scored, explained match.
type MatchResult struct {
	Business        BusinessRecord `json:"business"`
	MatchScore      int            `json:"matchScore"`
	MatchReasons    []string       `json:"matchReasons"`
	ConfidenceLevel string         `json:"confidenceLevel"`
	Recommendations []string       `json:"recommendations"`
}

// SearchResult is one row of a plain directory search.
type SearchResult struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Location string   `json:"location"`
	Rating   *float64 `json:"rating,omitempty"`
	Verified bool     `json:"verified"`
	Score    float64  `json:"score"`
}

// FacetCount is one value/count pair within a facet dimension.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facets aggregates counts over the full, unpaginated result set.
type Facets struct {
	Categories []FacetCount `json:"categories"`
	Locations  []FacetCount `json:"locations"`
	Ratings    []FacetCount `json:"ratings"`
	Verified   int          `json:"verified"`
}

// MatchResponse is the find_and_score envelope. TotalCount and Facets cover
// the full set; Matches holds only the requested page.
type MatchResponse struct {
	Matches      []MatchResult `json:"matches"`
	TotalCount   int           `json:"totalCount"`
	Suggestions  []string      `json:"suggestions"`
	Facets       Facets        `json:"facets"`
	SearchTimeMs int64         `json:"searchTimeMs"`
}

// SearchResponse is the search_businesses envelope.
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	TotalCount   int            `json:"totalCount"`
	Suggestions  []string       `json:"suggestions"`
	Facets       Facets         `json:"facets"`
	SearchTimeMs int64          `json:"searchTimeMs"`
}

// SimilarityHit is one raw semantic search hit.
type SimilarityHit struct {
	Business   BusinessRecord `json:"business"`
	Similarity float64        `json:"similarity"`
}

// AnalyticsEvent is one recorded search.
type AnalyticsEvent struct {
	ID          string                 `json:"id"`
	SessionID   string                 `json:"sessionId"`
	Query       string                 `json:"query"`
	Filters     map[string]interface{} `json:"filters"`
	ResultCount int                    `json:"resultCount"`
	DurationMs  int64                  `json:"durationMs"`
	CreatedAt   time.Time              `json:"createdAt"`
}
