// internal/models/request.go

// Package models holds the wire and domain types shared across the pipeline.
// Everything here is plain data; behavior lives in the packages that consume
// it.
package models

// MatchKind selects the kind-specific scoring rules.
type MatchKind string

const (
	KindB2B               MatchKind = "b2b"
	KindCandidateToJob    MatchKind = "candidate_to_job"
	KindStartupToInvestor MatchKind = "startup_to_investor"
)

// Budget band labels accepted in match requirements.
const (
	BudgetUnder10K = "under-10k"
	Budget10K50K   = "10k-50k"
	Budget50K100K  = "50k-100k"
	Budget100K500K = "100k-500k"
	BudgetOver500K = "over-500k"
)

// Company size band labels accepted in match requirements.
const (
	SizeStartup = "startup"
	SizeSmall   = "small"
	SizeMedium  = "medium"
	SizeLarge   = "large"
)

// Requirements are the optional structured constraints of a match request.
type Requirements struct {
	Location        string `json:"location,omitempty"`
	BudgetBand      string `json:"budget,omitempty"`
	Timeline        string `json:"timeline,omitempty"`
	Industry        string `json:"industry,omitempty"`
	CompanySizeBand string `json:"companySize,omitempty"`
}

// MatchRequest is a typed matchmaking request.
type MatchRequest struct {
	Kind         MatchKind     `json:"kind"`
	Description  string        `json:"description"`
	Requirements *Requirements `json:"requirements,omitempty"`
}

// SearchCriteria drives candidate retrieval: free text plus structured
// filters, all optional.
type SearchCriteria struct {
	QueryText string   `json:"queryText,omitempty"`
	Category  string   `json:"category,omitempty"`
	Location  string   `json:"location,omitempty"`
	Industry  string   `json:"industry,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Verified  *bool    `json:"verified,omitempty"`
	MinRating *float64 `json:"minRating,omitempty"`

	FoundedAfter *int `json:"foundedAfter,omitempty"`
	EmployeesMin *int `json:"employeesMin,omitempty"`
	EmployeesMax *int `json:"employeesMax,omitempty"`
}

// HasFilters reports whether any structured filter is set. The free-text
// query is not a filter; it drives the text pass instead.
func (c SearchCriteria) HasFilters() bool {
	return c.Category != "" ||
		c.Location != "" ||
		c.Industry != "" ||
		len(c.Tags) > 0 ||
		c.Verified != nil ||
		c.MinRating != nil ||
		c.FoundedAfter != nil ||
		c.EmployeesMin != nil ||
		c.EmployeesMax != nil
}
