// internal/match/reasons/reasons.go

// Package reasons derives human-readable match reasons, next-step
// recommendations and the confidence level from the same inputs the scorer
// uses, so explanation and score never disagree.
package reasons

import (
	"fmt"
	"strings"

	"bamaai-connect/internal/models"
)

const (
	maxReasons         = 4
	maxRecommendations = 3

	highRatingFloor = 4.0

	rightSizedTeamMin = 10
	rightSizedTeamMax = 200

	// Confidence thresholds. The high check runs first so boundary values
	// resolve unambiguously.
	confidenceHighScore     = 70
	confidenceMediumScore   = 50
	confidenceVerifiedScore = 40
)

// Reasons assembles up to four match reasons in a fixed priority order:
// retrieval-attached reasons first, then verification, rating, location and
// team size. Duplicates are dropped, order preserved.
func Reasons(c models.CandidateMatch, req models.MatchRequest) []string {
	out := make([]string, 0, maxReasons)
	seen := make(map[string]bool)

	add := func(r string) {
		if r == "" || seen[r] {
			return
		}
		seen[r] = true
		out = append(out, r)
	}

	for _, r := range c.RetrievalReasons {
		add(r)
	}

	if c.Business.Verified {
		add("Verified company profile")
	}

	if c.Business.Rating != nil && *c.Business.Rating >= highRatingFloor {
		add(fmt.Sprintf("High customer rating (%.1f/5)", *c.Business.Rating))
	}

	if locationMatches(c.Business, req.Requirements) {
		add("Located in your preferred area")
	}

	if c.Business.EmployeesCount != nil {
		n := *c.Business.EmployeesCount
		if n >= rightSizedTeamMin && n <= rightSizedTeamMax {
			add("Right-sized team for dedicated attention")
		} else if n > rightSizedTeamMax {
			add("Large, established company")
		}
	}

	if len(out) > maxReasons {
		out = out[:maxReasons]
	}
	return out
}

func locationMatches(b models.BusinessRecord, reqs *models.Requirements) bool {
	if reqs == nil || reqs.Location == "" || b.Location == "" {
		return false
	}
	return strings.Contains(
		strings.ToLower(b.Location),
		strings.ToLower(reqs.Location),
	)
}

// Recommendations returns the fixed next-step list for the request kind.
// Only the b2b portfolio step depends on data (a website being present).
func Recommendations(b models.BusinessRecord, kind models.MatchKind) []string {
	out := make([]string, 0, maxRecommendations)

	switch kind {
	case models.KindB2B:
		out = append(out, "Schedule a consultation call")
		if b.Website != "" {
			out = append(out, "Review their portfolio on their website")
		}
		out = append(out, "Request a project proposal")
	case models.KindCandidateToJob:
		out = append(out,
			"Check their current job openings",
			"Reach out to their HR department",
			"Research the company culture",
		)
	case models.KindStartupToInvestor:
		out = append(out,
			"Prepare your pitch deck",
			"Research their investment criteria",
			"Leverage mutual connections for an introduction",
		)
	}

	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}
	return out
}

// Confidence derives the confidence level from score, verification and
// rating. Fully determined by its inputs; evaluated high first, then medium.
func Confidence(score int, verified bool, rating *float64) string {
	r := 0.0
	if rating != nil {
		r = *rating
	}

	if score >= confidenceHighScore && verified && r >= highRatingFloor {
		return models.ConfidenceHigh
	}
	if score >= confidenceMediumScore || (score >= confidenceVerifiedScore && verified) {
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}
