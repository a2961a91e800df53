// internal/match/scoring/scoring.go

// Package scoring computes the composite match score for a candidate against
// a typed match request. Everything here is a pure function over in-memory
// data; concurrent requests share nothing.
package scoring

import (
	"math"
	"sort"
	"strings"
	"time"

	"bamaai-connect/internal/models"
)

// Scoring weights and thresholds. These values are heuristic tunables carried
// over from the hosted directory for behavioral parity; they are not derived
// from any stated business rule.
const (
	ScoreMax = 100
	ScoreMin = 0

	capabilityBonusMax = 30.0
	ageBonusPerYear    = 2
	ageBonusCap        = 20
	certificationBonus = 10

	hiringBandMin   = 10
	hiringBandMax   = 500
	hiringBandBonus = 20

	investorVerifiedBonus = 15
	investorRatingBonus   = 10
	investorRatingFloor   = 4.0

	budgetOverlapBonus    = 15
	budgetDisjointPenalty = 10
	sizeBandBonus         = 10
	industryAlignBonus    = 15

	similarityWeight = 20.0
	mlWeight         = 15.0
)

// capabilityVocabulary is the fixed set of service terms matched between a
// b2b request's free text and a candidate's capability text.
var capabilityVocabulary = []string{
	"automation",
	"machine learning",
	"computer vision",
	"nlp",
	"natural language processing",
	"robotics",
	"data analytics",
	"predictive analytics",
	"chatbot",
	"deep learning",
	"speech recognition",
	"recommendation",
	"forecasting",
	"optimization",
	"generative ai",
	"data engineering",
	"ai consulting",
	"mlops",
}

// budgetBandRange maps a budget band label to a numeric [min,max) range.
func budgetBandRange(band string) (min, max float64, ok bool) {
	switch band {
	case models.BudgetUnder10K:
		return 0, 10_000, true
	case models.Budget10K50K:
		return 10_000, 50_000, true
	case models.Budget50K100K:
		return 50_000, 100_000, true
	case models.Budget100K500K:
		return 100_000, 500_000, true
	case models.BudgetOver500K:
		return 500_000, math.MaxFloat64, true
	}
	return 0, 0, false
}

// sizeBandRange maps a company size band label to an employee count range.
func sizeBandRange(band string) (min, max int, ok bool) {
	switch band {
	case models.SizeStartup:
		return 1, 20, true
	case models.SizeSmall:
		return 21, 100, true
	case models.SizeMedium:
		return 101, 500, true
	case models.SizeLarge:
		return 501, math.MaxInt32, true
	}
	return 0, 0, false
}

// Score computes the composite match score for one candidate: retrieval base
// score plus the kind-specific bonus plus cross-cutting bonuses, clamped to
// [0,100].
func Score(c models.CandidateMatch, req models.MatchRequest) int {
	raw := c.BaseScore

	switch req.Kind {
	case models.KindB2B:
		raw += b2bBonus(c.Business, req.Description)
	case models.KindCandidateToJob:
		raw += hiringBonus(c.Business)
	case models.KindStartupToInvestor:
		raw += investorBonus(c.Business)
	}

	raw += budgetBonus(c.Business, req.Requirements)
	raw += sizeBonus(c.Business, req.Requirements)
	raw += industryBonus(c.Business, req.Requirements)

	if c.Similarity != nil {
		raw += math.Round(*c.Similarity * similarityWeight)
	}
	if c.SuccessProbability != nil {
		raw += math.Round(*c.SuccessProbability * mlWeight)
	}

	return clamp(raw)
}

// b2bBonus scores capability overlap, business age, and certifications.
//
// Capability overlap: vocabulary terms present in both the request text and
// the candidate's combined capability text, as a fraction of the full
// vocabulary, contribute up to capabilityBonusMax points.
func b2bBonus(b models.BusinessRecord, description string) float64 {
	bonus := 0.0

	requested := termsIn(strings.ToLower(description))
	if len(requested) > 0 {
		capability := capabilityText(b)
		matched := 0
		for _, term := range requested {
			if strings.Contains(capability, term) {
				matched++
			}
		}
		bonus += capabilityBonusMax * float64(matched) / float64(len(capabilityVocabulary))
	}

	if b.FoundedYear != nil {
		age := time.Now().Year() - *b.FoundedYear
		if age > 0 {
			ageBonus := age * ageBonusPerYear
			if ageBonus > ageBonusCap {
				ageBonus = ageBonusCap
			}
			bonus += float64(ageBonus)
		}
	}

	if b.HasCertifications() {
		bonus += certificationBonus
	}

	return bonus
}

// hiringBonus rewards companies in the active-hiring employee band.
func hiringBonus(b models.BusinessRecord) float64 {
	if b.EmployeesCount == nil {
		return 0
	}
	if *b.EmployeesCount >= hiringBandMin && *b.EmployeesCount <= hiringBandMax {
		return hiringBandBonus
	}
	return 0
}

// investorBonus rewards verification and track record.
func investorBonus(b models.BusinessRecord) float64 {
	bonus := 0.0
	if b.Verified {
		bonus += investorVerifiedBonus
	}
	if b.Rating != nil && *b.Rating >= investorRatingFloor {
		bonus += investorRatingBonus
	}
	return bonus
}

// budgetBonus compares the request budget band with the candidate's project
// budget range. Overlap earns the bonus; a candidate with a stated minimum
// whose range is disjoint from the request takes the penalty. Missing budget
// data on either side contributes nothing.
func budgetBonus(b models.BusinessRecord, reqs *models.Requirements) float64 {
	if reqs == nil || reqs.BudgetBand == "" {
		return 0
	}
	reqMin, reqMax, ok := budgetBandRange(reqs.BudgetBand)
	if !ok {
		return 0
	}
	if b.ProjectBudgetMin == nil && b.ProjectBudgetMax == nil {
		return 0
	}

	bizMin := 0.0
	if b.ProjectBudgetMin != nil {
		bizMin = *b.ProjectBudgetMin
	}
	bizMax := math.MaxFloat64
	if b.ProjectBudgetMax != nil {
		bizMax = *b.ProjectBudgetMax
	}

	// Band ranges are half-open [reqMin, reqMax), so a candidate starting
	// exactly at the band's upper bound does not overlap it.
	if bizMin < reqMax && bizMax >= reqMin {
		return budgetOverlapBonus
	}
	if b.ProjectBudgetMin != nil {
		return -budgetDisjointPenalty
	}
	return 0
}

func sizeBonus(b models.BusinessRecord, reqs *models.Requirements) float64 {
	if reqs == nil || reqs.CompanySizeBand == "" || b.EmployeesCount == nil {
		return 0
	}
	min, max, ok := sizeBandRange(reqs.CompanySizeBand)
	if !ok {
		return 0
	}
	if *b.EmployeesCount >= min && *b.EmployeesCount <= max {
		return sizeBandBonus
	}
	return 0
}

// industryBonus matches the requested industry against the candidate's
// category by case-insensitive substring in either direction.
func industryBonus(b models.BusinessRecord, reqs *models.Requirements) float64 {
	if reqs == nil || reqs.Industry == "" || b.Category == "" {
		return 0
	}
	industry := strings.ToLower(reqs.Industry)
	category := strings.ToLower(b.Category)
	if strings.Contains(category, industry) || strings.Contains(industry, category) {
		return industryAlignBonus
	}
	return 0
}

// termsIn returns the vocabulary terms present in the lowercased text.
func termsIn(text string) []string {
	var found []string
	for _, term := range capabilityVocabulary {
		if strings.Contains(text, term) {
			found = append(found, term)
		}
	}
	return found
}

// capabilityText flattens the fields considered capability evidence.
func capabilityText(b models.BusinessRecord) string {
	parts := []string{b.Description, b.Category}
	parts = append(parts, b.Tags...)
	parts = append(parts, b.Certifications...)
	return strings.ToLower(strings.Join(parts, " "))
}

func clamp(raw float64) int {
	score := int(math.Round(raw))
	if score > ScoreMax {
		return ScoreMax
	}
	if score < ScoreMin {
		return ScoreMin
	}
	return score
}

// Scored pairs a candidate with its computed score.
type Scored struct {
	Candidate models.CandidateMatch
	Score     int
}

// Rank scores every candidate and orders the result descending by score.
// Equal scores keep their retrieval order: the sort is stable, so ties never
// reorder, which downstream pagination relies on.
func Rank(candidates []models.CandidateMatch, req models.MatchRequest) []Scored {
	scored := make([]Scored, len(candidates))
	for i, c := range candidates {
		scored[i] = Scored{Candidate: c, Score: Score(c, req)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
