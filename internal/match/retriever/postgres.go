// internal/match/retriever/postgres.go
package retriever

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bamaai-connect/internal/models"

	"github.com/lib/pq"
)

// Base relevance scores assigned to keyword hits per matched field. Name
// matches rank above tag and category matches, description and location
// matches trail.
const (
	baseScoreName        = 90.0
	baseScoreTags        = 80.0
	baseScoreCategory    = 75.0
	baseScoreDescription = 60.0
	baseScoreLocation    = 55.0
	baseScoreFiltered    = 50.0
	baseScoreUnrated     = 40.0
)

const businessColumns = `id, name, category, location, description, tags,
	certifications, verified, rating, employees_count, founded_year,
	project_budget_min, project_budget_max, website`

// PostgresStore implements BusinessStore over the businesses table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// SearchKeyword runs a substring match against name, description, category,
// location and tags. The matched field determines the hit's base score and
// retrieval reason.
func (s *PostgresStore) SearchKeyword(ctx context.Context, query string, limit int) ([]models.CandidateMatch, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+businessColumns+`
		FROM businesses
		WHERE name ILIKE $1
		   OR description ILIKE $1
		   OR category ILIKE $1
		   OR location ILIKE $1
		   OR EXISTS (SELECT 1 FROM unnest(tags) t WHERE t ILIKE $1)
		ORDER BY verified DESC, rating DESC NULLS LAST
		LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	defer rows.Close()

	var out []models.CandidateMatch
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("keyword search scan: %w", err)
		}
		base, reason := keywordHit(b, query)
		out = append(out, models.CandidateMatch{
			Business:         b,
			BaseScore:        base,
			RetrievalReasons: []string{reason},
		})
	}
	return out, rows.Err()
}

// SearchFiltered applies the structured filters as an exact/substring pass.
func (s *PostgresStore) SearchFiltered(ctx context.Context, c models.SearchCriteria, limit int) ([]models.CandidateMatch, error) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if c.Industry != "" {
		conds = append(conds, "category ILIKE "+arg("%"+c.Industry+"%"))
	}
	if c.Category != "" {
		conds = append(conds, "category ILIKE "+arg("%"+c.Category+"%"))
	}
	if c.Location != "" {
		conds = append(conds, "location ILIKE "+arg("%"+c.Location+"%"))
	}
	if len(c.Tags) > 0 {
		conds = append(conds, "tags && "+arg(pq.Array(c.Tags)))
	}
	if c.Verified != nil {
		conds = append(conds, "verified = "+arg(*c.Verified))
	}
	if c.MinRating != nil {
		conds = append(conds, "rating >= "+arg(*c.MinRating))
	}
	if c.FoundedAfter != nil {
		conds = append(conds, "founded_year >= "+arg(*c.FoundedAfter))
	}
	if c.EmployeesMin != nil {
		conds = append(conds, "employees_count >= "+arg(*c.EmployeesMin))
	}
	if c.EmployeesMax != nil {
		conds = append(conds, "employees_count <= "+arg(*c.EmployeesMax))
	}

	query := `SELECT ` + businessColumns + ` FROM businesses`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY verified DESC, rating DESC NULLS LAST LIMIT " + arg(limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filtered search: %w", err)
	}
	defer rows.Close()

	var out []models.CandidateMatch
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("filtered search scan: %w", err)
		}
		out = append(out, models.CandidateMatch{
			Business:         b,
			BaseScore:        baseScoreFiltered,
			RetrievalReasons: []string{"Matches your search filters"},
		})
	}
	return out, rows.Err()
}

// TopRated returns the highest-rated businesses, for empty queries.
func (s *PostgresStore) TopRated(ctx context.Context, limit int) ([]models.CandidateMatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+businessColumns+`
		FROM businesses
		ORDER BY rating DESC NULLS LAST, verified DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("top rated: %w", err)
	}
	defer rows.Close()

	var out []models.CandidateMatch
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("top rated scan: %w", err)
		}
		base := baseScoreUnrated
		if b.Rating != nil {
			base = *b.Rating * 20
			if base > 100 {
				base = 100
			}
		}
		out = append(out, models.CandidateMatch{Business: b, BaseScore: base})
	}
	return out, rows.Err()
}

// keywordHit decides which field matched and returns its score and reason.
func keywordHit(b models.BusinessRecord, query string) (float64, string) {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(strings.ToLower(b.Name), q):
		return baseScoreName, fmt.Sprintf("Keyword match on name (%q)", query)
	case tagsContain(b.Tags, q):
		return baseScoreTags, fmt.Sprintf("Keyword match on tags (%q)", query)
	case strings.Contains(strings.ToLower(b.Category), q):
		return baseScoreCategory, fmt.Sprintf("Keyword match on category (%q)", query)
	case strings.Contains(strings.ToLower(b.Description), q):
		return baseScoreDescription, fmt.Sprintf("Keyword match on description (%q)", query)
	default:
		return baseScoreLocation, fmt.Sprintf("Keyword match on location (%q)", query)
	}
}

func tagsContain(tags []string, q string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func scanBusiness(rows *sql.Rows) (models.BusinessRecord, error) {
	var b models.BusinessRecord
	var tags, certifications pq.StringArray
	var rating, budgetMin, budgetMax sql.NullFloat64
	var employees, founded sql.NullInt64
	var website sql.NullString

	err := rows.Scan(
		&b.ID, &b.Name, &b.Category, &b.Location, &b.Description,
		&tags, &certifications, &b.Verified, &rating, &employees,
		&founded, &budgetMin, &budgetMax, &website,
	)
	if err != nil {
		return b, err
	}

	b.Tags = tags
	b.Certifications = certifications
	if rating.Valid {
		v := rating.Float64
		b.Rating = &v
	}
	if employees.Valid {
		v := int(employees.Int64)
		b.EmployeesCount = &v
	}
	if founded.Valid {
		v := int(founded.Int64)
		b.FoundedYear = &v
	}
	if budgetMin.Valid {
		v := budgetMin.Float64
		b.ProjectBudgetMin = &v
	}
	if budgetMax.Valid {
		v := budgetMax.Float64
		b.ProjectBudgetMax = &v
	}
	if website.Valid {
		b.Website = website.String
	}
	return b, nil
}
