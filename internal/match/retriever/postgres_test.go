// internal/match/retriever/postgres_test.go
package retriever

import (
	"context"
	"database/sql/driver"
	"testing"

	"bamaai-connect/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var businessCols = []string{
	"id", "name", "category", "location", "description", "tags",
	"certifications", "verified", "rating", "employees_count", "founded_year",
	"project_budget_min", "project_budget_max", "website",
}

func fullRow(id, name string) []driver.Value {
	return []driver.Value{
		id, name, "AI Consulting", "Huntsville, AL", "We build ML systems",
		"{ai,automation}", "{ISO-9001}", true, 4.5, 42, 2015,
		25000.0, 150000.0, "https://example.com",
	}
}

func TestSearchKeyword_AssignsFieldScores(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(businessCols).
		AddRow(fullRow("b1", "Vision Labs")...).
		AddRow("b2", "Acme", "Computer Vision", "Mobile, AL", "general services",
			"{consulting}", "{}", false, nil, nil, nil, nil, nil, nil)

	mock.ExpectQuery(`FROM businesses`).
		WithArgs("%vision%", 20).
		WillReturnRows(rows)

	store := NewPostgresStore(db)
	got, err := store.SearchKeyword(context.Background(), "vision", 20)

	require.NoError(t, err)
	require.Len(t, got, 2)

	// "Vision Labs" matched on name, "Acme" on category.
	assert.Equal(t, 90.0, got[0].BaseScore)
	assert.Equal(t, []string{`Keyword match on name ("vision")`}, got[0].RetrievalReasons)
	assert.Equal(t, 75.0, got[1].BaseScore)
	assert.Equal(t, []string{`Keyword match on category ("vision")`}, got[1].RetrievalReasons)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchKeyword_ScansOptionalColumns(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM businesses`).
		WillReturnRows(sqlmock.NewRows(businessCols).AddRow(fullRow("b1", "Vision Labs")...))

	store := NewPostgresStore(db)
	got, err := store.SearchKeyword(context.Background(), "vision", 20)

	require.NoError(t, err)
	require.Len(t, got, 1)

	b := got[0].Business
	assert.Equal(t, []string{"ai", "automation"}, []string(b.Tags))
	assert.Equal(t, []string{"ISO-9001"}, []string(b.Certifications))
	require.NotNil(t, b.Rating)
	assert.Equal(t, 4.5, *b.Rating)
	require.NotNil(t, b.EmployeesCount)
	assert.Equal(t, 42, *b.EmployeesCount)
	require.NotNil(t, b.FoundedYear)
	assert.Equal(t, 2015, *b.FoundedYear)
	assert.Equal(t, "https://example.com", b.Website)
}

func TestSearchFiltered_BuildsConditions(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	minRating := 4.0
	verified := true
	criteria := models.SearchCriteria{
		Category:  "Technology",
		Location:  "Birmingham",
		Verified:  &verified,
		MinRating: &minRating,
	}

	mock.ExpectQuery(`category ILIKE .+ AND location ILIKE .+ AND verified = .+ AND rating >=`).
		WithArgs("%Technology%", "%Birmingham%", true, 4.0, 20).
		WillReturnRows(sqlmock.NewRows(businessCols).AddRow(fullRow("b1", "Vision Labs")...))

	store := NewPostgresStore(db)
	got, err := store.SearchFiltered(context.Background(), criteria, 20)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 50.0, got[0].BaseScore)
	assert.Equal(t, []string{"Matches your search filters"}, got[0].RetrievalReasons)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchFiltered_NoFiltersSelectsAll(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM businesses ORDER BY verified DESC`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(businessCols))

	store := NewPostgresStore(db)
	got, err := store.SearchFiltered(context.Background(), models.SearchCriteria{}, 5)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopRated_ScoresFromRating(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(businessCols).
		AddRow("b1", "Top", "Cat", "Loc", "Desc", "{}", "{}", true, 5.0, nil, nil, nil, nil, nil).
		AddRow("b2", "Good", "Cat", "Loc", "Desc", "{}", "{}", true, 3.5, nil, nil, nil, nil, nil).
		AddRow("b3", "Unrated", "Cat", "Loc", "Desc", "{}", "{}", false, nil, nil, nil, nil, nil, nil)

	mock.ExpectQuery(`ORDER BY rating DESC NULLS LAST`).
		WithArgs(10).
		WillReturnRows(rows)

	store := NewPostgresStore(db)
	got, err := store.TopRated(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 100.0, got[0].BaseScore) // 5.0 * 20, capped
	assert.Equal(t, 70.0, got[1].BaseScore)
	assert.Equal(t, 40.0, got[2].BaseScore) // no rating falls back
}

func TestSearchKeyword_QueryErrorPropagates(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM businesses`).WillReturnError(assert.AnError)

	store := NewPostgresStore(db)
	_, err = store.SearchKeyword(context.Background(), "x", 20)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyword search")
}
