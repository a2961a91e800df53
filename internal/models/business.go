// internal/models/business.go
package models

// BusinessRecord is a row of the business directory as stored in Postgres and
// mirrored into the semantic index. Optional numeric attributes are pointers
// so an absent value never masquerades as zero.
type BusinessRecord struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	Location         string   `json:"location"`
	Description      string   `json:"description"`
	Tags             []string `json:"tags,omitempty"`
	Certifications   []string `json:"certifications,omitempty"`
	Verified         bool     `json:"verified"`
	Rating           *float64 `json:"rating,omitempty"`
	EmployeesCount   *int     `json:"employeesCount,omitempty"`
	FoundedYear      *int     `json:"foundedYear,omitempty"`
	ProjectBudgetMin *float64 `json:"projectBudgetMin,omitempty"`
	ProjectBudgetMax *float64 `json:"projectBudgetMax,omitempty"`
	Website          string   `json:"website,omitempty"`
}

func (b BusinessRecord) HasCertifications() bool {
	return len(b.Certifications) > 0
}

// RatingOrZero flattens the optional rating for feature vectors.
func (b BusinessRecord) RatingOrZero() float64 {
	if b.Rating == nil {
		return 0
	}
	return *b.Rating
}
