// internal/search/facets.go
package search

import (
	"sort"

	"bamaai-connect/internal/models"
)

const facetTopN = 10

// Rating bucket labels, highest first.
var ratingBuckets = []struct {
	label string
	floor float64
}{
	{"4.5+", 4.5},
	{"4.0+", 4.0},
	{"3.0+", 3.0},
}

// ComputeFacets aggregates counts over the full, unpaginated result set.
// Category and location facets keep the top 10 by frequency descending, with
// an alphabetical tie-break so output is deterministic. Empty dimensions come
// back as empty slices, never nil.
func ComputeFacets(records []models.BusinessRecord) models.Facets {
	categories := make(map[string]int)
	locations := make(map[string]int)
	verified := 0
	ratingCounts := make([]int, len(ratingBuckets))

	for _, b := range records {
		if b.Category != "" {
			categories[b.Category]++
		}
		if b.Location != "" {
			locations[b.Location]++
		}
		if b.Verified {
			verified++
		}
		if b.Rating != nil {
			for i, bucket := range ratingBuckets {
				if *b.Rating >= bucket.floor {
					ratingCounts[i]++
				}
			}
		}
	}

	ratings := make([]models.FacetCount, 0, len(ratingBuckets))
	for i, bucket := range ratingBuckets {
		if ratingCounts[i] > 0 {
			ratings = append(ratings, models.FacetCount{Value: bucket.label, Count: ratingCounts[i]})
		}
	}

	return models.Facets{
		Categories: topCounts(categories, facetTopN),
		Locations:  topCounts(locations, facetTopN),
		Ratings:    ratings,
		Verified:   verified,
	}
}

func topCounts(counts map[string]int, n int) []models.FacetCount {
	out := make([]models.FacetCount, 0, len(counts))
	for value, count := range counts {
		out = append(out, models.FacetCount{Value: value, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
