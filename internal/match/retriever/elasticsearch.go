// internal/match/retriever/elasticsearch.go
package retriever

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bamaai-connect/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchIndex implements SemanticIndex over a business index.
type ElasticsearchIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchIndex(client *elasticsearch.Client, index string) *ElasticsearchIndex {
	return &ElasticsearchIndex{client: client, index: index}
}

type esResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64               `json:"_score"`
			Source models.BusinessRecord `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search issues a multi_match query and normalizes hit scores into a
// similarity in [0,1] (raw _score / 10, capped), mirroring how the index
// relevance scale is consumed elsewhere. Hits below threshold are dropped.
func (e *ElasticsearchIndex) Search(ctx context.Context, query string, threshold float64, limit int) ([]models.CandidateMatch, error) {
	body := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"name^3", "description^2", "category", "tags"},
				"type":   "best_fields",
			},
		},
		"min_score": threshold * 10,
	}
	payload, _ := json.Marshal(body)

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(strings.NewReader(string(payload))),
	)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("semantic search error: %s", res.Status())
	}

	var parsed esResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("semantic search decode: %w", err)
	}

	out := make([]models.CandidateMatch, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		sim := hit.Score / 10
		if sim > 1 {
			sim = 1
		}
		if sim < threshold {
			continue
		}
		s := sim
		out = append(out, models.CandidateMatch{
			Business:         hit.Source,
			BaseScore:        sim * 100,
			Similarity:       &s,
			RetrievalReasons: []string{"Semantic match on your description"},
		})
	}
	return out, nil
}
