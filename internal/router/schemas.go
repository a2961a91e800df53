// internal/router/schemas.go
package router

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Task names form a closed set; anything else is rejected at the boundary.
const (
	TaskFindAndScore     = "find_and_score"
	TaskSemanticSearch   = "semantic_search_only"
	TaskGetMLScore       = "get_ml_score"
	TaskSearchBusinesses = "search_businesses"
)

const searchCriteriaSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"queryText":    {"type": "string"},
		"industry":     {"type": "string"},
		"location":     {"type": "string"},
		"category":     {"type": "string"},
		"tags":         {"type": "array", "items": {"type": "string"}},
		"verified":     {"type": "boolean"},
		"minRating":    {"type": "number", "minimum": 0, "maximum": 5},
		"foundedAfter": {"type": "integer"},
		"employeesMin": {"type": "integer", "minimum": 0},
		"employeesMax": {"type": "integer", "minimum": 0}
	}
}`

var taskSchemas = map[string]string{
	TaskFindAndScore: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["searchCriteria"],
		"properties": {
			"kind": {"type": "string", "enum": ["b2b", "candidate_to_job", "startup_to_investor"]},
			"description": {"type": "string"},
			"searchCriteria": ` + searchCriteriaSchema + `,
			"requirements": {
				"type": "object",
				"additionalProperties": false,
				"properties": {
					"location":    {"type": "string"},
					"budget":      {"type": "string", "enum": ["under-10k", "10k-50k", "50k-100k", "100k-500k", "over-500k"]},
					"timeline":    {"type": "string"},
					"industry":    {"type": "string"},
					"companySize": {"type": "string", "enum": ["startup", "small", "medium", "large"]}
				}
			},
			"limit":     {"type": "integer", "minimum": 1, "maximum": 50},
			"page":      {"type": "integer", "minimum": 0},
			"pageSize":  {"type": "integer", "minimum": 1, "maximum": 50},
			"sessionId": {"type": "string"}
		}
	}`,
	TaskSemanticSearch: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["queryText"],
		"properties": {
			"queryText": {"type": "string", "minLength": 1},
			"threshold": {"type": "number", "minimum": 0, "maximum": 1},
			"limit":     {"type": "integer", "minimum": 1, "maximum": 50}
		}
	}`,
	TaskGetMLScore: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["businessFeatures"],
		"properties": {
			"businessFeatures": {
				"type": "array",
				"items": {"type": "number"},
				"minItems": 10,
				"maxItems": 10
			}
		}
	}`,
	TaskSearchBusinesses: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["searchCriteria"],
		"properties": {
			"searchCriteria": ` + searchCriteriaSchema + `,
			"page":      {"type": "integer", "minimum": 0},
			"pageSize":  {"type": "integer", "minimum": 1, "maximum": 50},
			"sessionId": {"type": "string"}
		}
	}`,
}

// compileSchemas compiles every task schema once at startup.
func compileSchemas() (map[string]*gojsonschema.Schema, error) {
	compiled := make(map[string]*gojsonschema.Schema, len(taskSchemas))
	for task, raw := range taskSchemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", task, err)
		}
		compiled[task] = schema
	}
	return compiled, nil
}
