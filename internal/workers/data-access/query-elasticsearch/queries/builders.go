package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
)

// ElasticsearchQuery defines the structure of a query request
type ElasticsearchQuery struct {
	Index      string
	QueryType  string
	Filters    map[string]interface{}
	BrandID    string
	Industry   string
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery builds an Elasticsearch search request based on query type and filters
func BuildQuery(esClient *elasticsearch.Client, eq ElasticsearchQuery) (*esapi.SearchRequest, error) {
	if eq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}

	switch eq.QueryType {
	case "brand_search":
		queryBody = buildBrandSearchQuery(eq)
	case "related_brands":
		queryBody = buildRelatedBrandsQuery(eq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, eq.QueryType)
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index:  []string{eq.Index},
		Body:   strings.NewReader(string(body)),
		From:   &eq.Pagination.From,
		Size:   &eq.Pagination.Size,
		Pretty: true,
	}

	return &req, nil
}

// buildBrandSearchQuery builds the main brand search query dynamically.
// Eligibility gates (min_gpa, min_followers) are pushed into the filter
// clauses so ineligible brands never leave the cluster.
func buildBrandSearchQuery(eq ElasticsearchQuery) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	// Keyword search
	if keywords, ok := eq.Filters["keywords"].(string); ok && keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"name^3", "industry^2", "notes"},
				"type":   "best_fields",
			},
		})
	}

	// Industry filter
	if industry, ok := eq.Filters["industry"].(string); ok && industry != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"industry": strings.ToLower(industry)},
		})
	} else if eq.Industry != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"industry": strings.ToLower(eq.Industry)},
		})
	}

	// Athlete eligibility gates
	if gpa, ok := toFloat(eq.Filters["gpa"]); ok && gpa > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"min_gpa": map[string]interface{}{"lte": gpa},
			},
		})
	}
	if followers, ok := toFloat(eq.Filters["followers"]); ok && followers > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"min_followers": map[string]interface{}{"lte": followers},
			},
		})
	}

	// Verified-only filter
	if verified, ok := eq.Filters["verifiedOnly"].(bool); ok && verified {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"verified": true},
		})
	}

	// Preferred deal type filter
	if dealTypes, ok := eq.Filters["dealTypes"].([]interface{}); ok && len(dealTypes) > 0 {
		terms := make([]string, 0, len(dealTypes))
		for _, dt := range dealTypes {
			if s, ok := dt.(string); ok {
				terms = append(terms, s)
			}
		}
		if len(terms) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"terms": map[string]interface{}{"preferred_deal_types": terms},
			})
		}
	}

	// Default match_all if no keyword
	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	// Sorting logic
	if sortBy, ok := eq.Filters["sortBy"].(string); ok {
		switch sortBy {
		case "avg_deal_rating":
			query["sort"] = []map[string]interface{}{{"avg_deal_rating": "desc"}}
		case "completed_deals":
			query["sort"] = []map[string]interface{}{{"completed_deals": "desc"}}
		case "name":
			query["sort"] = []map[string]interface{}{{"name": "asc"}}
		}
	}

	return query
}

// buildRelatedBrandsQuery builds a "brands like this one" query
func buildRelatedBrandsQuery(eq ElasticsearchQuery) map[string]interface{} {
	if eq.BrandID == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"match_none": map[string]interface{}{},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"more_like_this": map[string]interface{}{
				"fields": []string{"name", "industry", "notes"},
				"like": []map[string]interface{}{
					{"_index": eq.Index, "_id": eq.BrandID},
				},
				"min_term_freq":   1,
				"max_query_terms": 12,
				"min_doc_freq":    1,
				"min_word_length": 3,
			},
		},
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
