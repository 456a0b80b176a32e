// internal/workers/data-access/query-postgresql/queries/brand.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func BrandProfile(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	brandID, ok := params["brandId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, name, industry string
	var verified bool
	var completedDeals int
	var avgDealRating float64

	err := db.QueryRowContext(ctx, `
		SELECT id, name, industry, verified, completed_deals, avg_deal_rating
		FROM brands
		WHERE id = $1`, brandID).Scan(
		&id, &name, &industry,
		&verified, &completedDeals, &avgDealRating,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":             id,
		"name":           name,
		"industry":       industry,
		"verified":       verified,
		"completedDeals": completedDeals,
		"avgDealRating":  avgDealRating,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}
