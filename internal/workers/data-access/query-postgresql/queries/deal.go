// internal/workers/data-access/query-postgresql/queries/deal.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

func DealDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	dealIDs, ok := params["dealIds"].([]string)
	if !ok || len(dealIDs) == 0 {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	placeholders := make([]string, len(dealIDs))
	args := make([]interface{}, len(dealIDs))
	for i, id := range dealIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `SELECT id, athlete_id, brand_id, deal_type, amount, status, deliverables
	          FROM deals WHERE id IN (` + strings.Join(placeholders, ",") + `)`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, athleteID, brandID, dealType, status, deliverables string
		var amount float64
		err := rows.Scan(&id, &athleteID, &brandID, &dealType, &amount, &status, &deliverables)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":           id,
			"athleteId":    athleteID,
			"brandId":      brandID,
			"dealType":     dealType,
			"amount":       amount,
			"status":       status,
			"deliverables": deliverables,
		})
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}
