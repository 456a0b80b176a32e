// internal/workers/data-access/query-postgresql/queries/athlete.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func AthleteProfile(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	athleteID, ok := params["athleteId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, name, school, sport, major, scholarTier string
	var gpa float64
	var totalFollowers, completedDeals int
	var enrollmentVerified, sportVerified, gradesVerified bool

	err := db.QueryRowContext(ctx, `
		SELECT id, name, school, sport, major, gpa, scholar_tier,
		       total_followers, completed_deals,
		       enrollment_verified, sport_verified, grades_verified
		FROM athletes
		WHERE id = $1`, athleteID).Scan(
		&id, &name, &school, &sport, &major,
		&gpa, &scholarTier,
		&totalFollowers, &completedDeals,
		&enrollmentVerified, &sportVerified, &gradesVerified,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":                 id,
		"name":               name,
		"school":             school,
		"sport":              sport,
		"major":              major,
		"gpa":                gpa,
		"scholarTier":        scholarTier,
		"totalFollowers":     totalFollowers,
		"completedDeals":     completedDeals,
		"enrollmentVerified": enrollmentVerified,
		"sportVerified":      sportVerified,
		"gradesVerified":     gradesVerified,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func AthleteActiveDeals(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	athleteID, ok := params["athleteId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, brand_id, deal_type, amount, status, start_date
		FROM deals
		WHERE athlete_id = $1 AND status IN ('active', 'accepted')`, athleteID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, brandID, dealType, status string
		var amount float64
		var startDate sql.NullTime
		err := rows.Scan(&id, &brandID, &dealType, &amount, &status, &startDate)
		if err != nil {
			return nil, 0, 0, err
		}
		row := map[string]interface{}{
			"id":       id,
			"brandId":  brandID,
			"dealType": dealType,
			"amount":   amount,
			"status":   status,
		}
		if startDate.Valid {
			row["startDate"] = startDate.Time.Format(time.RFC3339)
		}
		results = append(results, row)
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func AthleteBlockedPeriods(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	athleteID, ok := params["athleteId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT start_date, end_date, label
		FROM blocked_periods
		WHERE athlete_id = $1
		ORDER BY start_date`, athleteID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var startDate, endDate time.Time
		var label string
		err := rows.Scan(&startDate, &endDate, &label)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"startDate": startDate.Format(time.RFC3339),
			"endDate":   endDate.Format(time.RFC3339),
			"label":     label,
		})
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}
