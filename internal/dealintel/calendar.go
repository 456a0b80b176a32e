// internal/dealintel/calendar.go
package dealintel

import (
	"sort"
	"time"

	"gradeup-workers/internal/models"
)

// BlockedCalendar answers membership queries over an athlete's blocked date
// intervals. Intervals are closed on both ends and kept sorted by start so
// lookups can binary-search; expected sizes are tens of entries.
type BlockedCalendar struct {
	periods []models.BlockedPeriod
}

// NewBlockedCalendar copies and sorts the given periods.
func NewBlockedCalendar(periods []models.BlockedPeriod) *BlockedCalendar {
	sorted := make([]models.BlockedPeriod, len(periods))
	copy(sorted, periods)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})
	return &BlockedCalendar{periods: sorted}
}

// Contains reports whether t falls inside any blocked period, and returns
// the first matching period.
func (c *BlockedCalendar) Contains(t time.Time) (models.BlockedPeriod, bool) {
	// First period starting after t; candidates are everything before it.
	idx := sort.Search(len(c.periods), func(i int) bool {
		return c.periods[i].Start.After(t)
	})
	for i := idx - 1; i >= 0; i-- {
		p := c.periods[i]
		if !p.End.Before(t) {
			return p, true
		}
	}
	return models.BlockedPeriod{}, false
}
