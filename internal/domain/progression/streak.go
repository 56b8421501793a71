package progression

import (
	"sort"
	"time"

	"github.com/errata-app/errata-api/internal/domain"
)

// QualifyingCount is the number of same-day actions that make a calendar
// day count toward a streak.
const QualifyingCount = 3

// Streak derives the consecutive-day streak from a user's activity log.
//
// A day qualifies when its count is at least QualifyingCount. The streak is
// the length of the run of consecutive qualifying days ending at today or
// yesterday; if the most recent qualifying day is older than yesterday the
// streak is not live and the result is 0.
//
// The result is a pure function of the (date, count) set: reordering or
// duplicating input rows does not change it.
func Streak(days []domain.ActivityDay, today time.Time) int {
	qualifying := make(map[time.Time]struct{})
	for _, d := range days {
		if d.Count >= QualifyingCount {
			qualifying[domain.DateOf(d.Day)] = struct{}{}
		}
	}

	if len(qualifying) == 0 {
		return 0
	}

	dates := make([]time.Time, 0, len(qualifying))
	for d := range qualifying {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	day := domain.DateOf(today)
	yesterday := day.AddDate(0, 0, -1)

	// The streak must be live: anchored at today or yesterday.
	if !dates[0].Equal(day) && !dates[0].Equal(yesterday) {
		return 0
	}

	streak := 1
	for i := 0; i < len(dates)-1; i++ {
		if dates[i].AddDate(0, 0, -1).Equal(dates[i+1]) {
			streak++
		} else {
			break
		}
	}

	return streak
}
