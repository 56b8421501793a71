package progression

import (
	"github.com/errata-app/errata-api/internal/domain"
)

// Badge is a one-way achievement unlock: an id plus the predicate that
// earns it. Once a badge is in a user's set it is never revoked, even if
// the underlying condition later becomes false (streaks reset, levels do
// not, but the rule is uniform).
type Badge struct {
	ID        string
	Name      string
	Predicate func(state *domain.XPState, records []*domain.ErrorRecord) bool
}

// Catalog returns the full badge catalog. Evaluation order does not matter;
// the eventual badge set for a given history is the same regardless of how
// often or in what order the evaluator runs.
func Catalog() []Badge {
	return []Badge{
		{
			ID:   "first_error",
			Name: "First Step",
			Predicate: func(_ *domain.XPState, records []*domain.ErrorRecord) bool {
				return len(records) >= 1
			},
		},
		{
			ID:   "errors_10",
			Name: "Error Hunter",
			Predicate: func(_ *domain.XPState, records []*domain.ErrorRecord) bool {
				return len(records) >= 10
			},
		},
		{
			ID:   "century",
			Name: "Century Club",
			Predicate: func(_ *domain.XPState, records []*domain.ErrorRecord) bool {
				return len(records) >= 100
			},
		},
		{
			ID:   "streak_7",
			Name: "Week Warrior",
			Predicate: func(state *domain.XPState, _ []*domain.ErrorRecord) bool {
				return state.CurrentStreak >= 7
			},
		},
		{
			ID:   "streak_30",
			Name: "Iron Month",
			Predicate: func(state *domain.XPState, _ []*domain.ErrorRecord) bool {
				return state.CurrentStreak >= 30
			},
		},
		{
			ID:   "mastered_10",
			Name: "Master of Mistakes",
			Predicate: func(_ *domain.XPState, records []*domain.ErrorRecord) bool {
				return masteredCount(records) >= 10
			},
		},
		{
			ID:   "subject_master",
			Name: "Subject Specialist",
			Predicate: func(_ *domain.XPState, records []*domain.ErrorRecord) bool {
				perSubject := make(map[string]int)
				for _, r := range records {
					if r.MasteryStage == domain.StageMastered {
						perSubject[r.Subject]++
						if perSubject[r.Subject] >= 5 {
							return true
						}
					}
				}
				return false
			},
		},
		{
			ID:   "max_level",
			Name: "Summit",
			Predicate: func(state *domain.XPState, _ []*domain.ErrorRecord) bool {
				return state.Level >= MaxLevel
			},
		},
	}
}

func masteredCount(records []*domain.ErrorRecord) int {
	n := 0
	for _, r := range records {
		if r.MasteryStage == domain.StageMastered {
			n++
		}
	}
	return n
}

// NewlyEarned evaluates the catalog against the given state and records and
// returns the ids of badges that are true but not yet in the state's badge
// set. It never proposes removals.
func NewlyEarned(state *domain.XPState, records []*domain.ErrorRecord) []string {
	var unlocked []string
	for _, badge := range Catalog() {
		if state.HasBadge(badge.ID) {
			continue
		}
		if badge.Predicate(state, records) {
			unlocked = append(unlocked, badge.ID)
		}
	}
	return unlocked
}
