// Package progression contains the pure gamification calculators: the XP
// level table, the streak calculator and the badge catalog. Everything in
// this package is a pure function of its inputs; persistence and event
// wiring live in the service layer.
package progression

// Level is one row of the fixed ascending XP threshold table.
type Level struct {
	Number int
	Name   string
	MinXP  int
}

// LevelTable is the fixed ascending level threshold table. A user's level
// is the highest row whose MinXP does not exceed their total XP.
var LevelTable = []Level{
	{Number: 1, Name: "Beginner", MinXP: 0},
	{Number: 2, Name: "Learner", MinXP: 200},
	{Number: 3, Name: "Scholar", MinXP: 500},
	{Number: 4, Name: "Achiever", MinXP: 1000},
	{Number: 5, Name: "Expert", MinXP: 1800},
	{Number: 6, Name: "Master", MinXP: 3000},
}

// MaxLevel is the highest reachable level number.
const MaxLevel = 6

// LevelForXP derives the level for a cumulative XP total. Negative totals
// are treated as zero.
func LevelForXP(totalXP int) Level {
	level := LevelTable[0]
	for _, l := range LevelTable {
		if totalXP >= l.MinXP {
			level = l
		}
	}
	return level
}

// Fixed XP rewards for the events the ledger credits. The ledger itself is
// not idempotent; callers must award each logical event exactly once.
const (
	XPAddError   = 10 // logging a new error
	XPReview     = 20 // "reviewed" outcome
	XPMaster     = 50 // "mastered" outcome
	XPDailyBonus = 30 // first time the same-day qualifying count reaches 3
)

// RewardForOutcome maps a review outcome name to its fixed XP reward.
// Skipped outcomes earn nothing.
func RewardForOutcome(outcome string) int {
	switch outcome {
	case "mastered":
		return XPMaster
	case "reviewed":
		return XPReview
	default:
		return 0
	}
}
