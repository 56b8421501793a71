package mastery

// Params defines all configurable parameters for the mastery scheduling
// algorithm. The defaults encode the fixed behavior of the review engine;
// the struct exists so tests can exercise edge cases without rebuilding
// constants.
type Params struct {
	// Intervals is the fixed revision interval sequence in days.
	// Intervals only advance forward through it and saturate at the end.
	Intervals []int

	// Level adjustments per outcome
	MasterLevelGain  int
	ReviewLevelGain  int
	SkipLevelPenalty int

	// SkipDeferDays is how many days a skipped record is pushed forward.
	// A skipped item comes back the next day instead of staying due on a
	// stale date forever.
	SkipDeferDays int

	// Level bounds
	MaxLevel int
	MinLevel int
}

// NewDefaultParams creates a Params instance with the standard values.
func NewDefaultParams() *Params {
	return &Params{
		Intervals:        []int{1, 3, 7, 15, 30},
		MasterLevelGain:  25,
		ReviewLevelGain:  10,
		SkipLevelPenalty: 5,
		SkipDeferDays:    1,
		MaxLevel:         100,
		MinLevel:         0,
	}
}

// NextInterval returns the interval that follows the given one in the
// sequence, saturating at the final value. An interval not in the sequence
// is normalized to the first one.
func (p *Params) NextInterval(current int) int {
	for i, d := range p.Intervals {
		if d == current {
			if i+1 < len(p.Intervals) {
				return p.Intervals[i+1]
			}
			return d
		}
	}
	return p.Intervals[0]
}
