package bot

import "threefiveseven/internal/domain"

// Tuning holds the hold-or-drop thresholds per round size. A hand at
// least as strong as the threshold is held. Larger rounds demand
// stronger hands since every hand has more wilds and draws to work with.
type Tuning struct {
	Thresholds map[int]domain.HandRank
	// Fallback covers round sizes without an explicit threshold.
	Fallback domain.HandRank
}

var DefaultTuning = Tuning{
	Thresholds: map[int]domain.HandRank{
		3: domain.ThreeOfAKind,
		5: domain.Straight,
		7: domain.FullHouse,
	},
	Fallback: domain.ThreeOfAKind,
}

// ShouldHold reports whether a hand clears the threshold for the round.
func (t Tuning) ShouldHold(eval domain.EvaluatedHand, round int) bool {
	threshold, ok := t.Thresholds[round]
	if !ok {
		threshold = t.Fallback
	}
	return eval.Rank <= threshold
}
