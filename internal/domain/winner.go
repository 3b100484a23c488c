package domain

// Contestant pairs a session id with its evaluated hand for the showdown.
type Contestant struct {
	SessionID string
	Hand      EvaluatedHand
}

// Winners returns the session ids of every contestant tied for the best
// hand, in the order the contestants were given (seat order).
func Winners(contestants []Contestant) []string {
	var winners []string
	var best EvaluatedHand
	for i, c := range contestants {
		if i == 0 {
			winners = []string{c.SessionID}
			best = c.Hand
			continue
		}
		switch c.Hand.Compare(best) {
		case 1:
			winners = []string{c.SessionID}
			best = c.Hand
		case 0:
			winners = append(winners, c.SessionID)
		}
	}
	return winners
}

// SplitPot computes the money movement for a contested showdown with the
// given pot (cents), holder count and winner count. Each losing holder pays
// twice the pot; the pot grows by pot per loser; the same growth is split
// evenly among the winners with any remainder going to the first (earliest
// seated) winner. Debits always equal credits plus pot growth.
func SplitPot(pot int64, holders, winners int) (loserDebit, potGrowth int64, winnerShares []int64) {
	losers := int64(holders - winners)
	loserDebit = pot * 2
	potGrowth = pot * losers

	winnerShares = make([]int64, winners)
	share := potGrowth / int64(winners)
	remainder := potGrowth % int64(winners)
	for i := range winnerShares {
		winnerShares[i] = share
	}
	winnerShares[0] += remainder
	return loserDebit, potGrowth, winnerShares
}
