package domain

import (
	"fmt"
	"strings"
)

// HandRank is a poker hand category. Lower values are stronger.
type HandRank int

const (
	QAKAJHand HandRank = iota
	FiveOfAKind
	RoyalFlush
	StraightFlush
	FourOfAKind
	FullHouse
	Flush
	Straight
	ThreeOfAKind
	TwoPair
	OnePair
	HighCard
)

func (r HandRank) String() string {
	switch r {
	case QAKAJHand:
		return "QAKAJ"
	case FiveOfAKind:
		return "FIVE_OF_A_KIND"
	case RoyalFlush:
		return "ROYAL_FLUSH"
	case StraightFlush:
		return "STRAIGHT_FLUSH"
	case FourOfAKind:
		return "FOUR_OF_A_KIND"
	case FullHouse:
		return "FULL_HOUSE"
	case Flush:
		return "FLUSH"
	case Straight:
		return "STRAIGHT"
	case ThreeOfAKind:
		return "THREE_OF_A_KIND"
	case TwoPair:
		return "TWO_PAIR"
	case OnePair:
		return "ONE_PAIR"
	case HighCard:
		return "HIGH_CARD"
	default:
		return "UNKNOWN"
	}
}

// EvaluatedHand is the best achievable category for a hand plus its ordered
// tiebreak values (rank strings, most significant first).
type EvaluatedHand struct {
	Rank   HandRank
	Values []string
}

// Compare orders evaluated hands: 1 if e beats other, -1 if it loses,
// 0 on an exact tie.
func (e EvaluatedHand) Compare(other EvaluatedHand) int {
	if e.Rank != other.Rank {
		if e.Rank < other.Rank {
			return 1
		}
		return -1
	}
	for i := 0; i < len(e.Values) && i < len(other.Values); i++ {
		if e.Values[i] == other.Values[i] {
			continue
		}
		if StrongerRank(e.Values[i], other.Values[i]) {
			return 1
		}
		return -1
	}
	return 0
}

// Describe renders the hand for status messages and logs.
func (e EvaluatedHand) Describe() string {
	v := e.Values
	switch e.Rank {
	case QAKAJHand:
		return "QuAKAJack"
	case FiveOfAKind:
		return fmt.Sprintf("5-of-a-Kind %ss", v[0])
	case RoyalFlush:
		return "Royal Flush"
	case StraightFlush:
		return fmt.Sprintf("%s High Straight Flush", v[0])
	case FourOfAKind:
		s := fmt.Sprintf("4-of-a-Kind %ss", v[0])
		if len(v) > 1 {
			s += " - Kicker: " + v[1]
		}
		return s
	case FullHouse:
		return fmt.Sprintf("Full House %ss over %ss", v[0], v[1])
	case Flush:
		return "Flush " + strings.Join(v, "-")
	case Straight:
		return fmt.Sprintf("%s High Straight", v[0])
	case ThreeOfAKind:
		s := fmt.Sprintf("3-of-a-Kind %ss", v[0])
		if len(v) > 1 {
			s += " - Kickers: " + strings.Join(v[1:], "-")
		}
		return s
	case TwoPair:
		s := fmt.Sprintf("Two Pair %ss over %ss", v[0], v[1])
		if len(v) > 2 {
			s += " - Kicker: " + v[2]
		}
		return s
	case OnePair:
		s := fmt.Sprintf("Pair of %ss", v[0])
		if len(v) > 1 {
			s += " - Kickers: " + strings.Join(v[1:], "-")
		}
		return s
	default:
		return "High Card: " + strings.Join(v, "-")
	}
}

// handCounts is the working view of a hand: natural rank and suit counts
// with wild cards folded out into a substitution budget.
type handCounts struct {
	ranks map[string]int
	suits map[string]int
	wilds int
}

// Evaluate computes the best achievable category for the hand under the
// given wildcard configuration, substituting wilds optimally. It is a pure
// function of its inputs.
func Evaluate(hand []Card, s Settings) EvaluatedHand {
	wild := make(map[string]bool, len(s.Wilds))
	for _, w := range s.Wilds {
		wild[w] = true
	}
	c := handCounts{ranks: map[string]int{}, suits: map[string]int{}}
	for _, card := range hand {
		if wild[card.Rank] {
			c.wilds++
			continue
		}
		c.ranks[card.Rank]++
		c.suits[card.Suit]++
	}

	// Value lists never exceed five cards regardless of hand size.
	size := len(hand)
	if size > 5 {
		size = 5
	}

	// Wilds never count toward QAKAJ.
	if s.QAKAJ && c.ranks["Q"] >= 1 && c.ranks["A"] >= 2 && c.ranks["K"] >= 1 && c.ranks["J"] >= 1 {
		return EvaluatedHand{Rank: QAKAJHand}
	}

	setRank, setCount := largestSet(c.ranks)

	if len(hand) >= 5 {
		if s.FiveOfAKind && setCount+c.wilds >= 5 {
			v, _ := highCard(c.ranks, nil, 5-c.wilds)
			return EvaluatedHand{Rank: FiveOfAKind, Values: []string{v}}
		}
		if s.Straights {
			if high, ok := bestStraightFlush(hand, wild, c); ok {
				if high == "A" {
					return EvaluatedHand{Rank: RoyalFlush}
				}
				return EvaluatedHand{Rank: StraightFlush, Values: []string{high}}
			}
		}
	}

	if setCount+c.wilds >= 4 {
		quad, _ := highCard(c.ranks, nil, 4-c.wilds)
		spent := 4 - c.ranks[quad]
		if spent < 0 {
			spent = 0
		}
		values := []string{quad}
		values = append(values, kickers(c.ranks, 1, []string{quad}, c.wilds-spent)...)
		return EvaluatedHand{Rank: FourOfAKind, Values: values}
	}

	if len(hand) >= 5 {
		if setCount+c.wilds >= 3 {
			if trip, pair, ok := fullHouse(c.ranks, c.wilds); ok {
				return EvaluatedHand{Rank: FullHouse, Values: []string{trip, pair}}
			}
		}
		if values, ok := bestFlush(hand, wild, c); ok {
			return EvaluatedHand{Rank: Flush, Values: values}
		}
		if s.Straights {
			if high, ok := bestStraight(c.ranks, c.wilds); ok {
				return EvaluatedHand{Rank: Straight, Values: []string{high}}
			}
		}
	}

	if setCount+c.wilds >= 3 {
		trip, _ := highCard(c.ranks, nil, 3-c.wilds)
		spent := 3 - c.ranks[trip]
		if spent < 0 {
			spent = 0
		}
		values := []string{trip}
		values = append(values, kickers(c.ranks, size-3, []string{trip}, c.wilds-spent)...)
		return EvaluatedHand{Rank: ThreeOfAKind, Values: values}
	}

	if setCount+c.wilds >= 2 {
		if c.wilds > 0 {
			// A wild plus a natural pair would already be trips, so the
			// best here is one pair built on the highest natural card.
			pair, _ := highCard(c.ranks, nil, 2-c.wilds)
			values := []string{pair}
			values = append(values, kickers(c.ranks, size-2, []string{pair}, 0)...)
			return EvaluatedHand{Rank: OnePair, Values: values}
		}
		if second, ok := highCard(c.ranks, []string{setRank}, 2); ok {
			values := []string{setRank, second}
			values = append(values, kickers(c.ranks, size-4, []string{setRank, second}, 0)...)
			return EvaluatedHand{Rank: TwoPair, Values: values}
		}
		values := []string{setRank}
		values = append(values, kickers(c.ranks, size-2, []string{setRank}, 0)...)
		return EvaluatedHand{Rank: OnePair, Values: values}
	}

	return EvaluatedHand{Rank: HighCard, Values: kickers(c.ranks, size, nil, c.wilds)}
}

// largestSet returns the rank with the biggest natural group, preferring
// the stronger rank on count ties.
func largestSet(ranks map[string]int) (string, int) {
	best, count := "", 0
	for _, r := range rankOrder {
		if ranks[r] > count {
			best, count = r, ranks[r]
		}
	}
	return best, count
}

// highCard returns the strongest rank outside exclude with at least
// minCount natural copies. A non-positive minCount means the group is
// completed by wilds alone, which always read as Aces.
func highCard(ranks map[string]int, exclude []string, minCount int) (string, bool) {
	if minCount <= 0 {
		return "A", true
	}
	for _, r := range rankOrder {
		if contains(exclude, r) {
			continue
		}
		if ranks[r] >= minCount {
			return r, true
		}
	}
	return "", false
}

// kickers fills up to n tiebreak values from the strongest unused natural
// ranks; leftover wild budget with no natural card to shadow reads as Aces.
func kickers(ranks map[string]int, n int, exclude []string, wilds int) []string {
	if n <= 0 {
		return nil
	}
	used := append([]string(nil), exclude...)
	out := make([]string, 0, n)
	for len(out) < n {
		r, ok := highCard(ranks, used, 1)
		if !ok {
			break
		}
		take := ranks[r]
		if take > n-len(out) {
			take = n - len(out)
		}
		for i := 0; i < take; i++ {
			out = append(out, r)
		}
		used = append(used, r)
	}
	for wilds > 0 && len(out) < n {
		out = append(out, "A")
		wilds--
	}
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// fullHouse finds the best triple-over-pair split. Three or more wilds
// would already be quads; two wilds with no quads means no pair at all,
// so only the zero- and one-wild shapes can produce a full house.
func fullHouse(ranks map[string]int, wilds int) (trip, pair string, ok bool) {
	switch {
	case wilds >= 2:
		return "", "", false
	case wilds == 1:
		// No natural trip (that would be quads), so the wild promotes the
		// higher of two natural pairs.
		var first string
		for _, r := range rankOrder {
			if ranks[r] >= 2 {
				if first != "" {
					return first, r, true
				}
				first = r
			}
		}
		return "", "", false
	default:
		for _, r := range rankOrder {
			if ranks[r] < 3 {
				continue
			}
			for _, p := range rankOrder {
				if p != r && ranks[p] >= 2 {
					return r, p, true
				}
			}
			return "", "", false
		}
		return "", "", false
	}
}

// bestFlush returns the strongest five flush values across all suits that
// can reach five cards with the wild budget. Wilds fill the highest ranks
// missing from the suit, so an unmatched wild reads as an Ace.
func bestFlush(hand []Card, wild map[string]bool, c handCounts) ([]string, bool) {
	var best []string
	for _, suit := range Suits {
		if c.suits[suit]+c.wilds < 5 {
			continue
		}
		values := flushValues(hand, wild, suit, c.wilds)
		if values == nil {
			continue
		}
		if best == nil || compareValues(values, best) > 0 {
			best = values
		}
	}
	return best, best != nil
}

func flushValues(hand []Card, wild map[string]bool, suit string, wilds int) []string {
	values := make([]string, 0, 5)
	for _, r := range rankOrder {
		if naturalInHand(hand, wild, r, suit) {
			values = append(values, r)
		} else if wilds > 0 {
			values = append(values, r)
			wilds--
		}
		if len(values) == 5 {
			return values
		}
	}
	return nil
}

func compareValues(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			continue
		}
		if StrongerRank(a[i], b[i]) {
			return 1
		}
		return -1
	}
	return 0
}

// straightWindows is the rank order with a trailing Ace so the wheel
// (5-4-3-2-A) is the last five-card window.
var straightWindows = append(append([]string(nil), rankOrder...), "A")

// bestStraight returns the high card of the strongest five-rank run the
// naturals plus wilds can complete.
func bestStraight(ranks map[string]int, wilds int) (string, bool) {
	if wilds >= 5 {
		return "A", true
	}
	for i := 0; i+5 <= len(straightWindows); i++ {
		budget := wilds
		ok := true
		for j := 0; j < 5; j++ {
			if ranks[straightWindows[i+j]] > 0 {
				continue
			}
			if budget == 0 {
				ok = false
				break
			}
			budget--
		}
		if ok {
			return straightWindows[i], true
		}
	}
	return "", false
}

// bestStraightFlush returns the high card of the strongest same-suit run
// completed by wilds. An Ace-high result is a royal flush.
func bestStraightFlush(hand []Card, wild map[string]bool, c handCounts) (string, bool) {
	if c.wilds >= 5 {
		return "A", true
	}
	for i := 0; i+5 <= len(straightWindows); i++ {
		for _, suit := range Suits {
			if c.suits[suit] == 0 || c.suits[suit]+c.wilds < 5 {
				continue
			}
			budget := c.wilds
			ok := true
			for j := 0; j < 5; j++ {
				if naturalInHand(hand, wild, straightWindows[i+j], suit) {
					continue
				}
				if budget == 0 {
					ok = false
					break
				}
				budget--
			}
			if ok {
				return straightWindows[i], true
			}
		}
	}
	return "", false
}

func naturalInHand(hand []Card, wild map[string]bool, rank, suit string) bool {
	for _, card := range hand {
		if card.Rank == rank && card.Suit == suit && !wild[rank] {
			return true
		}
	}
	return false
}
