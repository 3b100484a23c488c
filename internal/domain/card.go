package domain

import "math/rand"

// Card is a single playing card. Rank is the face string ("A", "2".."10",
// "J", "Q", "K") so it can be matched directly against the wildcard list.
type Card struct {
	Rank string `json:"value"`
	Suit string `json:"suit"`
}

// Ranks in deck order, Suits in suit order.
var (
	Ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
	Suits = []string{"C", "D", "H", "S"}
)

// rankOrder lists ranks from strongest to weakest for hand comparison.
// Face cards always outrank numeric cards.
var rankOrder = []string{"A", "K", "Q", "J", "10", "9", "8", "7", "6", "5", "4", "3", "2"}

var rankStrength = func() map[string]int {
	m := make(map[string]int, len(rankOrder))
	for i, r := range rankOrder {
		m[r] = i
	}
	return m
}()

// StrongerRank reports whether rank a beats rank b.
func StrongerRank(a, b string) bool {
	return rankStrength[a] < rankStrength[b]
}

// Deck holds the undealt cards of a table's current game. Drawing from an
// exhausted deck reconstitutes a fresh 52-card deck, so dealing never stalls
// even when hand sizes outgrow a single deck.
type Deck struct {
	rng   *rand.Rand
	cards []Card
}

// NewDeck returns a full 52-card deck drawing with the given rng.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.refill()
	return d
}

func (d *Deck) refill() {
	d.cards = make([]Card, 0, 52)
	for _, s := range Suits {
		for _, r := range Ranks {
			d.cards = append(d.cards, Card{Rank: r, Suit: s})
		}
	}
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Draw removes and returns one uniformly random remaining card.
func (d *Deck) Draw() Card {
	if len(d.cards) == 0 {
		d.refill()
	}
	i := d.rng.Intn(len(d.cards))
	c := d.cards[i]
	d.cards[i] = d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c
}
