package app

import (
	"math/rand"
	"time"

	"threefiveseven/internal/domain"
)

// session is one live connection. hand is the private cards for the
// player's current seat; it never appears in table broadcasts.
type session struct {
	id        string
	sender    Sender
	tableCode string
	hand      []domain.Card
}

// tableState wraps the table with engine-only machinery: its deck and
// the two timer slots. gameTimer drives countdown ticks and the
// auto-advance after an uncontested round; deleteTimer covers deferred
// deletion once every seat has disconnected. Each slot carries a
// sequence number so a fire scheduled before a cancel is ignored.
type tableState struct {
	tbl  *domain.Table
	deck *domain.Deck

	gameTimer *time.Timer
	gameSeq   int

	deleteTimer *time.Timer
	deleteSeq   int

	countLeft int
}

func (ts *tableState) cancelGameTimer() {
	ts.gameSeq++
	if ts.gameTimer != nil {
		ts.gameTimer.Stop()
		ts.gameTimer = nil
	}
}

func (ts *tableState) cancelDeleteTimer() {
	ts.deleteSeq++
	if ts.deleteTimer != nil {
		ts.deleteTimer.Stop()
		ts.deleteTimer = nil
	}
}

const tableCodeLen = 4

// newTableCode draws 4 uppercase letters, resampling until the code is
// not already live.
func newTableCode(rng *rand.Rand, taken map[string]*tableState) string {
	buf := make([]byte, tableCodeLen)
	for {
		for i := range buf {
			buf[i] = byte('A' + rng.Intn(26))
		}
		code := string(buf)
		if _, ok := taken[code]; !ok {
			return code
		}
	}
}
