package domain

import (
	"fmt"
	"strconv"
)

// TableState is the lifecycle stage of a table.
type TableState string

const (
	// StateLobby is the pre-game state where players can join and leave.
	StateLobby TableState = "LOBBY"
	// StateGame is the between-rounds state of a running game.
	StateGame TableState = "GAME"
	// StateRound is the hold-or-drop phase of a round.
	StateRound TableState = "ROUND"
	// StateCount is the locked-in countdown before the showdown.
	StateCount TableState = "COUNT"
)

// SeatColors is the fixed palette assigned first-available to joining
// players. Its length bounds the number of seats at a table.
var SeatColors = []string{"BLUE", "GREEN", "GREY", "PURPLE", "RED", "YELLOW"}

// Settings holds the per-table game configuration. Money amounts are cents.
// Wilds is derived from the current round by the server and never client-set.
type Settings struct {
	TokenGoal   int      `json:"tokenGoal"`
	StartPot    int64    `json:"startPot"`
	RoundInc    int      `json:"roundInc"`
	RoundMin    int      `json:"roundMin"`
	RoundMax    int      `json:"roundMax"`
	Wilds       []string `json:"wilds"`
	QAKAJ       bool     `json:"qakaj"`
	FiveOfAKind bool     `json:"five_of_a_kind"`
	Crazy       bool     `json:"crazy"`
	Straights   bool     `json:"straights"`
	AdvanceSec  int      `json:"advanceSec"`
}

// DefaultSettings returns the settings a new table starts from.
func DefaultSettings() Settings {
	return Settings{
		TokenGoal:   5,
		StartPot:    100,
		RoundInc:    2,
		RoundMin:    3,
		RoundMax:    7,
		QAKAJ:       true,
		FiveOfAKind: true,
		Straights:   true,
		AdvanceSec:  3,
	}
}

// Validate checks the settings for values the state machine cannot run with.
func (s Settings) Validate() error {
	if s.TokenGoal <= 0 {
		return fmt.Errorf("tokenGoal must be > 0, got %d", s.TokenGoal)
	}
	if s.StartPot <= 0 {
		return fmt.Errorf("startPot must be > 0, got %d", s.StartPot)
	}
	if s.RoundMin <= 0 || s.RoundMin > s.RoundMax {
		return fmt.Errorf("invalid round bounds: min=%d max=%d", s.RoundMin, s.RoundMax)
	}
	if s.RoundInc <= 0 {
		return fmt.Errorf("roundInc must be > 0, got %d", s.RoundInc)
	}
	if s.AdvanceSec <= 0 {
		return fmt.Errorf("advanceSec must be > 0, got %d", s.AdvanceSec)
	}
	return nil
}

// Seat is a player's membership record at a table. Money is the per-game
// running total, zeroed into the ledger at game end.
type Seat struct {
	SessionID string `json:"-"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Tokens    int    `json:"tokens"`
	Money     int64  `json:"money"`
	Held      bool   `json:"held"`
	Moved     bool   `json:"moved"`
	Active    bool   `json:"active"`
}

// LedgerEntry is the durable cross-game balance for a player name.
type LedgerEntry struct {
	Name  string `json:"name"`
	Money int64  `json:"money"`
}

// Table is one seated group of players sharing a game and ledger.
// Seat order is significant: seat 0 is the table owner.
type Table struct {
	Code     string        `json:"code"`
	Seats    []*Seat       `json:"players"`
	Pot      int64         `json:"pot"`
	Round    int           `json:"round"`
	State    TableState    `json:"state"`
	Message  string        `json:"message"`
	Settings Settings      `json:"settings"`
	Ledger   []LedgerEntry `json:"ledger"`
}

// NewTable creates an empty lobby table with the given code and settings.
func NewTable(code string, settings Settings) *Table {
	return &Table{
		Code:     code,
		State:    StateLobby,
		Settings: settings,
	}
}

// IsFull reports whether every palette color is taken.
func (t *Table) IsFull() bool {
	return len(t.Seats) >= len(SeatColors)
}

// SeatBySession returns the seat held by the given session, or nil.
func (t *Table) SeatBySession(sessionID string) *Seat {
	for _, seat := range t.Seats {
		if seat.SessionID == sessionID {
			return seat
		}
	}
	return nil
}

// SeatByName returns the seat with the given display name, or nil.
func (t *Table) SeatByName(name string) *Seat {
	for _, seat := range t.Seats {
		if seat.Name == name {
			return seat
		}
	}
	return nil
}

// IsOwner reports whether the session holds seat 0.
func (t *Table) IsOwner(sessionID string) bool {
	return len(t.Seats) > 0 && t.Seats[0].SessionID == sessionID
}

// availableColor returns the first palette color not in use.
func (t *Table) availableColor() string {
	for _, color := range SeatColors {
		taken := false
		for _, seat := range t.Seats {
			if seat.Color == color {
				taken = true
				break
			}
		}
		if !taken {
			return color
		}
	}
	return ""
}

// AddSeat seats a session under the given name, assigning the first
// available color and ensuring a ledger entry for the name. The caller is
// responsible for the fullness and uniqueness preconditions.
func (t *Table) AddSeat(sessionID, name string) *Seat {
	seat := &Seat{
		SessionID: sessionID,
		Name:      name,
		Color:     t.availableColor(),
		Active:    true,
	}
	t.Seats = append(t.Seats, seat)
	t.EnsureLedger(name)
	return seat
}

// RemoveSeat unseats a session. The seat's ledger entry is dropped only if
// its balance is exactly zero.
func (t *Table) RemoveSeat(sessionID string) {
	for i, seat := range t.Seats {
		if seat.SessionID != sessionID {
			continue
		}
		for j, entry := range t.Ledger {
			if entry.Name == seat.Name && entry.Money == 0 {
				t.Ledger = append(t.Ledger[:j], t.Ledger[j+1:]...)
				break
			}
		}
		t.Seats = append(t.Seats[:i], t.Seats[i+1:]...)
		return
	}
}

// EnsureLedger returns the ledger entry for a name, creating it if absent.
func (t *Table) EnsureLedger(name string) *LedgerEntry {
	for i := range t.Ledger {
		if t.Ledger[i].Name == name {
			return &t.Ledger[i]
		}
	}
	t.Ledger = append(t.Ledger, LedgerEntry{Name: name})
	return &t.Ledger[len(t.Ledger)-1]
}

// AllMoved reports whether every currently seated player is marked ready.
func (t *Table) AllMoved() bool {
	for _, seat := range t.Seats {
		if !seat.Moved {
			return false
		}
	}
	return true
}

// AllInactive reports whether no seated session has a live connection.
func (t *Table) AllInactive() bool {
	for _, seat := range t.Seats {
		if seat.Active {
			return false
		}
	}
	return true
}

// CurrentWilds derives the wild ranks for the current round. Normally only
// the rank matching the hand size is wild; with the crazy variant every
// configured round size stays wild all game.
func (t *Table) CurrentWilds() []string {
	if t.Settings.Crazy {
		var wilds []string
		for r := t.Settings.RoundMin; r <= t.Settings.RoundMax; r += t.Settings.RoundInc {
			wilds = append(wilds, strconv.Itoa(r))
		}
		return wilds
	}
	return []string{strconv.Itoa(t.Round)}
}

// Snapshot returns a deep copy of the table safe to hand to another
// goroutine for serialization.
func (t *Table) Snapshot() *Table {
	cp := *t
	cp.Seats = make([]*Seat, len(t.Seats))
	for i, seat := range t.Seats {
		s := *seat
		cp.Seats[i] = &s
	}
	cp.Ledger = append([]LedgerEntry(nil), t.Ledger...)
	cp.Settings.Wilds = append([]string(nil), t.Settings.Wilds...)
	return &cp
}
