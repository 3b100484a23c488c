package bot

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"threefiveseven/internal/app"
	"threefiveseven/internal/domain"
)

var botNames = []string{
	"Ace Bot", "Deuce Bot", "Trey Bot", "Joker Bot", "Dealer Bot", "Shark Bot",
}

// Agent is an autonomous player. It attaches to the engine like any
// other session and reacts to the same events a human client receives,
// so the engine needs no bot-specific paths.
type Agent struct {
	log       zerolog.Logger
	svc       *app.Service
	sessionID string
	name      string
	tuning    Tuning

	mu   sync.Mutex
	hand []domain.Card
}

// Join spawns an agent and seats it at the given table. The engine
// enforces the usual join rules, so a full or mid-game table simply
// rejects the bot.
func Join(log zerolog.Logger, svc *app.Service, code string) (*Agent, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	a := &Agent{
		svc:       svc,
		sessionID: uuid.NewString(),
		name:      botNames[rng.Intn(len(botNames))],
		tuning:    DefaultTuning,
	}
	a.log = log.With().Str("bot", a.name).Logger()

	if err := svc.Attach(a.sessionID, a); err != nil {
		return nil, err
	}
	svc.JoinTable(a.sessionID, code, a.name)
	return a, nil
}

// Send implements app.Sender. It runs on the engine goroutine, so it
// only records state and posts commands, never blocks.
func (a *Agent) Send(ev app.Event) {
	switch p := ev.Payload.(type) {
	case app.HandUpdatedPayload:
		if p.Name != a.name {
			return
		}
		a.mu.Lock()
		a.hand = append([]domain.Card(nil), p.Hand...)
		a.mu.Unlock()
	case app.TableUpdatedPayload:
		if p.Table == nil {
			a.svc.Detach(a.sessionID)
			return
		}
		a.react(p.Table)
	}
}

func (a *Agent) react(tbl *domain.Table) {
	seat := tbl.SeatByName(a.name)
	if seat == nil || seat.Moved {
		return
	}

	switch tbl.State {
	case domain.StateLobby, domain.StateGame:
		a.svc.DoMove(a.sessionID, true, false)
	case domain.StateRound:
		a.mu.Lock()
		hand := a.hand
		a.mu.Unlock()
		// The deal precedes the round broadcast, so a size mismatch
		// means this update is stale.
		if len(hand) != tbl.Round {
			return
		}
		eval := domain.Evaluate(hand, tbl.Settings)
		hold := a.tuning.ShouldHold(eval, tbl.Round)
		a.log.Debug().Str("hand", eval.Describe()).Bool("hold", hold).Msg("round decision")
		a.svc.DoMove(a.sessionID, true, hold)
	}
}
