package app

import (
	"fmt"
	"strings"
	"time"

	"threefiveseven/internal/domain"
)

const countdownSeconds = 3

// tryAdvance checks whether the table can move to its next state. Every
// state change waits for all seats, so a single slow player holds the
// table where it is.
func (s *Service) tryAdvance(ts *tableState) {
	tbl := ts.tbl
	switch tbl.State {
	case domain.StateLobby:
		if len(tbl.Seats) >= 2 && tbl.AllMoved() {
			s.startGame(ts)
			return
		}
	case domain.StateGame:
		if tbl.AllMoved() {
			s.advanceRound(ts)
			return
		}
	case domain.StateRound:
		if tbl.AllMoved() {
			s.beginCountdown(ts)
			return
		}
	}
	s.broadcastTable(ts)
}

func (s *Service) startGame(ts *tableState) {
	tbl := ts.tbl
	tbl.Pot = tbl.Settings.StartPot
	for _, seat := range tbl.Seats {
		seat.Tokens = 0
		seat.Money = 0
	}
	// Backing up one step lets advanceRound deal the opening round.
	tbl.Round = tbl.Settings.RoundMin - tbl.Settings.RoundInc
	s.log.Info().Str("table", tbl.Code).Msg("game started")
	s.advanceRound(ts)
}

func (s *Service) advanceRound(ts *tableState) {
	tbl := ts.tbl
	ts.cancelGameTimer()

	tbl.Round += tbl.Settings.RoundInc
	if tbl.Round > tbl.Settings.RoundMax {
		tbl.Round = tbl.Settings.RoundMin
	}
	tbl.Settings.Wilds = tbl.CurrentWilds()
	for _, seat := range tbl.Seats {
		seat.Moved = false
		seat.Held = false
	}
	tbl.State = domain.StateRound
	tbl.Message = "Choose to Hold or Drop"

	s.dealRound(ts)
	s.broadcastTable(ts)
}

// dealRound tops every hand up to the round size. The opening round
// starts from a fresh deck and empty hands.
func (s *Service) dealRound(ts *tableState) {
	tbl := ts.tbl
	fresh := tbl.Round == tbl.Settings.RoundMin
	if fresh {
		ts.deck = domain.NewDeck(s.rng)
	}
	for _, seat := range tbl.Seats {
		sess, ok := s.sessions[seat.SessionID]
		if !ok {
			continue
		}
		if fresh {
			sess.hand = nil
		}
		for len(sess.hand) < tbl.Round {
			sess.hand = append(sess.hand, ts.deck.Draw())
		}
		s.sendTo(sess, Event{Kind: EventHandUpdated, Payload: HandUpdatedPayload{
			Name:  seat.Name,
			Hand:  sess.hand,
			Clear: fresh,
		}})
	}
}

func (s *Service) beginCountdown(ts *tableState) {
	tbl := ts.tbl
	tbl.State = domain.StateCount
	ts.countLeft = countdownSeconds
	tbl.Message = fmt.Sprintf("Showdown in %d...", ts.countLeft)

	for _, seat := range tbl.Seats {
		if sess, ok := s.sessions[seat.SessionID]; ok {
			s.sendTo(sess, Event{Kind: EventCountdown})
		}
	}
	s.broadcastTable(ts)
	s.scheduleGameTimer(ts, time.Second, timerCountTick)
}

func (s *Service) handleCountTick(ts *tableState) {
	if ts.tbl.State != domain.StateCount {
		return
	}
	ts.countLeft--
	if ts.countLeft > 0 {
		ts.tbl.Message = fmt.Sprintf("Showdown in %d...", ts.countLeft)
		s.broadcastTable(ts)
		s.scheduleGameTimer(ts, time.Second, timerCountTick)
		return
	}
	ts.gameTimer = nil
	s.showdown(ts)
}

func (s *Service) showdown(ts *tableState) {
	tbl := ts.tbl

	var holders []*domain.Seat
	for _, seat := range tbl.Seats {
		if seat.Held {
			holders = append(holders, seat)
		}
	}

	switch len(holders) {
	case 0:
		tbl.Message = "No Hold!"
		s.rearm(ts)
	case 1:
		sole := holders[0]
		sole.Tokens++
		s.log.Info().Str("table", tbl.Code).Str("player", sole.Name).
			Int("tokens", sole.Tokens).Msg("uncontested hold")
		if sole.Tokens >= tbl.Settings.TokenGoal {
			s.endGame(ts, sole)
			return
		}
		tbl.Message = fmt.Sprintf("%s wins a token!", sole.Name)
		s.rearm(ts)
	default:
		s.contest(ts, holders)
	}
	s.broadcastTable(ts)
}

// contest settles a round with two or more holders: every holder's hand
// is shown to the table, losers pay double the pot into it, and the
// winners split the growth.
func (s *Service) contest(ts *tableState, holders []*domain.Seat) {
	tbl := ts.tbl

	contestants := make([]domain.Contestant, 0, len(holders))
	for _, seat := range holders {
		sess := s.sessions[seat.SessionID]
		if sess == nil {
			continue
		}
		s.revealHand(holders, seat.Name, sess.hand)
		contestants = append(contestants, domain.Contestant{
			SessionID: seat.SessionID,
			Hand:      domain.Evaluate(sess.hand, tbl.Settings),
		})
	}

	winners := domain.Winners(contestants)
	winnerSet := make(map[string]bool, len(winners))
	for _, id := range winners {
		winnerSet[id] = true
	}

	debit, growth, shares := domain.SplitPot(tbl.Pot, len(holders), len(winners))
	wi := 0
	var winnerNames []string
	for _, seat := range holders {
		if winnerSet[seat.SessionID] {
			seat.Money += shares[wi]
			wi++
			winnerNames = append(winnerNames, seat.Name)
		} else {
			seat.Money -= debit
		}
	}
	tbl.Pot += growth

	if len(winners) == len(holders) {
		tbl.Message = "It's a draw!"
	} else {
		tbl.Message = strings.Join(winnerNames, ", ") + " won the hand."
	}
	s.log.Info().Str("table", tbl.Code).Int("holders", len(holders)).
		Int64("pot", tbl.Pot).Msg("contested round settled")

	// Holders go again; everyone else already stands aside.
	for _, seat := range tbl.Seats {
		seat.Moved = !seat.Held
		seat.Held = false
	}
	tbl.State = domain.StateGame
}

// rearm moves the table back to GAME after an uncontested round and
// auto-advances once the pause elapses.
func (s *Service) rearm(ts *tableState) {
	tbl := ts.tbl
	for _, seat := range tbl.Seats {
		seat.Moved = true
		seat.Held = false
	}
	tbl.State = domain.StateGame
	s.scheduleGameTimer(ts, time.Duration(tbl.Settings.AdvanceSec)*time.Second, timerAutoAdvance)
}

// revealHand shows one holder's cards to every holder. Folded players
// never see the showdown hands.
func (s *Service) revealHand(holders []*domain.Seat, name string, hand []domain.Card) {
	ev := Event{Kind: EventHandUpdated, Payload: HandUpdatedPayload{Name: name, Hand: hand}}
	for _, seat := range holders {
		if sess, ok := s.sessions[seat.SessionID]; ok {
			s.sendTo(sess, ev)
		}
	}
}

// endGame pays the champion the pot growth and banks every seat's money
// into the table ledger so results survive the next game.
func (s *Service) endGame(ts *tableState, champ *domain.Seat) {
	tbl := ts.tbl
	ts.cancelGameTimer()

	champ.Money += tbl.Pot - tbl.Settings.StartPot
	for _, seat := range tbl.Seats {
		entry := tbl.EnsureLedger(seat.Name)
		entry.Money += seat.Money
		seat.Money = 0
		seat.Tokens = 0
		seat.Moved = false
		seat.Held = false
		if sess, ok := s.sessions[seat.SessionID]; ok {
			sess.hand = nil
			s.sendTo(sess, Event{Kind: EventHandUpdated, Payload: HandUpdatedPayload{
				Name:  seat.Name,
				Clear: true,
			}})
		}
	}
	tbl.Pot = 0
	tbl.State = domain.StateLobby
	tbl.Message = fmt.Sprintf("%s wins!", champ.Name)

	s.log.Info().Str("table", tbl.Code).Str("winner", champ.Name).Msg("game over")
	s.broadcastTable(ts)
}
