package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"threefiveseven/internal/domain"
)

func startReadyBoth(s *Service) {
	s.handleMove(moveCmd{sessionID: "sid-alice", moved: true})
	s.handleMove(moveCmd{sessionID: "sid-bob", moved: true})
}

// runCountdown fires tick timers until the table leaves COUNT.
func runCountdown(t *testing.T, s *Service, ts *tableState) {
	t.Helper()
	for i := 0; ts.tbl.State == domain.StateCount; i++ {
		require.Less(t, i, 10, "countdown never finished")
		s.handleTimer(timerCmd{code: ts.tbl.Code, seq: ts.gameSeq, kind: timerCountTick})
	}
}

func cards(specs ...[2]string) []domain.Card {
	hand := make([]domain.Card, len(specs))
	for i, sp := range specs {
		hand[i] = domain.Card{Rank: sp[0], Suit: sp[1]}
	}
	return hand
}

func TestLobbyReadyStartsGame(t *testing.T) {
	s := newTestService()
	ts, alice, _ := seatTwo(t, s)

	s.handleMove(moveCmd{sessionID: "sid-alice", moved: true})
	require.Equal(t, domain.StateLobby, ts.tbl.State, "one ready player is not enough")

	s.handleMove(moveCmd{sessionID: "sid-bob", moved: true})
	tbl := alice.lastTable(t)
	require.Equal(t, domain.StateRound, tbl.State)
	require.Equal(t, 3, tbl.Round)
	require.Equal(t, []string{"3"}, tbl.Settings.Wilds)
	require.Equal(t, int64(100), tbl.Pot)
	require.Equal(t, "Choose to Hold or Drop", tbl.Message)

	for _, sid := range []string{"sid-alice", "sid-bob"} {
		require.Len(t, s.sessions[sid].hand, 3)
	}
	ev, ok := alice.lastOf(EventHandUpdated)
	require.True(t, ok)
	hp := ev.Payload.(HandUpdatedPayload)
	require.True(t, hp.Clear, "opening deal starts from empty hands")
	require.Len(t, hp.Hand, 3)
}

func TestSoloReadyAtFullTableIsNotEnough(t *testing.T) {
	s := newTestService()
	ts, _, _ := seatTwo(t, s)

	s.handleMove(moveCmd{sessionID: "sid-alice", moved: true})
	s.handleMove(moveCmd{sessionID: "sid-alice", moved: false})
	s.handleMove(moveCmd{sessionID: "sid-bob", moved: true})
	require.Equal(t, domain.StateLobby, ts.tbl.State)
}

func TestRoundMovesReachCountdown(t *testing.T) {
	s := newTestService()
	ts, alice, _ := seatTwo(t, s)
	startReadyBoth(s)

	s.handleMove(moveCmd{sessionID: "sid-alice", moved: true, held: true})
	require.Equal(t, domain.StateRound, ts.tbl.State)

	s.handleMove(moveCmd{sessionID: "sid-bob", moved: true, held: false})
	require.Equal(t, domain.StateCount, ts.tbl.State)
	require.Equal(t, "Showdown in 3...", ts.tbl.Message)

	_, ok := alice.lastOf(EventCountdown)
	require.True(t, ok)
}

func TestCountIgnoresMoves(t *testing.T) {
	s := newTestService()
	ts, _, _ := seatTwo(t, s)
	startReadyBoth(s)
	s.handleMove(moveCmd{sessionID: "sid-alice", moved: true, held: true})
	s.handleMove(moveCmd{sessionID: "sid-bob", moved: true, held: false})

	s.handleMove(moveCmd{sessionID: "sid-alice", moved: true, held: false})
	require.True(t, ts.tbl.Seats[0].Held, "held choice is locked during the count")
	require.Equal(t, domain.StateCount, ts.tbl.State)
}

func TestStaleCountTickIgnored(t *testing.T) {
	s := newTestService()
	ts, _, _ := seatTwo(t, s)
	startReadyBoth(s)
	s.handleMove(moveCmd{sessionID: "sid-alice", moved: true, held: true})
	s.handleMove(moveCmd{sessionID: "sid-bob", moved: true, held: false})

	left := ts.countLeft
	s.handleTimer(timerCmd{code: ts.tbl.Code, seq: ts.gameSeq - 1, kind: timerCountTick})
	require.Equal(t, left, ts.countLeft)
}

func TestUncontestedHoldTakesToken(t *testing.T) {
	s := newTestService()
	ts, _, _ := seatTwo(t, s)
	startReadyBoth(s)
	s.handleMove(moveCmd{sessionID: "sid-alice", moved: true, held: true})
	s.handleMove(moveCmd{sessionID: "sid-bob", moved: true, held: false})

	runCountdown(t, s, ts)

	require.Equal(t, domain.StateGame, ts.tbl.State)
	require.Equal(t, 1, ts.tbl.Seats[0].Tokens)
	require.Equal(t, int64(100), ts.tbl.Pot, "uncontested holds leave the pot alone")
	require.Equal(t, "alice wins a token!", ts.tbl.Message)
	require.True(t, ts.tbl.AllMoved(), "uncontested rounds auto-advance")
	require.NotNil(t, ts.gameTimer)

	s.handleTimer(timerCmd{code: ts.tbl.Code, seq: ts.gameSeq, kind: timerAutoAdvance})
	require.Equal(t, domain.StateRound, ts.tbl.State)
	require.Equal(t, 5, ts.tbl.Round)
	require.Equal(t, []string{"5"}, ts.tbl.Settings.Wilds)
	require.Len(t, s.sessions["sid-alice"].hand, 5, "later rounds top the hand up")
}

func TestNoHoldAdvancesWithoutToken(t *testing.T) {
	s := newTestService()
	ts, _, _ := seatTwo(t, s)
	startReadyBoth(s)
	s.handleMove(moveCmd{sessionID: "sid-alice", moved: true, held: false})
	s.handleMove(moveCmd{sessionID: "sid-bob", moved: true, held: false})

	runCountdown(t, s, ts)

	require.Equal(t, domain.StateGame, ts.tbl.State)
	require.Equal(t, "No Hold!", ts.tbl.Message)
	require.Equal(t, 0, ts.tbl.Seats[0].Tokens)
	require.Equal(t, 0, ts.tbl.Seats[1].Tokens)
	require.Equal(t, int64(100), ts.tbl.Pot)
}

func TestContestedShowdownSettlesPot(t *testing.T) {
	s := newTestService()
	ts, alice, bob := seatTwo(t, s)
	startReadyBoth(s)

	// Round 3, wilds {"3"}. Alice's wild gives trip aces over bob's kings.
	s.sessions["sid-alice"].hand = cards([2]string{"A", "H"}, [2]string{"A", "D"}, [2]string{"3", "S"})
	s.sessions["sid-bob"].hand = cards([2]string{"K", "H"}, [2]string{"K", "D"}, [2]string{"9", "S"})

	s.handleMove(moveCmd{sessionID: "sid-alice", moved: true, held: true})
	s.handleMove(moveCmd{sessionID: "sid-bob", moved: true, held: true})
	runCountdown(t, s, ts)

	require.Equal(t, domain.StateGame, ts.tbl.State)
	require.Equal(t, int64(100), ts.tbl.Seats[0].Money, "winner takes the pot growth")
	require.Equal(t, int64(-200), ts.tbl.Seats[1].Money, "loser pays twice the pot")
	require.Equal(t, int64(200), ts.tbl.Pot)
	require.Equal(t, "alice won the hand.", ts.tbl.Message)

	// Both contested, so both must choose again.
	require.False(t, ts.tbl.Seats[0].Moved)
	require.False(t, ts.tbl.Seats[1].Moved)
	require.Nil(t, ts.gameTimer, "contested rounds wait for the players")

	// Every player saw both revealed hands.
	for _, rec := range []*recorder{alice, bob} {
		names := map[string]bool{}
		for _, ev := range rec.events {
			if ev.Kind == EventHandUpdated {
				names[ev.Payload.(HandUpdatedPayload).Name] = true
			}
		}
		require.True(t, names["alice"] && names["bob"])
	}
}

func TestContestedDrawSplitsGrowth(t *testing.T) {
	s := newTestService()
	ts, _, _ := seatTwo(t, s)

	// Three players make an odd split possible.
	attach(t, s, "sid-carol")
	s.handleJoinTable(joinTableCmd{sessionID: "sid-carol", code: ts.tbl.Code, name: "carol"})

	odd := ts.tbl.Settings
	odd.StartPot = 101
	s.handleUpdateSettings(updateSettingsCmd{sessionID: "sid-alice", settings: odd})

	for _, sid := range []string{"sid-alice", "sid-bob", "sid-carol"} {
		s.handleMove(moveCmd{sessionID: sid, moved: true})
	}

	s.sessions["sid-alice"].hand = cards([2]string{"A", "H"}, [2]string{"A", "D"}, [2]string{"9", "S"})
	s.sessions["sid-bob"].hand = cards([2]string{"A", "S"}, [2]string{"A", "C"}, [2]string{"9", "H"})
	s.sessions["sid-carol"].hand = cards([2]string{"K", "H"}, [2]string{"K", "D"}, [2]string{"8", "S"})

	for _, sid := range []string{"sid-alice", "sid-bob", "sid-carol"} {
		s.handleMove(moveCmd{sessionID: sid, moved: true, held: true})
	}
	runCountdown(t, s, ts)

	// Growth of 101 splits 51/50, remainder to the earliest seat.
	require.Equal(t, int64(51), ts.tbl.Seats[0].Money)
	require.Equal(t, int64(50), ts.tbl.Seats[1].Money)
	require.Equal(t, int64(-202), ts.tbl.Seats[2].Money)
	require.Equal(t, int64(202), ts.tbl.Pot)
	require.Equal(t, "alice, bob won the hand.", ts.tbl.Message)
}

func TestRoundWrapsToMinWithFreshDeal(t *testing.T) {
	s := newTestService()
	ts, alice, _ := seatTwo(t, s)
	startReadyBoth(s)

	ts.tbl.Round = 7
	s.advanceRound(ts)

	require.Equal(t, 3, ts.tbl.Round)
	require.Len(t, s.sessions["sid-alice"].hand, 3)
	ev, ok := alice.lastOf(EventHandUpdated)
	require.True(t, ok)
	require.True(t, ev.Payload.(HandUpdatedPayload).Clear)
}

func TestTokenGoalEndsGame(t *testing.T) {
	s := newTestService()
	ts, _, _ := seatTwo(t, s)
	startReadyBoth(s)

	ts.tbl.Seats[0].Tokens = ts.tbl.Settings.TokenGoal - 1
	ts.tbl.Seats[0].Money = -50
	ts.tbl.Seats[1].Money = 50
	ts.tbl.Pot = 400

	s.handleMove(moveCmd{sessionID: "sid-alice", moved: true, held: true})
	s.handleMove(moveCmd{sessionID: "sid-bob", moved: true, held: false})
	runCountdown(t, s, ts)

	require.Equal(t, domain.StateLobby, ts.tbl.State)
	require.Equal(t, "alice wins!", ts.tbl.Message)
	require.Equal(t, int64(0), ts.tbl.Pot)

	// Winner banked -50 + (400 - 100) = 250; bob banked his 50.
	var aliceBank, bobBank int64
	for _, entry := range ts.tbl.Ledger {
		switch entry.Name {
		case "alice":
			aliceBank = entry.Money
		case "bob":
			bobBank = entry.Money
		}
	}
	require.Equal(t, int64(250), aliceBank)
	require.Equal(t, int64(50), bobBank)

	for _, seat := range ts.tbl.Seats {
		require.Zero(t, seat.Money)
		require.Zero(t, seat.Tokens)
		require.False(t, seat.Moved)
	}
	require.Empty(t, s.sessions["sid-alice"].hand)
}

func TestCrazyWildsCoverAllRounds(t *testing.T) {
	s := newTestService()
	ts, _, _ := seatTwo(t, s)

	crazy := ts.tbl.Settings
	crazy.Crazy = true
	s.handleUpdateSettings(updateSettingsCmd{sessionID: "sid-alice", settings: crazy})

	startReadyBoth(s)
	require.Equal(t, []string{"3", "5", "7"}, ts.tbl.Settings.Wilds)
}
