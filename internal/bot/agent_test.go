package bot

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"threefiveseven/internal/app"
	"threefiveseven/internal/domain"
)

type eventSink struct {
	ch chan app.Event
}

func newEventSink() *eventSink {
	return &eventSink{ch: make(chan app.Event, 256)}
}

func (s *eventSink) Send(ev app.Event) {
	select {
	case s.ch <- ev:
	default:
	}
}

// waitTable drains events until a table update satisfies cond.
func waitTable(t *testing.T, sink *eventSink, cond func(*domain.Table) bool) *domain.Table {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-sink.ch:
			if p, ok := ev.Payload.(app.TableUpdatedPayload); ok && p.Table != nil && cond(p.Table) {
				return p.Table
			}
		case <-deadline:
			t.Fatal("timed out waiting for table state")
		}
	}
}

func TestShouldHold(t *testing.T) {
	tests := []struct {
		name  string
		rank  domain.HandRank
		round int
		want  bool
	}{
		{"trips hold at three", domain.ThreeOfAKind, 3, true},
		{"pair drops at three", domain.OnePair, 3, false},
		{"trips drop at five", domain.ThreeOfAKind, 5, false},
		{"straight holds at five", domain.Straight, 5, true},
		{"flush drops at seven", domain.Flush, 7, false},
		{"quads hold at seven", domain.FourOfAKind, 7, true},
		{"unknown round uses fallback", domain.ThreeOfAKind, 9, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultTuning.ShouldHold(domain.EvaluatedHand{Rank: tt.rank}, tt.round)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBotJoinsAndPlays(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := app.NewService(zerolog.Nop(), time.Minute)
	go svc.Run(ctx)

	sink := newEventSink()
	require.NoError(t, svc.Attach("sid-human", sink))
	svc.MakeTable("sid-human", "hank", domain.DefaultSettings(), nil)
	tbl := waitTable(t, sink, func(tbl *domain.Table) bool { return len(tbl.Seats) == 1 })

	_, err := Join(zerolog.Nop(), svc, tbl.Code)
	require.NoError(t, err)
	waitTable(t, sink, func(tbl *domain.Table) bool { return len(tbl.Seats) == 2 })

	// The bot readies itself, so the human's ready starts the game.
	svc.DoMove("sid-human", true, false)
	waitTable(t, sink, func(tbl *domain.Table) bool { return tbl.State == domain.StateRound })

	// The bot answers the deal on its own; the human's move completes
	// the round and the countdown begins.
	svc.DoMove("sid-human", true, false)
	waitTable(t, sink, func(tbl *domain.Table) bool { return tbl.State == domain.StateCount })
}

func TestBotRejectedMidGame(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := app.NewService(zerolog.Nop(), time.Minute)
	go svc.Run(ctx)

	sinkA, sinkB := newEventSink(), newEventSink()
	require.NoError(t, svc.Attach("sid-a", sinkA))
	require.NoError(t, svc.Attach("sid-b", sinkB))
	svc.MakeTable("sid-a", "ann", domain.DefaultSettings(), nil)
	tbl := waitTable(t, sinkA, func(tbl *domain.Table) bool { return len(tbl.Seats) == 1 })
	svc.JoinTable("sid-b", tbl.Code, "ben")
	waitTable(t, sinkA, func(tbl *domain.Table) bool { return len(tbl.Seats) == 2 })

	svc.DoMove("sid-a", true, false)
	svc.DoMove("sid-b", true, false)
	waitTable(t, sinkA, func(tbl *domain.Table) bool { return tbl.State == domain.StateRound })

	// Join succeeds at the session level but the seat is refused.
	_, err := Join(zerolog.Nop(), svc, tbl.Code)
	require.NoError(t, err)

	// Ann's move is queued behind the refused join, so the broadcast it
	// triggers reflects the join outcome.
	svc.DoMove("sid-a", true, false)
	tbl = waitTable(t, sinkA, func(tbl *domain.Table) bool { return tbl.Seats[0].Moved })
	require.Len(t, tbl.Seats, 2)
}
