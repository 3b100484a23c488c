package app

import "threefiveseven/internal/domain"

// Commands are the only way engine state is touched: the transport posts
// them into the mailbox and the engine goroutine applies them one at a
// time, which keeps every table single-writer.

type attachCmd struct {
	sessionID string
	sender    Sender
	reply     chan error
}

type detachCmd struct {
	sessionID string
}

type makeTableCmd struct {
	sessionID string
	name      string
	settings  domain.Settings
	ledger    []domain.LedgerEntry
}

type joinTableCmd struct {
	sessionID string
	code      string
	name      string
}

type leaveTableCmd struct {
	sessionID string
}

type moveCmd struct {
	sessionID string
	moved     bool
	held      bool
}

type updateSettingsCmd struct {
	sessionID string
	settings  domain.Settings
}

// timerKind distinguishes the scheduled one-shot callbacks.
type timerKind int

const (
	timerCountTick timerKind = iota
	timerAutoAdvance
	timerDeleteTable
)

func (k timerKind) String() string {
	switch k {
	case timerCountTick:
		return "count_tick"
	case timerAutoAdvance:
		return "auto_advance"
	case timerDeleteTable:
		return "delete_table"
	default:
		return "unknown"
	}
}

// timerCmd is a fired timer ticket. seq must still match the table's
// current sequence for the fire to act; otherwise it is a stale no-op.
type timerCmd struct {
	code string
	seq  int
	kind timerKind
}
