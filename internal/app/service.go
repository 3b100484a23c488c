package app

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"threefiveseven/internal/domain"
)

var (
	ErrSessionLive     = errors.New("session already connected")
	ErrNoSession       = errors.New("unknown session")
	ErrNoTable         = errors.New("table not found")
	ErrTableFull       = errors.New("table is full")
	ErrNameTaken       = errors.New("name already at table")
	ErrGameInProgress  = errors.New("game in progress")
	ErrNotSeated       = errors.New("not seated at a table")
	ErrNotOwner        = errors.New("only the table owner can do that")
	ErrBadSettings     = errors.New("invalid settings")
	ErrAlreadySeated   = errors.New("already seated at a table")
	ErrNameRequired    = errors.New("name required")
	ErrEngineStopped = errors.New("engine stopped")
)

const mailboxSize = 1024

// Service owns every table and session. All state lives behind a single
// goroutine that drains the command mailbox; the exported methods only
// post commands, so they are safe to call from any connection goroutine.
type Service struct {
	log   zerolog.Logger
	rng   *rand.Rand
	grace time.Duration

	sessions map[string]*session
	tables   map[string]*tableState

	cmds chan any
	done chan struct{}
}

func NewService(log zerolog.Logger, grace time.Duration) *Service {
	return &Service{
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		grace:    grace,
		sessions: make(map[string]*session),
		tables:   make(map[string]*tableState),
		cmds:     make(chan any, mailboxSize),
		done:     make(chan struct{}),
	}
}

// Run drains the mailbox until ctx is cancelled. It must be running
// before any session attaches.
func (s *Service) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.cmds:
			s.dispatch(cmd)
		}
	}
}

func (s *Service) dispatch(cmd any) {
	switch c := cmd.(type) {
	case attachCmd:
		c.reply <- s.handleAttach(c)
	case detachCmd:
		s.handleDetach(c)
	case makeTableCmd:
		s.handleMakeTable(c)
	case joinTableCmd:
		s.handleJoinTable(c)
	case leaveTableCmd:
		s.handleLeaveTable(c)
	case moveCmd:
		s.handleMove(c)
	case updateSettingsCmd:
		s.handleUpdateSettings(c)
	case timerCmd:
		s.handleTimer(c)
	default:
		s.log.Warn().Type("cmd", cmd).Msg("unknown command dropped")
	}
}

func (s *Service) post(cmd any) {
	select {
	case s.cmds <- cmd:
	case <-s.done:
	}
}

// Attach registers a connection under sessionID. It is synchronous so
// the transport can refuse the upgrade when the same session is already
// connected elsewhere.
func (s *Service) Attach(sessionID string, sender Sender) error {
	reply := make(chan error, 1)
	select {
	case s.cmds <- attachCmd{sessionID: sessionID, sender: sender, reply: reply}:
		return <-reply
	case <-s.done:
		return ErrEngineStopped
	}
}

func (s *Service) Detach(sessionID string) {
	s.post(detachCmd{sessionID: sessionID})
}

func (s *Service) MakeTable(sessionID, name string, settings domain.Settings, ledger []domain.LedgerEntry) {
	s.post(makeTableCmd{sessionID: sessionID, name: name, settings: settings, ledger: ledger})
}

func (s *Service) JoinTable(sessionID, code, name string) {
	s.post(joinTableCmd{sessionID: sessionID, code: code, name: name})
}

func (s *Service) LeaveTable(sessionID string) {
	s.post(leaveTableCmd{sessionID: sessionID})
}

func (s *Service) DoMove(sessionID string, moved, held bool) {
	s.post(moveCmd{sessionID: sessionID, moved: moved, held: held})
}

func (s *Service) UpdateSettings(sessionID string, settings domain.Settings) {
	s.post(updateSettingsCmd{sessionID: sessionID, settings: settings})
}

func (s *Service) handleAttach(c attachCmd) error {
	if prev, ok := s.sessions[c.sessionID]; ok && prev.sender != nil {
		return ErrSessionLive
	}

	sess, ok := s.sessions[c.sessionID]
	if !ok {
		sess = &session{id: c.sessionID}
		s.sessions[c.sessionID] = sess
	}
	sess.sender = c.sender

	s.log.Info().Str("session", c.sessionID).Msg("session attached")

	ts, ok := s.tables[sess.tableCode]
	if !ok {
		// Either never seated or the table expired while away.
		sess.tableCode = ""
		sess.hand = nil
		s.sendTo(sess, Event{Kind: EventTableUpdated, Payload: TableUpdatedPayload{}})
		return nil
	}

	seat := ts.tbl.SeatBySession(c.sessionID)
	if seat == nil {
		sess.tableCode = ""
		sess.hand = nil
		s.sendTo(sess, Event{Kind: EventTableUpdated, Payload: TableUpdatedPayload{}})
		return nil
	}

	seat.Active = true
	ts.cancelDeleteTimer()
	s.broadcastTable(ts)
	if len(sess.hand) > 0 {
		s.sendTo(sess, Event{Kind: EventHandUpdated, Payload: HandUpdatedPayload{
			Name: seat.Name,
			Hand: sess.hand,
		}})
	}
	return nil
}

func (s *Service) handleDetach(c detachCmd) {
	sess, ok := s.sessions[c.sessionID]
	if !ok {
		return
	}
	sess.sender = nil

	s.log.Info().Str("session", c.sessionID).Msg("session detached")

	ts, ok := s.tables[sess.tableCode]
	if !ok {
		delete(s.sessions, c.sessionID)
		return
	}
	seat := ts.tbl.SeatBySession(c.sessionID)
	if seat == nil {
		delete(s.sessions, c.sessionID)
		return
	}

	seat.Active = false
	s.broadcastTable(ts)

	if ts.tbl.AllInactive() {
		s.scheduleDelete(ts)
	}
}

func (s *Service) handleMakeTable(c makeTableCmd) {
	sess, ok := s.sessions[c.sessionID]
	if !ok {
		return
	}
	name := strings.TrimSpace(c.name)
	if name == "" {
		s.sendError(sess, ErrNameRequired)
		return
	}
	if sess.tableCode != "" {
		s.sendError(sess, ErrAlreadySeated)
		return
	}
	if err := c.settings.Validate(); err != nil {
		s.sendError(sess, ErrBadSettings)
		return
	}

	code := newTableCode(s.rng, s.tables)
	tbl := domain.NewTable(code, c.settings)
	tbl.Ledger = append(tbl.Ledger, c.ledger...)
	ts := &tableState{tbl: tbl, deck: domain.NewDeck(s.rng)}
	s.tables[code] = ts

	tbl.AddSeat(c.sessionID, name)
	sess.tableCode = code

	s.log.Info().Str("table", code).Str("owner", name).Msg("table created")
	s.broadcastTable(ts)
}

func (s *Service) handleJoinTable(c joinTableCmd) {
	sess, ok := s.sessions[c.sessionID]
	if !ok {
		return
	}
	name := strings.TrimSpace(c.name)
	if name == "" {
		s.sendError(sess, ErrNameRequired)
		return
	}
	if sess.tableCode != "" {
		s.sendError(sess, ErrAlreadySeated)
		return
	}
	ts, ok := s.tables[strings.ToUpper(strings.TrimSpace(c.code))]
	if !ok {
		s.sendError(sess, ErrNoTable)
		return
	}
	if ts.tbl.State != domain.StateLobby {
		s.sendError(sess, ErrGameInProgress)
		return
	}
	if ts.tbl.IsFull() {
		s.sendError(sess, ErrTableFull)
		return
	}
	if ts.tbl.SeatByName(name) != nil {
		s.sendError(sess, ErrNameTaken)
		return
	}

	ts.tbl.AddSeat(c.sessionID, name)
	sess.tableCode = ts.tbl.Code

	s.log.Info().Str("table", ts.tbl.Code).Str("player", name).Msg("player joined")
	s.broadcastTable(ts)
}

func (s *Service) handleLeaveTable(c leaveTableCmd) {
	sess, ts, seat := s.seated(c.sessionID)
	if seat == nil {
		return
	}
	if ts.tbl.State != domain.StateLobby {
		s.sendError(sess, ErrGameInProgress)
		return
	}

	ts.tbl.RemoveSeat(c.sessionID)
	sess.tableCode = ""
	sess.hand = nil

	s.log.Info().Str("table", ts.tbl.Code).Str("player", seat.Name).Msg("player left")
	s.sendTo(sess, Event{Kind: EventTableUpdated, Payload: TableUpdatedPayload{}})

	if len(ts.tbl.Seats) == 0 {
		s.deleteTable(ts)
		return
	}
	s.broadcastTable(ts)
}

func (s *Service) handleMove(c moveCmd) {
	_, ts, seat := s.seated(c.sessionID)
	if seat == nil {
		return
	}

	switch ts.tbl.State {
	case domain.StateLobby, domain.StateGame:
		seat.Moved = c.moved
	case domain.StateRound:
		seat.Moved = c.moved
		if c.moved {
			seat.Held = c.held
		}
	case domain.StateCount:
		// Moves during the count change nothing.
		return
	}

	s.tryAdvance(ts)
}

func (s *Service) handleUpdateSettings(c updateSettingsCmd) {
	sess, ts, seat := s.seated(c.sessionID)
	if seat == nil {
		return
	}
	if !ts.tbl.IsOwner(c.sessionID) {
		s.sendError(sess, ErrNotOwner)
		return
	}
	if ts.tbl.State != domain.StateLobby {
		s.sendError(sess, ErrGameInProgress)
		return
	}
	next := c.settings
	// Wilds are derived each round, never taken from the client.
	next.Wilds = ts.tbl.Settings.Wilds
	if err := next.Validate(); err != nil {
		s.sendError(sess, ErrBadSettings)
		return
	}

	ts.tbl.Settings = next
	s.log.Info().Str("table", ts.tbl.Code).Msg("settings updated")
	s.broadcastTable(ts)
}

func (s *Service) handleTimer(c timerCmd) {
	ts, ok := s.tables[c.code]
	if !ok {
		return
	}
	switch c.kind {
	case timerCountTick:
		if c.seq != ts.gameSeq {
			return
		}
		s.handleCountTick(ts)
	case timerAutoAdvance:
		if c.seq != ts.gameSeq {
			return
		}
		ts.gameTimer = nil
		if ts.tbl.State == domain.StateGame && ts.tbl.AllMoved() {
			s.advanceRound(ts)
		}
	case timerDeleteTable:
		if c.seq != ts.deleteSeq {
			return
		}
		if ts.tbl.AllInactive() {
			s.deleteTable(ts)
		}
	}
}

// seated resolves a session to its table and seat, or (nil, nil, nil).
func (s *Service) seated(sessionID string) (*session, *tableState, *domain.Seat) {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil, nil
	}
	ts, ok := s.tables[sess.tableCode]
	if !ok {
		return sess, nil, nil
	}
	seat := ts.tbl.SeatBySession(sessionID)
	if seat == nil {
		return sess, ts, nil
	}
	return sess, ts, seat
}

func (s *Service) scheduleDelete(ts *tableState) {
	ts.cancelDeleteTimer()
	code, seq := ts.tbl.Code, ts.deleteSeq
	ts.deleteTimer = time.AfterFunc(s.grace, func() {
		s.post(timerCmd{code: code, seq: seq, kind: timerDeleteTable})
	})
	s.log.Info().Str("table", code).Dur("grace", s.grace).Msg("table deletion scheduled")
}

func (s *Service) scheduleGameTimer(ts *tableState, d time.Duration, kind timerKind) {
	ts.cancelGameTimer()
	code, seq := ts.tbl.Code, ts.gameSeq
	ts.gameTimer = time.AfterFunc(d, func() {
		s.post(timerCmd{code: code, seq: seq, kind: kind})
	})
}

func (s *Service) deleteTable(ts *tableState) {
	ts.cancelGameTimer()
	ts.cancelDeleteTimer()
	for _, seat := range ts.tbl.Seats {
		if sess, ok := s.sessions[seat.SessionID]; ok {
			sess.tableCode = ""
			sess.hand = nil
			if sess.sender == nil {
				delete(s.sessions, sess.id)
			}
		}
	}
	delete(s.tables, ts.tbl.Code)
	s.log.Info().Str("table", ts.tbl.Code).Msg("table deleted")
}

func (s *Service) sendTo(sess *session, ev Event) {
	if sess == nil || sess.sender == nil {
		return
	}
	sess.sender.Send(ev)
}

// broadcastTable snapshots once and fans the same copy out to every
// active seat, so a slow connection can never observe a half-applied
// mutation.
func (s *Service) broadcastTable(ts *tableState) {
	snap := ts.tbl.Snapshot()
	ev := Event{Kind: EventTableUpdated, Payload: TableUpdatedPayload{Table: snap}}
	for _, seat := range ts.tbl.Seats {
		if sess, ok := s.sessions[seat.SessionID]; ok {
			s.sendTo(sess, ev)
		}
	}
}

func (s *Service) sendError(sess *session, err error) {
	s.sendTo(sess, Event{Kind: EventServerError, Payload: ServerErrorPayload{Message: err.Error()}})
}
