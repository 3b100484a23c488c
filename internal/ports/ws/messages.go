package ws

import (
	"encoding/json"
	"fmt"

	"threefiveseven/internal/app"
	"threefiveseven/internal/domain"
)

// Client message types.
const (
	msgMakeTable      = "make table"
	msgJoinTable      = "join table"
	msgLeaveTable     = "leave table"
	msgDoMove         = "do move"
	msgUpdateSettings = "update settings"
	msgAddBot         = "add bot"
)

// inbound is the envelope for every client message. Fields beyond Type
// are populated per message type; extras are ignored.
type inbound struct {
	Type     string                `json:"type"`
	Name     string                `json:"name"`
	Code     string                `json:"code"`
	Moved    bool                  `json:"moved"`
	Held     bool                  `json:"held"`
	Settings *domain.Settings      `json:"settings"`
	Ledger   []domain.LedgerEntry  `json:"ledger"`
}

type tableUpdateMsg struct {
	Type  string        `json:"type"`
	Table *domain.Table `json:"table"`
}

type handUpdateMsg struct {
	Type  string        `json:"type"`
	Name  string        `json:"name"`
	Hand  []domain.Card `json:"hand"`
	Clear bool          `json:"clear"`
}

type countdownMsg struct {
	Type string `json:"type"`
}

type serverErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// encodeEvent renders an engine event into its wire form.
func encodeEvent(ev app.Event) ([]byte, error) {
	switch p := ev.Payload.(type) {
	case app.TableUpdatedPayload:
		return json.Marshal(tableUpdateMsg{Type: string(ev.Kind), Table: p.Table})
	case app.HandUpdatedPayload:
		return json.Marshal(handUpdateMsg{Type: string(ev.Kind), Name: p.Name, Hand: p.Hand, Clear: p.Clear})
	case app.ServerErrorPayload:
		return json.Marshal(serverErrorMsg{Type: string(ev.Kind), Message: p.Message})
	case nil:
		return json.Marshal(countdownMsg{Type: string(ev.Kind)})
	default:
		return nil, fmt.Errorf("unencodable event payload %T", ev.Payload)
	}
}
