package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"threefiveseven/internal/app"
	"threefiveseven/internal/bot"
	"threefiveseven/internal/domain"
)

func domainSettingsOrDefault(s *domain.Settings) domain.Settings {
	if s == nil {
		return domain.DefaultSettings()
	}
	return *s
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client is one websocket connection bound to a session. Its Send side
// is a buffered channel so the engine goroutine never blocks on a slow
// socket; a client that falls that far behind is disconnected and can
// resync on reconnect.
type Client struct {
	log       zerolog.Logger
	svc       *app.Service
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
}

func newClient(log zerolog.Logger, svc *app.Service, conn *websocket.Conn, sessionID string) *Client {
	return &Client{
		log:       log.With().Str("session", sessionID).Logger(),
		svc:       svc,
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan []byte, sendBuffer),
	}
}

// Send implements app.Sender. It is called from the engine goroutine.
func (c *Client) Send(ev app.Event) {
	msg, err := encodeEvent(ev)
	if err != nil {
		c.log.Error().Err(err).Str("kind", string(ev.Kind)).Msg("encode event")
		return
	}
	select {
	case c.send <- msg:
	default:
		c.log.Warn().Msg("send buffer full, dropping connection")
		c.conn.Close()
	}
}

func (c *Client) run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.svc.Detach(c.sessionID)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("read failed")
			}
			return
		}
		c.handle(raw)
	}
}

func (c *Client) handle(raw []byte) {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.log.Warn().Err(err).Msg("bad message dropped")
		return
	}

	switch msg.Type {
	case msgMakeTable:
		settings := domainSettingsOrDefault(msg.Settings)
		c.svc.MakeTable(c.sessionID, msg.Name, settings, msg.Ledger)
	case msgJoinTable:
		c.svc.JoinTable(c.sessionID, msg.Code, msg.Name)
	case msgLeaveTable:
		c.svc.LeaveTable(c.sessionID)
	case msgDoMove:
		c.svc.DoMove(c.sessionID, msg.Moved, msg.Held)
	case msgUpdateSettings:
		if msg.Settings != nil {
			c.svc.UpdateSettings(c.sessionID, *msg.Settings)
		}
	case msgAddBot:
		if _, err := bot.Join(c.log, c.svc, msg.Code); err != nil {
			c.log.Warn().Err(err).Msg("bot join failed")
		}
	default:
		c.log.Warn().Str("type", msg.Type).Msg("unknown message type")
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
