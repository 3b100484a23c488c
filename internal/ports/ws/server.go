package ws

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"threefiveseven/internal/app"
)

// SessionCookie identifies a player across reconnects and page reloads.
const SessionCookie = "tfs_session"

const sessionCookieMaxAge = int(30 * 24 * time.Hour / time.Second)

// Server upgrades HTTP requests into game connections.
type Server struct {
	log      zerolog.Logger
	svc      *app.Service
	upgrader websocket.Upgrader
}

func NewServer(log zerolog.Logger, svc *app.Service, allowAnyOrigin bool) *Server {
	s := &Server{log: log, svc: svc}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if allowAnyOrigin {
		s.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}
	return s
}

// ServeHTTP handles the websocket endpoint. A missing session cookie is
// minted here and delivered on the upgrade response.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID, header := s.sessionFor(r)

	conn, err := s.upgrader.Upgrade(w, r, header)
	if err != nil {
		s.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("upgrade failed")
		return
	}

	client := newClient(s.log, s.svc, conn, sessionID)
	if err := s.svc.Attach(sessionID, client); err != nil {
		if errors.Is(err, app.ErrSessionLive) {
			msg, encErr := encodeEvent(app.Event{
				Kind:    app.EventServerError,
				Payload: app.ServerErrorPayload{Message: err.Error()},
			})
			if encErr == nil {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.TextMessage, msg)
			}
		}
		conn.Close()
		return
	}

	client.run()
}

// sessionFor resolves the session id from the request cookie, minting a
// new one when absent. The returned header carries the Set-Cookie for
// the upgrade response when a new id was minted.
func (s *Server) sessionFor(r *http.Request) (string, http.Header) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value, nil
		}
	}

	id := uuid.NewString()
	cookie := &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	header := http.Header{}
	header.Add("Set-Cookie", cookie.String())
	return id, header
}
