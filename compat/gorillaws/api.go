// Package gorillaws provides compatibility for gorilla websocket upgrader
package gorillaws

import (
	"net/http"

	"github.com/eientei/wsscope"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Wrapper for gorilla websocket upgrader
type Wrapper struct {
	*websocket.Upgrader
	logger   zerolog.Logger
	settings wsscope.Settings
}

// Option customizes Wrapper
type Option func(w *Wrapper)

// WithLogger provides logger for rejected origins
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Wrapper) {
		w.logger = logger
	}
}

// CheckOrigin returns origin check function validating Origin header against allowed hosts
func CheckOrigin(settings wsscope.Settings, logger zerolog.Logger) func(r *http.Request) bool {
	settings = settings.Normalize()

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		if settings.ValidOrigin(origin) {
			return true
		}

		logger.Warn().
			Str("origin", origin).
			Str("remote_addr", r.RemoteAddr).
			Msg("websocket origin rejected")

		return false
	}
}

// Wrap returns copy of gorilla upgrader negotiating graphql websocket subprotocols and checking origin against
// allowed hosts, unless upgrader provides its own Subprotocols or CheckOrigin
func Wrap(upgrader *websocket.Upgrader, settings wsscope.Settings, options ...Option) Wrapper {
	var u websocket.Upgrader

	if upgrader != nil {
		u = *upgrader
	}

	w := Wrapper{
		Upgrader: &u,
		logger:   zerolog.Nop(),
		settings: settings.Normalize(),
	}

	for _, o := range options {
		o(&w)
	}

	if len(u.Subprotocols) == 0 {
		u.Subprotocols = []string{
			wsscope.WebsocketSubprotocolGraphqlWS,
			wsscope.WebsocketSubprotocolGraphqlTransportWS,
		}
	}

	if u.CheckOrigin == nil {
		u.CheckOrigin = CheckOrigin(w.settings, w.logger)
	}

	return w
}

// Upgrade upgrades connection, returning it with the connection scope. Scope is taken from request context if
// present (see wsscope.NewHandler), otherwise it is built from the request.
func (g Wrapper) Upgrade(
	w http.ResponseWriter,
	r *http.Request,
	responseHeader http.Header,
) (*websocket.Conn, *wsscope.Scope, error) {
	s := wsscope.ContextScope(r.Context())
	if s == nil {
		s = wsscope.FromRequest(r, g.settings)
	}

	conn, err := g.Upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		return nil, nil, err
	}

	s.SetItem(wsscope.KeySubprotocol, conn.Subprotocol())

	return conn, s, nil
}
