package api

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/calvinwijaya/blackjack-duel/internal/hub"
	"github.com/calvinwijaya/blackjack-duel/internal/protocol"
)

// Sessions is the table as seen by a transport. *table.Table implements it.
type Sessions interface {
	Join(clientID string)
	Leave(clientID string)
	Submit(clientID string, intent protocol.Intent)
}

// MaxLineBytes bounds a single inbound line on every transport.
const MaxLineBytes = 4 << 10

// connect registers a new connection with the hub and announces it.
func connect(h *hub.Hub, sessions Sessions, addr string) *hub.Client {
	c := hub.NewClient(addr)
	h.Register(c)
	sessions.Join(c.ID)
	return c
}

// dispatch decodes one inbound line and forwards it. Bad lines are dropped
// and the connection stays open.
func dispatch(sessions Sessions, log zerolog.Logger, clientID, line string) {
	intent, err := protocol.Decode(line)
	if err != nil {
		if !errors.Is(err, protocol.ErrEmptyLine) {
			log.Debug().Err(err).Str("client", clientID).Str("line", line).Msg("ignoring line")
		}
		return
	}
	sessions.Submit(clientID, intent)
}
