package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/calvinwijaya/blackjack-duel/internal/hub"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	// a frame may batch many lines; each line is still held to MaxLineBytes
	maxMessageBytes = 64 * MaxLineBytes
)

// WebSocketHandler carries the line protocol over websocket text frames. A
// frame may hold several lines separated by '\n'.
type WebSocketHandler struct {
	hub      *hub.Hub
	sessions Sessions
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewWebSocketHandler accepts upgrades from allowedOrigins; an empty list
// allows any origin.
func NewWebSocketHandler(h *hub.Hub, sessions Sessions, allowedOrigins []string, log zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      h,
		sessions: sessions,
		log:      log.With().Str("component", "websocket").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(allowed) == 0 || origin == "" {
			return true
		}
		for _, a := range allowed {
			if strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("upgrade failed")
		return
	}

	client := connect(h.hub, h.sessions, r.RemoteAddr)
	log := h.log.With().Str("client", client.ID).Str("addr", client.Addr).Logger()
	log.Info().Msg("connected")

	go h.writePump(conn, client, log)
	go h.readPump(conn, client, log)
}

// readPump pumps lines from the websocket connection to the table
func (h *WebSocketHandler) readPump(conn *websocket.Conn, client *hub.Client, log zerolog.Logger) {
	defer func() {
		conn.Close()
		h.sessions.Leave(client.ID)
		log.Info().Msg("disconnected")
	}()

	conn.SetReadLimit(maxMessageBytes)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("websocket error")
			}
			return
		}
		for _, line := range strings.Split(string(message), "\n") {
			if len(line) > MaxLineBytes {
				log.Debug().Int("limit", MaxLineBytes).Msg("discarding oversized line")
				continue
			}
			dispatch(h.sessions, log, client.ID, line)
		}
	}
}

// writePump pumps lines from the hub to the websocket connection
func (h *WebSocketHandler) writePump(conn *websocket.Conn, client *hub.Client, log zerolog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	queue := client.Outbound()
	for {
		select {
		case line, ok := <-queue:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// the hub closed the queue
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write([]byte(line))

			// Add queued lines to the current frame
			for n := len(queue); n > 0; n-- {
				next, ok := <-queue
				if !ok {
					break
				}
				w.Write([]byte{'\n'})
				w.Write([]byte(next))
			}

			if err := w.Close(); err != nil {
				log.Debug().Err(err).Msg("write failed")
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
