// Package hub tracks live connections, maps them to table roles and fans
// outbound lines out to them.
package hub

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/calvinwijaya/blackjack-duel/internal/game"
)

var (
	ErrUnknownClient = errors.New("unknown client")
	ErrRoleTaken     = errors.New("role already claimed")
	ErrAlreadySeated = errors.New("client already holds a role")
)

// SendBuffer is the per-client outbound queue length.
const SendBuffer = 256

// Client is one registered connection, independent of its transport.
type Client struct {
	ID     string
	Addr   string
	send   chan string
	closed bool
}

// NewClient creates a client with a fresh handle.
func NewClient(addr string) *Client {
	return &Client{
		ID:   uuid.New().String(),
		Addr: addr,
		send: make(chan string, SendBuffer),
	}
}

// Outbound yields lines for the transport to write. It is closed when the
// client is released or dropped for falling behind.
func (c *Client) Outbound() <-chan string {
	return c.send
}

// Hub maintains the set of active clients and the role each holds.
type Hub struct {
	clients map[string]*Client
	roles   map[game.Role]string
	mu      sync.RWMutex
	log     zerolog.Logger
}

func New(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		roles:   make(map[game.Role]string),
		log:     log.With().Str("component", "hub").Logger(),
	}
}

// Register adds c to the broadcast set.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()

	h.log.Debug().Str("client", c.ID).Str("addr", c.Addr).Msg("client registered")
}

// AssignRole gives role to the client. A role held by another live client is
// never overwritten.
func (h *Hub) AssignRole(clientID string, role game.Role) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[clientID]; !ok {
		return ErrUnknownClient
	}
	if holder, ok := h.roles[role]; ok {
		if holder == clientID {
			return ErrAlreadySeated
		}
		return ErrRoleTaken
	}
	for _, holder := range h.roles {
		if holder == clientID {
			return ErrAlreadySeated
		}
	}
	h.roles[role] = clientID
	return nil
}

// RoleOf returns the role held by clientID.
func (h *Hub) RoleOf(clientID string) (game.Role, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.roleOfLocked(clientID)
}

func (h *Hub) roleOfLocked(clientID string) (game.Role, bool) {
	for role, holder := range h.roles {
		if holder == clientID {
			return role, true
		}
	}
	return 0, false
}

// Release deregisters the client, closes its queue and frees its role.
func (h *Hub) Release(clientID string) (game.Role, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[clientID]
	if !ok {
		return 0, false
	}
	delete(h.clients, clientID)
	if !c.closed {
		c.closed = true
		close(c.send)
	}

	role, held := h.roleOfLocked(clientID)
	if held {
		delete(h.roles, role)
	}
	h.log.Debug().Str("client", clientID).Bool("had_role", held).Msg("client released")
	return role, held
}

// Len returns the number of registered clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues line for every live client.
func (h *Hub) Broadcast(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		h.enqueueLocked(c, line)
	}
}

// SendTo queues line for the client holding role, if any.
func (h *Hub) SendTo(role game.Role, line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if id, ok := h.roles[role]; ok {
		if c, ok := h.clients[id]; ok {
			h.enqueueLocked(c, line)
		}
	}
}

// SendToClient queues line for a single client.
func (h *Hub) SendToClient(clientID, line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		h.enqueueLocked(c, line)
	}
}

// enqueueLocked never blocks. A client whose buffer is full is cut off: its
// queue is closed so the transport hangs up, and the table later releases
// it through the normal disconnect path.
func (h *Hub) enqueueLocked(c *Client, line string) {
	if c.closed {
		return
	}
	select {
	case c.send <- line:
	default:
		c.closed = true
		close(c.send)
		h.log.Warn().Str("client", c.ID).Msg("send buffer full, dropping client")
	}
}
