package hub

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwijaya/blackjack-duel/internal/game"
)

func drain(c *Client) []string {
	var out []string
	for {
		select {
		case line, ok := <-c.Outbound():
			if !ok {
				return out
			}
			out = append(out, line)
		default:
			return out
		}
	}
}

func TestHub_AssignRole(t *testing.T) {
	h := New(zerolog.Nop())
	a, b, spectator := NewClient("a"), NewClient("b"), NewClient("c")
	h.Register(a)
	h.Register(b)
	h.Register(spectator)

	require.NoError(t, h.AssignRole(a.ID, game.Player1))
	assert.ErrorIs(t, h.AssignRole(b.ID, game.Player1), ErrRoleTaken)
	assert.ErrorIs(t, h.AssignRole(a.ID, game.Player1), ErrAlreadySeated)
	assert.ErrorIs(t, h.AssignRole(a.ID, game.Player2), ErrAlreadySeated)
	assert.ErrorIs(t, h.AssignRole("nope", game.Player2), ErrUnknownClient)
	require.NoError(t, h.AssignRole(b.ID, game.Player2))

	role, ok := h.RoleOf(b.ID)
	assert.True(t, ok)
	assert.Equal(t, game.Player2, role)

	_, ok = h.RoleOf(spectator.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, h.AssignRole(spectator.ID, game.Player2), ErrRoleTaken)
}

func TestHub_ReleaseFreesRole(t *testing.T) {
	h := New(zerolog.Nop())
	a, b := NewClient("a"), NewClient("b")
	h.Register(a)
	h.Register(b)
	require.NoError(t, h.AssignRole(a.ID, game.Player1))

	role, held := h.Release(a.ID)
	assert.True(t, held)
	assert.Equal(t, game.Player1, role)
	assert.Equal(t, 1, h.Len())

	_, ok := <-a.Outbound()
	assert.False(t, ok, "released client queue must be closed")

	require.NoError(t, h.AssignRole(b.ID, game.Player1))

	_, held = h.Release(a.ID)
	assert.False(t, held)
}

func TestHub_BroadcastOrderAndTargeting(t *testing.T) {
	h := New(zerolog.Nop())
	a, b := NewClient("a"), NewClient("b")
	h.Register(a)
	h.Register(b)
	require.NoError(t, h.AssignRole(b.ID, game.Player2))

	h.Broadcast("one")
	h.SendTo(game.Player2, "private")
	h.SendTo(game.Player1, "nobody")
	h.Broadcast("two")
	h.SendToClient(a.ID, "direct")

	assert.Equal(t, []string{"one", "two", "direct"}, drain(a))
	assert.Equal(t, []string{"one", "private", "two"}, drain(b))
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := New(zerolog.Nop())
	slow := NewClient("slow")
	h.Register(slow)
	require.NoError(t, h.AssignRole(slow.ID, game.Player1))

	for i := 0; i < SendBuffer+1; i++ {
		h.Broadcast("x")
	}

	lines := drain(slow)
	assert.Len(t, lines, SendBuffer)

	// still registered until the table releases it, so the role comes back
	role, held := h.Release(slow.ID)
	assert.True(t, held)
	assert.Equal(t, game.Player1, role)
}
