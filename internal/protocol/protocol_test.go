package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwijaya/blackjack-duel/internal/game"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		line string
		want Intent
	}{
		{"MODE:PLAYER1", ClaimRole{Role: game.Player1}},
		{"MODE:player2\r\n", ClaimRole{Role: game.Player2}},
		{"CHAT:hello there", Chat{Text: "hello there"}},
		{"CHAT:", Chat{Text: ""}},
		{"BET:10", Bet{Amount: 10}},
		{"BET:-5", Bet{Amount: -5}},
		{"BET: all", Bet{All: true}},
		{"GAME:HIT", Hit{}},
		{"game:stand ", Stand{}},
	}

	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			got, err := Decode(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode("")
	assert.ErrorIs(t, err, ErrEmptyLine)

	_, err = Decode("HELLO")
	assert.ErrorIs(t, err, ErrUnknownPrefix)

	_, err = Decode("GAME:DOUBLE")
	assert.ErrorIs(t, err, ErrUnknownPrefix)

	_, err = Decode("MODE:DEALER")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Decode("BET:ten")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestEncode(t *testing.T) {
	cards := []game.Card{{Suit: game.Spades, Rank: game.King}, {Suit: game.Hearts, Rank: game.Ace}}

	cases := []struct {
		event game.Event
		want  string
	}{
		{game.Event{Kind: game.EventReset}, "GAME:RESET"},
		{game.Event{Kind: game.EventBettingOpen}, "INFO:BETTING"},
		{game.Event{Kind: game.EventBet, Seat: "PLAYER1", Amount: 10}, "GAME:BET:PLAYER1:10"},
		{game.Event{Kind: game.EventHand, Seat: "DEALER", Cards: cards}, "GAME:CARD:DEALER:spade-K,heart-A"},
		{game.Event{Kind: game.EventTurn, Seat: "PLAYER2"}, "GAME:TURN:PLAYER2"},
		{game.Event{Kind: game.EventBust, Seat: "PLAYER1"}, "GAME:BUST:PLAYER1"},
		{game.Event{Kind: game.EventResult, Seat: "PLAYER1", Outcome: game.OutcomeLose, Amount: -10}, "GAME:RESULT:PLAYER1:LOSE:-10"},
		{game.Event{Kind: game.EventChips, Seat: "PLAYER2", Amount: 115}, "CHIPS:PLAYER2:115"},
		{game.Event{Kind: game.EventMatchOver, Seat: "PLAYER1"}, "GAME:OVER:PLAYER1"},
	}

	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, Encode(tc.event))
		})
	}

	assert.Equal(t, []string{"GAME:RESET"}, EncodeAll([]game.Event{{Kind: game.EventReset}, {Kind: game.EventKind(99)}}))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "GAME:ROLE:PLAYER2", RoleAssigned(game.Player2))
	assert.Equal(t, "CHAT:PLAYER1: hi", ChatLine("PLAYER1", "hi"))
	assert.Equal(t, "CHAT:[SYSTEM] PLAYER1 left", SystemNotice("PLAYER1 left"))
	assert.Equal(t, "ERROR:ROLE_TAKEN:PLAYER1 is taken", ErrorLine(CodeRoleTaken, "PLAYER1 is taken"))
	assert.Equal(t, "WAITING:opponent", Waiting("opponent"))
}
