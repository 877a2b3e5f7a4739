package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func c(s Suit, r Rank) Card { return Card{Suit: s, Rank: r} }

func handOf(cards ...Card) *Hand {
	h := &Hand{}
	for _, card := range cards {
		h.Add(card)
	}
	return h
}

func TestHand_Value(t *testing.T) {
	cases := []struct {
		name  string
		cards []Card
		want  int
	}{
		{"empty", nil, 0},
		{"two aces", []Card{c(Spades, Ace), c(Hearts, Ace)}, 12},
		{"ace ace nine", []Card{c(Spades, Ace), c(Hearts, Ace), c(Clubs, Nine)}, 21},
		{"soft seventeen", []Card{c(Spades, Ace), c(Hearts, Six)}, 17},
		{"soft hand hardens", []Card{c(Spades, Ace), c(Hearts, Six), c(Clubs, Ten)}, 17},
		{"natural", []Card{c(Spades, Ace), c(Hearts, King)}, 21},
		{"faces", []Card{c(Spades, Jack), c(Hearts, Queen), c(Clubs, King)}, 30},
		{"four aces", []Card{c(Spades, Ace), c(Hearts, Ace), c(Clubs, Ace), c(Diamonds, Ace)}, 14},
		{"four aces and seven", []Card{c(Spades, Ace), c(Hearts, Ace), c(Clubs, Ace), c(Diamonds, Ace), c(Clubs, Seven)}, 21},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, handOf(tc.cards...).Value())
		})
	}
}

func TestHand_NaturalAndBust(t *testing.T) {
	assert.True(t, handOf(c(Spades, Ace), c(Hearts, Ten)).IsNatural())
	assert.False(t, handOf(c(Spades, Seven), c(Hearts, Seven), c(Clubs, Seven)).IsNatural())
	assert.True(t, handOf(c(Spades, King), c(Hearts, Queen), c(Clubs, Two)).IsBust())
	assert.False(t, handOf(c(Spades, Ace), c(Hearts, Ace), c(Clubs, King)).IsBust())
}

func TestHand_CardsIsCopy(t *testing.T) {
	h := handOf(c(Spades, Ace), c(Hearts, King))

	cards := h.Cards()
	cards[0] = c(Clubs, Two)

	assert.Equal(t, c(Spades, Ace), h.Cards()[0])

	h.Clear()
	assert.Zero(t, h.Len())
}

func TestCard_ParseRoundTrip(t *testing.T) {
	for _, card := range orderedCards() {
		got, err := ParseCard(card.String())
		require.NoError(t, err)
		assert.Equal(t, card, got)
	}

	_, err := ParseCard("spade")
	assert.Error(t, err)
	_, err = ParseCard("cup-A")
	assert.Error(t, err)
	_, err = ParseCard("heart-1")
	assert.Error(t, err)
}

func TestDeck_FiftyTwoDistinct(t *testing.T) {
	d := NewShuffledDeck(rand.New(rand.NewSource(42)))
	require.Equal(t, 52, d.Remaining())

	seen := make(map[Card]bool, 52)
	for i := 0; i < 52; i++ {
		card, err := d.Draw()
		require.NoError(t, err)
		assert.False(t, seen[card], "duplicate %s", card)
		seen[card] = true
	}
	assert.Len(t, seen, 52)

	_, err := d.Draw()
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestDeck_Stacked(t *testing.T) {
	d := NewStackedDeck(c(Hearts, King), c(Hearts, King), c(Spades, Two))
	require.Equal(t, 52, d.Remaining())

	first, _ := d.Draw()
	second, _ := d.Draw()
	assert.Equal(t, c(Hearts, King), first)
	assert.Equal(t, c(Spades, Two), second)
}

func TestRole_Parse(t *testing.T) {
	r, ok := ParseRole("player1")
	assert.True(t, ok)
	assert.Equal(t, Player1, r)

	r, ok = ParseRole(" PLAYER2 ")
	assert.True(t, ok)
	assert.Equal(t, Player2, r)
	assert.Equal(t, Player1, r.Other())

	_, ok = ParseRole("DEALER")
	assert.False(t, ok)
}
