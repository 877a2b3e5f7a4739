package game

import (
	"fmt"
	"strings"
)

type Suit string
type Rank string

const (
	Spades   Suit = "spade"
	Hearts   Suit = "heart"
	Diamonds Suit = "diamond"
	Clubs    Suit = "club"
)

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

var (
	suits = []Suit{Spades, Hearts, Diamonds, Clubs}
	ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}
)

// Card is an immutable playing card.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// Value returns the blackjack value of the card. Aces count 11 here;
// Hand.Value handles the downgrade to 1.
func (c Card) Value() int {
	switch c.Rank {
	case Ace:
		return 11
	case Ten, Jack, Queen, King:
		return 10
	case Two:
		return 2
	case Three:
		return 3
	case Four:
		return 4
	case Five:
		return 5
	case Six:
		return 6
	case Seven:
		return 7
	case Eight:
		return 8
	case Nine:
		return 9
	default:
		return 0
	}
}

// String renders the wire token, e.g. "spade-K".
func (c Card) String() string {
	return string(c.Suit) + "-" + string(c.Rank)
}

// ParseCard is the inverse of Card.String.
func ParseCard(token string) (Card, error) {
	s, r, ok := strings.Cut(token, "-")
	if !ok {
		return Card{}, fmt.Errorf("card %q: missing separator", token)
	}
	c := Card{Suit: Suit(s), Rank: Rank(r)}
	if !validSuit(c.Suit) || c.Value() == 0 {
		return Card{}, fmt.Errorf("card %q: unknown suit or rank", token)
	}
	return c, nil
}

func validSuit(s Suit) bool {
	for _, v := range suits {
		if v == s {
			return true
		}
	}
	return false
}
