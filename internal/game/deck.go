package game

import (
	"errors"
	"math/rand"
	"time"
)

var ErrEmptyDeck = errors.New("deck is empty")

type Deck struct {
	cards []Card
}

// NewDeck creates a standard 52-card deck shuffled with a time-seeded source.
func NewDeck() *Deck {
	return NewShuffledDeck(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewShuffledDeck creates a 52-card deck permuted by r.
func NewShuffledDeck(r *rand.Rand) *Deck {
	d := &Deck{cards: orderedCards()}

	// Fisher-Yates
	for i := len(d.cards) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
	return d
}

// NewStackedDeck puts top first, in order, followed by the rest of the 52
// cards in suit/rank order. Duplicates in top are ignored so the deck always
// holds 52 distinct cards.
func NewStackedDeck(top ...Card) *Deck {
	seen := make(map[Card]bool, len(top))
	d := &Deck{cards: make([]Card, 0, 52)}
	for _, c := range top {
		if seen[c] || c.Value() == 0 {
			continue
		}
		seen[c] = true
		d.cards = append(d.cards, c)
	}
	for _, c := range orderedCards() {
		if !seen[c] {
			d.cards = append(d.cards, c)
		}
	}
	return d
}

func orderedCards() []Card {
	cards := make([]Card, 0, len(suits)*len(ranks))
	for _, suit := range suits {
		for _, rank := range ranks {
			cards = append(cards, Card{Suit: suit, Rank: rank})
		}
	}
	return cards
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}

	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

func (d *Deck) Remaining() int {
	return len(d.cards)
}
