package game

// Hand is an append-only sequence of cards. Its value is recomputed on
// every call.
type Hand struct {
	cards []Card
}

func (h *Hand) Add(c Card) {
	h.cards = append(h.cards, c)
}

func (h *Hand) Clear() {
	h.cards = nil
}

// Cards returns a copy of the cards held.
func (h *Hand) Cards() []Card {
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}

func (h *Hand) Len() int {
	return len(h.cards)
}

// Value sums the cards counting aces as 11, then converts aces to 1 one at a
// time while the total is over 21.
func (h *Hand) Value() int {
	score := 0
	aces := 0

	for _, card := range h.cards {
		if card.Rank == Ace {
			aces++
		}
		score += card.Value()
	}

	for aces > 0 && score > 21 {
		score -= 10
		aces--
	}

	return score
}

// IsNatural reports a two-card 21.
func (h *Hand) IsNatural() bool {
	return len(h.cards) == 2 && h.Value() == 21
}

func (h *Hand) IsBust() bool {
	return h.Value() > 21
}
