package table

import (
	"github.com/calvinwijaya/blackjack-duel/internal/game"
	"github.com/calvinwijaya/blackjack-duel/internal/protocol"
)

type SeatView struct {
	Role  string `json:"role"`
	Chips int    `json:"chips"`
	Bet   int    `json:"bet"`
	Cards string `json:"cards"`
	Value int    `json:"value"`
}

// Snapshot is the public view of a table. The dealer's hole card is left
// out until the dealer plays.
type Snapshot struct {
	State       game.State `json:"state"`
	RoundID     string     `json:"roundId,omitempty"`
	Seats       []SeatView `json:"seats"`
	DealerCards string     `json:"dealerCards"`
	DeckLeft    int        `json:"deckLeft"`
	Connections int        `json:"connections"`
}

func (t *Table) snapshot() Snapshot {
	s := Snapshot{
		State:       t.round.State(),
		RoundID:     t.round.ID(),
		Seats:       make([]SeatView, 0, len(game.Roles)),
		DealerCards: protocol.Cards(t.round.VisibleDealerCards()),
		DeckLeft:    t.round.DeckRemaining(),
		Connections: t.reg.Len(),
	}
	for _, role := range game.Roles {
		p, ok := t.round.Participant(role)
		if !ok {
			continue
		}
		s.Seats = append(s.Seats, SeatView{
			Role:  role.String(),
			Chips: p.Chips,
			Bet:   p.Bet,
			Cards: protocol.Cards(p.Hand.Cards()),
			Value: p.Hand.Value(),
		})
	}
	return s
}
