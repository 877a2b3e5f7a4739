package store

import (
	"context"
	"errors"
	"time"

	"github.com/calvinwijaya/blackjack-duel/internal/game"
	"github.com/calvinwijaya/blackjack-duel/internal/protocol"
)

var ErrNotFound = errors.New("round not found")

// Store defines the interface for settled-round history. Nothing in it is
// read back into a live table.
type Store interface {
	// SaveRound records a settled round
	SaveRound(ctx context.Context, r *RoundRecord) error

	// GetRound retrieves a round by ID
	GetRound(ctx context.Context, id string) (*RoundRecord, error)

	// ListRounds returns the most recent rounds first
	ListRounds(ctx context.Context, limit int) ([]*RoundRecord, error)

	// GetRoleStats aggregates results for one seat
	GetRoleStats(ctx context.Context, role game.Role) (*RoleStats, error)

	Close() error
}

// SeatRecord is one participant's settlement within a round.
type SeatRecord struct {
	Role    string `json:"role"`
	Bet     int    `json:"bet"`
	Cards   string `json:"cards"`
	Value   int    `json:"value"`
	Outcome string `json:"outcome"`
	Delta   int    `json:"delta"`
	Chips   int    `json:"chips"`
}

type RoundRecord struct {
	ID          string       `json:"id"`
	StartedAt   time.Time    `json:"startedAt"`
	SettledAt   time.Time    `json:"settledAt"`
	DealerCards string       `json:"dealerCards"`
	DealerValue int          `json:"dealerValue"`
	Seats       []SeatRecord `json:"seats"`
}

type RoleStats struct {
	Role         string    `json:"role"`
	RoundsPlayed int       `json:"roundsPlayed"`
	Wins         int       `json:"wins"`
	Blackjacks   int       `json:"blackjacks"`
	Pushes       int       `json:"pushes"`
	Losses       int       `json:"losses"`
	Busts        int       `json:"busts"`
	TotalBets    int       `json:"totalBets"`
	NetChips     int       `json:"netChips"`
	LastPlayed   time.Time `json:"lastPlayed"`
}

// NewRoundRecord builds a history row from a settled round.
func NewRoundRecord(id string, startedAt, settledAt time.Time, dealer []game.Card, dealerValue int, results []game.Result) *RoundRecord {
	rec := &RoundRecord{
		ID:          id,
		StartedAt:   startedAt,
		SettledAt:   settledAt,
		DealerCards: protocol.Cards(dealer),
		DealerValue: dealerValue,
		Seats:       make([]SeatRecord, 0, len(results)),
	}
	for _, res := range results {
		rec.Seats = append(rec.Seats, SeatRecord{
			Role:    res.Role.String(),
			Bet:     res.Bet,
			Cards:   protocol.Cards(res.Cards),
			Value:   res.Value,
			Outcome: string(res.Outcome),
			Delta:   res.Delta,
			Chips:   res.Chips,
		})
	}
	return rec
}

// tally folds one seat result into stats.
func (s *RoleStats) tally(seat SeatRecord, settledAt time.Time) {
	s.RoundsPlayed++
	s.TotalBets += seat.Bet
	s.NetChips += seat.Delta
	switch game.Outcome(seat.Outcome) {
	case game.OutcomeWin:
		s.Wins++
	case game.OutcomeBlackjack:
		s.Wins++
		s.Blackjacks++
	case game.OutcomePush:
		s.Pushes++
	case game.OutcomeLose:
		s.Losses++
	case game.OutcomeBust:
		s.Losses++
		s.Busts++
	}
	if settledAt.After(s.LastPlayed) {
		s.LastPlayed = settledAt
	}
}
