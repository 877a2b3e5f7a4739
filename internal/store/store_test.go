package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwijaya/blackjack-duel/internal/db"
	"github.com/calvinwijaya/blackjack-duel/internal/game"
)

func sampleRecord(id string, settled time.Time) *RoundRecord {
	dealer := []game.Card{{Suit: game.Diamonds, Rank: game.Ten}, {Suit: game.Diamonds, Rank: game.Queen}}
	results := []game.Result{
		{Role: game.Player1, Bet: 10, Cards: []game.Card{{Suit: game.Spades, Rank: game.Ten}, {Suit: game.Spades, Rank: game.Nine}},
			Value: 19, Outcome: game.OutcomeLose, Delta: -10, Chips: 90},
		{Role: game.Player2, Bet: 10, Cards: []game.Card{{Suit: game.Hearts, Rank: game.Ace}, {Suit: game.Hearts, Rank: game.King}},
			Value: 21, Outcome: game.OutcomeBlackjack, Delta: 15, Chips: 115},
	}
	return NewRoundRecord(id, settled.Add(-time.Minute), settled, dealer, 20, results)
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	database, err := db.NewDatabase(db.DriverSQLite, ":memory:")
	require.NoError(t, err)

	all := map[string]Store{
		"memory":   NewMemoryStore(),
		"database": NewDatabaseStore(database),
	}
	t.Cleanup(func() {
		for _, s := range all {
			s.Close()
		}
	})
	return all
}

func TestNewRoundRecord(t *testing.T) {
	rec := sampleRecord("r1", time.Now())
	assert.Equal(t, "diamond-10,diamond-Q", rec.DealerCards)
	require.Len(t, rec.Seats, 2)
	assert.Equal(t, "PLAYER2", rec.Seats[1].Role)
	assert.Equal(t, "heart-A,heart-K", rec.Seats[1].Cards)
	assert.Equal(t, "BLACKJACK", rec.Seats[1].Outcome)
}

func TestStores_RoundTrip(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.SaveRound(ctx, sampleRecord("r1", base)))
			require.NoError(t, s.SaveRound(ctx, sampleRecord("r2", base.Add(time.Minute))))

			got, err := s.GetRound(ctx, "r1")
			require.NoError(t, err)
			assert.Equal(t, "r1", got.ID)
			assert.Equal(t, 20, got.DealerValue)
			require.Len(t, got.Seats, 2)
			assert.Equal(t, -10, got.Seats[0].Delta)

			_, err = s.GetRound(ctx, "nope")
			assert.ErrorIs(t, err, ErrNotFound)

			list, err := s.ListRounds(ctx, 1)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "r2", list[0].ID)

			stats, err := s.GetRoleStats(ctx, game.Player2)
			require.NoError(t, err)
			assert.Equal(t, 2, stats.RoundsPlayed)
			assert.Equal(t, 2, stats.Wins)
			assert.Equal(t, 2, stats.Blackjacks)
			assert.Equal(t, 30, stats.NetChips)
			assert.True(t, stats.LastPlayed.Equal(base.Add(time.Minute)))

			stats, err = s.GetRoleStats(ctx, game.Player1)
			require.NoError(t, err)
			assert.Equal(t, 2, stats.Losses)
			assert.Equal(t, 20, stats.TotalBets)
		})
	}
}
