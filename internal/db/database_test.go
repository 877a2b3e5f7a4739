package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	d, err := NewDatabase(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase("mysql", "x")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestDatabase_SaveAndGetRound(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	round := RoundRow{
		ID:          "r1",
		StartedAt:   start,
		SettledAt:   start.Add(time.Minute),
		DealerCards: "diamond-10,diamond-Q",
		DealerValue: 20,
	}
	seats := []SeatRow{
		{Role: "PLAYER1", Bet: 10, Cards: "spade-10,spade-9", Value: 19, Outcome: "LOSE", Delta: -10, Chips: 90},
		{Role: "PLAYER2", Bet: 10, Cards: "heart-A,heart-K", Value: 21, Outcome: "BLACKJACK", Delta: 15, Chips: 115},
	}
	require.NoError(t, d.SaveRound(ctx, round, seats))

	got, gotSeats, err := d.GetRound(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, round.ID, got.ID)
	assert.Equal(t, 20, got.DealerValue)
	assert.True(t, round.SettledAt.Equal(got.SettledAt))
	assert.Equal(t, seats, gotSeats)

	_, _, err = d.GetRound(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoRound)

	// duplicate id rolls back entirely
	assert.Error(t, d.SaveRound(ctx, round, seats))
	_, gotSeats, err = d.GetRound(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, gotSeats, 2)
}

func TestDatabase_ListAndSeatsForRole(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		at := start.Add(time.Duration(i) * time.Minute)
		require.NoError(t, d.SaveRound(ctx, RoundRow{ID: id, StartedAt: at, SettledAt: at, DealerCards: "", DealerValue: 18},
			[]SeatRow{{Role: "PLAYER1", Bet: 5, Outcome: "WIN", Delta: 5, Chips: 100 + 5*(i+1)}}))
	}

	rows, err := d.ListRounds(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0].ID)
	assert.Equal(t, "b", rows[1].ID)

	seats, settled, err := d.SeatsForRole(ctx, "PLAYER1")
	require.NoError(t, err)
	assert.Len(t, seats, 3)
	assert.Len(t, settled, 3)
	assert.Equal(t, 115, seats[2].Chips)

	seats, _, err = d.SeatsForRole(ctx, "PLAYER2")
	require.NoError(t, err)
	assert.Empty(t, seats)
}
