package store

import (
	"context"

	"github.com/calvinwijaya/blackjack-duel/internal/db"
	"github.com/calvinwijaya/blackjack-duel/internal/game"
)

// DatabaseStore is a database implementation of round history
type DatabaseStore struct {
	db *db.Database
}

// NewDatabaseStore creates a new database store
func NewDatabaseStore(database *db.Database) *DatabaseStore {
	return &DatabaseStore{
		db: database,
	}
}

func (s *DatabaseStore) SaveRound(ctx context.Context, r *RoundRecord) error {
	seats := make([]db.SeatRow, len(r.Seats))
	for i, seat := range r.Seats {
		seats[i] = db.SeatRow(seat)
	}
	return s.db.SaveRound(ctx, db.RoundRow{
		ID:          r.ID,
		StartedAt:   r.StartedAt,
		SettledAt:   r.SettledAt,
		DealerCards: r.DealerCards,
		DealerValue: r.DealerValue,
	}, seats)
}

func (s *DatabaseStore) GetRound(ctx context.Context, id string) (*RoundRecord, error) {
	row, seats, err := s.db.GetRound(ctx, id)
	if err != nil {
		if err == db.ErrNoRound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toRecord(row, seats), nil
}

func (s *DatabaseStore) ListRounds(ctx context.Context, limit int) ([]*RoundRecord, error) {
	rows, err := s.db.ListRounds(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*RoundRecord, 0, len(rows))
	for _, row := range rows {
		_, seats, err := s.db.GetRound(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, toRecord(row, seats))
	}
	return out, nil
}

func (s *DatabaseStore) GetRoleStats(ctx context.Context, role game.Role) (*RoleStats, error) {
	seats, settled, err := s.db.SeatsForRole(ctx, role.String())
	if err != nil {
		return nil, err
	}

	stats := &RoleStats{Role: role.String()}
	for i, seat := range seats {
		stats.tally(SeatRecord(seat), settled[i])
	}
	return stats, nil
}

func (s *DatabaseStore) Close() error {
	return s.db.Close()
}

func toRecord(row db.RoundRow, seats []db.SeatRow) *RoundRecord {
	rec := &RoundRecord{
		ID:          row.ID,
		StartedAt:   row.StartedAt,
		SettledAt:   row.SettledAt,
		DealerCards: row.DealerCards,
		DealerValue: row.DealerValue,
		Seats:       make([]SeatRecord, len(seats)),
	}
	for i, seat := range seats {
		rec.Seats[i] = SeatRecord(seat)
	}
	return rec
}
