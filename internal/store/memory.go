package store

import (
	"context"
	"sync"

	"github.com/calvinwijaya/blackjack-duel/internal/game"
)

// MemoryStore is an in-memory implementation of round history
type MemoryStore struct {
	rounds map[string]*RoundRecord
	order  []string
	mu     sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rounds: make(map[string]*RoundRecord),
	}
}

func (s *MemoryStore) SaveRound(_ context.Context, r *RoundRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rounds[r.ID]; !exists {
		s.order = append(s.order, r.ID)
	}
	s.rounds[r.ID] = r
	return nil
}

func (s *MemoryStore) GetRound(_ context.Context, id string) (*RoundRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.rounds[id]
	if !exists {
		return nil, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) ListRounds(_ context.Context, limit int) ([]*RoundRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}
	out := make([]*RoundRecord, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.rounds[s.order[i]])
	}
	return out, nil
}

func (s *MemoryStore) GetRoleStats(_ context.Context, role game.Role) (*RoleStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &RoleStats{Role: role.String()}
	for _, id := range s.order {
		r := s.rounds[id]
		for _, seat := range r.Seats {
			if seat.Role == stats.Role {
				stats.tally(seat, r.SettledAt)
			}
		}
	}
	return stats, nil
}

func (s *MemoryStore) Close() error { return nil }
