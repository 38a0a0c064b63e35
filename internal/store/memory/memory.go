// Package memory is an in-process store.Store. Transactions are serialized on
// a single mutex and roll back by restoring a snapshot taken when they begin.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"dealMintAPI/internal/drop"
	"dealMintAPI/internal/store"

	"github.com/google/uuid"
)

type state struct {
	deals        map[uuid.UUID]drop.Deal
	drops        map[uuid.UUID]drop.Drop
	claims       map[uuid.UUID]drop.Claim
	users        map[uuid.UUID]drop.UserProfile
	streaks      map[uuid.UUID]drop.Streak
	coupons      map[uuid.UUID]drop.Coupon
	analytics    map[uuid.UUID]drop.DealAnalytics
	interactions []drop.Interaction
	transfers    []drop.CouponTransfer
}

func newState() *state {
	return &state{
		deals:     make(map[uuid.UUID]drop.Deal),
		drops:     make(map[uuid.UUID]drop.Drop),
		claims:    make(map[uuid.UUID]drop.Claim),
		users:     make(map[uuid.UUID]drop.UserProfile),
		streaks:   make(map[uuid.UUID]drop.Streak),
		coupons:   make(map[uuid.UUID]drop.Coupon),
		analytics: make(map[uuid.UUID]drop.DealAnalytics),
	}
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		deals:        cloneMap(s.deals),
		drops:        cloneMap(s.drops),
		claims:       cloneMap(s.claims),
		users:        cloneMap(s.users),
		streaks:      cloneMap(s.streaks),
		coupons:      cloneMap(s.coupons),
		analytics:    cloneMap(s.analytics),
		interactions: append([]drop.Interaction(nil), s.interactions...),
		transfers:    append([]drop.CouponTransfer(nil), s.transfers...),
	}
}

type Store struct {
	mu    sync.Mutex
	state *state
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{state: newState()}
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.state.clone()
	if err := fn(ctx, &tx{state: s.state}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *Store) FindActiveDrop(ctx context.Context, now time.Time) (*drop.DropWithDeal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *drop.Drop
	for _, d := range s.state.drops {
		if d.Status == drop.StatusCancelled || !d.InWindow(now) {
			continue
		}
		if best == nil || d.StartAt.After(best.StartAt) {
			d := d
			best = &d
		}
	}
	if best == nil {
		return nil, nil
	}
	return &drop.DropWithDeal{Drop: *best, Deal: s.state.deals[best.DealID]}, nil
}

func (s *Store) MarkDropLive(ctx context.Context, dropID uuid.UUID, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.markDropLive(dropID, now), nil
}

func (s *state) markDropLive(dropID uuid.UUID, now time.Time) bool {
	d, ok := s.drops[dropID]
	if !ok || d.Status != drop.StatusScheduled || d.StartAt.After(now) {
		return false
	}
	d.Status = drop.StatusLive
	d.UpdatedAt = now
	s.drops[dropID] = d
	return true
}

func (s *Store) PendingClaims(ctx context.Context, limit int) ([]*drop.PendingClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []*drop.PendingClaim
	for _, c := range s.state.claims {
		if c.Status != drop.ClaimPending || c.Reference == nil {
			continue
		}
		pending = append(pending, &drop.PendingClaim{Claim: c, DealID: s.state.drops[c.DropID].DealID})
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].ClaimedAt.Before(pending[j].ClaimedAt)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *Store) ClaimByReference(ctx context.Context, reference string) (*drop.ClaimDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.state.claims {
		if c.Reference == nil || *c.Reference != reference {
			continue
		}
		d := s.state.drops[c.DropID]
		detail := &drop.ClaimDetail{Claim: c, Drop: d, Deal: s.state.deals[d.DealID]}
		if c.CouponID != nil {
			if coupon, ok := s.state.coupons[*c.CouponID]; ok {
				detail.Coupon = &coupon
			}
		}
		return detail, nil
	}
	return nil, store.ErrNotFound
}

func (s *Store) Leaderboard(ctx context.Context, limit int) ([]*drop.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	confirmed := make([]drop.Claim, 0)
	for _, c := range s.state.claims {
		if c.Status == drop.ClaimConfirmed {
			confirmed = append(confirmed, c)
		}
	}
	sort.SliceStable(confirmed, func(i, j int) bool {
		if confirmed[i].StreakSnapshot != confirmed[j].StreakSnapshot {
			return confirmed[i].StreakSnapshot > confirmed[j].StreakSnapshot
		}
		return confirmed[i].ClaimedAt.Before(confirmed[j].ClaimedAt)
	})
	if len(confirmed) > limit {
		confirmed = confirmed[:limit]
	}

	entries := make([]*drop.LeaderboardEntry, 0, len(confirmed))
	for _, c := range confirmed {
		entry := &drop.LeaderboardEntry{Wallet: c.WalletAddress, Streak: c.StreakSnapshot}
		if user, ok := s.state.users[c.UserID]; ok {
			entry.User = &user
			if entry.Wallet == "" {
				entry.Wallet = user.WalletAddress
			}
		}
		if entry.Wallet == "" {
			entry.Wallet = "unknown"
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) Close() {}
