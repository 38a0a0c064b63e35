package memory

import (
	"sort"

	"dealMintAPI/internal/drop"

	"github.com/google/uuid"
)

// PutDeal stores or replaces a deal outside of any transaction.
func (s *Store) PutDeal(d drop.Deal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.deals[d.ID] = d
}

// PutDrop stores or replaces a drop outside of any transaction.
func (s *Store) PutDrop(d drop.Drop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.drops[d.ID] = d
}

func (s *Store) Drop(id uuid.UUID) (drop.Drop, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.state.drops[id]
	return d, ok
}

// Claims returns every claim on the drop ordered by claim time.
func (s *Store) Claims(dropID uuid.UUID) []drop.Claim {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []drop.Claim
	for _, c := range s.state.claims {
		if c.DropID == dropID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimedAt.Before(out[j].ClaimedAt) })
	return out
}

func (s *Store) Claim(id uuid.UUID) (drop.Claim, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.state.claims[id]
	return c, ok
}

func (s *Store) Coupon(id uuid.UUID) (drop.Coupon, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.state.coupons[id]
	return c, ok
}

// StreakFor looks up the streak of the profile owning wallet.
func (s *Store) StreakFor(wallet string) (drop.Streak, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.state.users {
		if u.WalletAddress == wallet {
			st, ok := s.state.streaks[u.ID]
			return st, ok
		}
	}
	return drop.Streak{}, false
}

func (s *Store) Analytics(dealID uuid.UUID) drop.DealAnalytics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.analytics[dealID]
}

func (s *Store) Interactions() []drop.Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]drop.Interaction(nil), s.state.interactions...)
}

// PutCoupon stores or replaces a coupon outside of any transaction.
func (s *Store) PutCoupon(c drop.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.coupons[c.ID] = c
}

func (s *Store) Transfers(couponID uuid.UUID) []drop.CouponTransfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []drop.CouponTransfer
	for _, tr := range s.state.transfers {
		if tr.CouponID == couponID {
			out = append(out, tr)
		}
	}
	return out
}
