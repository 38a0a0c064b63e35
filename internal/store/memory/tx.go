package memory

import (
	"context"
	"time"

	"dealMintAPI/internal/drop"
	"dealMintAPI/internal/store"

	"github.com/google/uuid"
)

// tx runs with Store.mu held, so it touches state without locking.
type tx struct {
	state *state
}

var _ store.Tx = (*tx)(nil)

func (t *tx) LockDrop(ctx context.Context, dropID uuid.UUID) (*drop.DropWithDeal, error) {
	d, ok := t.state.drops[dropID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &drop.DropWithDeal{Drop: d, Deal: t.state.deals[d.DealID]}, nil
}

func (t *tx) MarkDropLive(ctx context.Context, dropID uuid.UUID, now time.Time) (bool, error) {
	return t.state.markDropLive(dropID, now), nil
}

func (t *tx) CreateDrop(ctx context.Context, d *drop.Drop) error {
	t.state.drops[d.ID] = *d
	return nil
}

func (t *tx) CancelDrop(ctx context.Context, dropID uuid.UUID, now time.Time) (bool, error) {
	d, ok := t.state.drops[dropID]
	if !ok || (d.Status != drop.StatusScheduled && d.Status != drop.StatusLive) {
		return false, nil
	}
	d.Status = drop.StatusCancelled
	d.UpdatedAt = now
	t.state.drops[dropID] = d
	return true, nil
}

// LockDeal only checks existence; every transaction already holds Store.mu.
func (t *tx) LockDeal(ctx context.Context, dealID uuid.UUID) error {
	if _, ok := t.state.deals[dealID]; !ok {
		return store.ErrNotFound
	}
	return nil
}

func (t *tx) GetDeal(ctx context.Context, dealID uuid.UUID) (*drop.Deal, error) {
	deal, ok := t.state.deals[dealID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &deal, nil
}

func (t *tx) GetDealBySlug(ctx context.Context, slug string) (*drop.Deal, error) {
	for _, deal := range t.state.deals {
		if deal.Slug == slug {
			return &deal, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t *tx) UpsertDeal(ctx context.Context, d *drop.Deal) (*drop.Deal, error) {
	if existing, err := t.GetDealBySlug(ctx, d.Slug); err == nil {
		return existing, nil
	}
	t.state.deals[d.ID] = *d
	stored := t.state.deals[d.ID]
	return &stored, nil
}

func (t *tx) WalletHasActiveClaim(ctx context.Context, dropID uuid.UUID, wallet string) (bool, error) {
	for _, c := range t.state.claims {
		if c.DropID == dropID && c.WalletAddress == wallet && c.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) CountActiveClaims(ctx context.Context, dropID uuid.UUID) (int, error) {
	count := 0
	for _, c := range t.state.claims {
		if c.DropID == dropID && c.Status.Active() {
			count++
		}
	}
	return count, nil
}

func (t *tx) CountDealClaims(ctx context.Context, dealID uuid.UUID) (int, error) {
	count := 0
	for _, c := range t.state.claims {
		if t.state.drops[c.DropID].DealID == dealID && c.Status.Active() {
			count++
		}
	}
	return count, nil
}

func (t *tx) InsertClaim(ctx context.Context, c *drop.Claim) error {
	if c.Status.Active() {
		if held, _ := t.WalletHasActiveClaim(ctx, c.DropID, c.WalletAddress); held {
			return store.ErrDuplicateClaim
		}
	}
	t.state.claims[c.ID] = *c
	return nil
}

func (t *tx) ConfirmClaim(ctx context.Context, claimID uuid.UUID, signature string, at time.Time) (bool, error) {
	c, ok := t.state.claims[claimID]
	if !ok || c.Status != drop.ClaimPending {
		return false, nil
	}
	c.Status = drop.ClaimConfirmed
	c.TransactionSig = &signature
	c.CompletedAt = &at
	t.state.claims[claimID] = c
	return true, nil
}

func (t *tx) UpsertUserProfile(ctx context.Context, wallet string) (*drop.UserProfile, error) {
	for _, u := range t.state.users {
		if u.WalletAddress == wallet {
			return &u, nil
		}
	}
	u := drop.UserProfile{ID: uuid.New(), WalletAddress: wallet}
	t.state.users[u.ID] = u
	return &u, nil
}

func (t *tx) LockStreak(ctx context.Context, userID uuid.UUID) (*drop.Streak, error) {
	s, ok := t.state.streaks[userID]
	if !ok {
		s = drop.Streak{UserID: userID}
		t.state.streaks[userID] = s
	}
	return &s, nil
}

func (t *tx) SaveStreak(ctx context.Context, s *drop.Streak) error {
	if _, ok := t.state.streaks[s.UserID]; !ok {
		return store.ErrNotFound
	}
	t.state.streaks[s.UserID] = *s
	return nil
}

func (t *tx) IssueCoupon(ctx context.Context, c *drop.Coupon) error {
	claim, ok := t.state.claims[c.ClaimID]
	if !ok {
		return store.ErrNotFound
	}
	t.state.coupons[c.ID] = *c
	id := c.ID
	claim.CouponID = &id
	t.state.claims[c.ClaimID] = claim
	return nil
}

func (t *tx) RedeemCoupon(ctx context.Context, couponID uuid.UUID, signature string, at time.Time) error {
	c, ok := t.state.coupons[couponID]
	if !ok {
		return store.ErrNotFound
	}
	c.State = drop.CouponRedeemed
	c.PaymentTx = &signature
	c.RedeemedAt = &at
	t.state.coupons[couponID] = c
	return nil
}

func (t *tx) LockCoupon(ctx context.Context, couponID uuid.UUID) (*drop.Coupon, error) {
	c, ok := t.state.coupons[couponID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (t *tx) TransferCoupon(ctx context.Context, tr *drop.CouponTransfer) error {
	c, ok := t.state.coupons[tr.CouponID]
	if !ok {
		return store.ErrNotFound
	}
	c.OwnerWallet = tr.ToWallet
	c.State = drop.CouponTransferred
	t.state.coupons[tr.CouponID] = c
	t.state.transfers = append(t.state.transfers, *tr)
	return nil
}

func (t *tx) IncrementDealClaims(ctx context.Context, dealID uuid.UUID, at time.Time) error {
	a := t.state.analytics[dealID]
	a.DealID = dealID
	a.TotalClaims++
	a.LastInteractionAt = &at
	t.state.analytics[dealID] = a
	return nil
}

func (t *tx) IncrementDealRedemptions(ctx context.Context, dealID uuid.UUID, at time.Time) error {
	a := t.state.analytics[dealID]
	a.DealID = dealID
	a.TotalRedemptions++
	a.LastInteractionAt = &at
	t.state.analytics[dealID] = a
	return nil
}

func (t *tx) IncrementDealTransfers(ctx context.Context, dealID uuid.UUID, at time.Time) error {
	a := t.state.analytics[dealID]
	a.DealID = dealID
	a.TotalTransfers++
	a.LastInteractionAt = &at
	t.state.analytics[dealID] = a
	return nil
}

func (t *tx) RecordInteraction(ctx context.Context, in *drop.Interaction) error {
	t.state.interactions = append(t.state.interactions, *in)
	return nil
}
