package services

import (
	"context"
	"testing"
	"time"

	"dealMintAPI/internal/cache"
	"dealMintAPI/internal/drop"
	"dealMintAPI/internal/store/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetActiveDropWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fixtureOpts{})
	deal := f.addDeal(t, dealOpts{})
	d := f.addDrop(t, deal, dropOpts{status: drop.StatusScheduled, start: time.Hour, end: 3 * time.Hour})

	active, err := f.drops.GetActiveDrop(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	f.clock.Advance(time.Hour)
	active, err = f.drops.GetActiveDrop(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, d.ID, active.ID)
	assert.Equal(t, drop.StatusLive, active.Status)
	assert.Equal(t, deal.Slug, active.Deal.Slug)

	stored, _ := f.store.Drop(d.ID)
	assert.Equal(t, drop.StatusLive, stored.Status)

	f.clock.Advance(2 * time.Hour)
	active, err = f.drops.GetActiveDrop(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestGetActiveDropPrefersLatestStart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fixtureOpts{})
	deal := f.addDeal(t, dealOpts{})
	f.addDrop(t, deal, dropOpts{start: -2 * time.Hour})
	latest := f.addDrop(t, deal, dropOpts{start: -time.Minute})
	f.addDrop(t, deal, dropOpts{start: -time.Second, status: drop.StatusCancelled})

	active, err := f.drops.GetActiveDrop(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, latest.ID, active.ID)
}

// cancelBeforeLive cancels the drop just before the conditional live update
// runs, as a concurrent admin cancel would.
type cancelBeforeLive struct {
	*memory.Store
}

func (s cancelBeforeLive) MarkDropLive(ctx context.Context, dropID uuid.UUID, now time.Time) (bool, error) {
	if d, ok := s.Drop(dropID); ok {
		d.Status = drop.StatusCancelled
		s.PutDrop(d)
	}
	return s.Store.MarkDropLive(ctx, dropID, now)
}

func TestGetActiveDropSkipsDropCancelledDuringActivation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fixtureOpts{})
	deal := f.addDeal(t, dealOpts{})
	d := f.addDrop(t, deal, dropOpts{status: drop.StatusScheduled})

	drops := NewDropService(cancelBeforeLive{f.store}, f.cache, zap.NewNop())
	drops.SetClock(f.clock.Now)

	active, err := drops.GetActiveDrop(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	stored, _ := f.store.Drop(d.ID)
	assert.Equal(t, drop.StatusCancelled, stored.Status)
}

func TestEnsureLiveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fixtureOpts{})
	deal := f.addDeal(t, dealOpts{})
	d := f.addDrop(t, deal, dropOpts{status: drop.StatusScheduled})

	first := d
	changed, err := f.drops.EnsureLive(ctx, &first)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, drop.StatusLive, first.Status)

	second := d
	changed, err = f.drops.EnsureLive(ctx, &second)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = f.drops.EnsureLive(ctx, &first)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCreateDrop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fixtureOpts{})
	deal := f.addDeal(t, dealOpts{})
	now := f.clock.Now()

	f.cache.Set(cache.KeyTodayDrop, "stale", time.Minute)

	created, err := f.drops.CreateDrop(ctx, drop.CreateDropRequest{
		DealID:           deal.ID.String(),
		StartAt:          now,
		EndAt:            now.Add(4 * time.Hour),
		SupplyAllocation: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, drop.StatusScheduled, created.Status)
	assert.Equal(t, deal.Title, created.Title)
	assert.Equal(t, 1, created.StreakMultiplier)

	_, cached := f.cache.Get(cache.KeyTodayDrop)
	assert.False(t, cached)

	active, err := f.drops.GetActiveDrop(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, created.ID, active.ID)
}

func TestCreateDropValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fixtureOpts{})
	deal := f.addDeal(t, dealOpts{})
	now := f.clock.Now()

	tests := []struct {
		name string
		req  drop.CreateDropRequest
	}{
		{"bad deal id", drop.CreateDropRequest{DealID: "x", StartAt: now, EndAt: now.Add(time.Hour), SupplyAllocation: 1}},
		{"unknown deal", drop.CreateDropRequest{DealID: uuid.NewString(), StartAt: now, EndAt: now.Add(time.Hour), SupplyAllocation: 1}},
		{"zero supply", drop.CreateDropRequest{DealID: deal.ID.String(), StartAt: now, EndAt: now.Add(time.Hour)}},
		{"empty window", drop.CreateDropRequest{DealID: deal.ID.String(), StartAt: now, EndAt: now, SupplyAllocation: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.drops.CreateDrop(ctx, tt.req)
			assert.ErrorIs(t, err, ErrInvalidDrop)
		})
	}
}

func TestCreateDemoDrop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fixtureOpts{})

	created, err := f.drops.CreateDemoDrop(ctx, DemoDropOptions{DealSlug: "missing", Supply: 0, Hours: 2})
	require.NoError(t, err)
	assert.Equal(t, "monkedao-espresso-protocol", created.Deal.Slug)
	assert.Equal(t, 1, created.SupplyAllocation)
	assert.Equal(t, f.clock.Now().Add(-time.Minute), created.StartAt)
	assert.Equal(t, f.clock.Now().Add(2*time.Hour), created.EndAt)
	assert.Contains(t, created.Title, "Today's Drop")

	again, err := f.drops.CreateDemoDrop(ctx, DemoDropOptions{DealSlug: created.Deal.Slug, Supply: 5, Hours: 1})
	require.NoError(t, err)
	assert.Equal(t, created.Deal.ID, again.Deal.ID)

	res, err := f.claim(ctx, again.Drop, "wallet-a")
	require.NoError(t, err)
	assert.Equal(t, drop.ClaimConfirmed, res.Claim.Status)
}

func TestCancelDrop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fixtureOpts{})
	deal := f.addDeal(t, dealOpts{})
	d := f.addDrop(t, deal, dropOpts{})

	assert.ErrorIs(t, f.drops.CancelDrop(ctx, uuid.New()), ErrDropNotFound)

	require.NoError(t, f.drops.CancelDrop(ctx, d.ID))
	stored, _ := f.store.Drop(d.ID)
	assert.Equal(t, drop.StatusCancelled, stored.Status)

	assert.ErrorIs(t, f.drops.CancelDrop(ctx, d.ID), ErrDropNotLive)

	_, err := f.claim(ctx, d, "wallet-a")
	assert.ErrorIs(t, err, ErrDropNotLive)
}

func TestGetDropLeaderboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fixtureOpts{})
	deal := f.addDeal(t, dealOpts{})

	// wallet-a builds a three day streak, wallet-b claims once.
	for day := 0; day < 3; day++ {
		d := f.addDrop(t, deal, dropOpts{})
		_, err := f.claim(ctx, d, "wallet-a")
		require.NoError(t, err)
		if day == 2 {
			_, err = f.claim(ctx, d, "wallet-b")
			require.NoError(t, err)
		}
		f.clock.Advance(20 * time.Hour)
	}

	entries, err := f.drops.GetDropLeaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "wallet-a", entries[0].Wallet)
	assert.Equal(t, 3, entries[0].Streak)
	require.NotNil(t, entries[0].User)
	assert.Equal(t, "wallet-a", entries[0].User.WalletAddress)

	entries, err = f.drops.GetDropLeaderboard(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = f.drops.GetDropLeaderboard(ctx, 10_000)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestGetDropLeaderboardEmpty(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	entries, err := f.drops.GetDropLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestVerifyClaim(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fixtureOpts{paid: true})
	free := f.addDeal(t, dealOpts{})
	paid := f.addDeal(t, dealOpts{price: "3"})
	freeDrop := f.addDrop(t, free, dropOpts{})
	paidDrop := f.addDrop(t, paid, dropOpts{})

	missing, err := f.drops.VerifyClaim(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	freeClaim, err := f.claim(ctx, freeDrop, "wallet-a")
	require.NoError(t, err)
	v, err := f.drops.VerifyClaim(ctx, *freeClaim.Claim.Reference)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.True(t, v.Verified)
	assert.Equal(t, drop.ClaimConfirmed, v.Status)
	assert.Equal(t, free.Slug, v.Drop.Deal.Slug)
	require.NotNil(t, v.Coupon)
	assert.Equal(t, drop.CouponActive, v.Coupon.State)

	paidClaim, err := f.claim(ctx, paidDrop, "wallet-a")
	require.NoError(t, err)
	v, err = f.drops.VerifyClaim(ctx, *paidClaim.Claim.Reference)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.False(t, v.Verified)
	assert.Equal(t, drop.ClaimPending, v.Status)
	assert.Nil(t, v.Coupon)
}
