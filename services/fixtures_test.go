package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"dealMintAPI/internal/cache"
	"dealMintAPI/internal/drop"
	"dealMintAPI/internal/metrics"
	"dealMintAPI/internal/solanapay"
	"dealMintAPI/internal/store/memory"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeFinder struct {
	mu    sync.Mutex
	sigs  map[string]string
	errs  map[string]error
	calls int
}

func newFakeFinder() *fakeFinder {
	return &fakeFinder{sigs: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeFinder) Pay(reference, signature string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sigs[reference] = signature
}

func (f *fakeFinder) Fail(reference string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[reference] = err
}

func (f *fakeFinder) FindReference(ctx context.Context, reference string) (*solanapay.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[reference]; ok {
		return nil, err
	}
	if sig, ok := f.sigs[reference]; ok {
		return &solanapay.Signature{Signature: sig, Slot: 1}, nil
	}
	return nil, solanapay.ErrReferenceNotFound
}

type fixture struct {
	store   *memory.Store
	cache   *cache.Cache
	clock   *testClock
	finder  *fakeFinder
	drops   *DropService
	claims  *ClaimService
	confirm *ConfirmationService
	coupons *CouponService
}

type fixtureOpts struct {
	paid bool
}

func newFixture(t *testing.T, opts fixtureOpts) *fixture {
	t.Helper()

	c, err := cache.New(16)
	require.NoError(t, err)

	var recipient string
	if opts.paid {
		recipient, err = solanapay.NewReference()
		require.NoError(t, err)
	}

	f := &fixture{
		store:  memory.New(),
		cache:  c,
		clock:  &testClock{now: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)},
		finder: newFakeFinder(),
	}

	log := zap.NewNop()
	m := metrics.NewDrop(prometheus.NewRegistry())

	f.drops = NewDropService(f.store, c, log)
	f.drops.SetClock(f.clock.Now)

	f.claims, err = NewClaimService(f.store, c, m, log, recipient)
	require.NoError(t, err)
	f.claims.SetClock(f.clock.Now)

	f.confirm = NewConfirmationService(f.store, f.finder, c, m, log, 25, 4)
	f.confirm.SetClock(f.clock.Now)

	f.coupons = NewCouponService(f.store, log)
	f.coupons.SetClock(f.clock.Now)

	return f
}

type dealOpts struct {
	price     string
	supplyCap *int
}

func (f *fixture) addDeal(t *testing.T, opts dealOpts) drop.Deal {
	t.Helper()
	deal := drop.Deal{
		ID:        uuid.New(),
		Title:     "Flat white",
		Slug:      "flat-white-" + uuid.NewString()[:8],
		Summary:   "Half price flat white",
		Currency:  "USD",
		SupplyCap: opts.supplyCap,
		Status:    "active",
	}
	if opts.price != "" {
		p := decimal.RequireFromString(opts.price)
		deal.OriginalPrice = &p
	}
	f.store.PutDeal(deal)
	return deal
}

type dropOpts struct {
	supply int
	status drop.Status
	start  time.Duration
	end    time.Duration
}

// addDrop stores a drop for deal. start and end are offsets from the clock.
func (f *fixture) addDrop(t *testing.T, deal drop.Deal, opts dropOpts) drop.Drop {
	t.Helper()
	if opts.supply == 0 {
		opts.supply = 10
	}
	if opts.status == "" {
		opts.status = drop.StatusLive
	}
	if opts.start == 0 {
		opts.start = -time.Hour
	}
	if opts.end == 0 {
		opts.end = 4 * time.Hour
	}

	now := f.clock.Now()
	description := "Today only"
	d := drop.Drop{
		ID:               uuid.New(),
		DealID:           deal.ID,
		Title:            deal.Title + " drop",
		Description:      &description,
		StartAt:          now.Add(opts.start),
		EndAt:            now.Add(opts.end),
		SupplyAllocation: opts.supply,
		StreakMultiplier: 1,
		Status:           opts.status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	f.store.PutDrop(d)
	return d
}

func (f *fixture) claim(ctx context.Context, d drop.Drop, wallet string) (*drop.ClaimResult, error) {
	return f.claims.ClaimDrop(ctx, drop.ClaimRequest{DropID: d.ID.String(), WalletAddress: wallet})
}
