package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealMintAPI/internal/drop"
	"dealMintAPI/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store, now time.Time) drop.Drop {
	t.Helper()
	deal := drop.Deal{ID: uuid.New(), Title: "Coffee", Slug: "coffee", Status: "active"}
	d := drop.Drop{
		ID:               uuid.New(),
		DealID:           deal.ID,
		Title:            "Coffee drop",
		StartAt:          now.Add(-time.Hour),
		EndAt:            now.Add(time.Hour),
		SupplyAllocation: 10,
		StreakMultiplier: 1,
		Status:           drop.StatusScheduled,
	}
	s.PutDeal(deal)
	s.PutDrop(d)
	return d
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	d := seed(t, s, now)

	boom := errors.New("boom")
	err := s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		require.NoError(t, tx.InsertClaim(ctx, &drop.Claim{
			ID: uuid.New(), DropID: d.ID, WalletAddress: "w1", Status: drop.ClaimPending, ClaimedAt: now,
		}))
		require.NoError(t, tx.IncrementDealClaims(ctx, d.DealID, now))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, s.Claims(d.ID))
	assert.Zero(t, s.Analytics(d.DealID).TotalClaims)
}

func TestInsertClaimRejectsSecondActiveClaim(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	d := seed(t, s, now)

	err := s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertClaim(ctx, &drop.Claim{ID: uuid.New(), DropID: d.ID, WalletAddress: "w1", Status: drop.ClaimPending}); err != nil {
			return err
		}
		return tx.InsertClaim(ctx, &drop.Claim{ID: uuid.New(), DropID: d.ID, WalletAddress: "w1", Status: drop.ClaimConfirmed})
	})

	assert.ErrorIs(t, err, store.ErrDuplicateClaim)
}

func TestConfirmClaimOnlyOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	d := seed(t, s, now)
	id := uuid.New()

	var first, second bool
	err := s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertClaim(ctx, &drop.Claim{ID: id, DropID: d.ID, WalletAddress: "w1", Status: drop.ClaimPending}); err != nil {
			return err
		}
		var err error
		if first, err = tx.ConfirmClaim(ctx, id, "sig-1", now); err != nil {
			return err
		}
		second, err = tx.ConfirmClaim(ctx, id, "sig-2", now)
		return err
	})
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	c, _ := s.Claim(id)
	assert.Equal(t, drop.ClaimConfirmed, c.Status)
	assert.Equal(t, "sig-1", *c.TransactionSig)
}

func TestMarkDropLiveIsConditional(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	d := seed(t, s, now)

	changed, err := s.MarkDropLive(ctx, d.ID, now)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.MarkDropLive(ctx, d.ID, now)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestLeaderboardOrdering(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	d := seed(t, s, now)

	claims := []drop.Claim{
		{ID: uuid.New(), DropID: d.ID, WalletAddress: "late", StreakSnapshot: 3, Status: drop.ClaimConfirmed, ClaimedAt: now},
		{ID: uuid.New(), DropID: d.ID, WalletAddress: "early", StreakSnapshot: 3, Status: drop.ClaimConfirmed, ClaimedAt: now.Add(-time.Minute)},
		{ID: uuid.New(), DropID: d.ID, WalletAddress: "top", StreakSnapshot: 7, Status: drop.ClaimConfirmed, ClaimedAt: now},
		{ID: uuid.New(), DropID: d.ID, WalletAddress: "pending", StreakSnapshot: 9, Status: drop.ClaimPending, ClaimedAt: now},
	}
	require.NoError(t, s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		for i := range claims {
			if err := tx.InsertClaim(ctx, &claims[i]); err != nil {
				return err
			}
		}
		return nil
	}))

	entries, err := s.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "top", entries[0].Wallet)
	assert.Equal(t, "early", entries[1].Wallet)
	assert.Equal(t, "late", entries[2].Wallet)

	entries, err = s.Leaderboard(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFindActiveDropSkipsCancelled(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	d := seed(t, s, now)

	active, err := s.FindActiveDrop(ctx, now)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, d.ID, active.ID)
	assert.Equal(t, "coffee", active.Deal.Slug)

	require.NoError(t, s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.CancelDrop(ctx, d.ID, now)
		return err
	}))

	active, err = s.FindActiveDrop(ctx, now)
	require.NoError(t, err)
	assert.Nil(t, active)
}
