package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"dealMintAPI/internal/cache"
	"dealMintAPI/internal/drop"
	"dealMintAPI/internal/metrics"
	"dealMintAPI/internal/solanapay"
	"dealMintAPI/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultConfirmBatch       = 25
	DefaultConfirmConcurrency = 4
)

type ConfirmationService struct {
	store       store.Store
	finder      solanapay.ReferenceFinder
	cache       *cache.Cache
	metrics     *metrics.Drop
	log         *zap.Logger
	batch       int
	concurrency int
	now         func() time.Time
}

func NewConfirmationService(
	st store.Store,
	finder solanapay.ReferenceFinder,
	c *cache.Cache,
	m *metrics.Drop,
	log *zap.Logger,
	batch, concurrency int,
) *ConfirmationService {
	if batch <= 0 {
		batch = DefaultConfirmBatch
	}
	if concurrency <= 0 {
		concurrency = DefaultConfirmConcurrency
	}
	return &ConfirmationService{
		store:       st,
		finder:      finder,
		cache:       c,
		metrics:     m,
		log:         log.Named("confirmations"),
		batch:       batch,
		concurrency: concurrency,
		now:         time.Now,
	}
}

func (s *ConfirmationService) SetClock(now func() time.Time) {
	s.now = now
}

// ConfirmPendingDropClaims checks the oldest pending claims against the
// payment rail and confirms the ones whose reference has landed on chain.
// A failure on one claim is logged and leaves it pending for the next sweep.
func (s *ConfirmationService) ConfirmPendingDropClaims(ctx context.Context) (*drop.SweepResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveSweep(time.Since(start)) }()

	pending, err := s.store.PendingClaims(ctx, s.batch)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending claims: %w", err)
	}
	if len(pending) == 0 {
		return &drop.SweepResult{}, nil
	}

	var confirmed atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, claim := range pending {
		claim := claim
		g.Go(func() error {
			ok, err := s.confirmClaim(ctx, claim)
			if err != nil {
				s.metrics.Confirmation(metrics.OutcomeError)
				s.log.Error("failed to confirm drop claim",
					zap.String("claim_id", claim.ID.String()),
					zap.Error(err))
				return nil
			}
			if ok {
				confirmed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := &drop.SweepResult{Processed: len(pending), Confirmed: int(confirmed.Load())}
	if result.Confirmed > 0 {
		s.cache.Delete(cache.KeyLeaderboard, cache.KeyTodayDrop)
	}

	s.log.Info("confirmation sweep finished",
		zap.Int("processed", result.Processed),
		zap.Int("confirmed", result.Confirmed),
		zap.Duration("took", time.Since(start)))

	return result, ctx.Err()
}

// confirmClaim reports whether this call moved the claim to confirmed.
func (s *ConfirmationService) confirmClaim(ctx context.Context, claim *drop.PendingClaim) (bool, error) {
	if claim.Reference == nil {
		return false, nil
	}

	sig, err := s.finder.FindReference(ctx, *claim.Reference)
	if err != nil {
		if errors.Is(err, solanapay.ErrReferenceNotFound) {
			s.metrics.Confirmation(metrics.OutcomeNotFound)
			return false, nil
		}
		return false, err
	}

	var changed bool
	err = s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		now := s.now()

		ok, err := tx.ConfirmClaim(ctx, claim.ID, sig.Signature, now)
		if err != nil || !ok {
			return err
		}
		changed = true

		if claim.CouponID != nil {
			if err := tx.RedeemCoupon(ctx, *claim.CouponID, sig.Signature, now); err != nil {
				return err
			}
		} else {
			signature := sig.Signature
			coupon := &drop.Coupon{
				ID:          uuid.New(),
				DealID:      claim.DealID,
				ClaimID:     claim.ID,
				OwnerWallet: claim.WalletAddress,
				State:       drop.CouponRedeemed,
				PaymentTx:   &signature,
				RedeemedAt:  &now,
				CreatedAt:   now,
			}
			if err := tx.IssueCoupon(ctx, coupon); err != nil {
				return err
			}
		}

		return tx.IncrementDealRedemptions(ctx, claim.DealID, now)
	})
	if err != nil {
		return false, err
	}

	if !changed {
		// Another sweep got there first.
		s.metrics.Confirmation(metrics.OutcomeSkipped)
		return false, nil
	}

	s.metrics.Confirmation(metrics.OutcomeConfirmed)
	s.log.Info("drop claim confirmed",
		zap.String("claim_id", claim.ID.String()),
		zap.String("signature", sig.Signature))
	return true, nil
}
