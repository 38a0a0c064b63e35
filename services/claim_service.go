package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dealMintAPI/internal/cache"
	"dealMintAPI/internal/drop"
	"dealMintAPI/internal/metrics"
	"dealMintAPI/internal/solanapay"
	"dealMintAPI/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const claimResultOK = "ok"

type ClaimService struct {
	store        store.Store
	cache        *cache.Cache
	metrics      *metrics.Drop
	log          *zap.Logger
	recipient    string
	now          func() time.Time
	newReference func() (string, error)
}

// NewClaimService builds the claim processor. An empty recipient disables
// paid claims: every claim is confirmed on admission.
func NewClaimService(st store.Store, c *cache.Cache, m *metrics.Drop, log *zap.Logger, recipient string) (*ClaimService, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient != "" {
		if err := solanapay.ValidatePublicKey(recipient); err != nil {
			return nil, fmt.Errorf("invalid SOLANA_PAY_RECIPIENT: %w", err)
		}
	}

	return &ClaimService{
		store:        st,
		cache:        c,
		metrics:      m,
		log:          log.Named("claims"),
		recipient:    recipient,
		now:          time.Now,
		newReference: solanapay.NewReference,
	}, nil
}

func (s *ClaimService) SetClock(now func() time.Time) {
	s.now = now
}

// ClaimDrop admits a wallet to a drop. Every check and write happens in one
// transaction holding the drop row lock, so admission is serialized per drop.
func (s *ClaimService) ClaimDrop(ctx context.Context, req drop.ClaimRequest) (*drop.ClaimResult, error) {
	result, err := s.claim(ctx, req)
	if err != nil {
		if ce, ok := AsClaimError(err); ok {
			s.metrics.ClaimResult(string(ce.Code))
			return nil, err
		}
		s.metrics.ClaimResult("error")
		return nil, fmt.Errorf("failed to claim drop: %w", err)
	}

	s.metrics.ClaimResult(claimResultOK)
	s.cache.Delete(cache.KeyTodayDrop, cache.KeyLeaderboard)
	return result, nil
}

func (s *ClaimService) claim(ctx context.Context, req drop.ClaimRequest) (*drop.ClaimResult, error) {
	dropID, err := uuid.Parse(strings.TrimSpace(req.DropID))
	if err != nil {
		return nil, ErrDropNotFound
	}
	wallet := strings.TrimSpace(req.WalletAddress)

	var referrer *string
	if req.ReferrerWallet != nil {
		if r := strings.TrimSpace(*req.ReferrerWallet); r != "" {
			referrer = &r
		}
	}

	reference, err := s.newReference()
	if err != nil {
		return nil, err
	}

	var result *drop.ClaimResult
	err = s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		locked, err := tx.LockDrop(ctx, dropID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrDropNotFound
			}
			return err
		}

		now := s.now()
		if locked.Status == drop.StatusScheduled && !locked.StartAt.After(now) {
			if _, err := tx.MarkDropLive(ctx, locked.ID, now); err != nil {
				return err
			}
			locked.Status = drop.StatusLive
		}

		if locked.Status != drop.StatusLive && locked.Status != drop.StatusScheduled {
			return ErrDropNotLive
		}
		if !locked.InWindow(now) {
			return ErrDropOutsideWindow
		}
		if wallet == "" {
			return ErrWalletRequired
		}

		held, err := tx.WalletHasActiveClaim(ctx, locked.ID, wallet)
		if err != nil {
			return err
		}
		if held {
			return ErrLimitReached
		}

		claimed, err := tx.CountActiveClaims(ctx, locked.ID)
		if err != nil {
			return err
		}
		if claimed >= locked.SupplyAllocation {
			return ErrDropSoldOut
		}

		if locked.Deal.SupplyCap != nil {
			if err := tx.LockDeal(ctx, locked.DealID); err != nil {
				return err
			}
			dealClaimed, err := tx.CountDealClaims(ctx, locked.DealID)
			if err != nil {
				return err
			}
			if dealClaimed >= *locked.Deal.SupplyCap {
				return ErrDealSupplyExceeded
			}
		}

		user, err := tx.UpsertUserProfile(ctx, wallet)
		if err != nil {
			return err
		}

		prev, err := tx.LockStreak(ctx, user.ID)
		if err != nil {
			return err
		}
		next := NextStreak(*prev, now)
		if err := tx.SaveStreak(ctx, &next); err != nil {
			return err
		}

		paymentURL, err := s.paymentURL(locked, reference)
		if err != nil {
			return err
		}

		claim := &drop.Claim{
			ID:             uuid.New(),
			DropID:         locked.ID,
			UserID:         user.ID,
			WalletAddress:  wallet,
			ReferrerWallet: referrer,
			StreakSnapshot: next.CurrentStreak,
			Reference:      &reference,
			Status:         drop.ClaimConfirmed,
			ClaimedAt:      now,
		}
		if paymentURL != nil {
			claim.Status = drop.ClaimPending
		}

		if err := tx.InsertClaim(ctx, claim); err != nil {
			if errors.Is(err, store.ErrDuplicateClaim) {
				return ErrLimitReached
			}
			return err
		}

		if claim.Status == drop.ClaimConfirmed {
			coupon := &drop.Coupon{
				ID:          uuid.New(),
				DealID:      locked.DealID,
				ClaimID:     claim.ID,
				OwnerWallet: wallet,
				State:       drop.CouponActive,
				CreatedAt:   now,
			}
			if err := tx.IssueCoupon(ctx, coupon); err != nil {
				return err
			}
			claim.CouponID = &coupon.ID
		}

		if err := tx.IncrementDealClaims(ctx, locked.DealID, now); err != nil {
			return err
		}

		interaction := &drop.Interaction{
			ID:     uuid.New(),
			DealID: locked.DealID,
			UserID: user.ID,
			Type:   drop.InteractionClaim,
			Context: map[string]any{
				"dropId":    locked.ID.String(),
				"reference": reference,
			},
			CreatedAt: now,
		}
		if referrer != nil {
			interaction.Context["referrerWallet"] = *referrer
		}
		if err := tx.RecordInteraction(ctx, interaction); err != nil {
			return err
		}

		result = &drop.ClaimResult{
			Claim:         claim,
			PaymentURL:    paymentURL,
			CurrentStreak: next.CurrentStreak,
			LongestStreak: next.LongestStreak,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("drop claimed",
		zap.String("drop_id", dropID.String()),
		zap.String("claim_id", result.Claim.ID.String()),
		zap.String("wallet", wallet),
		zap.String("status", string(result.Claim.Status)),
		zap.Int("streak", result.CurrentStreak))

	return result, nil
}

// paymentURL is nil when the claim needs no on-chain payment.
func (s *ClaimService) paymentURL(d *drop.DropWithDeal, reference string) (*string, error) {
	if s.recipient == "" || !d.Deal.RequiresPayment() {
		return nil, nil
	}

	req := solanapay.PaymentRequest{
		Recipient: s.recipient,
		Reference: reference,
		Label:     d.Title,
		Memo:      d.Deal.Slug,
	}
	if d.Description != nil {
		req.Message = *d.Description
	}

	url, err := solanapay.BuildPaymentURL(req)
	if err != nil {
		return nil, fmt.Errorf("failed to build payment url: %w", err)
	}
	return &url, nil
}
