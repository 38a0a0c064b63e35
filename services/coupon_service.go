package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dealMintAPI/internal/drop"
	"dealMintAPI/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidTransfer = errors.New("invalid coupon transfer")
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrCouponRedeemed  = errors.New("coupon already redeemed")
)

type CouponService struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewCouponService(st store.Store, log *zap.Logger) *CouponService {
	return &CouponService{
		store: st,
		log:   log.Named("coupons"),
		now:   time.Now,
	}
}

func (s *CouponService) SetClock(now func() time.Time) {
	s.now = now
}

// Transfer hands an unredeemed coupon to another wallet. The ownership change,
// the transfer record, the analytics counter and the interaction commit together.
func (s *CouponService) Transfer(ctx context.Context, req drop.TransferCouponRequest) (*drop.Coupon, error) {
	toWallet := strings.TrimSpace(req.ToWallet)
	if toWallet == "" {
		return nil, fmt.Errorf("%w: toWallet is required", ErrInvalidTransfer)
	}
	couponID, err := uuid.Parse(strings.TrimSpace(req.CouponID))
	if err != nil {
		return nil, ErrCouponNotFound
	}

	var transferred *drop.Coupon
	err = s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		coupon, err := tx.LockCoupon(ctx, couponID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrCouponNotFound
			}
			return err
		}
		if coupon.Redeemed() {
			return ErrCouponRedeemed
		}
		if coupon.OwnerWallet == toWallet {
			return fmt.Errorf("%w: coupon already belongs to %s", ErrInvalidTransfer, toWallet)
		}

		now := s.now()
		record := &drop.CouponTransfer{
			ID:         uuid.New(),
			CouponID:   coupon.ID,
			FromWallet: coupon.OwnerWallet,
			ToWallet:   toWallet,
			CreatedAt:  now,
		}
		if err := tx.TransferCoupon(ctx, record); err != nil {
			return err
		}

		if err := tx.IncrementDealTransfers(ctx, coupon.DealID, now); err != nil {
			return err
		}

		sender, err := tx.UpsertUserProfile(ctx, coupon.OwnerWallet)
		if err != nil {
			return err
		}
		interaction := &drop.Interaction{
			ID:     uuid.New(),
			DealID: coupon.DealID,
			UserID: sender.ID,
			Type:   drop.InteractionTransfer,
			Context: map[string]any{
				"couponId":   coupon.ID.String(),
				"fromWallet": coupon.OwnerWallet,
				"toWallet":   toWallet,
			},
			CreatedAt: now,
		}
		if err := tx.RecordInteraction(ctx, interaction); err != nil {
			return err
		}

		coupon.OwnerWallet = toWallet
		coupon.State = drop.CouponTransferred
		transferred = coupon
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) || errors.Is(err, ErrCouponRedeemed) || errors.Is(err, ErrInvalidTransfer) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to transfer coupon: %w", err)
	}

	s.log.Info("coupon transferred",
		zap.String("coupon_id", transferred.ID.String()),
		zap.String("to_wallet", toWallet),
	)
	return transferred, nil
}
