package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealMintAPI/internal/drop"
	"dealMintAPI/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (t *txStore) UpsertUserProfile(ctx context.Context, wallet string) (*drop.UserProfile, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `
	INSERT INTO user_profiles (id, wallet_address)
	VALUES ($1, $2)
	ON CONFLICT (wallet_address)
	DO UPDATE SET wallet_address = EXCLUDED.wallet_address
	RETURNING id, wallet_address, username, avatar_url
	`

	profile := &drop.UserProfile{}
	err := t.tx.QueryRow(ctx, query, uuid.New(), wallet).Scan(
		&profile.ID,
		&profile.WalletAddress,
		&profile.Username,
		&profile.AvatarURL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user profile: %w", err)
	}
	return profile, nil
}

func (t *txStore) LockStreak(ctx context.Context, userID uuid.UUID) (*drop.Streak, error) {
	_, err := t.tx.Exec(ctx, `
	INSERT INTO user_streaks (user_id) VALUES ($1)
	ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create streak: %w", err)
	}

	query := `
	SELECT user_id, current_streak, longest_streak, last_claim_at
	FROM user_streaks
	WHERE user_id = $1
	FOR UPDATE
	`

	streak := &drop.Streak{}
	err = t.tx.QueryRow(ctx, query, userID).Scan(
		&streak.UserID,
		&streak.CurrentStreak,
		&streak.LongestStreak,
		&streak.LastClaimAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to lock streak: %w", err)
	}
	return streak, nil
}

func (t *txStore) SaveStreak(ctx context.Context, s *drop.Streak) error {
	query := `
	UPDATE user_streaks
	SET current_streak = $2, longest_streak = $3, last_claim_at = $4, updated_at = NOW()
	WHERE user_id = $1
	`

	_, err := t.tx.Exec(ctx, query, s.UserID, s.CurrentStreak, s.LongestStreak, s.LastClaimAt)
	if err != nil {
		return fmt.Errorf("failed to save streak: %w", err)
	}
	return nil
}

func (t *txStore) IssueCoupon(ctx context.Context, c *drop.Coupon) error {
	insert := `
	INSERT INTO deal_coupons (id, deal_id, claim_id, owner_wallet, state, payment_tx, redeemed_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := t.tx.Exec(ctx, insert,
		c.ID,
		c.DealID,
		c.ClaimID,
		c.OwnerWallet,
		string(c.State),
		c.PaymentTx,
		c.RedeemedAt,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to issue coupon: %w", err)
	}

	if _, err := t.tx.Exec(ctx, `UPDATE drop_claims SET coupon_id = $1 WHERE id = $2`, c.ID, c.ClaimID); err != nil {
		return fmt.Errorf("failed to link coupon to claim: %w", err)
	}
	return nil
}

func (t *txStore) RedeemCoupon(ctx context.Context, couponID uuid.UUID, signature string, at time.Time) error {
	query := `
	UPDATE deal_coupons
	SET state = 'redeemed', payment_tx = $2, redeemed_at = $3
	WHERE id = $1
	`

	if _, err := t.tx.Exec(ctx, query, couponID, signature, at); err != nil {
		return fmt.Errorf("failed to redeem coupon: %w", err)
	}
	return nil
}

func (t *txStore) LockCoupon(ctx context.Context, couponID uuid.UUID) (*drop.Coupon, error) {
	query := `
	SELECT id, deal_id, claim_id, owner_wallet, state, payment_tx, redeemed_at, created_at
	FROM deal_coupons
	WHERE id = $1
	FOR UPDATE
	`

	var state string
	c := &drop.Coupon{}
	err := t.tx.QueryRow(ctx, query, couponID).Scan(
		&c.ID,
		&c.DealID,
		&c.ClaimID,
		&c.OwnerWallet,
		&state,
		&c.PaymentTx,
		&c.RedeemedAt,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock coupon: %w", err)
	}
	c.State = drop.CouponState(state)
	return c, nil
}

func (t *txStore) TransferCoupon(ctx context.Context, tr *drop.CouponTransfer) error {
	update := `
	UPDATE deal_coupons
	SET owner_wallet = $2, state = 'transferred'
	WHERE id = $1
	`

	tag, err := t.tx.Exec(ctx, update, tr.CouponID, tr.ToWallet)
	if err != nil {
		return fmt.Errorf("failed to transfer coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	insert := `
	INSERT INTO coupon_transfers (id, coupon_id, from_wallet, to_wallet, created_at)
	VALUES ($1, $2, $3, $4, $5)
	`

	_, err = t.tx.Exec(ctx, insert, tr.ID, tr.CouponID, tr.FromWallet, tr.ToWallet, tr.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record coupon transfer: %w", err)
	}
	return nil
}

func (t *txStore) IncrementDealClaims(ctx context.Context, dealID uuid.UUID, at time.Time) error {
	query := `
	INSERT INTO deal_analytics (deal_id, total_claims, last_interaction_at)
	VALUES ($1, 1, $2)
	ON CONFLICT (deal_id)
	DO UPDATE SET
		total_claims = deal_analytics.total_claims + 1,
		last_interaction_at = $2
	`

	if _, err := t.tx.Exec(ctx, query, dealID, at); err != nil {
		return fmt.Errorf("failed to increment deal claims: %w", err)
	}
	return nil
}

func (t *txStore) IncrementDealRedemptions(ctx context.Context, dealID uuid.UUID, at time.Time) error {
	query := `
	INSERT INTO deal_analytics (deal_id, total_redemptions, last_interaction_at)
	VALUES ($1, 1, $2)
	ON CONFLICT (deal_id)
	DO UPDATE SET
		total_redemptions = deal_analytics.total_redemptions + 1,
		last_interaction_at = $2
	`

	if _, err := t.tx.Exec(ctx, query, dealID, at); err != nil {
		return fmt.Errorf("failed to increment deal redemptions: %w", err)
	}
	return nil
}

func (t *txStore) IncrementDealTransfers(ctx context.Context, dealID uuid.UUID, at time.Time) error {
	query := `
	INSERT INTO deal_analytics (deal_id, total_transfers, last_interaction_at)
	VALUES ($1, 1, $2)
	ON CONFLICT (deal_id)
	DO UPDATE SET
		total_transfers = deal_analytics.total_transfers + 1,
		last_interaction_at = $2
	`

	if _, err := t.tx.Exec(ctx, query, dealID, at); err != nil {
		return fmt.Errorf("failed to increment deal transfers: %w", err)
	}
	return nil
}

func (t *txStore) RecordInteraction(ctx context.Context, in *drop.Interaction) error {
	query := `
	INSERT INTO deal_interactions (id, deal_id, user_id, type, context, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := t.tx.Exec(ctx, query, in.ID, in.DealID, in.UserID, string(in.Type), in.Context, in.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record interaction: %w", err)
	}
	return nil
}
