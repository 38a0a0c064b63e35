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
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation         = "23505"
	activeWalletClaimsIndex = "drop_claims_active_wallet_idx"
)

const claimColumns = `
	c.id, c.drop_id, c.user_id, c.wallet_address, c.referrer_wallet, c.streak_snapshot,
	c.reference, c.status, c.transaction_sig, c.claimed_at, c.completed_at, c.coupon_id`

func claimScanTargets(c *drop.Claim, status *string) []any {
	return []any{
		&c.ID,
		&c.DropID,
		&c.UserID,
		&c.WalletAddress,
		&c.ReferrerWallet,
		&c.StreakSnapshot,
		&c.Reference,
		status,
		&c.TransactionSig,
		&c.ClaimedAt,
		&c.CompletedAt,
		&c.CouponID,
	}
}

func (t *txStore) WalletHasActiveClaim(ctx context.Context, dropID uuid.UUID, wallet string) (bool, error) {
	query := `
	SELECT EXISTS (
		SELECT 1 FROM drop_claims
		WHERE drop_id = $1 AND wallet_address = $2 AND status IN ('pending', 'confirmed')
	)
	`

	var exists bool
	if err := t.tx.QueryRow(ctx, query, dropID, wallet).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check wallet claim: %w", err)
	}
	return exists, nil
}

func (t *txStore) CountActiveClaims(ctx context.Context, dropID uuid.UUID) (int, error) {
	query := `
	SELECT COUNT(*) FROM drop_claims
	WHERE drop_id = $1 AND status IN ('pending', 'confirmed')
	`

	var count int
	if err := t.tx.QueryRow(ctx, query, dropID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count drop claims: %w", err)
	}
	return count, nil
}

func (t *txStore) CountDealClaims(ctx context.Context, dealID uuid.UUID) (int, error) {
	query := `
	SELECT COUNT(*)
	FROM drop_claims c
	JOIN daily_drops d ON d.id = c.drop_id
	WHERE d.deal_id = $1 AND c.status IN ('pending', 'confirmed')
	`

	var count int
	if err := t.tx.QueryRow(ctx, query, dealID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count deal claims: %w", err)
	}
	return count, nil
}

func (t *txStore) InsertClaim(ctx context.Context, c *drop.Claim) error {
	query := `
	INSERT INTO drop_claims (
		id, drop_id, user_id, wallet_address, referrer_wallet, streak_snapshot,
		reference, status, transaction_sig, claimed_at, completed_at, coupon_id
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := t.tx.Exec(ctx, query,
		c.ID,
		c.DropID,
		c.UserID,
		c.WalletAddress,
		c.ReferrerWallet,
		c.StreakSnapshot,
		c.Reference,
		string(c.Status),
		c.TransactionSig,
		c.ClaimedAt,
		c.CompletedAt,
		c.CouponID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == activeWalletClaimsIndex {
			return store.ErrDuplicateClaim
		}
		return fmt.Errorf("failed to insert claim: %w", err)
	}
	return nil
}

func (t *txStore) ConfirmClaim(ctx context.Context, claimID uuid.UUID, signature string, at time.Time) (bool, error) {
	query := `
	UPDATE drop_claims
	SET status = 'confirmed', transaction_sig = $2, completed_at = $3
	WHERE id = $1 AND status = 'pending'
	`

	tag, err := t.tx.Exec(ctx, query, claimID, signature, at)
	if err != nil {
		return false, fmt.Errorf("failed to confirm claim: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) PendingClaims(ctx context.Context, limit int) ([]*drop.PendingClaim, error) {
	query := `
	SELECT ` + claimColumns + `, d.deal_id
	FROM drop_claims c
	JOIN daily_drops d ON d.id = c.drop_id
	WHERE c.status = 'pending' AND c.reference IS NOT NULL
	ORDER BY c.claimed_at ASC
	LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending claims: %w", err)
	}
	defer rows.Close()

	var pending []*drop.PendingClaim
	for rows.Next() {
		var (
			claim  drop.PendingClaim
			status string
		)
		targets := append(claimScanTargets(&claim.Claim, &status), &claim.DealID)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan pending claim: %w", err)
		}
		claim.Status = drop.ClaimStatus(status)
		pending = append(pending, &claim)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pending, nil
}

func (s *Store) ClaimByReference(ctx context.Context, reference string) (*drop.ClaimDetail, error) {
	query := `
	SELECT ` + claimColumns + `,` + dropColumns + `,` + dealColumns + `,
		cp.id, cp.deal_id, cp.claim_id, cp.owner_wallet, cp.state, cp.payment_tx, cp.redeemed_at, cp.created_at
	FROM drop_claims c
	JOIN daily_drops d ON d.id = c.drop_id
	JOIN deals dl ON dl.id = d.deal_id
	LEFT JOIN deal_coupons cp ON cp.id = c.coupon_id
	WHERE c.reference = $1
	`

	var (
		detail      drop.ClaimDetail
		claimStatus string
		dropStatus  string
		price       *string

		couponID      *uuid.UUID
		couponDealID  *uuid.UUID
		couponClaimID *uuid.UUID
		couponOwner   *string
		couponState   *string
		couponTx      *string
		couponRedeem  *time.Time
		couponCreated *time.Time
	)

	targets := claimScanTargets(&detail.Claim, &claimStatus)
	targets = append(targets, dropScanTargets(&detail.Drop, &dropStatus)...)
	targets = append(targets, dealScanTargets(&detail.Deal, &price)...)
	targets = append(targets,
		&couponID, &couponDealID, &couponClaimID, &couponOwner,
		&couponState, &couponTx, &couponRedeem, &couponCreated,
	)

	if err := s.pool.QueryRow(ctx, query, reference).Scan(targets...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find claim by reference: %w", err)
	}

	detail.Claim.Status = drop.ClaimStatus(claimStatus)
	detail.Drop.Status = drop.Status(dropStatus)
	if err := parsePrice(&detail.Deal, price); err != nil {
		return nil, err
	}

	if couponID != nil {
		detail.Coupon = &drop.Coupon{
			ID:          *couponID,
			DealID:      *couponDealID,
			ClaimID:     *couponClaimID,
			OwnerWallet: *couponOwner,
			State:       drop.CouponState(*couponState),
			PaymentTx:   couponTx,
			RedeemedAt:  couponRedeem,
			CreatedAt:   *couponCreated,
		}
	}

	return &detail, nil
}

func (s *Store) Leaderboard(ctx context.Context, limit int) ([]*drop.LeaderboardEntry, error) {
	query := `
	SELECT
		COALESCE(NULLIF(c.wallet_address, ''), u.wallet_address, 'unknown') AS wallet,
		c.streak_snapshot,
		u.id,
		u.wallet_address,
		u.username,
		u.avatar_url
	FROM drop_claims c
	LEFT JOIN user_profiles u ON u.id = c.user_id
	WHERE c.status = 'confirmed'
	ORDER BY c.streak_snapshot DESC, c.claimed_at ASC
	LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []*drop.LeaderboardEntry{}
	for rows.Next() {
		var (
			entry      drop.LeaderboardEntry
			userID     *uuid.UUID
			userWallet *string
			username   *string
			avatarURL  *string
		)
		if err := rows.Scan(&entry.Wallet, &entry.Streak, &userID, &userWallet, &username, &avatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		if userID != nil {
			entry.User = &drop.UserProfile{
				ID:        *userID,
				Username:  username,
				AvatarURL: avatarURL,
			}
			if userWallet != nil {
				entry.User.WalletAddress = *userWallet
			}
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
