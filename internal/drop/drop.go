package drop

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusEnded     Status = "ended"
	StatusCancelled Status = "cancelled"
)

type ClaimStatus string

const (
	ClaimPending   ClaimStatus = "pending"
	ClaimConfirmed ClaimStatus = "confirmed"
	ClaimCancelled ClaimStatus = "cancelled"
	ClaimFailed    ClaimStatus = "failed"
)

// Active reports whether the claim counts against supply and the per-wallet limit.
func (s ClaimStatus) Active() bool {
	return s == ClaimPending || s == ClaimConfirmed
}

type CouponState string

const (
	CouponActive      CouponState = "active"
	CouponRedeemed    CouponState = "redeemed"
	CouponTransferred CouponState = "transferred"
)

type Deal struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	MerchantID    *uuid.UUID       `json:"merchant_id" db:"merchant_id"`
	Title         string           `json:"title" db:"title"`
	Slug          string           `json:"slug" db:"slug"`
	Summary       string           `json:"summary" db:"summary"`
	Description   string           `json:"description" db:"description"`
	HeroImageURL  *string          `json:"hero_image_url" db:"hero_image_url"`
	OriginalPrice *decimal.Decimal `json:"original_price" db:"original_price"`
	Currency      string           `json:"currency" db:"currency"`
	SupplyCap     *int             `json:"supply_cap" db:"supply_cap"`
	Status        string           `json:"status" db:"status"`
}

// RequiresPayment is true when the deal carries a positive original price.
func (d *Deal) RequiresPayment() bool {
	return d.OriginalPrice != nil && d.OriginalPrice.IsPositive()
}

type Drop struct {
	ID               uuid.UUID `json:"id" db:"id"`
	DealID           uuid.UUID `json:"deal_id" db:"deal_id"`
	Title            string    `json:"title" db:"title"`
	Description      *string   `json:"description" db:"description"`
	StartAt          time.Time `json:"start_at" db:"start_at"`
	EndAt            time.Time `json:"end_at" db:"end_at"`
	SupplyAllocation int       `json:"supply_allocation" db:"supply_allocation"`
	StreakMultiplier int       `json:"streak_multiplier" db:"streak_multiplier"`
	Status           Status    `json:"status" db:"status"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// InWindow reports whether now falls in [StartAt, EndAt).
func (d *Drop) InWindow(now time.Time) bool {
	return !d.StartAt.After(now) && now.Before(d.EndAt)
}

type DropWithDeal struct {
	Drop
	Deal Deal `json:"deal"`
}

type Claim struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	DropID         uuid.UUID   `json:"drop_id" db:"drop_id"`
	UserID         uuid.UUID   `json:"user_id" db:"user_id"`
	WalletAddress  string      `json:"wallet_address" db:"wallet_address"`
	ReferrerWallet *string     `json:"referrer_wallet" db:"referrer_wallet"`
	StreakSnapshot int         `json:"streak_snapshot" db:"streak_snapshot"`
	Reference      *string     `json:"reference" db:"reference"`
	Status         ClaimStatus `json:"status" db:"status"`
	TransactionSig *string     `json:"transaction_sig" db:"transaction_sig"`
	ClaimedAt      time.Time   `json:"claimed_at" db:"claimed_at"`
	CompletedAt    *time.Time  `json:"completed_at" db:"completed_at"`
	CouponID       *uuid.UUID  `json:"coupon_id" db:"coupon_id"`
}

// PendingClaim is a claim awaiting payment together with the deal it counts against.
type PendingClaim struct {
	Claim
	DealID uuid.UUID `json:"deal_id" db:"deal_id"`
}

type Coupon struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	DealID      uuid.UUID   `json:"deal_id" db:"deal_id"`
	ClaimID     uuid.UUID   `json:"claim_id" db:"claim_id"`
	OwnerWallet string      `json:"owner_wallet" db:"owner_wallet"`
	State       CouponState `json:"state" db:"state"`
	PaymentTx   *string     `json:"payment_tx" db:"payment_tx"`
	RedeemedAt  *time.Time  `json:"redeemed_at" db:"redeemed_at"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// Redeemed is true once the coupon has been used, whatever its state says.
func (c *Coupon) Redeemed() bool {
	return c.State == CouponRedeemed || c.RedeemedAt != nil
}

type CouponTransfer struct {
	ID         uuid.UUID `json:"id" db:"id"`
	CouponID   uuid.UUID `json:"coupon_id" db:"coupon_id"`
	FromWallet string    `json:"from_wallet" db:"from_wallet"`
	ToWallet   string    `json:"to_wallet" db:"to_wallet"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type UserProfile struct {
	ID            uuid.UUID `json:"id" db:"id"`
	WalletAddress string    `json:"wallet_address" db:"wallet_address"`
	Username      *string   `json:"username" db:"username"`
	AvatarURL     *string   `json:"avatar_url" db:"avatar_url"`
}

type Streak struct {
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	CurrentStreak int        `json:"current_streak" db:"current_streak"`
	LongestStreak int        `json:"longest_streak" db:"longest_streak"`
	LastClaimAt   *time.Time `json:"last_claim_at" db:"last_claim_at"`
}

type DealAnalytics struct {
	DealID            uuid.UUID  `json:"deal_id" db:"deal_id"`
	TotalClaims       int        `json:"total_claims" db:"total_claims"`
	TotalRedemptions  int        `json:"total_redemptions" db:"total_redemptions"`
	TotalTransfers    int        `json:"total_transfers" db:"total_transfers"`
	TotalViews        int        `json:"total_views" db:"total_views"`
	TotalFavorites    int        `json:"total_favorites" db:"total_favorites"`
	LastInteractionAt *time.Time `json:"last_interaction_at" db:"last_interaction_at"`
}

type InteractionType string

const (
	InteractionClaim    InteractionType = "claim"
	InteractionTransfer InteractionType = "transfer"
)

type Interaction struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	DealID    uuid.UUID       `json:"deal_id" db:"deal_id"`
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	Type      InteractionType `json:"type" db:"type"`
	Context   map[string]any  `json:"context" db:"context"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// ClaimDetail is a claim joined with its drop, deal and coupon.
type ClaimDetail struct {
	Claim  Claim   `json:"claim"`
	Drop   Drop    `json:"drop"`
	Deal   Deal    `json:"deal"`
	Coupon *Coupon `json:"coupon"`
}
