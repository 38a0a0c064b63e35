package store

import (
	"context"
	"errors"
	"time"

	"dealMintAPI/internal/drop"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateClaim is returned by InsertClaim when the wallet already
	// holds a pending or confirmed claim on the drop.
	ErrDuplicateClaim = errors.New("wallet already holds an active claim for this drop")
)

// Store is the persistent store behind the drop claim lifecycle. Reads run
// outside a transaction; every write that touches claim admission, streaks or
// analytics goes through InTx.
type Store interface {
	// InTx runs fn atomically. The transaction commits when fn returns nil and
	// rolls back otherwise.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// FindActiveDrop returns the most recently started non-cancelled drop whose
	// window contains now, or nil when there is none.
	FindActiveDrop(ctx context.Context, now time.Time) (*drop.DropWithDeal, error)
	MarkDropLive(ctx context.Context, dropID uuid.UUID, now time.Time) (bool, error)

	// PendingClaims returns up to limit pending claims carrying a reference,
	// oldest first.
	PendingClaims(ctx context.Context, limit int) ([]*drop.PendingClaim, error)
	ClaimByReference(ctx context.Context, reference string) (*drop.ClaimDetail, error)
	Leaderboard(ctx context.Context, limit int) ([]*drop.LeaderboardEntry, error)

	Ping(ctx context.Context) error
	Close()
}

// Tx is the set of operations available inside Store.InTx.
type Tx interface {
	// LockDrop loads the drop and its deal and holds a row lock on the drop
	// until the transaction ends.
	LockDrop(ctx context.Context, dropID uuid.UUID) (*drop.DropWithDeal, error)
	MarkDropLive(ctx context.Context, dropID uuid.UUID, now time.Time) (bool, error)
	CreateDrop(ctx context.Context, d *drop.Drop) error
	CancelDrop(ctx context.Context, dropID uuid.UUID, now time.Time) (bool, error)

	// LockDeal holds a row lock on the deal until the transaction ends. Claims
	// on different drops of a capped deal serialize on it.
	LockDeal(ctx context.Context, dealID uuid.UUID) error
	GetDeal(ctx context.Context, dealID uuid.UUID) (*drop.Deal, error)
	GetDealBySlug(ctx context.Context, slug string) (*drop.Deal, error)
	// UpsertDeal inserts the deal unless one with the same slug exists and
	// returns the stored row.
	UpsertDeal(ctx context.Context, d *drop.Deal) (*drop.Deal, error)

	WalletHasActiveClaim(ctx context.Context, dropID uuid.UUID, wallet string) (bool, error)
	CountActiveClaims(ctx context.Context, dropID uuid.UUID) (int, error)
	CountDealClaims(ctx context.Context, dealID uuid.UUID) (int, error)
	InsertClaim(ctx context.Context, c *drop.Claim) error
	// ConfirmClaim moves a pending claim to confirmed. It reports false when
	// the claim was no longer pending.
	ConfirmClaim(ctx context.Context, claimID uuid.UUID, signature string, at time.Time) (bool, error)

	UpsertUserProfile(ctx context.Context, wallet string) (*drop.UserProfile, error)
	// LockStreak returns the user's streak row, creating a zero row if needed,
	// and locks it until the transaction ends.
	LockStreak(ctx context.Context, userID uuid.UUID) (*drop.Streak, error)
	SaveStreak(ctx context.Context, s *drop.Streak) error

	// IssueCoupon stores the coupon and links it to its claim.
	IssueCoupon(ctx context.Context, c *drop.Coupon) error
	RedeemCoupon(ctx context.Context, couponID uuid.UUID, signature string, at time.Time) error
	// LockCoupon loads the coupon and holds a row lock on it until the
	// transaction ends.
	LockCoupon(ctx context.Context, couponID uuid.UUID) (*drop.Coupon, error)
	// TransferCoupon hands the coupon to tr.ToWallet, marks it transferred and
	// stores the transfer record.
	TransferCoupon(ctx context.Context, tr *drop.CouponTransfer) error

	IncrementDealClaims(ctx context.Context, dealID uuid.UUID, at time.Time) error
	IncrementDealRedemptions(ctx context.Context, dealID uuid.UUID, at time.Time) error
	IncrementDealTransfers(ctx context.Context, dealID uuid.UUID, at time.Time) error
	RecordInteraction(ctx context.Context, in *drop.Interaction) error
}
