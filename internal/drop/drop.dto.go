package drop

import (
	"time"

	"github.com/google/uuid"
)

type ClaimRequest struct {
	DropID         string  `json:"dropId"`
	WalletAddress  string  `json:"walletAddress"`
	ReferrerWallet *string `json:"referrerWallet,omitempty"`
}

type ClaimResult struct {
	Claim         *Claim  `json:"claim"`
	PaymentURL    *string `json:"payment_url"`
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
}

type ClaimResponse struct {
	Claim struct {
		ID             uuid.UUID   `json:"id"`
		Status         ClaimStatus `json:"status"`
		Reference      *string     `json:"reference"`
		StreakSnapshot int         `json:"streakSnapshot"`
		PaymentURL     *string     `json:"paymentUrl"`
		CouponID       *uuid.UUID  `json:"couponId"`
	} `json:"claim"`
	Streak struct {
		Current int `json:"current"`
		Longest int `json:"longest"`
	} `json:"streak"`
}

func NewClaimResponse(res *ClaimResult) *ClaimResponse {
	out := &ClaimResponse{}
	out.Claim.ID = res.Claim.ID
	out.Claim.Status = res.Claim.Status
	out.Claim.Reference = res.Claim.Reference
	out.Claim.StreakSnapshot = res.Claim.StreakSnapshot
	out.Claim.PaymentURL = res.PaymentURL
	out.Claim.CouponID = res.Claim.CouponID
	out.Streak.Current = res.CurrentStreak
	out.Streak.Longest = res.LongestStreak
	return out
}

type LeaderboardEntry struct {
	Wallet string       `json:"wallet"`
	Streak int          `json:"streak"`
	User   *UserProfile `json:"user"`
}

type LeaderboardUser struct {
	ID            uuid.UUID `json:"id"`
	WalletAddress string    `json:"walletAddress"`
	Username      *string   `json:"username"`
	AvatarURL     *string   `json:"avatarUrl"`
}

type LeaderboardEntryResponse struct {
	Wallet string           `json:"wallet"`
	Streak int              `json:"streak"`
	User   *LeaderboardUser `json:"user"`
}

type LeaderboardResponse struct {
	Leaderboard []*LeaderboardEntryResponse `json:"leaderboard"`
}

func NewLeaderboardResponse(entries []*LeaderboardEntry) *LeaderboardResponse {
	out := &LeaderboardResponse{Leaderboard: make([]*LeaderboardEntryResponse, 0, len(entries))}
	for _, e := range entries {
		row := &LeaderboardEntryResponse{Wallet: e.Wallet, Streak: e.Streak}
		if e.User != nil {
			row.User = &LeaderboardUser{
				ID:            e.User.ID,
				WalletAddress: e.User.WalletAddress,
				Username:      e.User.Username,
				AvatarURL:     e.User.AvatarURL,
			}
		}
		out.Leaderboard = append(out.Leaderboard, row)
	}
	return out
}

type DealSummary struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Summary       string    `json:"summary"`
	Description   string    `json:"description"`
	HeroImageURL  *string   `json:"heroImageUrl"`
	OriginalPrice *float64  `json:"originalPrice"`
	Currency      string    `json:"currency"`
	SupplyCap     *int      `json:"supplyCap"`
}

type DropSummary struct {
	ID               uuid.UUID    `json:"id"`
	DealID           uuid.UUID    `json:"dealId"`
	Title            string       `json:"title"`
	Description      *string      `json:"description"`
	StartAt          time.Time    `json:"startAt"`
	EndAt            time.Time    `json:"endAt"`
	SupplyAllocation int          `json:"supplyAllocation"`
	StreakMultiplier int          `json:"streakMultiplier"`
	Status           Status       `json:"status"`
	Deal             *DealSummary `json:"deal,omitempty"`
}

func NewDealSummary(d *Deal) *DealSummary {
	out := &DealSummary{
		ID:           d.ID,
		Title:        d.Title,
		Slug:         d.Slug,
		Summary:      d.Summary,
		Description:  d.Description,
		HeroImageURL: d.HeroImageURL,
		Currency:     d.Currency,
		SupplyCap:    d.SupplyCap,
	}
	if d.OriginalPrice != nil {
		price := d.OriginalPrice.InexactFloat64()
		out.OriginalPrice = &price
	}
	return out
}

// NewDropSummary leaves Deal unset; NewDropWithDealSummary fills it.
func NewDropSummary(d *Drop) *DropSummary {
	return &DropSummary{
		ID:               d.ID,
		DealID:           d.DealID,
		Title:            d.Title,
		Description:      d.Description,
		StartAt:          d.StartAt,
		EndAt:            d.EndAt,
		SupplyAllocation: d.SupplyAllocation,
		StreakMultiplier: d.StreakMultiplier,
		Status:           d.Status,
	}
}

func NewDropWithDealSummary(d *DropWithDeal) *DropSummary {
	out := NewDropSummary(&d.Drop)
	out.Deal = NewDealSummary(&d.Deal)
	return out
}

type TodayResponse struct {
	Drop *DropSummary `json:"drop"`
}

func NewTodayResponse(d *DropWithDeal) *TodayResponse {
	if d == nil {
		return &TodayResponse{}
	}
	return &TodayResponse{Drop: NewDropWithDealSummary(d)}
}

type CouponView struct {
	ID          uuid.UUID   `json:"id"`
	DealID      uuid.UUID   `json:"dealId"`
	OwnerWallet string      `json:"ownerWallet"`
	State       CouponState `json:"state"`
	RedeemedAt  *time.Time  `json:"redeemedAt"`
}

func NewCouponView(c *Coupon) *CouponView {
	if c == nil {
		return nil
	}
	return &CouponView{
		ID:          c.ID,
		DealID:      c.DealID,
		OwnerWallet: c.OwnerWallet,
		State:       c.State,
		RedeemedAt:  c.RedeemedAt,
	}
}

type TransferCouponRequest struct {
	CouponID string `json:"couponId"`
	ToWallet string `json:"toWallet"`
}

type CouponTransferResponse struct {
	Coupon *CouponView `json:"coupon"`
}

// Verification is the claim view returned when looking up a payment reference.
type Verification struct {
	Verified       bool        `json:"verified"`
	Status         ClaimStatus `json:"status"`
	WalletAddress  string      `json:"walletAddress"`
	Drop           VerifyDrop  `json:"drop"`
	Coupon         *CouponView `json:"coupon"`
	TransactionSig *string     `json:"transactionSig"`
	ClaimedAt      time.Time   `json:"claimedAt"`
	CompletedAt    *time.Time  `json:"completedAt"`
}

type VerifyDrop struct {
	ID    uuid.UUID  `json:"id"`
	Title string     `json:"title"`
	Deal  VerifyDeal `json:"deal"`
}

type VerifyDeal struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`
}

type CreateDropRequest struct {
	DealID           string    `json:"dealId"`
	Title            string    `json:"title"`
	Description      *string   `json:"description,omitempty"`
	StartAt          time.Time `json:"startAt"`
	EndAt            time.Time `json:"endAt"`
	SupplyAllocation int       `json:"supplyAllocation"`
	StreakMultiplier int       `json:"streakMultiplier"`
}

type SweepResult struct {
	Processed int `json:"processed"`
	Confirmed int `json:"confirmed"`
}
