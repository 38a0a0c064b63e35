package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dealMintAPI/internal/cache"
	"dealMintAPI/internal/drop"
	"dealMintAPI/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// ErrInvalidDrop wraps every validation failure of drop provisioning.
var ErrInvalidDrop = errors.New("invalid drop")

type DropService struct {
	store store.Store
	cache *cache.Cache
	log   *zap.Logger
	now   func() time.Time
}

func NewDropService(st store.Store, c *cache.Cache, log *zap.Logger) *DropService {
	return &DropService{
		store: st,
		cache: c,
		log:   log.Named("drops"),
		now:   time.Now,
	}
}

func (s *DropService) SetClock(now func() time.Time) {
	s.now = now
}

// GetActiveDrop returns the drop whose window contains the current time, or
// nil when there is none. A scheduled drop is promoted to live on the way out.
func (s *DropService) GetActiveDrop(ctx context.Context) (*drop.DropWithDeal, error) {
	now := s.now()

	active, err := s.store.FindActiveDrop(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get active drop: %w", err)
	}
	if active == nil {
		return nil, nil
	}

	if _, err := s.EnsureLive(ctx, &active.Drop); err != nil {
		return nil, err
	}
	if active.Status == drop.StatusScheduled {
		// The conditional update lost to another writer, which may have
		// cancelled the drop. Read the row again instead of trusting the snapshot.
		active, err = s.store.FindActiveDrop(ctx, now)
		if err != nil {
			return nil, fmt.Errorf("failed to get active drop: %w", err)
		}
	}
	return active, nil
}

// EnsureLive moves a scheduled drop whose start has passed to live with a
// single conditional update. It reports whether this call made the change.
func (s *DropService) EnsureLive(ctx context.Context, d *drop.Drop) (bool, error) {
	now := s.now()
	if d.Status != drop.StatusScheduled || d.StartAt.After(now) {
		return false, nil
	}

	changed, err := s.store.MarkDropLive(ctx, d.ID, now)
	if err != nil {
		return false, fmt.Errorf("failed to mark drop %s live: %w", d.ID, err)
	}

	if changed {
		d.Status = drop.StatusLive
		d.UpdatedAt = now
		s.log.Info("drop is live", zap.String("drop_id", d.ID.String()))
	}
	return changed, nil
}

func (s *DropService) CreateDrop(ctx context.Context, req drop.CreateDropRequest) (*drop.Drop, error) {
	dealID, err := uuid.Parse(strings.TrimSpace(req.DealID))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid deal id %q", ErrInvalidDrop, req.DealID)
	}
	if req.SupplyAllocation <= 0 {
		return nil, fmt.Errorf("%w: supply allocation must be positive", ErrInvalidDrop)
	}
	if !req.EndAt.After(req.StartAt) {
		return nil, fmt.Errorf("%w: endAt must be after startAt", ErrInvalidDrop)
	}
	if req.StreakMultiplier < 0 {
		return nil, fmt.Errorf("%w: streak multiplier must not be negative", ErrInvalidDrop)
	}

	now := s.now()
	created := &drop.Drop{
		ID:               uuid.New(),
		DealID:           dealID,
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		StartAt:          req.StartAt.UTC(),
		EndAt:            req.EndAt.UTC(),
		SupplyAllocation: req.SupplyAllocation,
		StreakMultiplier: req.StreakMultiplier,
		Status:           drop.StatusScheduled,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if created.StreakMultiplier == 0 {
		created.StreakMultiplier = 1
	}

	err = s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		deal, err := tx.GetDeal(ctx, dealID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: deal %s not found", ErrInvalidDrop, dealID)
			}
			return err
		}
		if created.Title == "" {
			created.Title = deal.Title
		}
		return tx.CreateDrop(ctx, created)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create drop: %w", err)
	}

	s.invalidate()
	s.log.Info("drop created",
		zap.String("drop_id", created.ID.String()),
		zap.String("deal_id", dealID.String()),
		zap.Time("start_at", created.StartAt),
		zap.Time("end_at", created.EndAt),
		zap.Int("supply", created.SupplyAllocation))

	return created, nil
}

type DemoDropOptions struct {
	DealSlug string
	Supply   int
	Hours    int
}

// CreateDemoDrop provisions a drop that is open from one minute ago for the
// given number of hours. Without a known deal slug it uses a free demo deal.
func (s *DropService) CreateDemoDrop(ctx context.Context, opts DemoDropOptions) (*drop.DropWithDeal, error) {
	opts.Supply = max(opts.Supply, 1)
	opts.Hours = max(opts.Hours, 1)

	var deal *drop.Deal
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		if opts.DealSlug != "" {
			deal, err = tx.GetDealBySlug(ctx, opts.DealSlug)
			if err == nil {
				return nil
			}
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			s.log.Warn("deal not found, using demo deal", zap.String("slug", opts.DealSlug))
		}
		deal, err = tx.UpsertDeal(ctx, demoDeal())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve demo deal: %w", err)
	}

	now := s.now()
	description := deal.Summary
	created, err := s.CreateDrop(ctx, drop.CreateDropRequest{
		DealID:           deal.ID.String(),
		Title:            deal.Title + " – Today's Drop",
		Description:      &description,
		StartAt:          now.Add(-time.Minute),
		EndAt:            now.Add(time.Duration(opts.Hours) * time.Hour),
		SupplyAllocation: opts.Supply,
		StreakMultiplier: 1,
	})
	if err != nil {
		return nil, err
	}
	return &drop.DropWithDeal{Drop: *created, Deal: *deal}, nil
}

func demoDeal() *drop.Deal {
	supplyCap := 250
	heroImage := "https://images.unsplash.com/photo-1447933601403-0c6688de566e"
	return &drop.Deal{
		ID:           uuid.New(),
		Title:        "Lifetime Espresso Protocol Pass",
		Slug:         "monkedao-espresso-protocol",
		Summary:      "Unlimited single-origin espresso shots + DAO governance badge.",
		Description:  "Own a pass that unlocks lifetime espresso at MonkeDAO Coffee Lab, monthly member tastings, and on-chain governance over seasonal roasts.",
		HeroImageURL: &heroImage,
		Currency:     "USD",
		SupplyCap:    &supplyCap,
		Status:       "active",
	}
}

// CancelDrop cancels a scheduled or live drop. Existing claims are kept.
func (s *DropService) CancelDrop(ctx context.Context, dropID uuid.UUID) error {
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.LockDrop(ctx, dropID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrDropNotFound
			}
			return err
		}

		cancelled, err := tx.CancelDrop(ctx, dropID, s.now())
		if err != nil {
			return err
		}
		if !cancelled {
			return ErrDropNotLive
		}
		return nil
	})
	if err != nil {
		if _, ok := AsClaimError(err); ok {
			return err
		}
		return fmt.Errorf("failed to cancel drop %s: %w", dropID, err)
	}

	s.invalidate()
	s.log.Info("drop cancelled", zap.String("drop_id", dropID.String()))
	return nil
}

// GetDropLeaderboard ranks confirmed claims by their streak snapshot.
func (s *DropService) GetDropLeaderboard(ctx context.Context, limit int) ([]*drop.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	limit = min(limit, MaxLeaderboardLimit)

	entries, err := s.store.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get drop leaderboard: %w", err)
	}
	return entries, nil
}

// VerifyClaim looks up a claim by payment reference. An unknown reference
// yields nil and no error.
func (s *DropService) VerifyClaim(ctx context.Context, reference string) (*drop.Verification, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}

	detail, err := s.store.ClaimByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to verify claim: %w", err)
	}

	return &drop.Verification{
		Verified:      detail.Claim.Status == drop.ClaimConfirmed,
		Status:        detail.Claim.Status,
		WalletAddress: detail.Claim.WalletAddress,
		Drop: drop.VerifyDrop{
			ID:    detail.Drop.ID,
			Title: detail.Drop.Title,
			Deal: drop.VerifyDeal{
				ID:    detail.Deal.ID,
				Title: detail.Deal.Title,
				Slug:  detail.Deal.Slug,
			},
		},
		Coupon:         drop.NewCouponView(detail.Coupon),
		TransactionSig: detail.Claim.TransactionSig,
		ClaimedAt:      detail.Claim.ClaimedAt,
		CompletedAt:    detail.Claim.CompletedAt,
	}, nil
}

func (s *DropService) invalidate() {
	s.cache.Delete(cache.KeyTodayDrop, cache.KeyLeaderboard)
}
