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
	"github.com/shopspring/decimal"
)

const dealColumns = `
	dl.id, dl.merchant_id, dl.title, dl.slug, dl.summary, dl.description,
	dl.hero_image_url, dl.original_price::text, dl.currency, dl.supply_cap, dl.status`

const dropColumns = `
	d.id, d.deal_id, d.title, d.description, d.start_at, d.end_at,
	d.supply_allocation, d.streak_multiplier, d.status, d.created_at, d.updated_at`

func dealScanTargets(deal *drop.Deal, price **string) []any {
	return []any{
		&deal.ID,
		&deal.MerchantID,
		&deal.Title,
		&deal.Slug,
		&deal.Summary,
		&deal.Description,
		&deal.HeroImageURL,
		price,
		&deal.Currency,
		&deal.SupplyCap,
		&deal.Status,
	}
}

func dropScanTargets(d *drop.Drop, status *string) []any {
	return []any{
		&d.ID,
		&d.DealID,
		&d.Title,
		&d.Description,
		&d.StartAt,
		&d.EndAt,
		&d.SupplyAllocation,
		&d.StreakMultiplier,
		status,
		&d.CreatedAt,
		&d.UpdatedAt,
	}
}

func parsePrice(deal *drop.Deal, price *string) error {
	if price == nil {
		deal.OriginalPrice = nil
		return nil
	}
	value, err := decimal.NewFromString(*price)
	if err != nil {
		return fmt.Errorf("invalid original price %q: %w", *price, err)
	}
	deal.OriginalPrice = &value
	return nil
}

func scanDropWithDeal(row pgx.Row) (*drop.DropWithDeal, error) {
	var (
		out    drop.DropWithDeal
		status string
		price  *string
	)
	targets := append(dropScanTargets(&out.Drop, &status), dealScanTargets(&out.Deal, &price)...)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	out.Status = drop.Status(status)
	if err := parsePrice(&out.Deal, price); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) FindActiveDrop(ctx context.Context, now time.Time) (*drop.DropWithDeal, error) {
	query := `
	SELECT ` + dropColumns + `,` + dealColumns + `
	FROM daily_drops d
	JOIN deals dl ON dl.id = d.deal_id
	WHERE d.start_at <= $1
	  AND d.end_at > $1
	  AND d.status <> 'cancelled'
	ORDER BY d.start_at DESC
	LIMIT 1
	`

	active, err := scanDropWithDeal(s.pool.QueryRow(ctx, query, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active drop: %w", err)
	}
	return active, nil
}

func markDropLive(ctx context.Context, q querier, dropID uuid.UUID, now time.Time) (bool, error) {
	query := `
	UPDATE daily_drops
	SET status = 'live', updated_at = $2
	WHERE id = $1 AND status = 'scheduled' AND start_at <= $2
	`

	tag, err := q.Exec(ctx, query, dropID, now)
	if err != nil {
		return false, fmt.Errorf("failed to mark drop live: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) MarkDropLive(ctx context.Context, dropID uuid.UUID, now time.Time) (bool, error) {
	return markDropLive(ctx, s.pool, dropID, now)
}

func (t *txStore) MarkDropLive(ctx context.Context, dropID uuid.UUID, now time.Time) (bool, error) {
	return markDropLive(ctx, t.tx, dropID, now)
}

func (t *txStore) LockDrop(ctx context.Context, dropID uuid.UUID) (*drop.DropWithDeal, error) {
	query := `
	SELECT ` + dropColumns + `,` + dealColumns + `
	FROM daily_drops d
	JOIN deals dl ON dl.id = d.deal_id
	WHERE d.id = $1
	FOR UPDATE OF d
	`

	locked, err := scanDropWithDeal(t.tx.QueryRow(ctx, query, dropID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock drop: %w", err)
	}
	return locked, nil
}

func (t *txStore) LockDeal(ctx context.Context, dealID uuid.UUID) error {
	var one int
	err := t.tx.QueryRow(ctx, `SELECT 1 FROM deals WHERE id = $1 FOR UPDATE`, dealID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to lock deal: %w", err)
	}
	return nil
}

func (t *txStore) CreateDrop(ctx context.Context, d *drop.Drop) error {
	query := `
	INSERT INTO daily_drops (
		id, deal_id, title, description, start_at, end_at,
		supply_allocation, streak_multiplier, status, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := t.tx.Exec(ctx, query,
		d.ID,
		d.DealID,
		d.Title,
		d.Description,
		d.StartAt,
		d.EndAt,
		d.SupplyAllocation,
		d.StreakMultiplier,
		string(d.Status),
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create drop: %w", err)
	}
	return nil
}

func (t *txStore) CancelDrop(ctx context.Context, dropID uuid.UUID, now time.Time) (bool, error) {
	query := `
	UPDATE daily_drops
	SET status = 'cancelled', updated_at = $2
	WHERE id = $1 AND status IN ('scheduled', 'live')
	`

	tag, err := t.tx.Exec(ctx, query, dropID, now)
	if err != nil {
		return false, fmt.Errorf("failed to cancel drop: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanDeal(row pgx.Row) (*drop.Deal, error) {
	var (
		deal  drop.Deal
		price *string
	)
	if err := row.Scan(dealScanTargets(&deal, &price)...); err != nil {
		return nil, err
	}
	if err := parsePrice(&deal, price); err != nil {
		return nil, err
	}
	return &deal, nil
}

func (t *txStore) GetDeal(ctx context.Context, dealID uuid.UUID) (*drop.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals dl WHERE dl.id = $1`

	deal, err := scanDeal(t.tx.QueryRow(ctx, query, dealID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	return deal, nil
}

func (t *txStore) GetDealBySlug(ctx context.Context, slug string) (*drop.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals dl WHERE dl.slug = $1`

	deal, err := scanDeal(t.tx.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deal by slug: %w", err)
	}
	return deal, nil
}

func (t *txStore) UpsertDeal(ctx context.Context, d *drop.Deal) (*drop.Deal, error) {
	var price *string
	if d.OriginalPrice != nil {
		p := d.OriginalPrice.String()
		price = &p
	}

	insert := `
	INSERT INTO deals (
		id, merchant_id, title, slug, summary, description,
		hero_image_url, original_price, currency, supply_cap, status
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10, $11)
	ON CONFLICT (slug) DO NOTHING
	`

	_, err := t.tx.Exec(ctx, insert,
		d.ID,
		d.MerchantID,
		d.Title,
		d.Slug,
		d.Summary,
		d.Description,
		d.HeroImageURL,
		price,
		d.Currency,
		d.SupplyCap,
		d.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert deal: %w", err)
	}

	return t.GetDealBySlug(ctx, d.Slug)
}
