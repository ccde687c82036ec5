package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/bookcart/internal/domain/coupon"
)

const (
	getCouponByCodeSQL = `SELECT id, code, description, value, max_value, enabled,
		valid_from, valid_until, created_at
		FROM coupons WHERE UPPER(code) = UPPER($1)`

	upsertCouponSQL = `INSERT INTO coupons (id, code, description, value, max_value, enabled, valid_from, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (code) DO UPDATE SET
			description = EXCLUDED.description,
			value = EXCLUDED.value,
			max_value = EXCLUDED.max_value,
			enabled = EXCLUDED.enabled,
			valid_from = EXCLUDED.valid_from,
			valid_until = EXCLUDED.valid_until`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByCode looks up a coupon by its code (case-insensitive). The enabled
// flag is returned as stored; the engines decide what a disabled coupon
// means for the operation at hand.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Rule, error) {
	rows, err := q(ctx, r.pool).Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, scanCouponRule)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}
	return &rule, nil
}

// Upsert inserts or refreshes a coupon rule. Used by the seed and ingest
// tooling.
func (r *CouponRepository) Upsert(ctx context.Context, rule *coupon.Rule) error {
	_, err := q(ctx, r.pool).Exec(ctx, upsertCouponSQL,
		rule.ID, rule.Code, rule.Description, rule.Value, rule.MaxValue,
		rule.Enabled, rule.ValidFrom, rule.ValidUntil,
	)
	if err != nil {
		return fmt.Errorf("upserting coupon %q: %w", rule.Code, err)
	}
	return nil
}

func scanCouponRule(row pgx.CollectableRow) (coupon.Rule, error) {
	var rule coupon.Rule
	err := row.Scan(
		&rule.ID, &rule.Code, &rule.Description, &rule.Value, &rule.MaxValue,
		&rule.Enabled, &rule.ValidFrom, &rule.ValidUntil, &rule.CreatedAt,
	)
	return rule, err
}
