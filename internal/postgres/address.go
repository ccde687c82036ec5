package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/bookcart/internal/domain/address"
)

const (
	getAddressByIDSQL = `SELECT id, user_id, first_name, last_name, mobile, email,
		line1, line2, city, province, district, is_default
		FROM addresses WHERE id = $1`

	listAddressesByUserSQL = `SELECT id, user_id, first_name, last_name, mobile, email,
		line1, line2, city, province, district, is_default
		FROM addresses WHERE user_id = $1 ORDER BY id`

	findDefaultAddressSQL = `SELECT id, user_id, first_name, last_name, mobile, email,
		line1, line2, city, province, district, is_default
		FROM addresses WHERE user_id = $1 AND is_default`

	setAddressDefaultSQL = `UPDATE addresses SET is_default = $2 WHERE id = $1`

	createAddressSQL = `INSERT INTO addresses (id, user_id, first_name, last_name, mobile, email,
		line1, line2, city, province, district, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
)

var _ address.Repository = (*AddressRepository)(nil)

// AddressRepository implements address.Repository backed by PostgreSQL.
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository returns an AddressRepository that uses the given pool.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// GetByID returns a single address by its identifier.
func (r *AddressRepository) GetByID(ctx context.Context, id string) (*address.Address, error) {
	rows, err := q(ctx, r.pool).Query(ctx, getAddressByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting address %q: %w", id, err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, address.ErrNotFound
		}
		return nil, fmt.Errorf("getting address %q: %w", id, err)
	}
	return &a, nil
}

// ListByUser returns all addresses owned by the user.
func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]address.Address, error) {
	rows, err := q(ctx, r.pool).Query(ctx, listAddressesByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing addresses for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanAddress)
}

// FindDefault returns the user's default address, or address.ErrNotFound.
func (r *AddressRepository) FindDefault(ctx context.Context, userID string) (*address.Address, error) {
	rows, err := q(ctx, r.pool).Query(ctx, findDefaultAddressSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("finding default address for user %q: %w", userID, err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, address.ErrNotFound
		}
		return nil, fmt.Errorf("finding default address for user %q: %w", userID, err)
	}
	return &a, nil
}

// SetDefaultFlag flips the is_default flag on one address row.
func (r *AddressRepository) SetDefaultFlag(ctx context.Context, id string, isDefault bool) error {
	tag, err := q(ctx, r.pool).Exec(ctx, setAddressDefaultSQL, id, isDefault)
	if err != nil {
		return fmt.Errorf("setting default flag on address %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return address.ErrNotFound
	}
	return nil
}

// Create persists a new address.
func (r *AddressRepository) Create(ctx context.Context, a *address.Address) error {
	_, err := q(ctx, r.pool).Exec(ctx, createAddressSQL,
		a.ID, a.UserID, a.FirstName, a.LastName, a.Mobile, a.Email,
		a.Line1, a.Line2, a.City, a.Province, a.District, a.Default,
	)
	if err != nil {
		return fmt.Errorf("creating address %q: %w", a.ID, err)
	}
	return nil
}

func scanAddress(row pgx.CollectableRow) (address.Address, error) {
	var a address.Address
	err := row.Scan(
		&a.ID, &a.UserID, &a.FirstName, &a.LastName, &a.Mobile, &a.Email,
		&a.Line1, &a.Line2, &a.City, &a.Province, &a.District, &a.Default,
	)
	return a, err
}
