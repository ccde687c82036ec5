package address

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/bookcart/internal/domain/tx"
)

// Service implements address management on top of the repository.
type Service struct {
	addresses Repository
	txm       tx.Manager
}

// NewService creates an address Service.
func NewService(addresses Repository, txm tx.Manager) *Service {
	return &Service{addresses: addresses, txm: txm}
}

// List returns all addresses owned by the user.
func (s *Service) List(ctx context.Context, userID string) ([]Address, error) {
	out, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list addresses")
	}
	return out, nil
}

// SetDefault marks the address as the user's default, clearing the previous
// default in the same transaction. Concurrent readers never observe two
// defaults or an intermediate state with none committed.
func (s *Service) SetDefault(ctx context.Context, userID, addressID string) (*Address, error) {
	a, err := s.addresses.GetByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, ErrNotFound
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		prev, err := s.addresses.FindDefault(ctx, userID)
		switch {
		case err == nil:
			if prev.ID == a.ID {
				return nil
			}
			if err := s.addresses.SetDefaultFlag(ctx, prev.ID, false); err != nil {
				return errors.Wrap(err, "clear previous default")
			}
		case errors.Is(err, ErrNotFound):
			// First default for this user.
		default:
			return errors.Wrap(err, "find previous default")
		}
		return s.addresses.SetDefaultFlag(ctx, a.ID, true)
	})
	if err != nil {
		return nil, err
	}

	a.Default = true
	return a, nil
}
