// Package tx defines the unit-of-work contract shared by the domain services.
package tx

import "context"

// Manager runs fn inside a single storage transaction. Repository calls made
// with the context passed to fn join that transaction; any error returned by
// fn rolls the whole transaction back.
type Manager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
