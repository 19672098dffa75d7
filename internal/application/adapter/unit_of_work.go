package adapter

import "context"

// UnitOfWork runs a group of repository calls inside one database transaction.
// Repositories called with the context passed to fn take part in the transaction.
type UnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
