package repository

import "context"

// TxManager runs a unit of work inside one database transaction.
// Repositories called with the context passed to fn join that transaction.
// The transaction commits when fn returns nil and rolls back on error or panic.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
