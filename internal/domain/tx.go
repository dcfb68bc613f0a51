package domain

import "context"

// TxManager runs fn inside a single unit of work. Repositories called with
// the ctx passed to fn take part in the same transaction. Nested calls join
// the outer transaction.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
