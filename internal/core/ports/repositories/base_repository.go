package repositories

import (
	"context"
)

// TransactionManager defines methods for transaction management.
type TransactionManager interface {
	// WithinTransaction runs fn inside a database transaction carried by the context passed to fn.
	// Repository calls made with that context join the transaction. A nested call joins the
	// outer transaction instead of opening a new one. The transaction commits when fn returns nil
	// and rolls back otherwise.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
