package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle threaded through repository calls.
// The concrete type is infra-defined (pgx.Tx for Postgres); repositories
// accept nil for the non-transactional path.
type Tx interface{}

// TransactionManager executes a function within a database transaction,
// passing the transaction handle via `tx`. Keeping the handle opaque means
// use-case interfaces stay free of storage types while repositories can
// still run SELECT ... FOR UPDATE and advisory locks on the same tx.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
