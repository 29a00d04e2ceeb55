package repositories

import (
	"context"
)

// TxRunner executes a function inside a single storage transaction.
// Repository calls made with the context passed to fn join that
// transaction; fn returning an error rolls everything back.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
