package transactor

import (
	"context"
)

// Transactor runs the provided function within a single transaction. The
// transaction is committed when the function returns nil and rolled back
// otherwise, so a failed write never leaves partial state behind.
type Transactor interface {
	WithinTransaction(context.Context, func(context.Context) error) error
}
