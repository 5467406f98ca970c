package transactor

import (
	"context"
)

type noopTransactor struct{}

// NewNoopTransactor builds a passthrough Transactor for stores whose
// single-document writes are atomic on their own (mongodb here)
func NewNoopTransactor() Transactor {
	return noopTransactor{}
}

func (noopTransactor) WithinTransaction(ctx context.Context, txFunc func(context.Context) error) error {
	return txFunc(ctx)
}
