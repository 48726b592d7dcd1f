package admin

import "context"

// Counter is satisfied by the assignment and health record repositories.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// AlertCounter is satisfied by the alert repository.
type AlertCounter interface {
	CountByState(ctx context.Context) (sent, seen int, err error)
}

// TxRunner runs fn so that every read inside it sees the same state.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type passThrough struct{}

func (passThrough) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
