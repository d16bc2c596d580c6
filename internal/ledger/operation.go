package ledger

import (
	"context"
	"errors"
)

// ErrNotSettled is returned by Result while the command is still in flight.
var ErrNotSettled = errors.New("operation not settled")

// Operation is the pending result of a ledger command. It settles exactly
// once, after the command's latency window, with either the committed
// transaction or the reason it was rejected.
type Operation struct {
	done chan struct{}
	tx   Transaction
	err  error
}

func newOperation() *Operation {
	return &Operation{done: make(chan struct{})}
}

func failedOperation(err error) *Operation {
	op := newOperation()
	op.settle(Transaction{}, err)
	return op
}

func (o *Operation) settle(tx Transaction, err error) {
	o.tx, o.err = tx, err
	close(o.done)
}

// Done is closed once the operation has settled.
func (o *Operation) Done() <-chan struct{} {
	return o.done
}

// Settled reports whether the result is available.
func (o *Operation) Settled() bool {
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the operation settles or ctx ends. Abandoning the wait
// does not cancel the command.
func (o *Operation) Wait(ctx context.Context) (Transaction, error) {
	select {
	case <-o.done:
		return o.tx, o.err
	case <-ctx.Done():
		return Transaction{}, ctx.Err()
	}
}

// Result returns the outcome without blocking.
func (o *Operation) Result() (Transaction, error) {
	if !o.Settled() {
		return Transaction{}, ErrNotSettled
	}
	return o.tx, o.err
}
