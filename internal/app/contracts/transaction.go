package contracts

import "context"

// Transactor runs fn inside one store transaction. Repositories called with the ctx
// handed to fn join that transaction. Returning an error from fn rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
