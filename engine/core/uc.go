package core

import "context"

// Usecase is a single request-scoped operation.
type Usecase[T any] interface {
	Execute(ctx context.Context) (T, error)
}
