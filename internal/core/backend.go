package core

import (
	"context"
	"time"
)

// BoundedSecureStore holds small values with strong confidentiality.
// Implementations report a missing key with ok == false and a nil error,
// and treat deleting a missing key as success.
type BoundedSecureStore interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	DeleteItem(ctx context.Context, key string) error
}

// UnboundedStore holds values of any size. Same absence rules as
// BoundedSecureStore.
type UnboundedStore interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Lister is implemented by unbounded stores that can enumerate their keys.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Metrics receives one observation per completed operation.
type Metrics interface {
	ObserveOperation(op, outcome string, took time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) ObserveOperation(string, string, time.Duration) {}
