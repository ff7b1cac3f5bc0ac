// Package keyring adapts the OS keyring to the bounded secure store used
// for lockkv encryption keys.
package keyring

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	DefaultService  = "lockkv"
	DefaultMaxValue = 2048 // bytes, the smallest ceiling among supported keystores
)

var ErrValueTooLarge = errors.New("value exceeds keyring size limit")

// Keyring stores small values in the OS keyring under one service name.
// Keys are used as the keyring user unchanged.
type Keyring struct {
	service  string
	maxValue int
}

// New creates a Keyring for the given service. A zero maxValue selects
// DefaultMaxValue.
func New(service string, maxValue int) *Keyring {
	if service == "" {
		service = DefaultService
	}
	if maxValue <= 0 {
		maxValue = DefaultMaxValue
	}
	return &Keyring{service: service, maxValue: maxValue}
}

// Service returns the keyring service name entries are stored under
func (k *Keyring) Service() string {
	return k.service
}

// GetItem retrieves a value from the OS keyring
func (k *Keyring) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	value, err := keyring.Get(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read keyring: %w", err)
	}
	return value, true, nil
}

// SetItem stores a value in the OS keyring
func (k *Keyring) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(value) > k.maxValue {
		return fmt.Errorf("%w: %d > %d bytes", ErrValueTooLarge, len(value), k.maxValue)
	}
	if err := keyring.Set(k.service, key, value); err != nil {
		if errors.Is(err, keyring.ErrSetDataTooBig) {
			return fmt.Errorf("%w: %v", ErrValueTooLarge, err)
		}
		return fmt.Errorf("failed to write keyring: %w", err)
	}
	return nil
}

// DeleteItem removes a value from the OS keyring. Deleting a missing
// entry succeeds.
func (k *Keyring) DeleteItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := keyring.Delete(k.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}
