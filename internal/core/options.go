package core

import (
	"github.com/illarion/lockkv/internal/crypto"
	"github.com/rs/zerolog"
)

// Option configures a Store
type Option func(*Store)

// WithCipher selects the cipher suite. The default is crypto.CTR.
// Values written under one suite cannot be read under another.
func WithCipher(suite crypto.Suite) Option {
	return func(s *Store) {
		if suite != nil {
			s.suite = suite
		}
	}
}

// WithLogger sets the logger used for operation tracing and warnings
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithMetrics sets the operation observer
func WithMetrics(m Metrics) Option {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithKeyLocking serializes operations on the same LogicalKey
// within this Store.
func WithKeyLocking() Option {
	return func(s *Store) {
		s.locks = newKeyLocks()
	}
}
