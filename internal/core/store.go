package core

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/illarion/lockkv/internal/crypto"
	"github.com/rs/zerolog"
)

// Operation names reported to Metrics
const (
	OpSet     = "set"
	OpGet     = "get"
	OpRemove  = "remove"
	OpInspect = "inspect"
)

// Operation outcomes reported to Metrics
const (
	OutcomeOK         = "ok"
	OutcomeAbsent     = "absent"
	OutcomeMissingKey = "missing_key"
	OutcomeError      = "error"
)

// Store encrypts values into an UnboundedStore and keeps their keys in a
// BoundedSecureStore.
type Store struct {
	secure  BoundedSecureStore
	general UnboundedStore
	suite   crypto.Suite
	log     zerolog.Logger
	metrics Metrics
	locks   *keyLocks
}

// New creates a Store over the given backing stores
func New(secure BoundedSecureStore, general UnboundedStore, opts ...Option) (*Store, error) {
	if secure == nil || general == nil {
		return nil, ErrNilStore
	}

	s := &Store{
		secure:  secure,
		general: general,
		suite:   crypto.CTR,
		log:     zerolog.Nop(),
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Suite returns the cipher suite values are sealed with
func (s *Store) Suite() crypto.Suite {
	return s.suite
}

// Set encrypts value under a freshly generated key. The key is written to
// the secure store first, then the ciphertext to the general store.
// A failed write is not rolled back.
func (s *Store) Set(ctx context.Context, key, value string) (err error) {
	start := time.Now()
	defer func() { s.observe(OpSet, key, outcomeOf(err), start) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	if !utf8.ValidString(value) {
		return ErrInvalidUTF8
	}
	defer s.lock(key)()

	encKey, err := crypto.GenerateKey(s.suite)
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(encKey)

	sealed, err := s.suite.Seal(encKey, []byte(value))
	if err != nil {
		return fmt.Errorf("failed to encrypt value: %w", err)
	}

	if err := s.secure.SetItem(ctx, key, hex.EncodeToString(encKey)); err != nil {
		return &BackingStoreError{Store: SecureStoreName, Op: "set", Key: key, Err: err}
	}
	if err := s.general.SetItem(ctx, key, hex.EncodeToString(sealed)); err != nil {
		return &BackingStoreError{Store: GeneralStoreName, Op: "set", Key: key, Err: err}
	}
	return nil
}

// Get returns the plaintext stored under key. ok is false when the value
// was never written or its encryption key is gone.
func (s *Store) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	value, err = s.GetStrict(ctx, key)
	switch {
	case err == nil:
		return value, true, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrMissingKeyMaterial):
		return "", false, nil
	default:
		return "", false, err
	}
}

// GetStrict is Get with absence reported as an error: ErrNotFound when no
// ciphertext exists, ErrMissingKeyMaterial when the ciphertext has no key.
func (s *Store) GetStrict(ctx context.Context, key string) (value string, err error) {
	start := time.Now()
	defer func() { s.observe(OpGet, key, outcomeOf(err), start) }()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	defer s.lock(key)()

	cipherHex, ok, err := s.general.GetItem(ctx, key)
	if err != nil {
		return "", &BackingStoreError{Store: GeneralStoreName, Op: "get", Key: key, Err: err}
	}
	if !ok {
		return "", ErrNotFound
	}

	keyHex, ok, err := s.secure.GetItem(ctx, key)
	if err != nil {
		return "", &BackingStoreError{Store: SecureStoreName, Op: "get", Key: key, Err: err}
	}
	if !ok {
		s.log.Warn().Str("key", key).Msg("ciphertext present without encryption key")
		return "", ErrMissingKeyMaterial
	}

	return s.decrypt(key, keyHex, cipherHex)
}

func (s *Store) decrypt(key, keyHex, cipherHex string) (string, error) {
	encKey, err := hex.DecodeString(keyHex)
	if err != nil {
		return "", &DecodeError{Key: key, Field: "key", Err: err}
	}
	defer crypto.ClearBytes(encKey)

	ciphertext, err := hex.DecodeString(cipherHex)
	if err != nil {
		return "", &DecodeError{Key: key, Field: "ciphertext", Err: err}
	}

	plaintext, err := s.suite.Open(encKey, ciphertext)
	if err != nil {
		return "", &DecodeError{Key: key, Field: "ciphertext", Err: err}
	}
	if !utf8.Valid(plaintext) {
		return "", &DecodeError{Key: key, Field: "plaintext", Err: ErrInvalidUTF8}
	}
	return string(plaintext), nil
}

// Remove deletes the ciphertext and then the key. Both deletions are
// attempted even if the first fails; a missing entry is not an error.
func (s *Store) Remove(ctx context.Context, key string) (err error) {
	start := time.Now()
	defer func() { s.observe(OpRemove, key, outcomeOf(err), start) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	defer s.lock(key)()

	var generalErr, secureErr error
	if err := s.general.RemoveItem(ctx, key); err != nil {
		generalErr = &BackingStoreError{Store: GeneralStoreName, Op: "remove", Key: key, Err: err}
	}
	if err := s.secure.DeleteItem(ctx, key); err != nil {
		secureErr = &BackingStoreError{Store: SecureStoreName, Op: "delete", Key: key, Err: err}
	}
	return errors.Join(generalErr, secureErr)
}

// Inspect reports which backing stores hold an entry for key without
// decrypting anything.
func (s *Store) Inspect(ctx context.Context, key string) (state State, err error) {
	start := time.Now()
	defer func() { s.observe(OpInspect, key, outcomeOf(err), start) }()

	if err := ctx.Err(); err != nil {
		return StateAbsent, err
	}
	defer s.lock(key)()

	_, hasCipher, err := s.general.GetItem(ctx, key)
	if err != nil {
		return StateAbsent, &BackingStoreError{Store: GeneralStoreName, Op: "get", Key: key, Err: err}
	}
	_, hasKey, err := s.secure.GetItem(ctx, key)
	if err != nil {
		return StateAbsent, &BackingStoreError{Store: SecureStoreName, Op: "get", Key: key, Err: err}
	}

	state = stateOf(hasCipher, hasKey)
	if state == StateOrphanKey {
		s.log.Warn().Str("key", key).Msg("encryption key present without ciphertext")
	}
	return state, nil
}

// Keys lists the LogicalKeys held by the general store
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	lister, ok := s.general.(Lister)
	if !ok {
		return nil, ErrListUnsupported
	}
	keys, err := lister.Keys(ctx)
	if err != nil {
		return nil, &BackingStoreError{Store: GeneralStoreName, Op: "list", Err: err}
	}
	return keys, nil
}

func (s *Store) lock(key string) func() {
	if s.locks == nil {
		return func() {}
	}
	return s.locks.lock(key)
}

func (s *Store) observe(op, key, outcome string, start time.Time) {
	took := time.Since(start)
	s.metrics.ObserveOperation(op, outcome, took)
	s.log.Debug().
		Str("op", op).
		Str("key", key).
		Str("outcome", outcome).
		Dur("took", took).
		Msg("store operation")
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrNotFound):
		return OutcomeAbsent
	case errors.Is(err, ErrMissingKeyMaterial):
		return OutcomeMissingKey
	default:
		return OutcomeError
	}
}
