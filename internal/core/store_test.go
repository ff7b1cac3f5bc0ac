package core

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/illarion/lockkv/internal/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory backing store usable on either side.
type memStore struct {
	mu       sync.Mutex
	items    map[string]string
	maxSize  int
	failGet  error
	failSet  error
	failDel  error
	getCalls int
}

func newMemStore(maxSize int) *memStore {
	return &memStore{items: make(map[string]string), maxSize: maxSize}
}

func (m *memStore) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.failGet != nil {
		return "", false, m.failGet
	}
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *memStore) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	if m.maxSize > 0 && len(value) > m.maxSize {
		return errors.New("value too large")
	}
	m.items[key] = value
	return nil
}

func (m *memStore) DeleteItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDel != nil {
		return m.failDel
	}
	delete(m.items, key)
	return nil
}

func (m *memStore) RemoveItem(ctx context.Context, key string) error {
	return m.DeleteItem(ctx, key)
}

func (m *memStore) Keys(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *memStore) raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok
}

// unlistable hides the Keys method of memStore
type unlistable struct{ UnboundedStore }

type recordedOp struct {
	op, outcome string
}

type recordingMetrics struct {
	mu  sync.Mutex
	ops []recordedOp
}

func (r *recordingMetrics) ObserveOperation(op, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, recordedOp{op, outcome})
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *memStore, *memStore) {
	t.Helper()
	secure := newMemStore(2048)
	general := newMemStore(0)
	s, err := New(secure, general, opts...)
	require.NoError(t, err)
	return s, secure, general
}

func TestNewRejectsNilStores(t *testing.T) {
	_, err := New(nil, newMemStore(0))
	require.ErrorIs(t, err, ErrNilStore)

	_, err = New(newMemStore(0), nil)
	require.ErrorIs(t, err, ErrNilStore)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()

	values := map[string]string{
		"empty":   "",
		"ascii":   "hello world",
		"unicode": "päßwörd ✓ 日本語",
		"large":   strings.Repeat("0123456789", 500),
		"json":    `{"access_token":"abc","refresh_token":"def"}`,
	}

	for _, suite := range crypto.Suites {
		t.Run(suite.Name(), func(t *testing.T) {
			s, _, _ := newTestStore(t, WithCipher(suite))
			for key, value := range values {
				require.NoError(t, s.Set(ctx, key, value))

				got, ok, err := s.Get(ctx, key)
				require.NoError(t, err)
				require.True(t, ok, "key %s should be present", key)
				assert.Equal(t, value, got, "key %s", key)
			}
		})
	}
}

func TestSessionScenario(t *testing.T) {
	ctx := context.Background()
	s, secure, general := newTestStore(t)

	require.NoError(t, s.Set(ctx, "session", "abcXYZ123"))

	keyHex, ok := secure.raw("session")
	require.True(t, ok)
	assert.Len(t, keyHex, 2*crypto.KeySize)
	_, err := hex.DecodeString(keyHex)
	require.NoError(t, err)

	cipherHex, ok := general.raw("session")
	require.True(t, ok)
	assert.Len(t, cipherHex, 2*len("abcXYZ123"))
	assert.NotContains(t, cipherHex, "abcXYZ123")

	got, ok, err := s.Get(ctx, "session")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abcXYZ123", got)
}

func TestSizeIndependence(t *testing.T) {
	ctx := context.Background()
	s, secure, _ := newTestStore(t)

	value := strings.Repeat("x", 5000)
	require.Error(t, secure.SetItem(ctx, "direct", value), "bounded store should refuse the raw value")

	require.NoError(t, s.Set(ctx, "big", value))
	got, ok, err := s.Get(ctx, "big")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, value, got)
}

func TestFreshKeyPerWrite(t *testing.T) {
	ctx := context.Background()
	s, secure, general := newTestStore(t)

	require.NoError(t, s.Set(ctx, "k", "same value"))
	key1, _ := secure.raw("k")
	cipher1, _ := general.raw("k")

	require.NoError(t, s.Set(ctx, "k", "same value"))
	key2, _ := secure.raw("k")
	cipher2, _ := general.raw("k")

	assert.NotEqual(t, key1, key2)
	assert.NotEqual(t, cipher1, cipher2)
}

func TestStaleCiphertextWithNewKey(t *testing.T) {
	ctx := context.Background()
	s, _, general := newTestStore(t)

	require.NoError(t, s.Set(ctx, "k", "first"))
	oldCipher, _ := general.raw("k")
	require.NoError(t, s.Set(ctx, "k", "second"))

	// Simulate the interleaving of two racing writes: new key, old ciphertext.
	require.NoError(t, general.SetItem(ctx, "k", oldCipher))

	got, ok, err := s.Get(ctx, "k")
	if err == nil {
		require.True(t, ok)
		assert.NotEqual(t, "first", got)
	} else {
		assert.ErrorIs(t, err, ErrDecode)
	}
}

func TestGetAbsent(t *testing.T) {
	ctx := context.Background()
	s, secure, _ := newTestStore(t)

	got, ok, err := s.Get(ctx, "never-written")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)

	// The secure store is not consulted when the ciphertext is absent
	assert.Equal(t, 0, secure.getCalls)

	_, err = s.GetStrict(ctx, "never-written")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPartialStates(t *testing.T) {
	ctx := context.Background()
	s, secure, general := newTestStore(t)

	require.NoError(t, s.Set(ctx, "no-cipher", "v"))
	require.NoError(t, general.RemoveItem(ctx, "no-cipher"))

	require.NoError(t, s.Set(ctx, "no-key", "v"))
	require.NoError(t, secure.DeleteItem(ctx, "no-key"))

	require.NoError(t, s.Set(ctx, "both", "v"))

	for _, key := range []string{"no-cipher", "no-key", "never"} {
		_, ok, err := s.Get(ctx, key)
		require.NoError(t, err, key)
		assert.False(t, ok, key)
	}

	_, err := s.GetStrict(ctx, "no-key")
	assert.ErrorIs(t, err, ErrMissingKeyMaterial)

	tests := map[string]State{
		"both":      StatePresent,
		"no-cipher": StateOrphanKey,
		"no-key":    StateMissingKey,
		"never":     StateAbsent,
	}
	for key, want := range tests {
		got, err := s.Inspect(ctx, key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}

	for _, key := range []string{"both", "no-cipher", "no-key", "never"} {
		require.NoError(t, s.Remove(ctx, key), key)
		state, err := s.Inspect(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, StateAbsent, state, key)
	}
}

func TestRemoveIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)

	require.NoError(t, s.Remove(ctx, "never-set"))

	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Remove(ctx, "k"))
	require.NoError(t, s.Remove(ctx, "k"))

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveAttemptsBothStores(t *testing.T) {
	ctx := context.Background()
	s, secure, general := newTestStore(t)

	require.NoError(t, s.Set(ctx, "k", "v"))

	boom := errors.New("general store down")
	general.failDel = boom

	err := s.Remove(ctx, "k")
	require.ErrorIs(t, err, boom)

	var bsErr *BackingStoreError
	require.ErrorAs(t, err, &bsErr)
	assert.Equal(t, GeneralStoreName, bsErr.Store)

	_, ok := secure.raw("k")
	assert.False(t, ok, "secure entry should be deleted despite the general failure")

	secureBoom := errors.New("keyring locked")
	secure.failDel = secureBoom
	err = s.Remove(ctx, "k")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, secureBoom)
}

func TestBackingStoreFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("secure set", func(t *testing.T) {
		s, secure, general := newTestStore(t)
		secure.failSet = boom

		err := s.Set(ctx, "k", "v")
		require.ErrorIs(t, err, boom)
		var bsErr *BackingStoreError
		require.ErrorAs(t, err, &bsErr)
		assert.Equal(t, SecureStoreName, bsErr.Store)
		assert.Equal(t, "k", bsErr.Key)

		_, ok := general.raw("k")
		assert.False(t, ok, "ciphertext must not be written after the key write failed")
	})

	t.Run("general set leaves key behind", func(t *testing.T) {
		s, secure, general := newTestStore(t)
		general.failSet = boom

		require.ErrorIs(t, s.Set(ctx, "k", "v"), boom)
		_, ok := secure.raw("k")
		assert.True(t, ok, "no rollback of the key write")
	})

	t.Run("general get", func(t *testing.T) {
		s, _, general := newTestStore(t)
		general.failGet = boom

		_, ok, err := s.Get(ctx, "k")
		require.ErrorIs(t, err, boom)
		assert.False(t, ok)
	})

	t.Run("secure get", func(t *testing.T) {
		s, secure, _ := newTestStore(t)
		require.NoError(t, s.Set(ctx, "k", "v"))
		secure.failGet = boom

		_, _, err := s.Get(ctx, "k")
		require.ErrorIs(t, err, boom)

		_, err = s.Inspect(ctx, "k")
		require.ErrorIs(t, err, boom)
	})
}

func TestDecodeFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed ciphertext hex", func(t *testing.T) {
		s, _, general := newTestStore(t)
		require.NoError(t, s.Set(ctx, "k", "v"))
		require.NoError(t, general.SetItem(ctx, "k", "not-hex!"))

		_, _, err := s.Get(ctx, "k")
		require.ErrorIs(t, err, ErrDecode)
		var decErr *DecodeError
		require.ErrorAs(t, err, &decErr)
		assert.Equal(t, "ciphertext", decErr.Field)
	})

	t.Run("malformed key hex", func(t *testing.T) {
		s, secure, _ := newTestStore(t)
		require.NoError(t, s.Set(ctx, "k", "v"))
		require.NoError(t, secure.SetItem(ctx, "k", "zz"))

		_, _, err := s.Get(ctx, "k")
		require.ErrorIs(t, err, ErrDecode)
	})

	t.Run("wrong key width", func(t *testing.T) {
		s, secure, _ := newTestStore(t)
		require.NoError(t, s.Set(ctx, "k", "v"))
		require.NoError(t, secure.SetItem(ctx, "k", "abcd"))

		_, _, err := s.Get(ctx, "k")
		require.ErrorIs(t, err, ErrDecode)
		require.ErrorIs(t, err, crypto.ErrInvalidKeySize)
	})

	t.Run("invalid utf8 plaintext", func(t *testing.T) {
		s, secure, general := newTestStore(t)
		key := make([]byte, crypto.KeySize)
		sealed, err := crypto.CTR.Seal(key, []byte{0xff, 0xfe, 0xfd})
		require.NoError(t, err)
		require.NoError(t, secure.SetItem(ctx, "k", hex.EncodeToString(key)))
		require.NoError(t, general.SetItem(ctx, "k", hex.EncodeToString(sealed)))

		_, _, err = s.Get(ctx, "k")
		require.ErrorIs(t, err, ErrDecode)
		require.ErrorIs(t, err, ErrInvalidUTF8)
	})

	t.Run("tampered authenticated ciphertext", func(t *testing.T) {
		s, _, general := newTestStore(t, WithCipher(crypto.GCM))
		require.NoError(t, s.Set(ctx, "k", "v"))
		require.NoError(t, general.SetItem(ctx, "k", strings.Repeat("00", 40)))

		_, _, err := s.Get(ctx, "k")
		require.ErrorIs(t, err, ErrDecode)
		require.ErrorIs(t, err, crypto.ErrAuthFailed)
	})
}

func TestSetRejectsInvalidUTF8(t *testing.T) {
	s, secure, _ := newTestStore(t)

	err := s.Set(context.Background(), "k", string([]byte{0xff}))
	require.ErrorIs(t, err, ErrInvalidUTF8)

	_, ok := secure.raw("k")
	assert.False(t, ok)
}

func TestCancelledContext(t *testing.T) {
	s, secure, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.Set(ctx, "k", "v"), context.Canceled)
	_, _, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, s.Remove(ctx, "k"), context.Canceled)

	_, ok := secure.raw("k")
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	ctx := context.Background()
	s, _, general := newTestStore(t)

	require.NoError(t, s.Set(ctx, "a", "1"))
	require.NoError(t, s.Set(ctx, "b", "2"))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)

	s2, err := New(newMemStore(0), unlistable{general})
	require.NoError(t, err)
	_, err = s2.Keys(ctx)
	assert.ErrorIs(t, err, ErrListUnsupported)
}

func TestMetricsOutcomes(t *testing.T) {
	ctx := context.Background()
	m := &recordingMetrics{}
	s, secure, _ := newTestStore(t, WithMetrics(m))

	require.NoError(t, s.Set(ctx, "k", "v"))
	_, _, _ = s.Get(ctx, "k")
	_, _, _ = s.Get(ctx, "missing")
	require.NoError(t, secure.DeleteItem(ctx, "k"))
	_, _, _ = s.Get(ctx, "k")
	require.NoError(t, s.Remove(ctx, "k"))

	assert.Equal(t, []recordedOp{
		{OpSet, OutcomeOK},
		{OpGet, OutcomeOK},
		{OpGet, OutcomeAbsent},
		{OpGet, OutcomeMissingKey},
		{OpRemove, OutcomeOK},
	}, m.ops)
}

func TestKeyLockingConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t, WithKeyLocking())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Set(ctx, "shared", "value"))
			got, ok, err := s.Get(ctx, "shared")
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "value", got)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, s.locks.size())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "absent", StateAbsent.String())
	assert.Equal(t, "present", StatePresent.String())
	assert.Equal(t, "missing-key", StateMissingKey.String())
	assert.Equal(t, "orphan-key", StateOrphanKey.String())
	assert.Equal(t, "unknown", State(42).String())
}
