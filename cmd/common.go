package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/illarion/lockkv/internal/api"
	"github.com/illarion/lockkv/internal/config"
	"github.com/illarion/lockkv/internal/core"
	"github.com/illarion/lockkv/internal/crypto"
	"github.com/illarion/lockkv/internal/keyring"
	"github.com/illarion/lockkv/internal/log"
	"github.com/illarion/lockkv/internal/security"
	"github.com/illarion/lockkv/internal/storage"
)

// Session bundles an opened store with the resources behind it
type Session struct {
	Config  config.Config
	Log     log.Logger
	Store   *core.Store
	Bolt    *storage.Storage // nil for the s3 backend
	Health  api.Pinger       // the general store
	Service string           // keyring service holding the encryption keys
}

// Close releases the general store
func (s *Session) Close() {
	if s.Bolt != nil {
		if err := s.Bolt.Close(); err != nil {
			s.Log.Warn().Err(err).Msg("failed to close store")
		}
	}
}

// Open loads configuration and opens the configured backing stores
func Open(ctx context.Context, opts ...core.Option) (*Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := log.NewLogger(cfg)

	suite, err := crypto.SuiteByName(cfg.Store.Cipher)
	if err != nil {
		return nil, err
	}

	sess := &Session{Config: cfg, Log: logger}

	var (
		general core.UnboundedStore
		storeID string
	)
	switch cfg.Store.Backend {
	case config.BackendS3:
		s3, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			KeyPrefix:       cfg.S3.KeyPrefix,
			UseSSL:          cfg.S3.UseSSL,
			Region:          cfg.S3.Region,
		})
		if err != nil {
			return nil, err
		}
		general = s3
		sess.Health = s3
	default:
		db, err := storage.Open(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureCipher(suite.Name()); err != nil {
			db.Close()
			return nil, err
		}
		storeID, err = db.GetOrCreateStoreID()
		if err != nil {
			db.Close()
			return nil, err
		}
		sess.Bolt = db
		sess.Health = db
		general = db
	}
	sess.Service = keyringService(cfg, storeID)

	opts = append([]core.Option{
		core.WithCipher(suite),
		core.WithLogger(logger),
	}, opts...)
	if cfg.Store.KeyLocking {
		opts = append(opts, core.WithKeyLocking())
	}

	secure := keyring.New(sess.Service, cfg.Keyring.MaxValueBytes)
	store, err := core.New(secure, general, opts...)
	if err != nil {
		sess.Close()
		return nil, err
	}
	sess.Store = store

	logger.Debug().
		Str("backend", cfg.Store.Backend).
		Str("cipher", suite.Name()).
		Str("keyring_service", secure.Service()).
		Msg("store opened")
	return sess, nil
}

// keyringService names the keyring service for the configured general
// store: <service>/<storeID> for bolt, <service>/s3/<bucket>[/<prefix>]
// for s3. The prefix is trimmed the same way the s3 store trims it.
func keyringService(cfg config.Config, storeID string) string {
	if cfg.Store.Backend != config.BackendS3 {
		return cfg.Keyring.Service + "/" + storeID
	}
	service := cfg.Keyring.Service + "/s3/" + cfg.S3.Bucket
	if prefix := strings.Trim(cfg.S3.KeyPrefix, "/"); prefix != "" {
		service += "/" + prefix
	}
	return service
}

// OpenOrExit is like Open but exits on error
func OpenOrExit(ctx context.Context, opts ...core.Option) *Session {
	sess, err := Open(ctx, opts...)
	if err != nil {
		HandleError(err)
	}
	return sess
}

// ValidateKeysOrExit rejects keys the backing stores cannot hold
func ValidateKeysOrExit(keys []string) {
	if err := security.ValidateKeys(keys); err != nil {
		HandleError(err)
	}
}

// HandleError handles common errors consistently
func HandleError(err error) {
	var bsErr *core.BackingStoreError
	switch {
	case errors.Is(err, storage.ErrCipherMismatch):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Set LOCKKV_CIPHER to the suite the store was created with\n")
	case errors.Is(err, core.ErrDecode):
		fmt.Fprintf(os.Stderr, "Error: stored value is corrupt: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'lockkv inspect <key>' to check both stores\n")
	case errors.As(err, &bsErr) && bsErr.Store == core.SecureStoreName:
		fmt.Fprintf(os.Stderr, "Error: keyring unavailable: %s\n", bsErr.Err)
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}
