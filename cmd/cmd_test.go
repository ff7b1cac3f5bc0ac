package cmd

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/illarion/lockkv/internal/config"
	gokeyring "github.com/zalando/go-keyring"
)

func TestReadPiped(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc\n", "abc"},
		{"abc\r\n", "abc"},
		{"abc", "abc"},
		{"line1\nline2\n", "line1\nline2"},
		{"keep\n\n", "keep\n"},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := readPiped(strings.NewReader(tt.in))
		if err != nil {
			t.Fatalf("readPiped(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("readPiped(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1 << 20, "1.0 MB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.in); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeyringService(t *testing.T) {
	s3 := func(prefix string) config.Config {
		var c config.Config
		c.Store.Backend = config.BackendS3
		c.Keyring.Service = "lockkv"
		c.S3.Bucket = "secrets"
		c.S3.KeyPrefix = prefix
		return c
	}
	var bolt config.Config
	bolt.Store.Backend = config.BackendBolt
	bolt.Keyring.Service = "lockkv"

	tests := []struct {
		name    string
		cfg     config.Config
		storeID string
		want    string
	}{
		{"bolt", bolt, "0b7e4c5a-1f9e-4a53-9d3c-2c1a4f6e8b10", "lockkv/0b7e4c5a-1f9e-4a53-9d3c-2c1a4f6e8b10"},
		{"s3", s3(""), "", "lockkv/s3/secrets"},
		{"s3 slash only", s3("/"), "", "lockkv/s3/secrets"},
		{"s3 prefix", s3("tenant"), "", "lockkv/s3/secrets/tenant"},
		{"s3 wrapped prefix", s3("/tenant/"), "", "lockkv/s3/secrets/tenant"},
		{"s3 trailing slash", s3("tenant/"), "", "lockkv/s3/secrets/tenant"},
		{"s3 nested prefix", s3("/team/tenant/"), "", "lockkv/s3/secrets/team/tenant"},
	}
	for _, tt := range tests {
		if got := keyringService(tt.cfg, tt.storeID); got != tt.want {
			t.Errorf("%s: keyringService = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestOpenBoltSession(t *testing.T) {
	gokeyring.MockInit()
	ctx := context.Background()

	t.Setenv("LOCKKV_CONFIG", "")
	t.Setenv("LOCKKV_BACKEND", "bolt")
	t.Setenv("LOCKKV_CIPHER", "")
	t.Setenv("LOCKKV_KEYRING_SERVICE", "lockkv-cmd-test")
	t.Setenv("LOCKKV_STORE_PATH", filepath.Join(t.TempDir(), "store.lockkv"))

	sess, err := Open(ctx)
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}
	storeID, err := sess.Bolt.GetOrCreateStoreID()
	if err != nil {
		t.Fatalf("Failed to read store ID: %v", err)
	}
	if want := "lockkv-cmd-test/" + storeID; sess.Service != want {
		t.Errorf("Service mismatch: got %s, want %s", sess.Service, want)
	}
	if err := sess.Health.Ping(ctx); err != nil {
		t.Errorf("Health check failed: %v", err)
	}
	if err := sess.Store.Set(ctx, "session", "abcXYZ123"); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}
	service := sess.Service
	sess.Close()

	// Reopening finds the same keyring entries
	sess, err = Open(ctx)
	if err != nil {
		t.Fatalf("Failed to reopen session: %v", err)
	}
	defer sess.Close()

	if sess.Service != service {
		t.Errorf("Service changed on reopen: %s -> %s", service, sess.Service)
	}
	value, ok, err := sess.Store.Get(ctx, "session")
	if err != nil || !ok || value != "abcXYZ123" {
		t.Errorf("Value not readable after reopen: %q ok=%v err=%v", value, ok, err)
	}
}
