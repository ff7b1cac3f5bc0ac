package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LOCKKV_CONFIG", "")
	t.Setenv("LOCKKV_LOG_LEVEL", "")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Store.Backend != BackendBolt {
		t.Fatalf("expected default backend bolt, got %s", c.Store.Backend)
	}
	if c.Store.Cipher != "aes-128-ctr" {
		t.Fatalf("expected default cipher aes-128-ctr, got %s", c.Store.Cipher)
	}
	if c.Keyring.MaxValueBytes != 2048 {
		t.Fatalf("expected keyring ceiling 2048, got %d", c.Keyring.MaxValueBytes)
	}
}

func TestFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockkv.yaml")
	data := []byte(`
logging:
  level: debug
store:
  path: /tmp/file.lockkv
  cipher: aes-128-gcm
keyring:
  service: from-file
`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("LOCKKV_CONFIG", path)
	t.Setenv("LOCKKV_KEYRING_SERVICE", "from-env")
	t.Setenv("LOCKKV_KEY_LOCKING", "true")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Logging.Level != "debug" {
		t.Fatalf("file override failed for log level, got %s", c.Logging.Level)
	}
	if c.Store.Cipher != "aes-128-gcm" {
		t.Fatalf("file override failed for cipher, got %s", c.Store.Cipher)
	}
	if c.Keyring.Service != "from-env" {
		t.Fatalf("env should win over file, got %s", c.Keyring.Service)
	}
	if !c.Store.KeyLocking {
		t.Fatal("env override failed for key locking")
	}
	if c.Server.Addr != "127.0.0.1:8420" {
		t.Fatalf("default should survive partial file, got %s", c.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("LOCKKV_CONFIG", "")
	t.Setenv("LOCKKV_BACKEND", "s3")
	t.Setenv("LOCKKV_S3_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for s3 backend without endpoint")
	}

	t.Setenv("LOCKKV_S3_ENDPOINT", "localhost:9000")
	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.S3.Endpoint != "localhost:9000" {
		t.Fatalf("env override failed for s3 endpoint, got %s", c.S3.Endpoint)
	}

	t.Setenv("LOCKKV_BACKEND", "floppy")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestMissingConfigFile(t *testing.T) {
	t.Setenv("LOCKKV_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
