package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	BackendBolt = "bolt"
	BackendS3   = "s3"
)

type Config struct {
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
	Store struct {
		Backend    string `yaml:"backend"`
		Path       string `yaml:"path"`
		Cipher     string `yaml:"cipher"`
		KeyLocking bool   `yaml:"key_locking"`
	} `yaml:"store"`
	Keyring struct {
		Service       string `yaml:"service"`
		MaxValueBytes int    `yaml:"max_value_bytes"`
	} `yaml:"keyring"`
	S3 struct {
		Endpoint        string `yaml:"endpoint"`
		AccessKeyID     string `yaml:"access_key_id"`
		SecretAccessKey string `yaml:"secret_access_key"`
		Bucket          string `yaml:"bucket"`
		KeyPrefix       string `yaml:"key_prefix"`
		UseSSL          bool   `yaml:"use_ssl"`
		Region          string `yaml:"region"`
	} `yaml:"s3"`
	Server struct {
		Addr                string `yaml:"addr"`
		ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	} `yaml:"server"`
}

func defaultConfig() Config {
	var c Config
	c.Logging.Level = "warn"
	c.Logging.Pretty = true
	c.Store.Backend = BackendBolt
	c.Store.Path = ".lockkv"
	c.Store.Cipher = "aes-128-ctr"
	c.Keyring.Service = "lockkv"
	c.Keyring.MaxValueBytes = 2048
	c.S3.Bucket = "lockkv"
	c.S3.UseSSL = true
	c.Server.Addr = "127.0.0.1:8420"
	c.Server.ReadTimeoutSeconds = 5
	c.Server.WriteTimeoutSeconds = 10
	return c
}

// Load builds the configuration from defaults, the YAML file named by
// LOCKKV_CONFIG, then LOCKKV_* environment overrides.
func Load() (Config, error) {
	c := defaultConfig()
	if path := os.Getenv("LOCKKV_CONFIG"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("LOCKKV_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOCKKV_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("LOCKKV_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("LOCKKV_CIPHER"); v != "" {
		c.Store.Cipher = v
	}
	if v := os.Getenv("LOCKKV_KEY_LOCKING"); v != "" {
		c.Store.KeyLocking = isTrue(v)
	}
	if v := os.Getenv("LOCKKV_KEYRING_SERVICE"); v != "" {
		c.Keyring.Service = v
	}
	if v := os.Getenv("LOCKKV_HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	// S3 credentials only from env or file
	if v := os.Getenv("LOCKKV_S3_ENDPOINT"); v != "" {
		c.S3.Endpoint = v
	}
	if v := os.Getenv("LOCKKV_S3_ACCESS_KEY_ID"); v != "" {
		c.S3.AccessKeyID = v
	}
	if v := os.Getenv("LOCKKV_S3_SECRET_ACCESS_KEY"); v != "" {
		c.S3.SecretAccessKey = v
	}
	if v := os.Getenv("LOCKKV_S3_BUCKET"); v != "" {
		c.S3.Bucket = v
	}
	if v := os.Getenv("LOCKKV_S3_KEY_PREFIX"); v != "" {
		c.S3.KeyPrefix = v
	}
	if v := os.Getenv("LOCKKV_S3_USE_SSL"); v != "" {
		c.S3.UseSSL = isTrue(v)
	}
	if v := os.Getenv("LOCKKV_S3_REGION"); v != "" {
		c.S3.Region = v
	}

	return c, c.Validate()
}

// Validate checks values that cannot be defaulted
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendBolt:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the bolt backend")
		}
	case BackendS3:
		if c.S3.Endpoint == "" || c.S3.Bucket == "" {
			return fmt.Errorf("s3.endpoint and s3.bucket are required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown store backend: %s", c.Store.Backend)
	}
	if c.Keyring.MaxValueBytes <= 0 {
		return fmt.Errorf("keyring.max_value_bytes must be positive")
	}
	return nil
}

func isTrue(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
