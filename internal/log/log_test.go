package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/illarion/lockkv/internal/config"
)

func TestLevelFiltering(t *testing.T) {
	var cfg config.Config
	cfg.Logging.Level = "warn"

	var buf bytes.Buffer
	l := newLogger(cfg, &buf)
	l.Info().Msg("hidden")
	l.Warn().Str("key", "session").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered: %s", out)
	}
	if !strings.Contains(out, `"key":"session"`) {
		t.Errorf("warn message missing: %s", out)
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var cfg config.Config
	cfg.Logging.Level = "chatty"

	var buf bytes.Buffer
	l := newLogger(cfg, &buf)
	l.Debug().Msg("debug")
	l.Info().Msg("info")

	out := buf.String()
	if strings.Contains(out, `"message":"debug"`) || !strings.Contains(out, `"message":"info"`) {
		t.Errorf("unexpected output for fallback level: %s", out)
	}
}
