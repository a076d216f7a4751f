package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BTreeMap/DefineBot/internal/bot"
)

func TestLoadEnvironmentConfigDefaults(t *testing.T) {
	// Clear environment variables
	os.Unsetenv("DEFINEBOT_STATE_DIR")
	os.Unsetenv("DEFINEBOT_CACHE_DSN")
	os.Unsetenv("DEFINEBOT_TRIGGER")
	os.Unsetenv("DEFINEBOT_SUBREDDITS")
	os.Unsetenv("DEFINEBOT_FOOTER")

	config := loadEnvironmentConfig()

	if config.StateDir != DefaultStateDir {
		t.Errorf("Expected default state dir %q, got %q", DefaultStateDir, config.StateDir)
	}
	expectedCache := filepath.Join(DefaultStateDir, DefaultCacheFileName)
	if config.CacheDSN != expectedCache {
		t.Errorf("Expected default cache DSN %q, got %q", expectedCache, config.CacheDSN)
	}
	if config.Trigger != bot.DefaultTriggerPhrase {
		t.Errorf("Expected default trigger %q, got %q", bot.DefaultTriggerPhrase, config.Trigger)
	}
	if config.Subreddits != bot.DefaultSources {
		t.Errorf("Expected default subreddits %q, got %q", bot.DefaultSources, config.Subreddits)
	}
	if config.Footer != DefaultFooter {
		t.Error("Expected default footer to be applied")
	}
}

func TestLoadEnvironmentConfigStateDirDerivesCachePath(t *testing.T) {
	t.Setenv("DEFINEBOT_STATE_DIR", "/tmp/definebot-test")
	os.Unsetenv("DEFINEBOT_CACHE_DSN")

	config := loadEnvironmentConfig()

	expected := filepath.Join("/tmp/definebot-test", DefaultCacheFileName)
	if config.CacheDSN != expected {
		t.Errorf("Expected cache DSN %q, got %q", expected, config.CacheDSN)
	}
}

func TestLoadEnvironmentConfigExplicitCacheDSN(t *testing.T) {
	t.Setenv("DEFINEBOT_CACHE_DSN", "postgres://bot:pw@localhost/cache")

	config := loadEnvironmentConfig()

	if config.CacheDSN != "postgres://bot:pw@localhost/cache" {
		t.Errorf("Explicit cache DSN should win, got %q", config.CacheDSN)
	}
}

func TestParseDurationFlag(t *testing.T) {
	if got := parseDurationFlag("backoff", "2m"); got.Minutes() != 2 {
		t.Errorf("expected 2m, got %v", got)
	}
	if got := parseDurationFlag("backoff", ""); got != 0 {
		t.Errorf("empty value should return 0, got %v", got)
	}
	if got := parseDurationFlag("backoff", "whenever"); got != 0 {
		t.Errorf("invalid value should return 0, got %v", got)
	}
}
