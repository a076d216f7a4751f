package util

import (
	"testing"
	"time"
)

func TestParseBoolEnv(t *testing.T) {
	t.Setenv("TEST_BOOL", "yes")
	if !ParseBoolEnv("TEST_BOOL", false) {
		t.Error("expected 'yes' to parse as true")
	}
	t.Setenv("TEST_BOOL", "off")
	if ParseBoolEnv("TEST_BOOL", true) {
		t.Error("expected 'off' to parse as false")
	}
	t.Setenv("TEST_BOOL", "maybe")
	if !ParseBoolEnv("TEST_BOOL", true) {
		t.Error("invalid value should fall back to default")
	}
	if ParseBoolEnv("TEST_BOOL_UNSET", false) {
		t.Error("unset value should fall back to default")
	}
}

func TestParseIntEnv(t *testing.T) {
	t.Setenv("TEST_INT", "250")
	if got := ParseIntEnv("TEST_INT", 1); got != 250 {
		t.Errorf("expected 250, got %d", got)
	}
	t.Setenv("TEST_INT", "not a number")
	if got := ParseIntEnv("TEST_INT", 7); got != 7 {
		t.Errorf("invalid value should fall back to default, got %d", got)
	}
	if got := ParseIntEnv("TEST_INT_UNSET", 3); got != 3 {
		t.Errorf("unset value should fall back to default, got %d", got)
	}
}

func TestParseDurationEnv(t *testing.T) {
	t.Setenv("TEST_DUR", "90s")
	if got := ParseDurationEnv("TEST_DUR", time.Second); got != 90*time.Second {
		t.Errorf("expected 90s, got %v", got)
	}
	t.Setenv("TEST_DUR", "soon")
	if got := ParseDurationEnv("TEST_DUR", 2*time.Minute); got != 2*time.Minute {
		t.Errorf("invalid value should fall back to default, got %v", got)
	}
}
