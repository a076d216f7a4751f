package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestLockAcquisition(t *testing.T) {
	stateDir := t.TempDir()

	lock, err := AcquireLock(stateDir)
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	defer lock.Release()

	lockPath := filepath.Join(stateDir, LockFileName)
	content, err := os.ReadFile(lockPath)
	if err != nil {
		t.Fatalf("Failed to read lock file: %v", err)
	}
	expected := fmt.Sprintf("pid=%d\n", os.Getpid())
	if string(content) != expected {
		t.Errorf("Lock file content mismatch. Expected %q, got %q", expected, string(content))
	}
}

func TestLockConflict(t *testing.T) {
	stateDir := t.TempDir()

	lock1, err := AcquireLock(stateDir)
	if err != nil {
		t.Fatalf("Failed to acquire first lock: %v", err)
	}
	defer lock1.Release()

	_, err = AcquireLock(stateDir)
	if err == nil {
		t.Fatal("Second lock acquisition should have failed")
	}
	var lockErr *LockError
	if !errors.As(err, &lockErr) {
		t.Fatalf("Expected a LockError, got %T: %v", err, err)
	}
	if lockErr.Holder == "" {
		t.Error("LockError should report the holding process")
	}
}

func TestLockReleaseAllowsReacquisition(t *testing.T) {
	stateDir := t.TempDir()

	lock1, err := AcquireLock(stateDir)
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	if err := lock1.Release(); err != nil {
		t.Fatalf("Failed to release lock: %v", err)
	}
	// Release is idempotent.
	if err := lock1.Release(); err != nil {
		t.Fatalf("Second release should be a no-op: %v", err)
	}

	lock2, err := AcquireLock(stateDir)
	if err != nil {
		t.Fatalf("Failed to reacquire released lock: %v", err)
	}
	lock2.Release()

	if _, err := os.Stat(filepath.Join(stateDir, LockFileName)); !os.IsNotExist(err) {
		t.Error("Lock file should be removed after release")
	}
}

func TestLockCreatesStateDir(t *testing.T) {
	stateDir := filepath.Join(t.TempDir(), "nested", "state")

	lock, err := AcquireLock(stateDir)
	if err != nil {
		t.Fatalf("Failed to acquire lock in missing directory: %v", err)
	}
	defer lock.Release()

	if _, err := os.Stat(stateDir); err != nil {
		t.Errorf("State directory should have been created: %v", err)
	}
}
