package git

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func requireGit(t *testing.T) {
	t.Helper()
	if !IsInstalled() {
		t.Skip("git not installed")
	}
}

func TestClient_Lock(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)

	unlock, err := client.Lock()
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}

	lockPath := filepath.Join(tmpDir, LockFile)
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		t.Error("Lock file not created")
	}

	unlock()

	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("Lock file not removed after unlock")
	}
}

func TestClient_LockTimeout(t *testing.T) {
	tmpDir := t.TempDir()
	holder := NewClient(tmpDir, nil)
	unlock, err := holder.Lock()
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	defer unlock()

	waiter := NewClient(tmpDir, nil)
	waiter.LockTimeout = 50 * time.Millisecond

	if _, err := waiter.Lock(); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("Expected ErrLockTimeout, got %v", err)
	}
}

func TestClient_Init(t *testing.T) {
	requireGit(t)
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)

	if client.IsRepo() {
		t.Fatal("fresh temp dir should not be a repository")
	}
	if err := client.Init(); err != nil {
		t.Fatalf("Failed to init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, ".git")); os.IsNotExist(err) {
		t.Error(".git directory not created")
	}
	if !client.IsRepo() {
		t.Error("IsRepo should be true after Init")
	}
}

func TestClient_CommitFlow(t *testing.T) {
	requireGit(t)
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)
	if err := client.Init(); err != nil {
		t.Fatalf("Failed to init: %v", err)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "notes.json"), []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := client.Add("notes.json"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	staged, err := client.HasStagedChanges()
	if err != nil {
		t.Fatalf("HasStagedChanges failed: %v", err)
	}
	if !staged {
		t.Fatal("Expected staged changes after add")
	}

	if err := client.Commit("create note abc"); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	staged, err = client.HasStagedChanges()
	if err != nil {
		t.Fatal(err)
	}
	if staged {
		t.Error("Expected clean index after commit")
	}

	subjects, err := client.Log(5)
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if len(subjects) != 1 || subjects[0] != "create note abc" {
		t.Errorf("Unexpected log: %v", subjects)
	}
}
