package backend

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReset_WipesEverything(t *testing.T) {
	ws := NewWorkspace(t.TempDir())
	secrets := NewMemorySecretStore()
	store := NewYAMLStore()

	registry := NewChainRegistry(store, ws)
	first := mustValidate(t, "mybackup001.cloudchain@gmail.com")
	if err := registry.Initialize(first); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := registry.Extend(DeriveIdentity("mybackup", 2)); err != nil {
		t.Fatalf("extend: %v", err)
	}
	if err := os.WriteFile(ws.ClientSecretPath(), []byte("{}"), 0o600); err != nil {
		t.Fatalf("write client secret: %v", err)
	}
	if err := secrets.Set(KeyBackupRoot, ws.Root); err != nil {
		t.Fatalf("set secret: %v", err)
	}
	if err := secrets.Set(KeyChainBase, "mybackup"); err != nil {
		t.Fatalf("set secret: %v", err)
	}

	// An orphaned directory from an older naming scheme still counts as an
	// account workspace because it holds a ledger file.
	orphan := filepath.Join(ws.Root, "stray-dir")
	if err := os.MkdirAll(orphan, 0o755); err != nil {
		t.Fatalf("mkdir orphan: %v", err)
	}
	if err := os.WriteFile(filepath.Join(orphan, "uploads.yaml"), []byte("[]"), 0o644); err != nil {
		t.Fatalf("write orphan ledger: %v", err)
	}
	// A directory without token or ledger is not an account workspace.
	unrelated := filepath.Join(ws.Root, "keep-me")
	if err := os.MkdirAll(unrelated, 0o755); err != nil {
		t.Fatalf("mkdir unrelated: %v", err)
	}
	if err := os.WriteFile(filepath.Join(unrelated, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("write unrelated: %v", err)
	}

	if err := NewResetFlow(ws, secrets).Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	for _, gone := range []string{
		ws.RegistryPath(),
		ws.ClientSecretPath(),
		ws.AccountDir("mybackup001.cloudchain"),
		ws.AccountDir("mybackup002.cloudchain"),
		orphan,
	} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Errorf("%s still exists after reset", gone)
		}
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Errorf("unrelated directory was swept: %v", err)
	}
	if _, found, _ := secrets.Get(KeyBackupRoot); found {
		t.Error("backup root pointer survived reset")
	}
	if _, found, _ := secrets.Get(KeyChainBase); found {
		t.Error("chain base pointer survived reset")
	}

	registry = NewChainRegistry(store, ws)
	if _, err := registry.Current(); err != ErrUninitialized {
		t.Fatalf("after reset the chain must look uninitialized, got %v", err)
	}
}

func TestReset_TwiceIsNoop(t *testing.T) {
	ws := NewWorkspace(t.TempDir())
	secrets := NewMemorySecretStore()
	flow := NewResetFlow(ws, secrets)

	if err := flow.Reset(); err != nil {
		t.Fatalf("reset on pristine root: %v", err)
	}
	if err := flow.Reset(); err != nil {
		t.Fatalf("second reset: %v", err)
	}
}

func TestReset_MissingRootIsNoop(t *testing.T) {
	ws := NewWorkspace(filepath.Join(t.TempDir(), "never-created"))
	if err := NewResetFlow(ws, NewMemorySecretStore()).Reset(); err != nil {
		t.Fatalf("reset with missing root: %v", err)
	}
}
