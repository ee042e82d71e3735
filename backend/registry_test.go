package backend

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func testRegistry(t *testing.T) (*ChainRegistry, Workspace) {
	t.Helper()
	ws := NewWorkspace(t.TempDir())
	return NewChainRegistry(NewYAMLStore(), ws), ws
}

func mustValidate(t *testing.T, email string) ChainIdentity {
	t.Helper()
	id, err := ValidateFirstIdentity(email)
	if err != nil {
		t.Fatalf("validate %q: %v", email, err)
	}
	return id
}

func TestRegistry_UninitializedOperations(t *testing.T) {
	registry, _ := testRegistry(t)

	if _, err := registry.Current(); !errors.Is(err, ErrUninitialized) {
		t.Fatalf("Current on empty chain = %v, want ErrUninitialized", err)
	}
	if _, err := registry.Members(); !errors.Is(err, ErrUninitialized) {
		t.Fatalf("Members on empty chain = %v, want ErrUninitialized", err)
	}
	if err := registry.Extend(DeriveIdentity("mybackup", 2)); !errors.Is(err, ErrUninitialized) {
		t.Fatalf("Extend on empty chain = %v, want ErrUninitialized", err)
	}
	if _, err := registry.SwitchCurrent(1); !errors.Is(err, ErrUninitialized) {
		t.Fatalf("SwitchCurrent on empty chain = %v, want ErrUninitialized", err)
	}
}

func TestRegistry_Initialize(t *testing.T) {
	registry, ws := testRegistry(t)
	first := mustValidate(t, "mybackup001.cloudchain@gmail.com")

	if err := registry.Initialize(first); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	current, err := registry.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current != first {
		t.Fatalf("current = %+v, want %+v", current, first)
	}

	// Workspace and empty ledger must exist before Initialize returns.
	if _, err := os.Stat(ws.AccountDir(first.LocalPart())); err != nil {
		t.Fatalf("account dir missing: %v", err)
	}
	if _, err := os.Stat(ws.LedgerPath(first.LocalPart())); err != nil {
		t.Fatalf("ledger record missing: %v", err)
	}

	if err := registry.Initialize(first); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second initialize = %v, want ErrAlreadyInitialized", err)
	}
}

func TestRegistry_ExtendGrowsChain(t *testing.T) {
	registry, ws := testRegistry(t)
	first := mustValidate(t, "mybackup001.cloudchain@gmail.com")
	if err := registry.Initialize(first); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	const extensions = 3
	for k := 0; k < extensions; k++ {
		next, err := registry.RequiredNext()
		if err != nil {
			t.Fatalf("required next: %v", err)
		}
		if err := registry.Extend(next); err != nil {
			t.Fatalf("extend %d: %v", k, err)
		}
	}

	members, err := registry.Members()
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 1+extensions {
		t.Fatalf("expected %d members, got %d", 1+extensions, len(members))
	}
	for i, m := range members {
		if m.Index != i+1 {
			t.Fatalf("member %d has index %d, indices must be contiguous from 1", i, m.Index)
		}
		if m.Base != "mybackup" {
			t.Fatalf("member %d has base %q", i, m.Base)
		}
	}

	current, err := registry.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current != members[len(members)-1] {
		t.Fatalf("current %+v is not the last member %+v", current, members[len(members)-1])
	}
	for _, m := range members {
		if _, err := os.Stat(ws.LedgerPath(m.LocalPart())); err != nil {
			t.Fatalf("ledger for %s missing: %v", m.LocalPart(), err)
		}
	}
}

func TestRegistry_ExtendMismatchLeavesStateUntouched(t *testing.T) {
	registry, ws := testRegistry(t)
	first := mustValidate(t, "mybackup001.cloudchain@gmail.com")
	if err := registry.Initialize(first); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	before := snapshotTree(t, ws.Root)

	wrong := DeriveIdentity("mybackup", 3) // required is 002
	if err := registry.Extend(wrong); !errors.Is(err, ErrIdentityMismatch) {
		t.Fatalf("extend mismatch = %v, want ErrIdentityMismatch", err)
	}

	after := snapshotTree(t, ws.Root)
	if len(before) != len(after) {
		t.Fatalf("mismatch changed the tree: %d files before, %d after", len(before), len(after))
	}
	for path, content := range before {
		if string(after[path]) != string(content) {
			t.Fatalf("mismatch changed %s", path)
		}
	}

	members, err := registry.Members()
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected 1 member after failed extend, got %d", len(members))
	}

	wrongBase := DeriveIdentity("otherbase", 2)
	if err := registry.Extend(wrongBase); !errors.Is(err, ErrIdentityMismatch) {
		t.Fatalf("extend with foreign base = %v, want ErrIdentityMismatch", err)
	}
}

func TestRegistry_SwitchCurrent(t *testing.T) {
	registry, _ := testRegistry(t)
	first := mustValidate(t, "mybackup001.cloudchain@gmail.com")
	if err := registry.Initialize(first); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := registry.Extend(DeriveIdentity("mybackup", 2)); err != nil {
		t.Fatalf("extend: %v", err)
	}

	current, err := registry.SwitchCurrent(1)
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if current.Index != 1 {
		t.Fatalf("switched to %+v, want index 1", current)
	}

	got, err := registry.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if got.Index != 1 {
		t.Fatalf("switch did not persist, current = %+v", got)
	}

	for _, bad := range []int{0, -1, 3} {
		if _, err := registry.SwitchCurrent(bad); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("SwitchCurrent(%d) = %v, want ErrIndexOutOfRange", bad, err)
		}
	}
}

// End to end: initialize, gate on a nearly full quota, require 002, reject
// a confirmed 003.
func TestChainLifecycle(t *testing.T) {
	registry, _ := testRegistry(t)

	first, err := ValidateFirstIdentity("mybackup001.cloudchain@gmail.com")
	if err != nil {
		t.Fatalf("validate first: %v", err)
	}
	if err := registry.Initialize(first); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	snap := NewQuotaSnapshot(14*gb+26*gb/100, 15*gb) // 14.26 GB
	if !CanExtend(snap) {
		t.Fatal("quota at 14.26/15 GB must permit extension")
	}

	required, err := registry.RequiredNext()
	if err != nil {
		t.Fatalf("required next: %v", err)
	}
	if required.LocalPart() != "mybackup002.cloudchain" {
		t.Fatalf("required next = %q", required.LocalPart())
	}

	if err := registry.Extend(DeriveIdentity("mybackup", 3)); !errors.Is(err, ErrIdentityMismatch) {
		t.Fatalf("confirming mybackup003 = %v, want ErrIdentityMismatch", err)
	}
	members, err := registry.Members()
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("registry must still have exactly 1 member, got %d", len(members))
	}
}

func snapshotTree(t *testing.T, root string) map[string][]byte {
	t.Helper()
	tree := make(map[string][]byte)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			tree[path] = nil
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tree[path] = data
		return nil
	})
	if err != nil {
		t.Fatalf("snapshot %s: %v", root, err)
	}
	return tree
}
