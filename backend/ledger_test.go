package backend

import (
	"testing"
	"time"

	"github.com/74Thirsty/cloudchain/backend/filesystem"
)

func testLedger(t *testing.T) (*Ledger, Workspace) {
	t.Helper()
	ws := NewWorkspace(t.TempDir())
	return NewLedger(NewYAMLStore(), ws), ws
}

func TestLedgerLoad_AbsentIsEmpty(t *testing.T) {
	ledger, _ := testLedger(t)
	entries, err := ledger.Load("mybackup001.cloudchain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty ledger, got %d entries", len(entries))
	}
}

func TestLedgerAppend_RewritesWhole(t *testing.T) {
	ledger, ws := testLedger(t)
	account := "mybackup001.cloudchain"
	if _, err := ws.EnsureAccountDir(account); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}

	first := LedgerEntry{Name: "a.txt", ID: "id-a", Size: 10, UploadedFrom: "/tmp/a.txt", Timestamp: time.Now().UTC()}
	if err := ledger.Append(account, first); err != nil {
		t.Fatalf("append: %v", err)
	}
	second := LedgerEntry{Name: "b.txt", ID: "id-b", Size: 20, UploadedFrom: "/tmp/b.txt", Timestamp: time.Now().UTC()}
	if err := ledger.Append(account, second); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, err := ledger.Load(account)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "a.txt" || entries[1].Name != "b.txt" {
		t.Fatalf("entries out of order: %+v", entries)
	}
	if entries[1].ID != "id-b" || entries[1].Size != 20 {
		t.Fatalf("entry fields lost on rewrite: %+v", entries[1])
	}
}

func TestLedgerAppend_DuplicateNamesAccepted(t *testing.T) {
	ledger, ws := testLedger(t)
	account := "mybackup001.cloudchain"
	if _, err := ws.EnsureAccountDir(account); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	entry := LedgerEntry{Name: "a.txt", ID: "id-1", Size: 1}
	for i := 0; i < 2; i++ {
		if err := ledger.Append(account, entry); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	entries, err := ledger.Load(account)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ledger is a log, expected 2 duplicate entries, got %d", len(entries))
	}
}

func TestReconcile(t *testing.T) {
	local := []filesystem.FileInfo{
		{Name: "a.txt", AbsPath: "/data/a.txt", Size: 1},
		{Name: "b.txt", AbsPath: "/data/b.txt", Size: 2},
	}
	entries := []LedgerEntry{{Name: "a.txt"}}

	merged := Reconcile(local, entries, SyncMerge)
	if len(merged) != 1 || merged[0].Name != "b.txt" {
		t.Fatalf("merge: expected exactly b.txt, got %+v", merged)
	}

	overwritten := Reconcile(local, entries, SyncOverwrite)
	if len(overwritten) != 2 {
		t.Fatalf("overwrite: expected both files, got %+v", overwritten)
	}
}

func TestReconcile_MergeWithEmptyLedger(t *testing.T) {
	local := []filesystem.FileInfo{{Name: "a.txt"}}
	if got := Reconcile(local, nil, SyncMerge); len(got) != 1 {
		t.Fatalf("expected all files pending, got %+v", got)
	}
}

func TestParseSyncMode(t *testing.T) {
	for input, want := range map[string]SyncMode{
		"merge":     SyncMerge,
		"overwrite": SyncOverwrite,
		"m":         SyncMerge,
		"o":         SyncOverwrite,
	} {
		got, err := ParseSyncMode(input)
		if err != nil {
			t.Fatalf("ParseSyncMode(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseSyncMode(%q) = %q, want %q", input, got, want)
		}
	}
	if _, err := ParseSyncMode("append"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
