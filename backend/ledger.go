package backend

import (
	"fmt"
	"time"

	"github.com/74Thirsty/cloudchain/backend/filesystem"
)

// LedgerEntry records one completed upload. Entries are keyed by remote
// object name within a single account's ledger; the ledger is a log, not a
// unique index, so overwrite-mode re-uploads produce duplicate names.
type LedgerEntry struct {
	Name         string    `yaml:"name"`
	ID           string    `yaml:"id"`
	Size         uint64    `yaml:"size"`
	UploadedFrom string    `yaml:"uploaded_from"`
	Timestamp    time.Time `yaml:"timestamp"`
}

type SyncMode string

const (
	SyncMerge     SyncMode = "merge"
	SyncOverwrite SyncMode = "overwrite"
)

func ParseSyncMode(s string) (SyncMode, error) {
	switch SyncMode(s) {
	case SyncMerge, SyncOverwrite:
		return SyncMode(s), nil
	case "m":
		return SyncMerge, nil
	case "o":
		return SyncOverwrite, nil
	default:
		return "", fmt.Errorf("invalid sync mode %q, must be %s or %s", s, SyncMerge, SyncOverwrite)
	}
}

// Ledger owns the per-account upload log, persisted whole through the
// record store.
type Ledger struct {
	store RecordStore
	ws    Workspace
}

func NewLedger(store RecordStore, ws Workspace) *Ledger {
	return &Ledger{store: store, ws: ws}
}

// Load returns the account's entries. A ledger that does not exist yet is
// an empty sequence, not an error.
func (l *Ledger) Load(account string) ([]LedgerEntry, error) {
	var entries []LedgerEntry
	if _, err := l.store.Read(l.ws.LedgerPath(account), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Append adds one entry and rewrites the whole record.
func (l *Ledger) Append(account string, entry LedgerEntry) error {
	entries, err := l.Load(account)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	return l.store.Write(l.ws.LedgerPath(account), entries)
}

// EnsureExists writes an empty ledger record if the account has none.
func (l *Ledger) EnsureExists(account string) error {
	found, err := l.store.Read(l.ws.LedgerPath(account), &[]LedgerEntry{})
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	return l.store.Write(l.ws.LedgerPath(account), []LedgerEntry{})
}

// Reconcile computes which local files still need uploading. Merge mode
// trusts the ledger alone: any file whose name already appears is skipped
// even if the remote state was never verified. Overwrite mode re-uploads
// everything.
func Reconcile(localFiles []filesystem.FileInfo, entries []LedgerEntry, mode SyncMode) []filesystem.FileInfo {
	if mode == SyncOverwrite {
		return localFiles
	}
	uploaded := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		uploaded[e.Name] = struct{}{}
	}
	var pending []filesystem.FileInfo
	for _, f := range localFiles {
		if _, ok := uploaded[f.Name]; ok {
			continue
		}
		pending = append(pending, f)
	}
	return pending
}
