package backend

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/74Thirsty/cloudchain/backend/filesystem"
)

const (
	registryFileName     = "accounts.yaml"
	clientSecretFileName = "client_secret.json"
	tokenFileName        = "token.toml"
	ledgerFileName       = "uploads.yaml"
)

// Workspace maps chain state onto the local backup root: the registry
// record at the top plus one directory per account (token, ledger, and the
// mirrored copy of everything uploaded through that account).
type Workspace struct {
	Root string
}

func NewWorkspace(root string) Workspace {
	return Workspace{Root: root}
}

func (w Workspace) RegistryPath() string     { return filepath.Join(w.Root, registryFileName) }
func (w Workspace) ClientSecretPath() string { return filepath.Join(w.Root, clientSecretFileName) }

func (w Workspace) AccountDir(local string) string {
	return filepath.Join(w.Root, local)
}

func (w Workspace) TokenPath(local string) string {
	return filepath.Join(w.AccountDir(local), tokenFileName)
}

func (w Workspace) LedgerPath(local string) string {
	return filepath.Join(w.AccountDir(local), ledgerFileName)
}

// EnsureAccountDir lazily creates the account directory on first reference.
func (w Workspace) EnsureAccountDir(local string) (string, error) {
	dir := w.AccountDir(local)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	return dir, nil
}

// Mirror copies an uploaded file into the account directory so the local
// tree stays a replica of what went to the remote folder.
func (w Workspace) Mirror(local string, srcPath string) (string, error) {
	dir, err := w.EnsureAccountDir(local)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(dir, filepath.Base(srcPath))
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	defer src.Close()
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	return dst, nil
}

// MirrorFiles lists every regular file in the account's mirror, excluding
// the token and ledger records the tool itself maintains. The tool keeps
// those only at the top of the account directory, so files with the same
// names deeper in the mirror are user data and stay listed.
func (w Workspace) MirrorFiles(local string) ([]filesystem.FileInfo, error) {
	dir := w.AccountDir(local)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	files, err := filesystem.List(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	out := files[:0]
	for _, f := range files {
		if filepath.Dir(f.AbsPath) == dir && (f.Name == tokenFileName || f.Name == ledgerFileName) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// AccountDirs finds account workspaces structurally: any direct subdirectory
// holding a token or ledger file counts, whatever it is named. Orphans from
// an older naming scheme are therefore still found by reset.
func (w Workspace) AccountDirs() ([]string, error) {
	entries, err := os.ReadDir(w.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(w.Root, e.Name())
		if fileExists(filepath.Join(dir, tokenFileName)) || fileExists(filepath.Join(dir, ledgerFileName)) {
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
