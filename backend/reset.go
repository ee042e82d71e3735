package backend

import (
	"fmt"
	"os"
)

// ResetFlow destructively clears every trace of the chain: the registry
// record, the client-secret record, every account workspace, and the
// secret-store pointers. Confirmation is the caller's responsibility.
type ResetFlow struct {
	ws      Workspace
	secrets SecretStore
}

func NewResetFlow(ws Workspace, secrets SecretStore) *ResetFlow {
	return &ResetFlow{ws: ws, secrets: secrets}
}

// Reset is idempotent: running it twice, or with nothing to remove, is not
// an error. Secret-store deletions are best-effort; a missing key is fine.
func (r *ResetFlow) Reset() error {
	for _, path := range []string{r.ws.RegistryPath(), r.ws.ClientSecretPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: remove %s: %v", ErrStorageIO, path, err)
		}
	}
	dirs, err := r.ws.AccountDirs()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("%w: remove %s: %v", ErrStorageIO, dir, err)
		}
	}
	for _, key := range []string{KeyBackupRoot, KeyChainBase} {
		_ = r.secrets.Delete(key)
	}
	return nil
}
