package backend

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	// ServiceName scopes every key this tool stores in the system keyring.
	ServiceName = "cloudchain"

	// KeyBackupRoot holds the absolute path of the local backup root.
	KeyBackupRoot = "base_backup"
	// KeyChainBase holds the extracted chain base token.
	KeyChainBase = "chain_base"
)

// SecretStore is the opaque key/value store for the process-wide pointers.
// Get reports absence instead of failing; Delete of a missing key is not an
// error.
type SecretStore interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// KeyringStore backs SecretStore with the operating system keyring.
type KeyringStore struct {
	service string
}

func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: ServiceName}
}

func (k *KeyringStore) Get(key string) (string, bool, error) {
	v, err := keyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (k *KeyringStore) Set(key, value string) error {
	return keyring.Set(k.service, key, value)
}

func (k *KeyringStore) Delete(key string) error {
	if err := keyring.Delete(k.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// MemorySecretStore is an in-process SecretStore for tests and for
// environments without a system keyring.
type MemorySecretStore struct {
	values map[string]string
}

func NewMemorySecretStore() *MemorySecretStore {
	return &MemorySecretStore{values: make(map[string]string)}
}

func (m *MemorySecretStore) Get(key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemorySecretStore) Set(key, value string) error {
	m.values[key] = value
	return nil
}

func (m *MemorySecretStore) Delete(key string) error {
	delete(m.values, key)
	return nil
}
