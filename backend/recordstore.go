package backend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RecordStore persists whole structured records. Read fills out and reports
// whether the record existed; Write replaces the record in one shot. There
// is no partial update: the registry and every ledger are rewritten
// wholesale on each mutation.
type RecordStore interface {
	Read(path string, out any) (bool, error)
	Write(path string, v any) error
}

// YAMLStore keeps records as flat YAML files on the local filesystem.
type YAMLStore struct{}

func NewYAMLStore() *YAMLStore { return &YAMLStore{} }

func (s *YAMLStore) Read(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: read %s: %v", ErrStorageIO, path, err)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", ErrStorageIO, path, err)
	}
	return true, nil
}

func (s *YAMLStore) Write(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStorageIO, path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorageIO, path, err)
	}
	return nil
}
