package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/user/wolbook/internal/model"
	"github.com/user/wolbook/internal/util"
)

// Store persists the host list as a single JSON document.
type Store struct {
	path string
}

// NewStore creates a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the host list. A missing file yields an empty list; an
// unparsable one yields a *CorruptedStoreError.
func (s *Store) Load() ([]model.HostRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read host list: %w", err)
	}

	var doc model.HostList
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptedStoreError{Path: s.path, Err: err}
	}
	return doc.Hosts, nil
}

// Save overwrites the whole document. It writes a temp file next to the
// target and renames it into place.
func (s *Store) Save(hosts []model.HostRecord) error {
	if hosts == nil {
		hosts = []model.HostRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(model.HostList{Hosts: hosts}); err != nil {
		return fmt.Errorf("failed to encode host list: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := util.EnsureDir(dir); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := f.Name()
	defer func() {
		_ = f.Close()
		_ = os.Remove(tmp)
	}()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write host list: %w", err)
	}
	if err := f.Chmod(0644); err != nil {
		return fmt.Errorf("failed to write host list: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write host list: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace host list: %w", err)
	}
	return nil
}
