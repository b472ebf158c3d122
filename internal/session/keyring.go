package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Keyring is the durable home of the token pair, the local-storage analogue.
// Nothing else about the client survives a restart.
type Keyring interface {
	Load() (access, refresh string, err error)
	Save(access, refresh string) error
	Clear() error
}

// tokenFile is the on-disk shape. The key names match the storage keys the
// backend's other clients use.
type tokenFile struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// FileKeyring persists tokens as a JSON file, created with 0600 permissions.
type FileKeyring struct {
	path string
}

func NewFileKeyring(path string) *FileKeyring {
	return &FileKeyring{path: path}
}

func (k *FileKeyring) Load() (string, string, error) {
	data, err := os.ReadFile(k.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("read token file: %w", err)
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		// A corrupt token file is equivalent to being logged out.
		return "", "", nil
	}
	return tf.Access, tf.Refresh, nil
}

func (k *FileKeyring) Save(access, refresh string) error {
	if err := os.MkdirAll(filepath.Dir(k.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.Marshal(tokenFile{Access: access, Refresh: refresh})
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}
	if err := os.WriteFile(k.path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (k *FileKeyring) Clear() error {
	err := os.Remove(k.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryKeyring holds tokens in memory only. Tests and ephemeral sessions.
type MemoryKeyring struct {
	access, refresh string
}

func NewMemoryKeyring() *MemoryKeyring { return &MemoryKeyring{} }

func (k *MemoryKeyring) Load() (string, string, error) { return k.access, k.refresh, nil }

func (k *MemoryKeyring) Save(access, refresh string) error {
	k.access, k.refresh = access, refresh
	return nil
}

func (k *MemoryKeyring) Clear() error {
	k.access, k.refresh = "", ""
	return nil
}
