package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileKV is the anonymous session's durable key-value store: one JSON
// file per key in a data directory. It implements progress.KV.
type FileKV struct {
	dir string
}

// NewFileKV creates a FileKV rooted at dir, creating it if needed.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (kv *FileKV) Get(key string) ([]byte, bool, error) {
	raw, err := os.ReadFile(kv.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return raw, true, nil
}

func (kv *FileKV) Set(key string, value []byte) error {
	// Write-then-rename so a crash never leaves a torn file.
	tmp := kv.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, kv.path(key)); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func (kv *FileKV) path(key string) string {
	// Keys are dotted identifiers; keep the filename flat.
	return filepath.Join(kv.dir, strings.ReplaceAll(key, string(os.PathSeparator), "_")+".json")
}
