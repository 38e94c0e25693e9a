package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// FileKV keeps every key in one JSON document. Writes go to a temp file that
// is renamed over the original.
type FileKV struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
	data map[string]string
	// loadErr is reported by Get until the next successful Set.
	loadErr error
}

// NewFileKV opens the document at path on fsys, creating its directory. A
// missing file is an empty store. A document that cannot be decoded is moved
// to path+".corrupt" and the store starts empty; Get reports the decode error
// so the board can warn and fall back.
func NewFileKV(fsys afero.Fs, path string) (*FileKV, error) {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	kv := &FileKV{fs: fsys, path: path, data: map[string]string{}}
	if err := kv.load(); err != nil {
		var decodeErr *decodeError
		if !errors.As(err, &decodeErr) {
			return nil, err
		}
		kv.data = map[string]string{}
		kv.loadErr = err
		if rerr := fsys.Rename(path, path+".corrupt"); rerr != nil {
			kv.loadErr = fmt.Errorf("%w (keep aside: %v)", err, rerr)
		}
	}
	return kv, nil
}

type decodeError struct {
	path string
	err  error
}

func (e *decodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.path, e.err) }
func (e *decodeError) Unwrap() error { return e.err }

func (kv *FileKV) load() error {
	b, err := afero.ReadFile(kv.fs, kv.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", kv.path, err)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, &kv.data); err != nil {
		return &decodeError{path: kv.path, err: err}
	}
	if kv.data == nil {
		kv.data = map[string]string{}
	}
	return nil
}

func (kv *FileKV) Get(key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.loadErr != nil {
		return "", false, kv.loadErr
	}
	v, ok := kv.data[key]
	return v, ok, nil
}

func (kv *FileKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	prev, had := kv.data[key]
	kv.data[key] = value
	if err := kv.flushLocked(); err != nil {
		if had {
			kv.data[key] = prev
		} else {
			delete(kv.data, key)
		}
		return err
	}
	kv.loadErr = nil
	return nil
}

func (kv *FileKV) flushLocked() error {
	b, err := json.MarshalIndent(kv.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", kv.path, err)
	}
	tmp := kv.path + ".tmp"
	if err := afero.WriteFile(kv.fs, tmp, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := kv.fs.Rename(tmp, kv.path); err != nil {
		return fmt.Errorf("replace %s: %w", kv.path, err)
	}
	return nil
}
