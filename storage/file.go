package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

var _ Store = (*FileStore)(nil)

// FileStore persists keys as a single JSON object on disk. Read and write
// failures are swallowed per the Store contract, so a missing, unreadable or
// corrupt file behaves like an empty store.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the JSON file at path. The parent
// directory is created on the first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) TryGet(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.read()[key]
	return v, ok
}

func (f *FileStore) TrySet(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values := f.read()
	values[key] = value
	f.write(values)
}

func (f *FileStore) TryDelete(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values := f.read()
	if _, ok := values[key]; !ok {
		return
	}
	delete(values, key)
	f.write(values)
}

// Clear removes the backing file entirely.
func (f *FileStore) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = os.Remove(f.path)
}

func (f *FileStore) read() map[string]string {
	values := make(map[string]string)
	b, err := os.ReadFile(f.path)
	if err != nil {
		return values
	}
	_ = json.Unmarshal(b, &values)
	return values
}

func (f *FileStore) write(values map[string]string) {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return
	}
	b, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(f.path, b, 0o600)
}
