// Package storage keeps opaque files, such as database snapshots, under
// slash-separated keys.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileMetadata describes a stored file
type FileMetadata struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// FileStorage stores files by key
type FileStorage interface {
	Store(ctx context.Context, key string, data []byte) error
	Retrieve(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// List returns files under prefix, oldest first
	List(ctx context.Context, prefix string) ([]FileMetadata, error)
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	return nil
}

func sortByAge(files []FileMetadata) {
	sort.Slice(files, func(i, j int) bool {
		if files[i].LastModified.Equal(files[j].LastModified) {
			return files[i].Key < files[j].Key
		}
		return files[i].LastModified.Before(files[j].LastModified)
	})
}

// LocalFileStorage implements FileStorage on the local filesystem
type LocalFileStorage struct {
	basePath string
}

// NewLocalFileStorage creates the base directory if needed
func NewLocalFileStorage(basePath string) (*LocalFileStorage, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, newStorageError("NewLocalFileStorage", "", err, false)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, newStorageError("NewLocalFileStorage", "", err, false)
	}
	return &LocalFileStorage{basePath: absPath}, nil
}

func (l *LocalFileStorage) path(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}

// Store writes data through a temp file and an atomic rename
func (l *LocalFileStorage) Store(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return newStorageError("Store", key, err, false)
	}

	filePath := l.path(key)
	if _, err := os.Stat(filePath); err == nil {
		return newStorageError("Store", key, ErrFileAlreadyExists, false)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return newStorageError("Store", key, err, true)
	}

	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return newStorageError("Store", key, err, true)
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return newStorageError("Store", key, err, true)
	}
	return nil
}

// Retrieve reads a file
func (l *LocalFileStorage) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, newStorageError("Retrieve", key, err, false)
	}

	data, err := os.ReadFile(l.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newStorageError("Retrieve", key, ErrFileNotFound, false)
		}
		return nil, newStorageError("Retrieve", key, err, true)
	}
	return data, nil
}

// Delete removes a file
func (l *LocalFileStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return newStorageError("Delete", key, err, false)
	}

	if err := os.Remove(l.path(key)); err != nil {
		if os.IsNotExist(err) {
			return newStorageError("Delete", key, ErrFileNotFound, false)
		}
		return newStorageError("Delete", key, err, true)
	}
	return nil
}

// List walks the base directory for keys under prefix
func (l *LocalFileStorage) List(ctx context.Context, prefix string) ([]FileMetadata, error) {
	var files []FileMetadata
	err := filepath.WalkDir(l.basePath, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || strings.HasSuffix(path, ".tmp") {
			return err
		}
		rel, err := filepath.Rel(l.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileMetadata{Key: key, Size: info.Size(), LastModified: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, newStorageError("List", prefix, err, true)
	}

	sortByAge(files)
	return files, nil
}

// MemoryStorage implements FileStorage in memory
type MemoryStorage struct {
	mu    sync.Mutex
	files map[string]memoryFile
	now   func() time.Time
}

type memoryFile struct {
	data     []byte
	modified time.Time
}

// NewMemoryStorage creates an empty in-memory store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{files: make(map[string]memoryFile), now: time.Now}
}

// Store saves a copy of data
func (m *MemoryStorage) Store(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return newStorageError("Store", key, err, false)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[key]; ok {
		return newStorageError("Store", key, ErrFileAlreadyExists, false)
	}
	m.files[key] = memoryFile{data: append([]byte(nil), data...), modified: m.now()}
	return nil
}

// Retrieve returns a copy of the stored data
func (m *MemoryStorage) Retrieve(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[key]
	if !ok {
		return nil, newStorageError("Retrieve", key, ErrFileNotFound, false)
	}
	return append([]byte(nil), file.data...), nil
}

// Delete removes a file
func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[key]; !ok {
		return newStorageError("Delete", key, ErrFileNotFound, false)
	}
	delete(m.files, key)
	return nil
}

// List returns files under prefix
func (m *MemoryStorage) List(ctx context.Context, prefix string) ([]FileMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var files []FileMetadata
	for key, file := range m.files {
		if strings.HasPrefix(key, prefix) {
			files = append(files, FileMetadata{Key: key, Size: int64(len(file.data)), LastModified: file.modified})
		}
	}
	sortByAge(files)
	return files, nil
}

// New creates a FileStorage of the given kind: "local" under basePath or "memory"
func New(kind, basePath string, retry *RetryConfig) (FileStorage, error) {
	var store FileStorage
	switch strings.ToLower(kind) {
	case "", "local":
		local, err := NewLocalFileStorage(basePath)
		if err != nil {
			return nil, err
		}
		store = local
	case "memory":
		store = NewMemoryStorage()
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", kind)
	}

	if retry != nil {
		store = NewRetryableFileStorage(store, retry)
	}
	return store, nil
}
