package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFileResolver implements FileResolver for the local filesystem.
// Relative paths are taken relative to BaseDir, or the working directory
// when BaseDir is empty.
type DefaultFileResolver struct {
	BaseDir string
}

// NewDefaultFileResolver creates a standard filesystem resolver.
func NewDefaultFileResolver() *DefaultFileResolver {
	return &DefaultFileResolver{}
}

// Resolve handles filesystem paths.
func (r *DefaultFileResolver) Resolve(path string) (io.ReadCloser, string, error) {
	resolvedPath := path
	if !filepath.IsAbs(path) && r.BaseDir != "" {
		resolvedPath = filepath.Join(r.BaseDir, path)
	}

	canonicalPath, err := filepath.Abs(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("could not get absolute path for '%s': %w", resolvedPath, err)
	}

	file, err := os.Open(canonicalPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("file not found: %s (resolved from '%s'): %w", canonicalPath, path, err)
		}
		return nil, "", fmt.Errorf("could not open file '%s': %w", canonicalPath, err)
	}
	return file, canonicalPath, nil
}

// MemoryResolver serves sources from memory. Paths are used as given.
type MemoryResolver struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{files: make(map[string][]byte)}
}

func (m *MemoryResolver) WriteFile(path string, data string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = []byte(data)
}

// PreloadFiles adds several files at once.
func (m *MemoryResolver) PreloadFiles(files map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for path, content := range files {
		m.files[path] = []byte(content)
	}
}

func (m *MemoryResolver) Resolve(path string) (io.ReadCloser, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, exists := m.files[path]
	if !exists {
		return nil, "", fmt.Errorf("file not found: %s: %w", path, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), path, nil
}
