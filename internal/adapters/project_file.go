package adapters

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/cespare/xxhash/v2"

	"msbuild-packages/internal/ports"
)

// ProjectFileAdapter reads project files and keeps their content in memory
// until the file changes on disk. Files larger than maxBytes are refused
// before they are read; zero disables the check.
type ProjectFileAdapter struct {
	maxBytes int64
	mu       sync.Mutex
	cache    map[string]projectFileCacheEntry
}

func NewProjectFileAdapter(maxBytes int64) *ProjectFileAdapter {
	return &ProjectFileAdapter{maxBytes: maxBytes, cache: map[string]projectFileCacheEntry{}}
}

type projectFileCacheEntry struct {
	modTime time.Time
	size    int64
	content []byte
	digest  string
}

func (a *ProjectFileAdapter) Open(path string) (io.ReadCloser, error) {
	entry, err := a.load(path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(entry.content)), nil
}

// Digest returns the xxhash of the file content as 16 hex digits.
func (a *ProjectFileAdapter) Digest(path string) (string, error) {
	entry, err := a.load(path)
	if err != nil {
		return "", err
	}
	return entry.digest, nil
}

func (a *ProjectFileAdapter) load(path string) (projectFileCacheEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return projectFileCacheEntry{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read project file").
			WithCause(err)
	}
	if a.maxBytes > 0 && info.Size() > a.maxBytes {
		return projectFileCacheEntry{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("project file exceeds %d bytes", a.maxBytes))
	}
	a.mu.Lock()
	if entry, ok := a.cache[path]; ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		a.mu.Unlock()
		return entry, nil
	}
	a.mu.Unlock()

	content, err := readAtMost(path, a.maxBytes)
	if err != nil {
		return projectFileCacheEntry{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read project file").
			WithCause(err)
	}
	entry := projectFileCacheEntry{
		modTime: info.ModTime(),
		size:    info.Size(),
		content: content,
		digest:  fmt.Sprintf("%016x", xxhash.Sum64(content)),
	}

	a.mu.Lock()
	a.cache[path] = entry
	a.mu.Unlock()
	return entry, nil
}

// readAtMost guards against a file that grew between Stat and the read.
func readAtMost(path string, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return os.ReadFile(path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > maxBytes {
		return nil, fmt.Errorf("file grew past %d bytes while reading", maxBytes)
	}
	return content, nil
}

var _ ports.ProjectSourcePort = (*ProjectFileAdapter)(nil)
