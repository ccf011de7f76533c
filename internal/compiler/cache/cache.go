package cache

import (
	"sync"
	"time"

	"github.com/unknot-dev/unknot/internal/compiler/ast"
)

// CachedFile is a parsed source file held in memory, keyed by path and
// guarded by its content hash.
type CachedFile struct {
	Program  *ast.Program
	Hash     string
	Path     string
	CachedAt time.Time
}

// ParseCache holds parsed programs for watch mode so unchanged files skip
// the lexer and parser on rebuild.
type ParseCache struct {
	entries map[string]*CachedFile
	mu      sync.RWMutex
}

// NewParseCache creates an empty parse cache.
func NewParseCache() *ParseCache {
	return &ParseCache{
		entries: make(map[string]*CachedFile),
	}
}

// Get retrieves a cached program by file path.
func (pc *ParseCache) Get(path string) (*CachedFile, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	entry, exists := pc.entries[path]
	return entry, exists
}

// GetByHash retrieves a cached program by content hash, which catches files
// that moved or were renamed without changing.
func (pc *ParseCache) GetByHash(hash string) (*CachedFile, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	for _, entry := range pc.entries {
		if entry.Hash == hash {
			return entry, true
		}
	}
	return nil, false
}

// Set stores a parsed program under the given path.
func (pc *ParseCache) Set(path string, program *ast.Program, hash string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.entries[path] = &CachedFile{
		Program:  program,
		Hash:     hash,
		Path:     path,
		CachedAt: time.Now(),
	}
}

// Invalidate removes an entry from the cache.
func (pc *ParseCache) Invalidate(path string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	delete(pc.entries, path)
}

// InvalidateAll clears the entire cache.
func (pc *ParseCache) InvalidateAll() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.entries = make(map[string]*CachedFile)
}

// Size returns the number of cached entries.
func (pc *ParseCache) Size() int {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	return len(pc.entries)
}

// Prune removes entries older than maxAge and reports how many were dropped.
func (pc *ParseCache) Prune(maxAge time.Duration) int {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	now := time.Now()
	pruned := 0

	for path, entry := range pc.entries {
		if now.Sub(entry.CachedAt) > maxAge {
			delete(pc.entries, path)
			pruned++
		}
	}

	return pruned
}
