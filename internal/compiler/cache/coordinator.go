package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/unknot-dev/unknot/internal/compiler/ast"
	"github.com/unknot-dev/unknot/internal/compiler/lexer"
	"github.com/unknot-dev/unknot/internal/compiler/parser"
)

// ParseMetrics tracks performance counters for one ParseFiles run.
type ParseMetrics struct {
	TotalFiles    int
	CacheHits     int
	CacheMisses   int
	FilesParsed   int
	TotalDuration time.Duration
	LexDuration   time.Duration
	ParseDuration time.Duration
	StartTime     time.Time
	EndTime       time.Time
}

// CacheHitRate returns the cache hit rate as a percentage.
func (m *ParseMetrics) CacheHitRate() float64 {
	if m.TotalFiles == 0 {
		return 0.0
	}
	return float64(m.CacheHits) / float64(m.TotalFiles) * 100.0
}

// ParseResult is the outcome of parsing a single source file. LexErrors and
// ParseErrors carry the detailed diagnostics; Err summarizes them for quick
// nil checks.
type ParseResult struct {
	Path        string
	Program     *ast.Program
	Hash        string
	Cached      bool
	LexErrors   []lexer.LexError
	ParseErrors []parser.ParseError
	Err         error
}

// Coordinator parses knot files with content-hash caching. Watch mode keeps
// one coordinator alive across rebuilds so unchanged files skip the lexer
// and parser entirely.
type Coordinator struct {
	cache   *ParseCache
	index   *CapabilityIndex
	hasher  *FileHasher
	metrics *ParseMetrics
	mu      sync.Mutex
}

// NewCoordinator creates a coordinator with empty caches.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		cache:   NewParseCache(),
		index:   NewCapabilityIndex(),
		hasher:  NewFileHasher(),
		metrics: &ParseMetrics{},
	}
}

// ParseFiles parses the given files, reusing cached programs where content
// hashes match. Source files are independent parse units, so parallel mode
// hands the whole set to one worker group. Results keep the order of paths.
func (c *Coordinator) ParseFiles(paths []string, parallel bool) ([]*ParseResult, *ParseMetrics) {
	c.mu.Lock()
	c.metrics = &ParseMetrics{
		TotalFiles: len(paths),
		StartTime:  time.Now(),
	}
	c.mu.Unlock()

	var results []*ParseResult
	if parallel {
		results = c.parseParallel(paths)
	} else {
		results = c.parseSequential(paths)
	}

	c.mu.Lock()
	c.metrics.EndTime = time.Now()
	c.metrics.TotalDuration = c.metrics.EndTime.Sub(c.metrics.StartTime)
	metrics := *c.metrics
	c.mu.Unlock()

	return results, &metrics
}

func (c *Coordinator) parseSequential(paths []string) []*ParseResult {
	results := make([]*ParseResult, len(paths))
	for i, path := range paths {
		results[i] = c.parseFile(path)
	}
	return results
}

func (c *Coordinator) parseParallel(paths []string) []*ParseResult {
	results := make([]*ParseResult, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(slot int, p string) {
			defer wg.Done()
			results[slot] = c.parseFile(p)
		}(i, path)
	}
	wg.Wait()

	return results
}

// parseFile parses a single file, consulting the cache first by path and
// then by content hash so renamed files still hit.
func (c *Coordinator) parseFile(path string) *ParseResult {
	hash, err := c.hasher.HashFile(path)
	if err != nil {
		return &ParseResult{
			Path: path,
			Err:  fmt.Errorf("failed to hash file: %w", err),
		}
	}

	if cached, exists := c.cache.Get(path); exists {
		if cached.Hash == hash {
			c.mu.Lock()
			c.metrics.CacheHits++
			c.mu.Unlock()

			return &ParseResult{
				Path:    path,
				Program: cached.Program,
				Hash:    hash,
				Cached:  true,
			}
		}
		c.cache.Invalidate(path)
	}

	if cached, exists := c.cache.GetByHash(hash); exists {
		c.mu.Lock()
		c.metrics.CacheHits++
		c.mu.Unlock()

		c.cache.Set(path, cached.Program, hash)
		c.index.Update(path, cached.Program)

		return &ParseResult{
			Path:    path,
			Program: cached.Program,
			Hash:    hash,
			Cached:  true,
		}
	}

	c.mu.Lock()
	c.metrics.CacheMisses++
	c.metrics.FilesParsed++
	c.mu.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		return &ParseResult{
			Path: path,
			Err:  fmt.Errorf("failed to read file: %w", err),
		}
	}

	lexStart := time.Now()
	tokens, lexErrors := lexer.New(string(content)).ScanTokens()
	lexDuration := time.Since(lexStart)

	c.mu.Lock()
	c.metrics.LexDuration += lexDuration
	c.mu.Unlock()

	if len(lexErrors) > 0 {
		return &ParseResult{
			Path:      path,
			Hash:      hash,
			LexErrors: lexErrors,
			Err:       fmt.Errorf("%d lex errors", len(lexErrors)),
		}
	}

	parseStart := time.Now()
	program, parseErrors := parser.New(tokens).Parse()
	parseDuration := time.Since(parseStart)

	c.mu.Lock()
	c.metrics.ParseDuration += parseDuration
	c.mu.Unlock()

	if len(parseErrors) > 0 {
		return &ParseResult{
			Path:        path,
			Hash:        hash,
			ParseErrors: parseErrors,
			Err:         fmt.Errorf("%d parse errors", len(parseErrors)),
		}
	}

	c.cache.Set(path, program, hash)
	c.index.Update(path, program)

	return &ParseResult{
		Path:    path,
		Program: program,
		Hash:    hash,
	}
}

// Invalidate drops the cached programs and index entries for the given
// paths. The next ParseFiles call re-reads them from disk.
func (c *Coordinator) Invalidate(paths ...string) {
	for _, path := range paths {
		c.cache.Invalidate(path)
		c.index.Remove(path)
	}
}

// Index exposes the capability cross-reference index.
func (c *Coordinator) Index() *CapabilityIndex {
	return c.index
}

// Metrics returns a copy of the metrics from the last ParseFiles run.
func (c *Coordinator) Metrics() *ParseMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	metrics := *c.metrics
	return &metrics
}

// Stats returns cache statistics for verbose output.
func (c *Coordinator) Stats() map[string]interface{} {
	return map[string]interface{}{
		"cache_size": c.cache.Size(),
		"index_size": c.index.Size(),
	}
}

// Clear resets the cache, the index, and the metrics.
func (c *Coordinator) Clear() {
	c.cache.InvalidateAll()
	c.index.Clear()
	c.mu.Lock()
	c.metrics = &ParseMetrics{}
	c.mu.Unlock()
}

// ScanDirectory returns every .knot file under dir. filepath.Walk visits
// files in lexical order, so the batch order is stable across runs.
func ScanDirectory(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && filepath.Ext(path) == ".knot" {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}
