package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileWatcher_Start(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "test.knot")
	if err := os.WriteFile(testFile, []byte("capability Evaluate\n"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	// Track changes
	var mu sync.Mutex
	var changes [][]string

	watcher, err := NewFileWatcher(
		Config{
			Roots:    []string{tmpDir},
			Patterns: []string{"*.knot"},
			Debounce: 50 * time.Millisecond,
		},
		func(files []string) error {
			mu.Lock()
			defer mu.Unlock()
			changes = append(changes, files)
			return nil
		},
	)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	// Modify file
	time.Sleep(200 * time.Millisecond) // Allow watcher to initialize
	if err := os.WriteFile(testFile, []byte("capability Clone\n"), 0644); err != nil {
		t.Fatalf("Failed to modify file: %v", err)
	}

	// Wait for debounce
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if len(changes) == 0 {
		t.Error("Expected changes to be detected")
	}
}

func TestFileWatcher_WatchesNewDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	var mu sync.Mutex
	var changes [][]string

	watcher, err := NewFileWatcher(
		Config{
			Roots:    []string{tmpDir},
			Debounce: 50 * time.Millisecond,
		},
		func(files []string) error {
			mu.Lock()
			defer mu.Unlock()
			changes = append(changes, files)
			return nil
		},
	)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	time.Sleep(200 * time.Millisecond)

	// A directory created after Start joins the watch set
	subDir := filepath.Join(tmpDir, "sub")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	time.Sleep(200 * time.Millisecond)

	nested := filepath.Join(subDir, "nested.knot")
	if err := os.WriteFile(nested, []byte("capability Render\n"), 0644); err != nil {
		t.Fatalf("Failed to write nested file: %v", err)
	}
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	found := false
	for _, batch := range changes {
		for _, file := range batch {
			if file == nested {
				found = true
			}
		}
	}
	if !found {
		t.Error("Expected change in new subdirectory to be detected")
	}
}

func TestDebouncer_Add(t *testing.T) {
	var mu sync.Mutex
	var called bool
	var files []string

	debouncer := NewDebouncer(50 * time.Millisecond)
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		called = true
		files = f
	})

	// Add multiple files
	debouncer.Add("file1.knot")
	debouncer.Add("file2.knot")
	debouncer.Add("file1.knot") // Duplicate

	// Wait for debounce
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if !called {
		t.Error("Expected callback to be called")
	}

	if len(files) != 2 {
		t.Errorf("Expected 2 unique files, got %d", len(files))
	}
}

func TestDebouncer_MultipleFlushes(t *testing.T) {
	var mu sync.Mutex
	var callCount int

	debouncer := NewDebouncer(30 * time.Millisecond)
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		callCount++
	})

	// First batch
	debouncer.Add("file1.knot")
	time.Sleep(50 * time.Millisecond)

	// Second batch
	debouncer.Add("file2.knot")
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if callCount != 2 {
		t.Errorf("Expected 2 callback calls, got %d", callCount)
	}
}

func TestDebouncer_CallbackMayAdd(t *testing.T) {
	var mu sync.Mutex
	var callCount int

	debouncer := NewDebouncer(20 * time.Millisecond)
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		count := callCount
		callCount++
		mu.Unlock()

		// Re-adding from the callback must not deadlock
		if count == 0 {
			debouncer.Add("followup.knot")
		}
	})

	debouncer.Add("file1.knot")
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if callCount != 2 {
		t.Errorf("Expected 2 callback calls, got %d", callCount)
	}
}

func TestFileWatcher_ShouldIgnore(t *testing.T) {
	watcher := &FileWatcher{
		ignored: []string{"*.swp", ".DS_Store"},
	}

	tests := []struct {
		path     string
		expected bool
	}{
		{"test.knot", false},
		{"test.swp", true},
		{".DS_Store", true},
		{".hidden", true}, // hidden file
		{"normal.go", false},
	}

	for _, tt := range tests {
		result := watcher.shouldIgnore(tt.path)
		if result != tt.expected {
			t.Errorf("shouldIgnore(%q) = %v, expected %v", tt.path, result, tt.expected)
		}
	}
}

func TestFileWatcher_MatchesPattern(t *testing.T) {
	tests := []struct {
		patterns []string
		path     string
		expected bool
	}{
		{[]string{"*.knot"}, "test.knot", true},
		{[]string{"*.knot"}, "test.go", false},
		{[]string{"*.knot", "*.yml"}, "unknot.yml", true},
		{[]string{}, "anything.txt", true}, // No patterns = match all
	}

	for _, tt := range tests {
		watcher := &FileWatcher{patterns: tt.patterns}
		result := watcher.matchesPattern(tt.path)
		if result != tt.expected {
			t.Errorf("matchesPattern(%v, %q) = %v, expected %v",
				tt.patterns, tt.path, result, tt.expected)
		}
	}
}

func TestFileWatcher_Stop(t *testing.T) {
	watcher, err := NewFileWatcher(
		Config{Roots: []string{t.TempDir()}},
		func(files []string) error { return nil },
	)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	// Stop should not error
	if err := watcher.Stop(); err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}

	// Second stop should not panic
	if err := watcher.Stop(); err != nil {
		t.Errorf("Second Stop() returned error: %v", err)
	}
}
