package commands

import (
	"bytes"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unknot-dev/unknot/internal/cli/config"
	"github.com/unknot-dev/unknot/internal/cli/ui"
	"github.com/unknot-dev/unknot/internal/compiler/cache"
	"github.com/unknot-dev/unknot/internal/compiler/emit"
	"github.com/unknot-dev/unknot/internal/compiler/errors"
	"github.com/unknot-dev/unknot/internal/compiler/solver"
	"github.com/unknot-dev/unknot/internal/watch"
)

var (
	watchWrite   bool
	watchVerbose bool
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Re-run the analysis when .knot files change",
		Long: `Watch the knot source directories and re-run the analysis on every
change.

Changed files are re-parsed; unchanged files are served from the parse
cache. Each run carries a correlation id so its log lines can be read
together.

Examples:
  # Watch the configured source directory
  unknot watch

  # Rewrite source files in place after each clean run
  unknot watch --write

  # Enable verbose logging
  unknot watch --verbose
`,
		RunE: runWatch,
	}

	cmd.Flags().BoolVarP(&watchWrite, "write", "w", false, "Rewrite source files in place after each clean run")
	cmd.Flags().BoolVar(&watchVerbose, "verbose", false, "Show verbose output")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	warningColor := color.New(color.FgYellow)

	// Load config
	cfg, err := config.Load()
	if err != nil {
		if watchVerbose {
			warningColor.Printf("Warning: %v\n", err)
		}
	}

	sourceDir := "knot"
	if cfg != nil && cfg.Source.Dir != "" {
		sourceDir = cfg.Source.Dir
	}

	roots, err := watchRoots(args, sourceDir)
	if err != nil {
		return err
	}

	debounce := 100 * time.Millisecond
	if cfg != nil && cfg.Watch.DebounceMs > 0 {
		debounce = time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	}

	logCfg := zap.NewDevelopmentConfig()
	if !watchVerbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	// One coordinator for the whole session keeps unchanged files cached
	// between runs
	coord := cache.NewCoordinator()

	runOnce := func(changed []string) error {
		started := time.Now()
		runID := uuid.NewString()[:8]
		log := logger.With(zap.String("run", runID))

		if len(changed) > 0 {
			coord.Invalidate(changed...)
			for _, path := range changed {
				if related := coord.Index().Related(path); len(related) > 0 {
					log.Info("change affects related files",
						zap.String("file", path),
						zap.Strings("related", related))
				}
			}
			log.Info("change detected", zap.Strings("files", changed))
		}

		paths, err := knotFiles(args, cfg)
		if err != nil {
			log.Warn("no files to analyze", zap.Error(err))
			return nil
		}

		results, metrics := coord.ParseFiles(paths, true)

		diags, err := collectSyntaxErrors(results)
		if err != nil {
			log.Error("parse failed", zap.Error(err))
			return nil
		}
		if len(diags) > 0 {
			outputErrorsTerminal(diags)
			return nil
		}

		files := make([]solver.SourceFile, len(results))
		for i, result := range results {
			files[i] = solver.SourceFile{Path: result.Path, Program: result.Program}
		}

		batch, loadErr := solver.Load(files)
		if loadErr != nil {
			outputErrorsTerminal([]*errors.CompilerError{loadErr})
			return nil
		}

		suggestCapabilities(batch.Warnings, coord.Index().Capabilities())

		opts := solver.Options{}
		if cfg != nil {
			opts.Tracked = cfg.Analysis.Tracked
			opts.ExpansionLimit = cfg.Analysis.ExpansionLimit
		}

		result, analysisErr := solver.Analyze(batch, opts)
		if analysisErr != nil {
			outputErrorsTerminal([]*errors.CompilerError{analysisErr})
			return nil
		}

		if len(result.Warnings) > 0 {
			ui.RenderDiagnostics(os.Stderr, result.Warnings, false)
		}

		rewrites := rewrittenDeclarations(batch, result)

		written := 0
		if watchWrite && len(rewrites) > 0 {
			refs := make([]*solver.SourceFile, len(files))
			for i := range files {
				refs[i] = &files[i]
			}
			outputs, err := emit.Sources(refs, result.Declarations)
			if err != nil {
				log.Error("emission failed", zap.Error(err))
				return nil
			}
			written, err = writeChangedFiles(files, outputs)
			if err != nil {
				log.Error("write failed", zap.Error(err))
				return nil
			}
		}

		log.Info("analysis clean",
			zap.Int("files", metrics.TotalFiles),
			zap.Int("cache_hits", metrics.CacheHits),
			zap.Int("rewrites", len(rewrites)),
			zap.Int("written", written),
			zap.Int("steps", result.Steps),
			zap.Duration("elapsed", time.Since(started)))
		return nil
	}

	fw, err := watch.NewFileWatcher(watch.Config{
		Roots:    roots,
		Patterns: []string{"*.knot"},
		Debounce: debounce,
		Logger:   logger,
	}, runOnce)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := fw.Start(); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	// Display banner
	banner := color.New(color.FgCyan, color.Bold)
	info := color.New(color.FgWhite)

	fmt.Println()
	banner.Println("🔍 Unknot Watch")
	for _, root := range roots {
		info.Printf("   Watching: %s\n", root)
	}
	info.Printf("   Debounce: %s\n", debounce)
	if watchWrite {
		info.Println("   Rewriting files in place")
	}
	fmt.Println()
	color.New(color.FgYellow).Println("⌨  Press Ctrl+C to stop")
	fmt.Println()

	// Initial run before the first change arrives
	runOnce(nil)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n\nShutting down...")

	if err := fw.Stop(); err != nil {
		return fmt.Errorf("error stopping watcher: %w", err)
	}

	color.New(color.FgGreen).Println("Goodbye!")
	return nil
}

// watchRoots resolves the directories to watch: the parents of any explicit
// paths, or the configured source directory.
func watchRoots(args []string, sourceDir string) ([]string, error) {
	if len(args) == 0 {
		if _, err := os.Stat(sourceDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s/ directory not found - are you in an unknot project?", sourceDir)
		}
		return []string{sourceDir}, nil
	}

	seen := make(map[string]bool)
	var roots []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		root := arg
		if !info.IsDir() {
			root = filepath.Dir(arg)
		}
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	return roots, nil
}

// writeChangedFiles writes rewritten sources back, skipping files whose
// content is already current so the write does not feed the watcher a
// fresh event.
func writeChangedFiles(files []solver.SourceFile, outputs map[string]string) (int, error) {
	written := 0
	for _, f := range files {
		content := []byte(outputs[f.Path])
		current, err := os.ReadFile(f.Path)
		if err == nil && bytes.Equal(current, content) {
			continue
		}
		if err := os.WriteFile(f.Path, content, 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
		written++
	}
	return written, nil
}
