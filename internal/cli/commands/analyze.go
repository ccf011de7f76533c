package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/unknot-dev/unknot/internal/cli/config"
	"github.com/unknot-dev/unknot/internal/cli/ui"
	"github.com/unknot-dev/unknot/internal/compiler/ast"
	"github.com/unknot-dev/unknot/internal/compiler/cache"
	"github.com/unknot-dev/unknot/internal/compiler/emit"
	"github.com/unknot-dev/unknot/internal/compiler/errors"
	"github.com/unknot-dev/unknot/internal/compiler/solver"
)

var (
	analyzeJSON    bool
	analyzeVerbose bool
	analyzeWrite   bool
	analyzeOut     string
)

// NewAnalyzeCommand creates the analyze command
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [paths...]",
		Short: "Expand tracked obligations and rewrite declarations cycle-free",
		Long: `Analyze all .knot files and rewrite their declarations so that no
obligation cycle remains.

The analysis pipeline:
  1. Lexical analysis - tokenize .knot files
  2. Parsing - generate AST
  3. Loading - collect declarations, patterns, and track lists
  4. Expansion - grow each constraint graph to a fixpoint
  5. Cycle breaking - rewrite where clauses, promoting leaves

Without --write or --out the rewritten declarations go to stdout.`,
		Example: `  # Analyze the configured source directory, print rewrites to stdout
  unknot analyze

  # Rewrite the source files in place
  unknot analyze --write

  # Write rewritten files into a separate directory
  unknot analyze --out build

  # Analyze specific files with verbose per-declaration output
  unknot analyze decls/core.knot decls/extra.knot -v

  # Output diagnostics and results in JSON format (useful for tooling)
  unknot analyze --json`,
		RunE: runAnalyze,
	}

	cmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output diagnostics and results in JSON format")
	cmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Show detailed analysis output")
	cmd.Flags().BoolVarP(&analyzeWrite, "write", "w", false, "Rewrite the source files in place")
	cmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Write rewritten files into this directory")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)
	warningColor := color.New(color.FgYellow)

	// Load config
	cfg, err := config.Load()
	if err != nil {
		if analyzeVerbose {
			warningColor.Printf("Warning: %v\n", err)
		}
	}

	// Determine output directory
	outDir := analyzeOut
	if outDir == "" && cfg != nil {
		outDir = cfg.Output.Dir
	}

	paths, err := knotFiles(args, cfg)
	if err != nil {
		return err
	}

	if analyzeVerbose {
		infoColor.Printf("Found %d .knot file(s)\n", len(paths))
	}

	coord := cache.NewCoordinator()
	results, metrics := coord.ParseFiles(paths, true)

	allErrors, err := collectSyntaxErrors(results)
	if err != nil {
		return err
	}
	if len(allErrors) > 0 {
		if analyzeJSON {
			outputErrorsJSON(allErrors)
		} else {
			outputErrorsTerminal(allErrors)
		}
		return fmt.Errorf("parsing failed")
	}

	files := make([]solver.SourceFile, len(results))
	for i, result := range results {
		files[i] = solver.SourceFile{Path: result.Path, Program: result.Program}
	}

	batch, loadErr := solver.Load(files)
	if loadErr != nil {
		allErrors = append(allErrors, loadErr)
		if analyzeJSON {
			outputErrorsJSON(allErrors)
		} else {
			outputErrorsTerminal(allErrors)
		}
		return fmt.Errorf("analysis failed")
	}

	suggestCapabilities(batch.Warnings, coord.Index().Capabilities())

	opts := solver.Options{}
	if cfg != nil {
		opts.Tracked = cfg.Analysis.Tracked
		opts.ExpansionLimit = cfg.Analysis.ExpansionLimit
	}

	var result *solver.Result
	var analysisErr *errors.CompilerError
	run := func() error {
		result, analysisErr = solver.Analyze(batch, opts)
		if analysisErr != nil {
			return analysisErr
		}
		return nil
	}

	if analyzeJSON || analyzeVerbose {
		run()
	} else {
		ui.WithSpinner(os.Stderr, "Analyzing declarations", false, run)
	}

	if analysisErr != nil {
		allErrors = append(allErrors, analysisErr)
		if analyzeJSON {
			outputErrorsJSON(allErrors)
		} else {
			outputErrorsTerminal(allErrors)
		}
		return fmt.Errorf("analysis failed")
	}

	if !analyzeJSON && len(result.Warnings) > 0 {
		ui.RenderDiagnostics(os.Stderr, result.Warnings, false)
	}

	refs := make([]*solver.SourceFile, len(files))
	for i := range files {
		refs[i] = &files[i]
	}
	outputs, err := emit.Sources(refs, result.Declarations)
	if err != nil {
		return fmt.Errorf("emission failed: %w", err)
	}

	sourceDir := "knot"
	if cfg != nil && cfg.Source.Dir != "" {
		sourceDir = cfg.Source.Dir
	}

	switch {
	case analyzeWrite:
		for _, f := range files {
			if err := os.WriteFile(f.Path, []byte(outputs[f.Path]), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", f.Path, err)
			}
			if analyzeVerbose {
				infoColor.Printf("  Rewrote %s\n", f.Path)
			}
		}

	case outDir != "":
		for _, f := range files {
			destPath := filepath.Join(outDir, relativeTo(sourceDir, f.Path))
			if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
				return fmt.Errorf("failed to create directory for %s: %w", destPath, err)
			}
			if err := os.WriteFile(destPath, []byte(outputs[f.Path]), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", destPath, err)
			}
			if analyzeVerbose {
				infoColor.Printf("  Wrote %s\n", destPath)
			}
		}

	case analyzeJSON:
		// Files travel inside the JSON document instead

	default:
		for _, f := range files {
			fmt.Printf("# %s\n%s\n", f.Path, outputs[f.Path])
		}
	}

	if analyzeJSON {
		outputResultJSON(result, outputs)
		return nil
	}

	if analyzeVerbose {
		declTable := ui.NewTable(os.Stdout, []string{"Declaration", "Nodes", "Edges"}, nil)
		for i, decl := range result.Declarations {
			declTable.AddRow(decl.String(),
				strconv.Itoa(result.Graphs[i].NodeCount()),
				strconv.Itoa(result.Graphs[i].EdgeCount()))
		}
		declTable.Render()

		stats := ui.NewKeyValueTable(os.Stdout, false)
		stats.AddRow("Cache hits", strconv.Itoa(metrics.CacheHits))
		stats.AddRow("Files parsed", strconv.Itoa(metrics.FilesParsed))
		stats.AddRow("Lex time", metrics.LexDuration.String())
		stats.AddRow("Parse time", metrics.ParseDuration.String())
		stats.Render()
	}

	elapsed := time.Since(startTime)
	fmt.Println()
	successColor.Printf("✓ Analysis successful in %.2fs\n", elapsed.Seconds())
	infoColor.Printf("  Files: %d\n", metrics.TotalFiles)
	infoColor.Printf("  Tracked: %s\n", strings.Join(result.Tracked, ", "))
	infoColor.Printf("  Expansion steps: %d\n", result.Steps)

	return nil
}

// knotFiles resolves the .knot files to analyze: explicit paths and
// directories from args, or the configured source directory.
func knotFiles(args []string, cfg *config.Config) ([]string, error) {
	if len(args) > 0 {
		var paths []string
		for _, arg := range args {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", arg, err)
			}
			if info.IsDir() {
				found, err := cache.ScanDirectory(arg)
				if err != nil {
					return nil, fmt.Errorf("failed to find .knot files in %s: %w", arg, err)
				}
				paths = append(paths, found...)
				continue
			}
			paths = append(paths, arg)
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no .knot files found")
		}
		return paths, nil
	}

	sourceDir := "knot"
	if cfg != nil && cfg.Source.Dir != "" {
		sourceDir = cfg.Source.Dir
	}

	if _, err := os.Stat(sourceDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s/ directory not found - are you in an unknot project?", sourceDir)
	}

	paths, err := cache.ScanDirectory(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to find .knot files: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .knot files found in %s/ directory", sourceDir)
	}
	return paths, nil
}

// collectSyntaxErrors converts per-file lex and parse failures into
// diagnostics. Non-syntax failures (unreadable files) abort immediately.
func collectSyntaxErrors(results []*cache.ParseResult) ([]*errors.CompilerError, error) {
	var diags []*errors.CompilerError
	for _, result := range results {
		if result.Err != nil && len(result.LexErrors) == 0 && len(result.ParseErrors) == 0 {
			return nil, fmt.Errorf("failed to parse %s: %w", result.Path, result.Err)
		}

		for _, lexErr := range result.LexErrors {
			loc := ast.SourceLocation{Line: lexErr.Line, Column: lexErr.Column}
			diags = append(diags, errors.NewInvalidCharacter(loc, lexErr.Message).WithFile(result.Path))
		}

		for _, parseErr := range result.ParseErrors {
			diags = append(diags, &errors.CompilerError{
				Code:     errors.ErrUnexpectedToken,
				Type:     "unexpected_token",
				Category: errors.CategorySyntax,
				Severity: errors.SeverityError,
				Message:  parseErr.Message,
				Location: ast.SourceLocation{Line: parseErr.Token.Line, Column: parseErr.Token.Column},
				File:     result.Path,
			})
		}
	}
	return diags, nil
}

// suggestCapabilities replaces the generic spelling hint on unknown
// capability warnings with the closest declared names.
func suggestCapabilities(warnings []*errors.CompilerError, declared []string) {
	for _, w := range warnings {
		if w.Code != errors.ErrUnknownCapability || w.Actual == "" {
			continue
		}
		matches := ui.FindSimilar(w.Actual, declared, nil)
		if len(matches) == 0 {
			continue
		}
		w.WithSuggestion(fmt.Sprintf("Did you mean '%s'?", matches[0]))
		if len(matches) > 1 {
			w.WithExamples(matches...)
		}
	}
}

func outputResultJSON(result *solver.Result, outputs map[string]string) {
	output := struct {
		Success  bool                    `json:"success"`
		Tracked  []string                `json:"tracked"`
		Steps    int                     `json:"steps"`
		Files    map[string]string       `json:"files"`
		Warnings []*errors.CompilerError `json:"warnings,omitempty"`
	}{
		Success:  true,
		Tracked:  result.Tracked,
		Steps:    result.Steps,
		Files:    outputs,
		Warnings: result.Warnings,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(output)
}

func outputErrorsJSON(errs []*errors.CompilerError) {
	output := struct {
		Success bool                    `json:"success"`
		Errors  []*errors.CompilerError `json:"errors"`
	}{
		Success: false,
		Errors:  errs,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(output)
}

func outputErrorsTerminal(errs []*errors.CompilerError) {
	errorColor := color.New(color.FgRed, color.Bold)
	errorColor.Fprintf(os.Stderr, "\nAnalysis failed with %d problem(s):\n\n", len(errs))
	ui.RenderDiagnostics(os.Stderr, errs, false)
}

// relativeTo maps a source path into an output tree, falling back to the
// base name for paths outside the source directory.
func relativeTo(sourceDir, path string) string {
	rel, err := filepath.Rel(sourceDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(path)
	}
	return rel
}
