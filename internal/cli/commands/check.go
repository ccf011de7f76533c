package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/unknot-dev/unknot/internal/cli/config"
	"github.com/unknot-dev/unknot/internal/cli/ui"
	"github.com/unknot-dev/unknot/internal/compiler/cache"
	"github.com/unknot-dev/unknot/internal/compiler/emit"
	"github.com/unknot-dev/unknot/internal/compiler/errors"
	"github.com/unknot-dev/unknot/internal/compiler/solver"
)

var (
	checkJSON    bool
	checkVerbose bool
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Validate declarations without rewriting files",
		Long: `Run the full analysis pipeline and report diagnostics without writing
any output files.

Reports the declarations a full analyze run would rewrite, which makes
check suitable for CI pipelines and the watch loop.`,
		Example: `  # Check the configured source directory
  unknot check

  # Check specific files
  unknot check decls/core.knot

  # Check with JSON diagnostics (useful for tooling)
  unknot check --json`,
		RunE: runCheck,
	}

	cmd.Flags().BoolVar(&checkJSON, "json", false, "Output diagnostics in JSON format")
	cmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false, "Show detailed check output")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)
	warningColor := color.New(color.FgYellow)

	// Load config
	cfg, err := config.Load()
	if err != nil {
		if checkVerbose {
			warningColor.Printf("Warning: %v\n", err)
		}
	}

	paths, err := knotFiles(args, cfg)
	if err != nil {
		return err
	}

	if checkVerbose {
		infoColor.Printf("Found %d .knot file(s)\n", len(paths))
	}

	coord := cache.NewCoordinator()
	results, metrics := coord.ParseFiles(paths, true)

	allErrors, err := collectSyntaxErrors(results)
	if err != nil {
		return err
	}
	if len(allErrors) > 0 {
		if checkJSON {
			outputErrorsJSON(allErrors)
		} else {
			outputErrorsTerminal(allErrors)
		}
		return fmt.Errorf("check failed")
	}

	files := make([]solver.SourceFile, len(results))
	for i, result := range results {
		files[i] = solver.SourceFile{Path: result.Path, Program: result.Program}
	}

	batch, loadErr := solver.Load(files)
	if loadErr != nil {
		allErrors = append(allErrors, loadErr)
		if checkJSON {
			outputErrorsJSON(allErrors)
		} else {
			outputErrorsTerminal(allErrors)
		}
		return fmt.Errorf("check failed")
	}

	suggestCapabilities(batch.Warnings, coord.Index().Capabilities())

	opts := solver.Options{}
	if cfg != nil {
		opts.Tracked = cfg.Analysis.Tracked
		opts.ExpansionLimit = cfg.Analysis.ExpansionLimit
	}

	result, analysisErr := solver.Analyze(batch, opts)
	if analysisErr != nil {
		allErrors = append(allErrors, analysisErr)
		if checkJSON {
			outputErrorsJSON(allErrors)
		} else {
			outputErrorsTerminal(allErrors)
		}
		return fmt.Errorf("check failed")
	}

	changed := rewrittenDeclarations(batch, result)

	if checkJSON {
		outputCheckJSON(result, changed)
		return nil
	}

	if len(result.Warnings) > 0 {
		ui.RenderDiagnostics(os.Stderr, result.Warnings, false)
	}

	if len(changed) > 0 {
		table := ui.NewTable(os.Stdout, []string{"File", "Before", "After"}, nil)
		for _, c := range changed {
			table.AddRow(c.File, c.Before, c.After)
		}
		table.Render()
		fmt.Println()
	}

	elapsed := time.Since(startTime)
	successColor.Printf("✓ Check passed in %.2fs\n", elapsed.Seconds())
	infoColor.Printf("  Files: %d\n", metrics.TotalFiles)
	infoColor.Printf("  Declarations: %d (%d would be rewritten)\n", len(result.Declarations), len(changed))
	infoColor.Printf("  Tracked: %s\n", strings.Join(result.Tracked, ", "))

	return nil
}

// rewriteChange records one declaration the analysis would rewrite
type rewriteChange struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// rewrittenDeclarations pairs each loaded declaration against its analyzed
// form and keeps the ones the rewrite changed. Batch and result declarations
// share an order. Declarations are compared in emitted form since the where
// clause is exactly what the rewrite touches.
func rewrittenDeclarations(batch *solver.Batch, result *solver.Result) []rewriteChange {
	var changed []rewriteChange
	for i, before := range batch.Declarations {
		after := result.Declarations[i]
		beforeText, afterText := emit.Impl(before), emit.Impl(after)
		if beforeText == afterText {
			continue
		}
		changed = append(changed, rewriteChange{
			File:   before.File,
			Line:   before.Loc.Line,
			Before: beforeText,
			After:  afterText,
		})
	}
	return changed
}

func outputCheckJSON(result *solver.Result, changed []rewriteChange) {
	output := struct {
		Success  bool                    `json:"success"`
		Tracked  []string                `json:"tracked"`
		Steps    int                     `json:"steps"`
		Rewrites []rewriteChange         `json:"rewrites"`
		Warnings []*errors.CompilerError `json:"warnings,omitempty"`
	}{
		Success:  true,
		Tracked:  result.Tracked,
		Steps:    result.Steps,
		Rewrites: changed,
		Warnings: result.Warnings,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(output)
}
