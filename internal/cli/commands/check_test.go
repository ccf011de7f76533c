package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unknot-dev/unknot/internal/compiler/lexer"
	"github.com/unknot-dev/unknot/internal/compiler/parser"
	"github.com/unknot-dev/unknot/internal/compiler/solver"
)

func TestNewCheckCommand(t *testing.T) {
	cmd := NewCheckCommand()

	if cmd.Use != "check [paths...]" {
		t.Errorf("expected Use to be 'check [paths...]', got %s", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	for _, flag := range []string{"json", "verbose"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag to be registered", flag)
		}
	}
}

func TestRunCheck_CleanProject(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	if err := os.MkdirAll("knot", 0755); err != nil {
		t.Fatalf("failed to create knot directory: %v", err)
	}
	source := "capability Render\nimpl Render for Page\n"
	if err := os.WriteFile(filepath.Join("knot", "main.knot"), []byte(source), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	cmd := NewCheckCommand()
	if err := runCheck(cmd, []string{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// check never writes
	content, _ := os.ReadFile(filepath.Join("knot", "main.knot"))
	if string(content) != source {
		t.Errorf("check modified the source file: %q", content)
	}
}

func TestRunCheck_ParseErrorFails(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	if err := os.MkdirAll("knot", 0755); err != nil {
		t.Fatalf("failed to create knot directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join("knot", "bad.knot"), []byte("impl Evaluate Expr\n"), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	cmd := NewCheckCommand()
	err := runCheck(cmd, []string{})

	if err == nil {
		t.Error("expected error for unparsable source, got nil")
	}
	if err != nil && !strings.Contains(err.Error(), "check failed") {
		t.Errorf("expected check failure, got: %v", err)
	}
}

func TestRewrittenDeclarations(t *testing.T) {
	source := `capability Evaluate
track Evaluate
impl Evaluate for Expr where Term: Evaluate
impl Evaluate for Term where Expr: Evaluate
impl Evaluate for Leaf
`
	tokens, lexErrs := lexer.New(source).ScanTokens()
	if len(lexErrs) > 0 {
		t.Fatalf("lex errors: %v", lexErrs)
	}
	program, parseErrs := parser.New(tokens).Parse()
	if len(parseErrs) > 0 {
		t.Fatalf("parse errors: %v", parseErrs)
	}

	batch, loadErr := solver.Load([]solver.SourceFile{{Path: "main.knot", Program: program}})
	if loadErr != nil {
		t.Fatalf("load error: %v", loadErr)
	}
	result, analysisErr := solver.Analyze(batch, solver.Options{})
	if analysisErr != nil {
		t.Fatalf("analysis error: %v", analysisErr)
	}

	changed := rewrittenDeclarations(batch, result)

	if len(changed) != 2 {
		t.Fatalf("changed = %d declarations, want 2", len(changed))
	}
	if changed[0].Before != "impl Evaluate for Expr where Term: Evaluate" {
		t.Errorf("before = %q", changed[0].Before)
	}
	if changed[0].After != "impl Evaluate for Expr" {
		t.Errorf("after = %q", changed[0].After)
	}
	if changed[0].File != "main.knot" {
		t.Errorf("file = %q, want main.knot", changed[0].File)
	}
	if changed[1].Before != "impl Evaluate for Term where Expr: Evaluate" {
		t.Errorf("before = %q", changed[1].Before)
	}
}
