package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/unknot-dev/unknot/internal/compiler/ast"
	"github.com/unknot-dev/unknot/internal/compiler/errors"
)

func TestFormatError(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
	}{
		{
			name: "basic error",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "UNKNOWN CAPABILITY",
				Problem: "No capability declaration for 'Evalute'.",
			},
			contains: []string{
				"❌",
				"UNKNOWN CAPABILITY",
				"No capability declaration for 'Evalute'.",
			},
		},
		{
			name: "error with suggestions",
			opts: ErrorOptions{
				Level:       ErrorLevelError,
				Context:     "UNKNOWN CAPABILITY",
				Problem:     "No capability declaration for 'Evalute'.",
				Suggestions: []string{"Evaluate", "Clone"},
			},
			contains: []string{
				"Did you mean: Evaluate, Clone?",
			},
		},
		{
			name: "error with help commands",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "ANALYSIS FAILED",
				Problem: "Unresolved obligation.",
				HelpCommands: []string{
					"Validate declarations first: unknot check",
				},
			},
			contains: []string{
				"→ Validate declarations first: unknot check",
			},
		},
		{
			name: "warning without context",
			opts: ErrorOptions{
				Level:   ErrorLevelWarning,
				Problem: "Capability 'Render' is never implemented.",
			},
			contains: []string{
				"⚠️",
				"Capability 'Render' is never implemented.",
			},
		},
		{
			name: "error with consequence",
			opts: ErrorOptions{
				Level:       ErrorLevelError,
				Context:     "CONFIGURATION ERROR",
				Problem:     "analysis.expansion_limit must not be negative.",
				Consequence: "Analysis cannot run with this configuration.",
			},
			contains: []string{
				"Analysis cannot run with this configuration.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.NoColor = true
			result := FormatError(tt.opts)
			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("FormatError() missing %q in:\n%s", want, result)
				}
			}
		})
	}
}

func TestFormatSuccess(t *testing.T) {
	result := FormatSuccess("Analysis complete", true)
	if !strings.Contains(result, "✓ Analysis complete") {
		t.Errorf("FormatSuccess() = %q", result)
	}
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	WriteError(&buf, ErrorOptions{
		Level:   ErrorLevelError,
		Problem: "something broke",
		NoColor: true,
	})
	if !strings.Contains(buf.String(), "something broke") {
		t.Errorf("WriteError() wrote %q", buf.String())
	}
}

func TestRenderDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	err := errors.NewUnresolvedObligation(
		ast.SourceLocation{Line: 3, Column: 1},
		"impl Evaluate for Expr",
		"Term: Evaluate",
	).WithFile("expr.knot")

	RenderDiagnostic(&buf, err, true)

	out := buf.String()
	for _, want := range []string{"expr.knot", "Line 3", "impl Evaluate for Expr", "Term: Evaluate"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderDiagnostic() missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderDiagnosticsDividers(t *testing.T) {
	var buf bytes.Buffer
	errs := []*errors.CompilerError{
		errors.NewUnknownCapability(ast.SourceLocation{Line: 1, Column: 1}, "Evalute"),
		errors.NewUnknownCapability(ast.SourceLocation{Line: 2, Column: 1}, "Cloen"),
	}

	RenderDiagnostics(&buf, errs, true)

	out := buf.String()
	if !strings.Contains(out, "Evalute") || !strings.Contains(out, "Cloen") {
		t.Errorf("RenderDiagnostics() missing diagnostics in:\n%s", out)
	}
	if !strings.Contains(out, "─") {
		t.Errorf("RenderDiagnostics() missing divider in:\n%s", out)
	}
}

func TestCapabilityNotFoundError(t *testing.T) {
	result := CapabilityNotFoundError("Evalute", []string{"Evaluate"}, true)
	for _, want := range []string{"UNKNOWN CAPABILITY", "Evalute", "Did you mean: Evaluate?", "unknot check"} {
		if !strings.Contains(result, want) {
			t.Errorf("CapabilityNotFoundError() missing %q in:\n%s", want, result)
		}
	}
}

func TestWarningAndInfo(t *testing.T) {
	warning := Warning("something suspicious", nil, true)
	if !strings.Contains(warning, "⚠️") {
		t.Errorf("Warning() missing symbol: %q", warning)
	}

	info := Info("for your information", true)
	if !strings.Contains(info, "ℹ️") {
		t.Errorf("Info() missing symbol: %q", info)
	}
}
