package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/unknot-dev/unknot/internal/compiler/errors"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	❌ UNKNOWN CAPABILITY: Evalute
//	   No capability declaration for 'Evalute'.
//
//	   Did you mean: Evaluate?
//
//	   → Check declarations: unknot check
//	   → Get help: unknot analyze --help
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case ErrorLevelError:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "❌"
	case ErrorLevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "⚠️"
	case ErrorLevelInfo:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "ℹ️"
	}

	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Problem != "" && opts.Context != "" {
		bodyColor.Fprintf(&b, "   %s\n", opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// RenderDiagnostic writes one analyzer diagnostic with its header line
// colored by severity. The body comes from the compiler's own formatter so
// terminal and JSON output agree on content.
func RenderDiagnostic(w io.Writer, e *errors.CompilerError, noColor bool) {
	var headerColor *color.Color
	switch e.Severity {
	case errors.SeverityWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
	case errors.SeverityInfo:
		headerColor = color.New(color.FgCyan, color.Bold)
	default:
		headerColor = color.New(color.FgRed, color.Bold)
	}
	if noColor {
		headerColor.DisableColor()
	}

	formatted := errors.FormatError(e)
	header, body, found := strings.Cut(formatted, "\n")
	headerColor.Fprintln(w, header)
	if found {
		fmt.Fprint(w, body)
	}
}

// RenderDiagnostics writes a list of diagnostics separated by dividers.
func RenderDiagnostics(w io.Writer, errs []*errors.CompilerError, noColor bool) {
	for i, e := range errs {
		if i > 0 {
			Divider(w, 60, noColor)
		}
		RenderDiagnostic(w, e, noColor)
	}
}

// CapabilityNotFoundError creates a standardized unknown capability error
func CapabilityNotFoundError(capabilityName string, suggestions []string, noColor bool) string {
	opts := ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "UNKNOWN CAPABILITY",
		Problem:     fmt.Sprintf("No capability declaration for '%s'.", capabilityName),
		Suggestions: suggestions,
		HelpCommands: []string{
			"Check declarations: unknot check",
			"Get help: unknot analyze --help",
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}

// AnalysisError creates a standardized analysis failure message
func AnalysisError(message string, suggestions []string, noColor bool) string {
	opts := ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "ANALYSIS FAILED",
		Problem:     message,
		Suggestions: suggestions,
		HelpCommands: []string{
			"Validate declarations first: unknot check",
			"Get help: unknot analyze --help",
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, suggestions []string, noColor bool) string {
	opts := ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "CONFIGURATION ERROR",
		Problem:     message,
		Suggestions: suggestions,
		HelpCommands: []string{
			"View config: cat unknot.yml",
			"Get help: unknot --help",
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}

// Warning creates a standardized warning message
func Warning(message string, suggestions []string, noColor bool) string {
	opts := ErrorOptions{
		Level:       ErrorLevelWarning,
		Problem:     message,
		Suggestions: suggestions,
		NoColor:     noColor,
	}
	return FormatError(opts)
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	opts := ErrorOptions{
		Level:   ErrorLevelInfo,
		Problem: message,
		NoColor: noColor,
	}
	return FormatError(opts)
}
