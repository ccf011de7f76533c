package errors

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/unknot-dev/unknot/internal/compiler/ast"
)

func TestNewMalformedSelfType(t *testing.T) {
	loc := ast.SourceLocation{Line: 3, Column: 18}
	err := NewMalformedSelfType(loc, "ast.Expr")

	if err.Code != ErrMalformedSelfType {
		t.Errorf("Code = %s, want %s", err.Code, ErrMalformedSelfType)
	}
	if err.Category != CategoryDeclaration {
		t.Errorf("Category = %s, want %s", err.Category, CategoryDeclaration)
	}
	if err.Severity != SeverityError {
		t.Errorf("Severity = %s, want %s", err.Severity, SeverityError)
	}
	if !strings.Contains(err.Message, "ast.Expr") {
		t.Errorf("Message should contain the offending type, got %q", err.Message)
	}
	if err.Location.Line != 3 || err.Location.Column != 18 {
		t.Errorf("Location = %+v, want {3 18}", err.Location)
	}
}

func TestNewUnresolvedObligation(t *testing.T) {
	loc := ast.SourceLocation{Line: 7, Column: 1}
	err := NewUnresolvedObligation(loc, "impl Cap for Leaf", "i32: Cap")

	if err.Code != ErrUnresolvedObligation {
		t.Errorf("Code = %s, want %s", err.Code, ErrUnresolvedObligation)
	}
	if err.Declaration != "impl Cap for Leaf" {
		t.Errorf("Declaration = %q, want %q", err.Declaration, "impl Cap for Leaf")
	}
	if err.Obligation != "i32: Cap" {
		t.Errorf("Obligation = %q, want %q", err.Obligation, "i32: Cap")
	}
}

func TestNewAmbiguousTargetIncludesCandidates(t *testing.T) {
	loc := ast.SourceLocation{Line: 1, Column: 1}
	targets := []string{"pattern Evaluate for Pair<A, B>", "impl Evaluate for Pair<X, Y>"}
	err := NewAmbiguousTarget(loc, "impl Evaluate for Expr", "Pair<A, B>: Evaluate", targets)

	if err.Code != ErrAmbiguousTarget {
		t.Errorf("Code = %s, want %s", err.Code, ErrAmbiguousTarget)
	}
	if len(err.Examples) != 2 {
		t.Fatalf("Examples length = %d, want 2", len(err.Examples))
	}
}

func TestBuilderMethods(t *testing.T) {
	loc := ast.SourceLocation{Line: 1, Column: 1}
	err := NewUnexpectedToken(loc, "where", "capability declaration").
		WithFile("main.knot").
		WithContext("capability where", []string{"# header", "capability where", ""})

	if err.File != "main.knot" {
		t.Errorf("File = %q, want %q", err.File, "main.knot")
	}
	if err.Context == nil || err.Context.Current != "capability where" {
		t.Error("Context not set correctly")
	}
}

func TestErrorListCounts(t *testing.T) {
	loc := ast.SourceLocation{Line: 1, Column: 1}
	list := ErrorList{
		NewUnresolvedObligation(loc, "d", "o"),
		NewUnknownCapability(loc, "Evaluate"),
		NewExpansionOverflow(loc, "d", "o", 100),
	}

	errs, warns, info := list.ErrorCount()
	if errs != 2 || warns != 1 || info != 0 {
		t.Errorf("ErrorCount() = (%d, %d, %d), want (2, 1, 0)", errs, warns, info)
	}
	if !list.HasErrors() {
		t.Error("HasErrors() should be true")
	}
	if !list.HasWarnings() {
		t.Error("HasWarnings() should be true")
	}
}

func TestErrorListOnlyWarnings(t *testing.T) {
	loc := ast.SourceLocation{Line: 1, Column: 1}
	list := ErrorList{NewUnknownCapability(loc, "Convert")}

	if list.HasErrors() {
		t.Error("warning-only list should not report errors")
	}
}

func TestToJSONRoundTrip(t *testing.T) {
	loc := ast.SourceLocation{Line: 9, Column: 5}
	err := NewGraphLookupFailure(loc, "impl Cap for Node", "edge 0 -> 7 out of range")

	out, jsonErr := err.ToJSON()
	if jsonErr != nil {
		t.Fatalf("ToJSON() error: %v", jsonErr)
	}

	var decoded CompilerError
	if unmarshalErr := json.Unmarshal([]byte(out), &decoded); unmarshalErr != nil {
		t.Fatalf("invalid JSON produced: %v", unmarshalErr)
	}
	if decoded.Code != ErrGraphLookupFailure {
		t.Errorf("round-tripped Code = %s, want %s", decoded.Code, ErrGraphLookupFailure)
	}
	if decoded.Location.Line != 9 {
		t.Errorf("round-tripped Line = %d, want 9", decoded.Location.Line)
	}
}

func TestFormatError(t *testing.T) {
	loc := ast.SourceLocation{Line: 2, Column: 4}
	err := NewUnresolvedObligation(loc, "impl Cap for Leaf", "i32: Cap").WithFile("leaf.knot")

	out := FormatError(err)
	for _, want := range []string{"Resolution Error", "leaf.knot", "Line 2, Column 4", "i32: Cap", "Learn more"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatError output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	loc := ast.SourceLocation{Line: 12, Column: 3}
	err := NewExpectedToken(loc, "for", "where").WithFile("a.knot")

	got := FormatCompact(err)
	want := "a.knot:12:3: error: Expected 'for' but found 'where' [SYN003]"
	if got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatErrorListEmpty(t *testing.T) {
	if got := FormatErrorList(nil); got != "no errors" {
		t.Errorf("FormatErrorList(nil) = %q, want %q", got, "no errors")
	}
}
