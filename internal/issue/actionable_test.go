// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "bundle"},
			expected: "failed to bundle",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "bundle", Resource: "src/index.js"},
			expected: "failed to bundle src/index.js",
		},
		{
			name:     "operation with cause",
			err:      &ActionableError{Operation: "load configuration", Cause: errors.New("syntax error at line 5")},
			expected: "failed to load configuration: syntax error at line 5",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "write bundle",
				Resource:  "dist/bundle.js",
				Cause:     errors.New("permission denied"),
			},
			expected: "failed to write bundle dist/bundle.js: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ActionableError{Operation: "test", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	errNoCause := &ActionableError{Operation: "test"}
	if errNoCause.Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	inner := errors.New("module \"left-pad\" not found")
	outer := &wrapped{msg: "cannot resolve \"left-pad\"", err: inner}

	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name:     "simple error non-verbose",
			err:      &ActionableError{Operation: "load configuration"},
			contains: []string{"failed to load configuration"},
			excludes: []string{"•", "Error chain"},
		},
		{
			name: "error with suggestions",
			err: &ActionableError{
				Operation:   "bundle",
				Resource:    "src/index.js",
				Suggestions: []string{"Run 'npm install'", "Check the reference spelling"},
			},
			contains: []string{
				"failed to bundle src/index.js",
				"• Run 'npm install'",
				"• Check the reference spelling",
			},
		},
		{
			name:     "non-verbose hides chain",
			err:      &ActionableError{Operation: "bundle", Cause: outer},
			contains: []string{"failed to bundle: cannot resolve"},
			excludes: []string{"Error chain"},
		},
		{
			name:    "verbose shows chain",
			err:     &ActionableError{Operation: "bundle", Cause: outer},
			verbose: true,
			contains: []string{
				"Error chain:",
				"1. cannot resolve \"left-pad\"",
				"2. module \"left-pad\" not found",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Format(tt.verbose)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Format() should contain %q, got:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("Format() should not contain %q, got:\n%s", unwanted, got)
				}
			}
		})
	}
}

type wrapped struct {
	msg string
	err error
}

func (w *wrapped) Error() string { return w.msg + ": " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

func TestErrorContext_Build(t *testing.T) {
	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("write bundle").
		WithResource("out.js").
		WithSuggestion("Check permissions").
		WithSuggestion("Write to stdout with '-'").
		WithIssue(OutputWriteFailedId).
		Wrap(cause).
		Build()

	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.Operation != "write bundle" || ae.Resource != "out.js" {
		t.Errorf("unexpected operation/resource %q/%q", ae.Operation, ae.Resource)
	}
	if len(ae.Suggestions) != 2 || !ae.HasSuggestions() {
		t.Errorf("Suggestions = %v", ae.Suggestions)
	}
	if ae.Issue != OutputWriteFailedId {
		t.Errorf("Issue = %d, want %d", ae.Issue, OutputWriteFailedId)
	}
	if !errors.Is(ae, cause) {
		t.Error("built error should wrap the cause")
	}
}

func TestErrorContext_RequiresOperation(t *testing.T) {
	if ae := NewErrorContext().WithResource("x").Build(); ae != nil {
		t.Errorf("Build() without operation = %v, want nil", ae)
	}
	if err := NewErrorContext().Wrap(errors.New("x")).BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want nil", err)
	}
}

func TestErrorContext_BuildError(t *testing.T) {
	err := NewErrorContext().WithOperation("bundle").WithIssue(ResolutionFailedId).BuildError()

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("BuildError() should return *ActionableError, got %T", err)
	}
	if ae.Issue != ResolutionFailedId {
		t.Errorf("Issue = %d", ae.Issue)
	}
}
