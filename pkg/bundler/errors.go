// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/modpack/modpack/internal/dag"
	"github.com/modpack/modpack/pkg/loader"
)

// ErrInvocationReused is returned when Bundle is called on a Bundler that
// already ran.
var ErrInvocationReused = errors.New("bundler invocation already used")

type (
	// ResolutionError reports a reference that could not be turned into a
	// loaded module. For the entry, Referrer is empty and Reference is the
	// entry identifier.
	ResolutionError struct {
		Referrer  string
		Reference string
		Err       error
	}

	// EmitError reports an invalid emission request: an empty namespace or an
	// order that does not match the graph.
	EmitError struct {
		Reason string
	}

	// CycleError is returned by a Bundler whose policy rejects cycles.
	CycleError = dag.CycleError
)

// Error implements the error interface. An unresolvable cause contributes
// only its probed candidates.
func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("cannot resolve %q required from %s", e.Reference, e.Referrer)
	if e.Referrer == "" {
		msg = fmt.Sprintf("cannot resolve entry %q", e.Reference)
	}
	var unresolvable *loader.UnresolvableError
	switch {
	case errors.As(e.Err, &unresolvable):
		if len(unresolvable.Tried) > 0 {
			msg += " (tried " + strings.Join(unresolvable.Tried, ", ") + ")"
		}
		return msg
	case e.Err != nil:
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the loader error.
func (e *ResolutionError) Unwrap() error { return e.Err }

// Error implements the error interface.
func (e *EmitError) Error() string {
	return "cannot emit bundle: " + e.Reason
}

func newOrderMismatch(missing, extra, duplicated []string) *EmitError {
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing "+strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		parts = append(parts, "unknown "+strings.Join(extra, ", "))
	}
	if len(duplicated) > 0 {
		parts = append(parts, "duplicated "+strings.Join(duplicated, ", "))
	}
	return &EmitError{Reason: "order does not match graph: " + strings.Join(parts, "; ")}
}
