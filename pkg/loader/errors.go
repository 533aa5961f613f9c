// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no source exists for a module ID.
	ErrNotFound = errors.New("module not found")
	// ErrUnresolvable is returned when a reference matches no module.
	ErrUnresolvable = errors.New("unresolvable reference")
	// ErrMalformedReference is returned for references that cannot name a module.
	ErrMalformedReference = errors.New("malformed reference")
)

type (
	// NotFoundError is returned by LoadSource for an unknown ID.
	// It wraps ErrNotFound for errors.Is() compatibility.
	NotFoundError struct {
		ID string
	}

	// UnresolvableError is returned by ResolveReference when no candidate
	// location exists. It wraps ErrUnresolvable for errors.Is() compatibility.
	UnresolvableError struct {
		Referrer  string
		Reference string
		// Tried lists the candidate IDs probed, in probing order.
		Tried []string
	}

	// MalformedReferenceError reports a reference that is syntactically unable
	// to name a module: an empty require("") argument, an unterminated string
	// literal, or a reference containing control characters.
	// It wraps ErrMalformedReference for errors.Is() compatibility.
	MalformedReferenceError struct {
		Reference string
		Reason    string
		// Offset is the byte offset of the require call in the scanned source,
		// or -1 when the reference did not come from a scan.
		Offset int
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("module %q not found", e.ID)
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Error implements the error interface.
func (e *UnresolvableError) Error() string {
	from := e.Referrer
	if from == "" {
		from = "<root>"
	}
	msg := fmt.Sprintf("cannot resolve %q from %s", e.Reference, from)
	if len(e.Tried) > 0 {
		msg += " (tried " + strings.Join(e.Tried, ", ") + ")"
	}
	return msg
}

// Unwrap returns ErrUnresolvable.
func (e *UnresolvableError) Unwrap() error { return ErrUnresolvable }

// Error implements the error interface.
func (e *MalformedReferenceError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("malformed reference %q at offset %d: %s", e.Reference, e.Offset, e.Reason)
	}
	return fmt.Sprintf("malformed reference %q: %s", e.Reference, e.Reason)
}

// Unwrap returns ErrMalformedReference.
func (e *MalformedReferenceError) Unwrap() error { return ErrMalformedReference }

// ValidateReference checks that raw can name a module at all.
func ValidateReference(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return &MalformedReferenceError{Reference: raw, Reason: "empty reference", Offset: -1}
	}
	for _, r := range raw {
		if r < 0x20 || r == 0x7f {
			return &MalformedReferenceError{Reference: raw, Reason: "control character in reference", Offset: -1}
		}
	}
	return nil
}
