// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// StdioPath is the FilePath that selects standard output (or input).
const StdioPath FilePath = "-"

// ErrInvalidFilePath is the sentinel error wrapped by InvalidFilePathError.
var ErrInvalidFilePath = errors.New("invalid file path")

type (
	// FilePath is a path given on the command line. A valid path must be
	// non-empty and not whitespace-only; "-" stands for stdio.
	FilePath string

	// InvalidFilePathError is returned when a FilePath value is
	// empty or whitespace-only.
	InvalidFilePathError struct {
		Value FilePath
	}
)

// String returns the string representation of the FilePath.
func (p FilePath) String() string { return string(p) }

// IsStdio reports whether p is "-".
func (p FilePath) IsStdio() bool { return p == StdioPath }

// IsValid returns whether the FilePath is valid.
func (p FilePath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidFilePathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidFilePathError.
func (e *InvalidFilePathError) Error() string {
	return fmt.Sprintf("invalid file path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidFilePath for errors.Is() compatibility.
func (e *InvalidFilePathError) Unwrap() error { return ErrInvalidFilePath }
