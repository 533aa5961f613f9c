// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/modpack/modpack/internal/logging"
	"github.com/modpack/modpack/pkg/bundler"
)

const (
	// DefaultNamespace is the global name used when no namespace is configured.
	DefaultNamespace Namespace = "Bundle"
	// DefaultWorkers is the default number of concurrent module loads.
	DefaultWorkers WorkerCount = 4
	// MaxWorkers bounds WorkerCount.
	MaxWorkers WorkerCount = 256
)

var (
	// ErrInvalidNamespace is the sentinel error wrapped by InvalidNamespaceError.
	ErrInvalidNamespace = errors.New("invalid namespace")
	// ErrInvalidExtension is the sentinel error wrapped by InvalidExtensionError.
	ErrInvalidExtension = errors.New("invalid extension")
	// ErrInvalidModuleDir is the sentinel error wrapped by InvalidModuleDirError.
	ErrInvalidModuleDir = errors.New("invalid module directory")
	// ErrInvalidWorkerCount is the sentinel error wrapped by InvalidWorkerCountError.
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	// ErrInvalidLogConfig is the sentinel error wrapped by InvalidLogConfigError.
	ErrInvalidLogConfig = errors.New("invalid log config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	namespacePattern = regexp.MustCompile(`^[^.\s]+(\.[^.\s]+)*$`)
	extensionPattern = regexp.MustCompile(`^\.[A-Za-z0-9_-]+$`)
)

type (
	// Namespace is the dotted global name the entry module's exports are
	// published under in a browser ("Bundle", "acme.tools").
	Namespace string

	// InvalidNamespaceError is returned when a Namespace is empty or has an
	// empty or whitespace-bearing dotted segment.
	InvalidNamespaceError struct {
		Value Namespace
	}

	// Extension is a file extension probed during resolution, including the
	// leading dot (".js").
	Extension string

	// InvalidExtensionError is returned when an Extension lacks the leading dot
	// or contains characters outside [A-Za-z0-9_-].
	InvalidExtensionError struct {
		Value Extension
	}

	// ModuleDir is a directory name searched for bare package references.
	ModuleDir string

	// InvalidModuleDirError is returned when a ModuleDir is empty, whitespace-only
	// or contains a path separator.
	InvalidModuleDirError struct {
		Value ModuleDir
	}

	// WorkerCount is the number of concurrent module loads during resolution.
	WorkerCount int

	// InvalidWorkerCountError is returned when a WorkerCount is outside [1, MaxWorkers].
	InvalidWorkerCountError struct {
		Value WorkerCount
	}

	// InvalidLogConfigError is returned when a LogConfig has invalid fields.
	// It wraps ErrInvalidLogConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidLogConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Namespace is the global name for the bundle's exports.
		Namespace Namespace `json:"namespace" mapstructure:"namespace"`
		// Extensions are probed in order when a reference has no exact match.
		Extensions []Extension `json:"extensions" mapstructure:"extensions"`
		// ModuleDirs are searched for bare package references.
		ModuleDirs []ModuleDir `json:"module_dirs" mapstructure:"module_dirs"`
		// Workers bounds concurrent module loads.
		Workers WorkerCount `json:"workers" mapstructure:"workers"`
		// Cycles decides what happens when a dependency cycle is found.
		Cycles bundler.CyclePolicy `json:"cycles" mapstructure:"cycles"`
		// Log configures diagnostic output on stderr.
		Log LogConfig `json:"log" mapstructure:"log"`
	}

	// LogConfig configures logging.
	LogConfig struct {
		// Level is the minimum level written.
		Level logging.Level `json:"level" mapstructure:"level"`
		// Format selects text, json or logfmt records.
		Format logging.Format `json:"format" mapstructure:"format"`
	}
)

// String returns the string representation of the Namespace.
func (n Namespace) String() string { return string(n) }

// IsValid returns whether the Namespace is a non-empty dotted name without
// empty segments or whitespace.
func (n Namespace) IsValid() (bool, []error) {
	if !namespacePattern.MatchString(string(n)) {
		return false, []error{&InvalidNamespaceError{Value: n}}
	}
	return true, nil
}

// Error implements the error interface for InvalidNamespaceError.
func (e *InvalidNamespaceError) Error() string {
	return fmt.Sprintf("invalid namespace %q: must be dot-separated non-empty names without whitespace", e.Value)
}

// Unwrap returns ErrInvalidNamespace for errors.Is() compatibility.
func (e *InvalidNamespaceError) Unwrap() error { return ErrInvalidNamespace }

// String returns the string representation of the Extension.
func (x Extension) String() string { return string(x) }

// IsValid returns whether the Extension is a leading dot followed by
// letters, digits, '_' or '-'.
func (x Extension) IsValid() (bool, []error) {
	if !extensionPattern.MatchString(string(x)) {
		return false, []error{&InvalidExtensionError{Value: x}}
	}
	return true, nil
}

// Error implements the error interface for InvalidExtensionError.
func (e *InvalidExtensionError) Error() string {
	return fmt.Sprintf("invalid extension %q: must look like \".js\"", e.Value)
}

// Unwrap returns ErrInvalidExtension for errors.Is() compatibility.
func (e *InvalidExtensionError) Unwrap() error { return ErrInvalidExtension }

// String returns the string representation of the ModuleDir.
func (d ModuleDir) String() string { return string(d) }

// IsValid returns whether the ModuleDir is a single non-blank path element.
func (d ModuleDir) IsValid() (bool, []error) {
	s := string(d)
	if strings.TrimSpace(s) == "" || strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
		return false, []error{&InvalidModuleDirError{Value: d}}
	}
	return true, nil
}

// Error implements the error interface for InvalidModuleDirError.
func (e *InvalidModuleDirError) Error() string {
	return fmt.Sprintf("invalid module directory %q: must be a single directory name", e.Value)
}

// Unwrap returns ErrInvalidModuleDir for errors.Is() compatibility.
func (e *InvalidModuleDirError) Unwrap() error { return ErrInvalidModuleDir }

// Int returns the count as an int.
func (w WorkerCount) Int() int { return int(w) }

// IsValid returns whether the WorkerCount is within [1, MaxWorkers].
func (w WorkerCount) IsValid() (bool, []error) {
	if w < 1 || w > MaxWorkers {
		return false, []error{&InvalidWorkerCountError{Value: w}}
	}
	return true, nil
}

// Error implements the error interface for InvalidWorkerCountError.
func (e *InvalidWorkerCountError) Error() string {
	return fmt.Sprintf("invalid worker count %d (valid: 1-%d)", e.Value, MaxWorkers)
}

// Unwrap returns ErrInvalidWorkerCount for errors.Is() compatibility.
func (e *InvalidWorkerCountError) Unwrap() error { return ErrInvalidWorkerCount }

// IsValid returns whether the LogConfig has valid fields.
func (c LogConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Format.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidLogConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidLogConfigError.
func (e *InvalidLogConfigError) Error() string {
	return fmt.Sprintf("invalid log config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidLogConfig for errors.Is() compatibility.
func (e *InvalidLogConfigError) Unwrap() error { return ErrInvalidLogConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to each field's IsValid(). An empty Cycles value is accepted
// and means the bundler default.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Namespace.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, ext := range c.Extensions {
		if valid, fieldErrs := ext.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	for _, dir := range c.ModuleDirs {
		if valid, fieldErrs := dir.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.Workers.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Cycles.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Log.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return "invalid config: " + e.FieldErrors[0].Error()
	}
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// ExtensionStrings returns Extensions as plain strings for the loader.
func (c *Config) ExtensionStrings() []string {
	out := make([]string, len(c.Extensions))
	for i, ext := range c.Extensions {
		out[i] = string(ext)
	}
	return out
}

// ModuleDirStrings returns ModuleDirs as plain strings for the loader.
func (c *Config) ModuleDirStrings() []string {
	out := make([]string, len(c.ModuleDirs))
	for i, dir := range c.ModuleDirs {
		out[i] = string(dir)
	}
	return out
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Namespace:  DefaultNamespace,
		Extensions: []Extension{".js", ".json"},
		ModuleDirs: []ModuleDir{"node_modules"},
		Workers:    DefaultWorkers,
		Cycles:     bundler.CyclesWarn,
		Log: LogConfig{
			Level:  logging.LevelWarn,
			Format: logging.FormatText,
		},
	}
}
