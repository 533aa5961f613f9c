// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the operation, resource and remediation hints of a
// failure; the Issue catalog holds longer Markdown guidance for each failure
// class, rendered with glamour when the CLI runs in verbose mode.
package issue
