// SPDX-License-Identifier: MPL-2.0

// Package types defines small validated value types shared by the CLI and its
// packages. It imports only the standard library.
package types
