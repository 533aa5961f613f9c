// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for PGO profile generation.
// They cover the hot paths of a bundle invocation:
//   - require scanning
//   - graph resolution over memory and file system loaders
//   - ordering and emission
//   - configuration loading
//
// To generate a profile, run:
//
//	go test ./internal/benchmark -bench . -cpuprofile default.pgo
package benchmark
