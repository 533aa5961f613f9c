// SPDX-License-Identifier: MPL-2.0

// Package bundler links CommonJS modules into a single standalone script.
//
// An invocation runs three phases in sequence:
//
//  1. [ResolveGraph] walks the modules reachable from an entry through a
//     [Loader], loading each module exactly once and resolving every require
//     reference it declares.
//  2. [ComputeOrder] linearizes the graph with a depth-first post-order so
//     that dependencies precede their dependents. Cycles are tolerated: an
//     edge back to a module still being visited is skipped and reported as a
//     [CycleDetected].
//  3. [Emit] wraps every module in a function scope with its own require
//     table and exposes the entry's exports under a namespace, producing an
//     [Artifact].
//
// [Bundler] drives the three phases for one invocation and tracks its
// [State].
package bundler
