// SPDX-License-Identifier: MPL-2.0

// Package loader provides module loaders for the bundler.
//
// A loader answers three questions about CommonJS modules: what is the source
// of a module ID ([FS.LoadSource]), which module ID does a raw require
// reference written inside another module name ([FS.ResolveReference]), and
// which raw references does a source declare ([ScanRequires]).
//
// Implementations:
//   - [FS]: node-style resolution over an fs.FS rooted at a project directory
//   - [Memory]: an in-memory module table with the same relative-path rules
//   - [Once]: wraps any loader so each ID is loaded exactly once, even when
//     requested concurrently
//
// Module IDs are slash-separated paths relative to the loader root, without a
// leading "./" (e.g. "src/index.js", "node_modules/left-pad/index.js").
package loader
