// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for modpack.
//
// The root command bundles an entry file and everything it requires into one
// script: modpack <inputFile> <outputFile>. Subcommands inspect the dependency
// graph (deps) and manage configuration (config).
package cmd
