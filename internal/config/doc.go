// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is read from the first file found among the --config flag,
// <user config dir>/modpack/config.cue and ./modpack.cue. Values are validated
// against the embedded CUE schema (config_schema.cue), merged over built-in
// defaults and finally overridden by MODPACK_* environment variables
// (MODPACK_WORKERS, MODPACK_LOG_LEVEL). No file at all means defaults.
package config
