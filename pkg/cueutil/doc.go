// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE (and therefore JSON) documents against an
// embedded CUE schema.
//
// modpack uses it for two inputs: the tool configuration file (config.cue) and
// package manifests (package.json) met during module resolution. Both follow
// the same flow:
//
//  1. Compile the embedded schema
//  2. Compile the document and unify it with the schema definition
//  3. Validate and decode into a Go struct
//
// # Usage
//
//	//go:embed package_schema.cue
//	var packageSchema []byte
//
//	result, err := cueutil.ParseAndDecode[packageManifest](
//	    packageSchema,
//	    data,
//	    "#Package",
//	    cueutil.WithFilename("node_modules/left-pad/package.json"),
//	)
//	if err != nil {
//	    return "", err // error carries the CUE path of the offending field
//	}
//	return result.Value.Main, nil
package cueutil
