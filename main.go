// SPDX-License-Identifier: MPL-2.0

// modpack bundles a CommonJS module graph into a single UMD script.
package main

import cmd "github.com/modpack/modpack/cmd/modpack"

func main() {
	cmd.Execute()
}
