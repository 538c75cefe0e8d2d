// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Command mgit runs Git operations across many repositories in parallel,
// rendering live progress in a sticky terminal block or as JSON Lines.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
