// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package render

import (
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// isTerminal reports whether out (when it is an *os.File) is attached to an
// interactive terminal rather than a pipe or redirect.
func isTerminal(out *os.File) bool {
	fd := out.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// terminalRows returns the terminal height for out, or 0 if it cannot be
// determined (e.g. out is not a terminal).
func terminalRows(out *os.File) int {
	_, rows, err := term.GetSize(int(out.Fd()))
	if err != nil {
		return 0
	}
	return rows
}

// enableRawMode suspends canonical/echo processing on stdin for the
// duration of an interactive render, matching the contract that raw mode is
// enabled only for the interactive renderer and restored on teardown. It is
// a no-op, returning a no-op restore, when stdin is not a terminal.
func enableRawMode() (restore func() error, err error) {
	fd := int(os.Stdin.Fd())
	if !isatty.IsTerminal(uintptr(fd)) {
		return func() error { return nil }, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return func() error { return nil }, err
	}
	return func() error { return term.Restore(fd, state) }, nil
}
