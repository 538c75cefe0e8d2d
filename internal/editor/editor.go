// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package editor spawns the user's configured editor against a target path
// and waits for it to exit. It is a trivial process-spawn wrapper, listed
// as out of scope for the core but present here as a supplemented feature.
package editor

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/mgit-dev/mgit/internal/mgiterr"
)

// defaultUnix and defaultWindows are the platform fallbacks used only when
// neither an explicit --editor flag, settings.editor, $VISUAL, nor $EDITOR
// is set.
const (
	defaultUnix    = "vi"
	defaultWindows = "notepad"
)

// Resolve picks the editor command to run, in priority order: explicit
// (the --editor flag or settings.editor, already merged by the caller),
// then $VISUAL, then $EDITOR, then a platform default.
func Resolve(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv("VISUAL"); v != "" {
		return v
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	if runtime.GOOS == "windows" {
		return defaultWindows
	}
	return defaultUnix
}

// Open spawns command against target, inheriting the current process's
// stdio so the editor can take over the terminal, and waits for it to
// exit. A non-zero exit is reported as an error; it does not panic or
// leave the terminal in a bad state since no raw mode is active here.
func Open(command, target string) error {
	if target == "" {
		return mgiterr.New("no target to edit")
	}
	if _, err := os.Stat(target); err != nil {
		return mgiterr.WithContext(err, "locating "+target)
	}

	cmd := exec.Command(command, target)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return mgiterr.WithContext(err, "running "+command)
	}
	return nil
}
