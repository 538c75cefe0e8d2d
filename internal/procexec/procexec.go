// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package procexec spawns the exec subcommand's per-repository command,
// either directly (no shell) or through a named shell, and captures its
// outcome for the output block's exec line.
package procexec

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/mgit-dev/mgit/internal/mgiterr"
)

// Shell names the interpreter exec should use to run a command, mirroring
// the platform-appropriate choices a user would reach for from a terminal.
type Shell string

const (
	ShellNone       Shell = "none"
	ShellBash       Shell = "bash"
	ShellSh         Shell = "sh"
	ShellCmd        Shell = "cmd"
	ShellPowerShell Shell = "powershell"
	ShellPwsh       Shell = "pwsh"
)

// ParseShell validates a --shell flag value, defaulting to DefaultShell
// when s is empty.
func ParseShell(s string) (Shell, error) {
	if s == "" {
		return DefaultShell(), nil
	}
	switch Shell(s) {
	case ShellNone, ShellBash, ShellSh, ShellCmd, ShellPowerShell, ShellPwsh:
		return Shell(s), nil
	default:
		return "", mgiterr.New(fmt.Sprintf("unknown shell %q", s))
	}
}

// DefaultShell is the platform-appropriate shell used when --shell is
// omitted.
func DefaultShell() Shell {
	if runtime.GOOS == "windows" {
		return ShellPowerShell
	}
	return ShellBash
}

// Result is the outcome of one exec invocation.
type Result struct {
	ExitCode int
	Output   string
}

// Run spawns command in dir using shell, combining stdout and stderr into
// Result.Output, and waits for it to exit. A non-zero exit is reported
// through Result.ExitCode, not as an error — only a failure to spawn the
// process at all (bad shell, missing binary) is returned as an error.
func Run(dir string, shell Shell, command []string) (*Result, error) {
	argv, err := buildArgv(shell, command)
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, mgiterr.New("no command given")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	runErr := cmd.Run()
	result := &Result{Output: out.String()}

	if runErr == nil {
		return result, nil
	}
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return nil, mgiterr.WithContext(runErr, "spawning "+argv[0])
}

// buildArgv turns the user-supplied command into the argv exec.Command
// needs. For ShellNone, a command given as a single string is re-tokenized
// with shellwords so a caller can pass a whole command line as one
// argument (e.g. from a config-driven invocation); a command already split
// into multiple tokens (the common cobra "-- arg arg arg" case) is used
// as-is. For a named shell, the tokens are joined back into one command
// line and handed to "<shell> -c" (or "<shell> /C" on cmd.exe).
func buildArgv(shell Shell, command []string) ([]string, error) {
	if shell == ShellNone {
		if len(command) == 1 {
			tokens, err := shellwords.Parse(command[0])
			if err != nil {
				return nil, mgiterr.WithContext(err, "parsing command")
			}
			return tokens, nil
		}
		return command, nil
	}

	line := strings.Join(command, " ")
	switch shell {
	case ShellBash:
		return []string{"bash", "-c", line}, nil
	case ShellSh:
		return []string{"sh", "-c", line}, nil
	case ShellCmd:
		return []string{"cmd", "/C", line}, nil
	case ShellPowerShell:
		return []string{"powershell", "-Command", line}, nil
	case ShellPwsh:
		return []string{"pwsh", "-Command", line}, nil
	default:
		return nil, mgiterr.New(fmt.Sprintf("unknown shell %q", shell))
	}
}
