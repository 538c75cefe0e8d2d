// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/mgit-dev/mgit/internal/mgitconfig"
)

// resetGlobalFlags puts every subcommand's own flags back to their declared
// defaults, then sets the persistent flag vars to the test baseline: quiet
// logging, color off, everything else zero. Cobra's flags are bound to
// package-level vars that only change when a test's args pass them
// explicitly, so a value set by one test would otherwise leak into the next
// test run in the same process.
func resetGlobalFlags(t *testing.T) {
	t.Helper()
	for _, sub := range rootCmd.Commands() {
		sub.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	noAlias = false
	jobs = 0
	jsonOutput = false
	quiet = true
	debug = false
	trace = false
	colorMode = "never"
}

// writeConfig writes a minimal TOML config rooted at root and points
// MULTIGIT_CONFIG_PATH at it for the duration of the test.
func writeConfig(t *testing.T, root string, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "root = " + quoteTOML(root) + "\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv(mgitconfig.EnvConfigPath, path)
	return path
}

func quoteTOML(s string) string {
	return `"` + strings.ReplaceAll(filepath.ToSlash(s), `"`, `\"`) + `"`
}

// runMgit resets global flag state, points stdout at an in-memory buffer
// (which is not an *os.File, so the output block defaults to JSON-Lines
// mode on its own), and executes rootCmd with args. It returns the raw
// output and whatever error Execute produced.
func runMgit(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetGlobalFlags(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := Execute()
	return out.String(), err
}

// jsonLines decodes each non-empty line of out as a JSON object.
func jsonLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if raw == "" {
			continue
		}
		var obj map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &obj), "line: %s", raw)
		lines = append(lines, obj)
	}
	return lines
}

// linesOfKind filters jsonLines to a given "kind" field.
func linesOfKind(lines []map[string]any, kind string) []map[string]any {
	var out []map[string]any
	for _, l := range lines {
		if l["kind"] == kind {
			out = append(out, l)
		}
	}
	return out
}
