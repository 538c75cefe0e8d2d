// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mgit-dev/mgit/internal/testutil"
)

// mkdir creates dir under root (including parents) and returns its path.
func mkdir(t *testing.T, root, name string) string {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(path, 0o755))
	return path
}

func TestStatusReportsEachRepository(t *testing.T) {
	root := t.TempDir()
	testutil.InitRepoInPlace(t, mkdir(t, root, "alpha"))
	testutil.InitRepoInPlace(t, mkdir(t, root, "beta"))
	writeConfig(t, root, "")

	out, err := runMgit(t, "status")
	require.NoError(t, err)

	lines := linesOfKind(jsonLines(t, out), "status")
	require.Len(t, lines, 2)
	for _, l := range lines {
		require.Empty(t, l["error"])
		require.NotEmpty(t, l["head"])
	}
}

func TestStatusOnSpecificTarget(t *testing.T) {
	root := t.TempDir()
	testutil.InitRepoInPlace(t, mkdir(t, root, "alpha"))
	testutil.InitRepoInPlace(t, mkdir(t, root, "beta"))
	writeConfig(t, root, "")

	out, err := runMgit(t, "status", "alpha")
	require.NoError(t, err)

	lines := linesOfKind(jsonLines(t, out), "status")
	require.Len(t, lines, 1)
	require.Empty(t, lines[0]["error"])
	require.NotEmpty(t, lines[0]["head"])
}

func TestStatusErrorsForUnresolvableTarget(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "")

	_, err := runMgit(t, "status", "nope")
	require.Error(t, err)
}
