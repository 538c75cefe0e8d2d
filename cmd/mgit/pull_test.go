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

func TestPullReportsUpToDate(t *testing.T) {
	cloneDir, _ := testutil.TempGitRemotePair(t, "main")
	writeConfig(t, cloneDir, "")

	out, err := runMgit(t, "pull")
	require.NoError(t, err)

	lines := linesOfKind(jsonLines(t, out), "pull")
	require.Len(t, lines, 1)
	require.Equal(t, "up_to_date", lines[0]["state"])
	require.Equal(t, "main", lines[0]["branch"])
}

func TestPullReportsErrorOnDirtyWorkingTree(t *testing.T) {
	cloneDir, _ := testutil.TempGitRemotePair(t, "main")
	require.NoError(t, os.WriteFile(filepath.Join(cloneDir, "README.md"), []byte("changed"), 0o644))
	writeConfig(t, cloneDir, "")

	out, err := runMgit(t, "pull")
	require.NoError(t, err)

	lines := linesOfKind(jsonLines(t, out), "pull")
	require.Len(t, lines, 1)
	require.NotEmpty(t, lines[0]["error"])
}
