// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mgit-dev/mgit/internal/mgitconfig"
	"github.com/mgit-dev/mgit/internal/testutil"
)

func TestCloneRecordsNoAliasByDefault(t *testing.T) {
	_, remoteDir := testutil.TempGitRemotePair(t, "main")
	root := t.TempDir()
	writeConfig(t, root, "")

	out, err := runMgit(t, "clone", remoteDir)
	require.NoError(t, err)

	lines := linesOfKind(jsonLines(t, out), "message")
	require.Len(t, lines, 1)
	require.Contains(t, lines[0]["message"], "cloned")
	require.DirExists(t, filepath.Join(root, filepath.Base(remoteDir)))
}

func TestCloneWithNameAndAlias(t *testing.T) {
	_, remoteDir := testutil.TempGitRemotePair(t, "main")
	root := t.TempDir()
	configPath := writeConfig(t, root, "")

	out, err := runMgit(t, "clone", "--name", "mine", "--alias", "m", remoteDir)
	require.NoError(t, err)

	lines := linesOfKind(jsonLines(t, out), "message")
	require.Len(t, lines, 1)
	require.Contains(t, lines[0]["message"], "cloned")
	require.DirExists(t, filepath.Join(root, "mine"))

	cfg, err := mgitconfig.Load(configPath)
	require.NoError(t, err)
	path, ok := cfg.AliasPath("m")
	require.True(t, ok)
	require.Equal(t, "mine", path)
}

func TestCloneRejectsUnreachableRemote(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "")

	_, err := runMgit(t, "clone", "/nonexistent/remote/path")
	require.Error(t, err)
}
