// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mgit-dev/mgit/internal/mgitconfig"
	"github.com/mgit-dev/mgit/internal/testutil"
)

func TestOpenNotARepository(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(dir, mgitconfig.Settings{})
	require.Error(t, err)
	require.False(t, IsRepository(dir))
}

func TestStatusUnbornHead(t *testing.T) {
	dir := testutil.TempGitRepo(t)
	exec.Command("git", "-C", dir, "symbolic-ref", "HEAD", "refs/heads/main").Run()

	repo, err := Open(dir, mgitconfig.Settings{})
	require.NoError(t, err)

	status, err := repo.Status()
	require.NoError(t, err)
	require.Equal(t, HeadUnborn, status.Head.Kind)
	require.Equal(t, "main", status.Head.Name)
	require.Equal(t, UpstreamNone, status.Upstream.State)
	require.False(t, status.WorkingTree.Dirty())
}

func TestStatusOnBranchClean(t *testing.T) {
	dir := testutil.TempGitRepoWithCommit(t)

	repo, err := Open(dir, mgitconfig.Settings{})
	require.NoError(t, err)

	status, err := repo.Status()
	require.NoError(t, err)
	require.Equal(t, HeadBranch, status.Head.Kind)
	require.False(t, status.WorkingTree.Dirty())
}

func TestStatusWorkingTreeDirty(t *testing.T) {
	dir := testutil.TempGitRepoWithCommit(t)
	testutil.CommitFile(t, dir, "README.md", "# Test\n\nUpdated.", "update README")
	testutil.CommitFile(t, dir, "other.txt", "hello", "add other")

	repo, err := Open(dir, mgitconfig.Settings{})
	require.NoError(t, err)

	// Modify without committing.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("changed"), 0o644))

	status, err := repo.Status()
	require.NoError(t, err)
	require.True(t, status.WorkingTree.WorkingChanged)
}

func TestStatusUpstreamAheadBehind(t *testing.T) {
	cloneDir, remoteDir := testutil.TempGitRemotePair(t, "main")
	_ = remoteDir

	testutil.CommitFile(t, cloneDir, "local.txt", "local", "local commit")

	repo, err := Open(cloneDir, mgitconfig.Settings{})
	require.NoError(t, err)

	status, err := repo.Status()
	require.NoError(t, err)
	require.Equal(t, UpstreamTracking, status.Upstream.State)
	require.Equal(t, 1, status.Upstream.Ahead)
	require.Equal(t, 0, status.Upstream.Behind)
}

