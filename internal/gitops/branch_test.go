// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package gitops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mgit-dev/mgit/internal/mgitconfig"
	"github.com/mgit-dev/mgit/internal/mgiterr"
	"github.com/mgit-dev/mgit/internal/testutil"
)

func TestCreateBranchSwitchesToNewBranch(t *testing.T) {
	dir := testutil.TempGitRepoWithCommit(t)
	repo, err := Open(dir, mgitconfig.Settings{})
	require.NoError(t, err)

	require.NoError(t, repo.CreateBranch("feature/one"))

	status, err := repo.Status()
	require.NoError(t, err)
	require.Equal(t, HeadBranch, status.Head.Kind)
	require.Equal(t, "feature/one", status.Head.Name)
}

func TestCreateBranchRejectsDirtyWorkingTree(t *testing.T) {
	dir := testutil.TempGitRepoWithCommit(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "untracked.txt"), []byte("x"), 0o644))

	repo, err := Open(dir, mgitconfig.Settings{})
	require.NoError(t, err)

	err = repo.CreateBranch("feature/one")
	require.Error(t, err)
	require.True(t, mgiterr.Is(err, mgiterr.ErrDirtyWorkingTree))
}

func TestCreateBranchRejectsExistingName(t *testing.T) {
	dir := testutil.TempGitRepoWithBranch(t, "existing")
	repo, err := Open(dir, mgitconfig.Settings{})
	require.NoError(t, err)

	err = repo.CreateBranch("existing")
	require.Error(t, err)
	require.True(t, mgiterr.Is(err, mgiterr.ErrBranchExists))
}
