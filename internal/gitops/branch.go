// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package gitops

import (
	"errors"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/mgit-dev/mgit/internal/mgiterr"
)

var (
	errDirtyForBranch = errors.New("cannot create branch with uncommitted changes")
	errBranchExists   = errors.New("branch already exists")
)

// CreateBranch creates a new local branch named name pointing at HEAD's
// current commit and checks it out. It refuses when the working tree
// carries uncommitted changes or the branch already exists — the edit
// subcommand's --branch flag is the only caller.
func (r *Repo) CreateBranch(name string) error {
	wt, err := r.workingTreeStatus()
	if err != nil {
		return mgiterr.WithContext(err, "reading working tree status")
	}
	if wt.Dirty() {
		return mgiterr.Wrap(errDirtyForBranch, mgiterr.ErrDirtyWorkingTree)
	}

	branchRef := plumbing.NewBranchReferenceName(name)
	if _, err := r.repo.Reference(branchRef, true); err == nil {
		return mgiterr.Wrap(errBranchExists, mgiterr.ErrBranchExists)
	}

	head, err := r.repo.Head()
	if err != nil {
		return mgiterr.WithContext(err, "resolving HEAD")
	}

	ref := plumbing.NewHashReference(branchRef, head.Hash())
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return mgiterr.WithContext(err, "creating branch "+name)
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Branch: branchRef}); err != nil {
		return mgiterr.WithContext(err, "checking out "+name)
	}
	return nil
}
