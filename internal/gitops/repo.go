// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package gitops wraps go-git to expose the status, fast-forward pull, and
// credential negotiation primitives the rest of mgit is built on. Every
// exported operation treats the underlying repository handle as owned
// exclusively by its caller.
package gitops

import (
	"errors"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/mgit-dev/mgit/internal/mgitconfig"
	"github.com/mgit-dev/mgit/internal/mgiterr"
)

// Repo is an opened repository handle together with the effective settings
// for its path. Exclusively owned by the worker that opened it.
type Repo struct {
	Path     string
	Settings mgitconfig.Settings

	repo *git.Repository
}

// Open opens path as a git repository. If path is not a repository it
// returns go-git's error wrapped with mgiterr.ErrNotGitRepository so
// the walker can distinguish "not a repo, keep recursing" from a genuine
// I/O failure.
func Open(path string, settings mgitconfig.Settings) (*Repo, error) {
	r, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: false})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, mgiterr.Wrap(err, mgiterr.ErrNotGitRepository)
		}
		return nil, mgiterr.WithContext(err, "opening "+path)
	}
	return &Repo{Path: path, Settings: settings, repo: r}, nil
}

// IsRepository reports whether path looks like a git repository, without
// surfacing any other kind of open failure.
func IsRepository(path string) bool {
	_, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: false})
	return err == nil
}

// symbolicHead returns the unresolved HEAD reference (a symbolic reference
// to refs/heads/<name> on a normal checkout, or a hash reference when
// detached) without failing if the target branch doesn't exist yet.
func (r *Repo) symbolicHead() (*plumbing.Reference, error) {
	ref, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return nil, mgiterr.WithContext(err, "reading HEAD")
	}
	return ref, nil
}

func (r *Repo) commit(hash plumbing.Hash) (*object.Commit, error) {
	return r.repo.CommitObject(hash)
}
