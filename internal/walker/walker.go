// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package walker discovers repositories under a root path, emitting entries
// in deterministic tree order while surfacing per-directory errors as inline
// diagnostics instead of aborting the walk.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgit-dev/mgit/internal/gitops"
	"github.com/mgit-dev/mgit/internal/mgitconfig"
	"github.com/mgit-dev/mgit/internal/mgitignore"
	"github.com/mgit-dev/mgit/internal/mgiterr"
)

// Entry is one discovered repository, owned exclusively by whichever worker
// consumes it.
type Entry struct {
	Path         string
	RelativePath string
	Repo         *gitops.Repo
	Settings     mgitconfig.Settings
}

// Callbacks receives the three event kinds the walker emits. OnRepo is
// called once per discovered repository, OnDir once for each directory that
// directly contains at least one repository (always immediately before the
// OnRepo calls for that directory), and OnError for any filesystem or
// repository-open failure encountered along the way.
type Callbacks struct {
	OnRepo  func(Entry)
	OnDir   func(path string)
	OnError func(err error)
}

// Walk discovers repositories under startPath, using cfg to resolve the
// effective settings for each candidate path. It never returns an error
// itself: every failure is reported through cb.OnError and the walk
// continues from wherever it can.
func Walk(cfg *mgitconfig.Config, startPath string, cb Callbacks) {
	rel := relativePath(cfg.Root, startPath)
	settings := cfg.SettingsFor(rel)

	if repo, err := gitops.Open(startPath, settings); err == nil {
		cb.OnRepo(Entry{Path: startPath, RelativePath: rel, Repo: repo, Settings: settings})
		return
	} else if !mgiterr.Is(err, mgiterr.ErrNotGitRepository) {
		cb.OnError(mgiterr.WithContext(err, fmt.Sprintf("opening %s", startPath)))
		return
	}

	ignore, err := mgitignore.Load(cfg.Root)
	if err != nil {
		cb.OnError(mgiterr.WithContext(err, "loading .mgitignore"))
		ignore = &mgitignore.Matcher{}
	}

	walkDir(cfg, startPath, ignore, cb)
}

// walkDir recurses into dirPath, which the caller has already established is
// not itself a repository (the pruning invariant: the walker never descends
// into a directory that is a repository).
func walkDir(cfg *mgitconfig.Config, dirPath string, ignore *mgitignore.Matcher, cb Callbacks) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		cb.OnError(mgiterr.WithContext(err, fmt.Sprintf("reading directory %s", dirPath)))
		return
	}

	var repoEntries []Entry
	var subdirs []string

	for _, de := range entries {
		if !de.IsDir() {
			continue
		}
		subPath := filepath.Join(dirPath, de.Name())
		subRel := relativePath(cfg.Root, subPath)
		if ignore.Match(subRel) {
			continue
		}
		subSettings := cfg.SettingsFor(subRel)
		if subSettings.Ignore != nil && *subSettings.Ignore {
			continue
		}

		repo, err := gitops.Open(subPath, subSettings)
		switch {
		case err == nil:
			repoEntries = append(repoEntries, Entry{Path: subPath, RelativePath: subRel, Repo: repo, Settings: subSettings})
		case mgiterr.Is(err, mgiterr.ErrNotGitRepository):
			subdirs = append(subdirs, subPath)
		default:
			cb.OnError(mgiterr.WithContext(err, fmt.Sprintf("opening %s", subPath)))
		}
	}

	if len(repoEntries) > 0 {
		cb.OnDir(dirPath)
		for _, entry := range repoEntries {
			cb.OnRepo(entry)
		}
	}

	for _, sub := range subdirs {
		walkDir(cfg, sub, ignore, cb)
	}
}

// relativePath strips root from path, returning "" when they are equal. It
// always returns forward-slash-separated paths so overlay globs match the
// same way regardless of host platform.
func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(strings.TrimPrefix(rel, "./"))
}
