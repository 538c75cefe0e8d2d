// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package mgitignore supports an optional ".mgitignore" file at a config's
// root, letting a directory tree prune subdirectories from discovery using
// familiar gitignore syntax instead of (or alongside) the TOML [settings.*]
// ignore overlay.
package mgitignore

import (
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

const fileName = ".mgitignore"

// Matcher checks relative paths against the patterns loaded from a root's
// ".mgitignore" file. A Matcher loaded from a missing file matches nothing.
type Matcher struct {
	gi *gitignore.GitIgnore
}

// Load reads root's ".mgitignore" file, returning a Matcher that matches
// nothing if the file does not exist.
func Load(root string) (*Matcher, error) {
	path := filepath.Join(root, fileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Matcher{}, nil
	}

	gi, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, err
	}
	return &Matcher{gi: gi}, nil
}

// Match reports whether relPath (forward-slash-separated, root-relative)
// is ignored.
func (m *Matcher) Match(relPath string) bool {
	if m == nil || m.gi == nil || relPath == "" {
		return false
	}
	return m.gi.MatchesPath(relPath)
}
