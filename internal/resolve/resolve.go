// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package resolve turns a user-supplied name into a path relative to a
// configured root, first trying alias prefix matching and falling back to a
// literal path lookup with typo suggestions (§4.5).
package resolve

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/mgit-dev/mgit/internal/mgitconfig"
	"github.com/mgit-dev/mgit/internal/mgiterr"
)

// similarityThreshold is the Jaro-Winkler cutoff above which a name is
// offered as a suggestion (§4.5).
const similarityThreshold = 0.8

// maxSuggestions bounds how many alias names or path segments are offered
// in an error message.
const maxSuggestions = 4

// Resolve maps input to a relative path under cfg.Root, per §4.5:
//   - if aliasesEnabled and an alias key starts with input: an exact match
//     wins outright; otherwise exactly one prefix match wins; two or more
//     distinct prefix matches (neither equal to input) is "ambiguous alias".
//   - otherwise input is treated as a path relative to root; if it exists,
//     it is used as-is; otherwise the error lists near-miss aliases and
//     path segments.
func Resolve(cfg *mgitconfig.Config, input string, aliasesEnabled bool) (string, error) {
	path, _, err := ResolveWithSource(cfg, input, aliasesEnabled)
	return path, err
}

// Source names which of the two resolution strategies produced a path.
type Source string

const (
	ViaAlias Source = "alias"
	ViaPath  Source = "path"
)

// ResolveWithSource is Resolve, additionally reporting whether the result
// came from an alias or a literal path — the distinction the resolve
// subcommand's text output surfaces to the user.
func ResolveWithSource(cfg *mgitconfig.Config, input string, aliasesEnabled bool) (string, Source, error) {
	if aliasesEnabled {
		if path, ok, err := resolveAlias(cfg, input); err != nil {
			return "", "", err
		} else if ok {
			return path, ViaAlias, nil
		}
	}

	candidate := filepath.Join(cfg.Root, input)
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return filepath.ToSlash(input), ViaPath, nil
	}

	return "", "", notFoundError(cfg, input)
}

func resolveAlias(cfg *mgitconfig.Config, input string) (path string, ok bool, err error) {
	if exact, exists := cfg.AliasPath(input); exists {
		return exact, true, nil
	}

	var matches []string
	for _, name := range cfg.AliasNames() {
		if strings.HasPrefix(name, input) {
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return "", false, nil
	case 1:
		p, _ := cfg.AliasPath(matches[0])
		return p, true, nil
	default:
		return "", false, mgiterr.Wrap(mgiterr.New("prefix %q matches "+strings.Join(matches, ", ")), mgiterr.ErrAmbiguousAlias)
	}
}

// notFoundError builds the "no such path" diagnostic with up-to-four
// Jaro-Winkler–nearest alias names and up-to-four nearest existing path
// segments directly under root.
func notFoundError(cfg *mgitconfig.Config, input string) error {
	aliasSuggestions := nearest(input, cfg.AliasNames())
	segments := pathSegments(cfg.Root)
	pathSuggestions := nearest(input, segments)

	msg := "no such path: " + input
	if len(aliasSuggestions) > 0 {
		msg += "; did you mean alias " + strings.Join(aliasSuggestions, ", ") + "?"
	}
	if len(pathSuggestions) > 0 {
		msg += "; did you mean path " + strings.Join(pathSuggestions, ", ") + "?"
	}
	return mgiterr.New(msg)
}

// nearest returns up to maxSuggestions candidates whose Jaro-Winkler
// similarity to input exceeds similarityThreshold, most similar first.
func nearest(input string, candidates []string) []string {
	type scored struct {
		name  string
		score float64
	}
	var scoredCandidates []scored
	for _, c := range candidates {
		score := smetrics.JaroWinkler(input, c, 0.7, 4)
		if score > similarityThreshold {
			scoredCandidates = append(scoredCandidates, scored{name: c, score: score})
		}
	}
	sort.SliceStable(scoredCandidates, func(i, j int) bool {
		return scoredCandidates[i].score > scoredCandidates[j].score
	})

	var out []string
	for i := 0; i < len(scoredCandidates) && i < maxSuggestions; i++ {
		out = append(out, scoredCandidates[i].name)
	}
	return out
}

// pathSegments lists the immediate subdirectory names under root.
func pathSegments(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}
