// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package editor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePrefersExplicit(t *testing.T) {
	t.Setenv("VISUAL", "code")
	t.Setenv("EDITOR", "nano")
	require.Equal(t, "emacs", Resolve("emacs"))
}

func TestResolveFallsBackToVisualThenEditor(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "nano")
	require.Equal(t, "nano", Resolve(""))

	t.Setenv("VISUAL", "code")
	require.Equal(t, "code", Resolve(""))
}

func TestResolveFallsBackToPlatformDefault(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	got := Resolve("")
	require.NotEmpty(t, got)
}

func TestOpenRejectsMissingTarget(t *testing.T) {
	err := Open("true", "")
	require.Error(t, err)
}

func TestOpenRejectsNonexistentTarget(t *testing.T) {
	err := Open("true", "/nonexistent/path/for/mgit/tests")
	require.Error(t, err)
}
