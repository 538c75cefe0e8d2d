// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// newInteractiveBlock builds a Block over a plain buffer but forces
// interactive mode on, since a bytes.Buffer is never an *os.File and so
// New would otherwise default to JSON mode.
func newInteractiveBlock(out *bytes.Buffer, window int) *Block {
	b := New(out, WithColor(false), WithWindow(window))
	b.jsonMode = false
	b.interactive = true
	return b
}

func TestNewDefaultsToJSONModeForNonTerminal(t *testing.T) {
	var out bytes.Buffer
	b := New(&out)
	require.True(t, b.jsonMode)
	require.False(t, b.interactive)
}

func TestJSONModeEmitsContiguousFinishedLinesInOrder(t *testing.T) {
	var out bytes.Buffer
	b := New(&out, WithJSON(true))

	first := NewMessageLine("repo-a")
	firstHandle := b.AddPending(first)
	second := NewMessageLine("repo-b")
	secondHandle := b.AddPending(second)

	// Finishing the second line first must not emit anything yet: the
	// first line is still the unfinished prefix.
	second.Set("done-b")
	secondHandle.Finish()
	require.Empty(t, out.String())

	first.Set("done-a")
	firstHandle.Finish()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var a, b2 map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &a))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &b2))
	require.Equal(t, "done-a", a["message"])
	require.Equal(t, "done-b", b2["message"])
}

func TestJSONModeNeverRedraws(t *testing.T) {
	var out bytes.Buffer
	b := New(&out, WithJSON(true))
	handle := b.AddPending(NewMessageLine("repo-a"))
	handle.Update()
	require.NotContains(t, out.String(), "\x1b[")
}

func TestDirectoryAndErrorHeadersAreFinishedOnCreation(t *testing.T) {
	var out bytes.Buffer
	b := New(&out, WithJSON(true))
	b.AddDirectory("/repos/team")
	b.AddError(errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var dir, errLine map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &dir))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &errLine))
	require.Equal(t, "directory", dir["kind"])
	require.Equal(t, "error", errLine["kind"])
	require.Equal(t, "boom", errLine["message"])
}

func TestInteractiveRedrawShowsOnlyVisibleWindow(t *testing.T) {
	var out bytes.Buffer
	b := newInteractiveBlock(&out, 2)

	m1 := NewMessageLine("repo-1")
	h1 := b.AddPending(m1)
	m1.Set("one")
	m2 := NewMessageLine("repo-2")
	h2 := b.AddPending(m2)
	m2.Set("two")
	m3 := NewMessageLine("repo-3")
	b.AddPending(m3)

	out.Reset()
	h1.Update()

	rendered := out.String()
	require.Contains(t, rendered, "repo-1")
	require.Contains(t, rendered, "repo-2")
	require.NotContains(t, rendered, "repo-3")

	h1.Finish()
	h2.Finish()

	out.Reset()
	b.mu.Lock()
	start, end := b.windowBoundsLocked()
	b.mu.Unlock()
	require.Equal(t, 2, start)
	require.Equal(t, 3, end)
}

func TestUpdateOutsideWindowIsDropped(t *testing.T) {
	var out bytes.Buffer
	b := newInteractiveBlock(&out, 1)

	b.AddPending(NewMessageLine("repo-1"))
	m2 := NewMessageLine("repo-2")
	h2 := b.AddPending(m2)

	out.Reset()
	h2.Update()
	require.Empty(t, out.String(), "repo-2 is not in the visible window yet")
}

func TestTeardownRestoresCursorAndColumn(t *testing.T) {
	var out bytes.Buffer
	b := newInteractiveBlock(&out, 5)
	b.AddPending(NewMessageLine("repo-1"))

	require.NoError(t, b.Teardown())
	require.Contains(t, out.String(), showCursor)
}
