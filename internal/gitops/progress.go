// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package gitops

import (
	"regexp"
)

// FetchProgress is the two-phase transfer progress reported during a
// fetch: receiving objects over the wire, then indexing them locally.
type FetchProgress struct {
	Received int
	Indexed  int
	Total    int
}

// ProgressFunc receives FetchProgress updates from the worker thread. It
// must not block — callers typically forward it into the output block's
// line-update path, which itself never blocks on a full redraw.
type ProgressFunc func(FetchProgress)

var (
	receivingPattern = regexp.MustCompile(`Receiving objects:\s+\d+% \((\d+)/(\d+)\)`)
	indexingPattern  = regexp.MustCompile(`Indexing objects:\s+\d+% \((\d+)/(\d+)\)`)
)

// progressWriter adapts git's human-readable sideband progress lines
// (what the smart HTTP/SSH transports write to FetchOptions.Progress) into
// the structured FetchProgress triple. go-git, unlike the backend surface
// in §6.3, does not expose transfer-progress as a typed callback — it
// only forwards the server's raw progress text, so this is the
// translation layer between the two.
type progressWriter struct {
	onProgress ProgressFunc
	buf        []byte
}

func newProgressWriter(onProgress ProgressFunc) *progressWriter {
	if onProgress == nil {
		onProgress = func(FetchProgress) {}
	}
	return &progressWriter{onProgress: onProgress}
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	w.flushLines()
	return len(p), nil
}

func (w *progressWriter) flushLines() {
	for {
		idx := indexOfAny(w.buf, '\n', '\r')
		if idx < 0 {
			return
		}
		line := string(w.buf[:idx])
		w.buf = w.buf[idx+1:]
		w.parseLine(line)
	}
}

func (w *progressWriter) parseLine(line string) {
	if m := receivingPattern.FindStringSubmatch(line); m != nil {
		received, total := atoiSafe(m[1]), atoiSafe(m[2])
		w.onProgress(FetchProgress{Received: received, Total: total})
		return
	}
	if m := indexingPattern.FindStringSubmatch(line); m != nil {
		indexed, total := atoiSafe(m[1]), atoiSafe(m[2])
		w.onProgress(FetchProgress{Received: total, Indexed: indexed, Total: total})
	}
}

func indexOfAny(b []byte, chars ...byte) int {
	for i, c := range b {
		for _, want := range chars {
			if c == want {
				return i
			}
		}
	}
	return -1
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return n
		}
		n = n*10 + int(c-'0')
	}
	return n
}
