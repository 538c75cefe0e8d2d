// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package render implements the sticky terminal output block: a bounded
// region of the terminal in which each repository occupies one line that is
// updated asynchronously by the worker processing it, plus a mutually
// exclusive JSON-Lines mode for non-interactive consumers.
package render

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// line pairs a LineContent with the block's bookkeeping for it. Headers
// (directory, error) are always finished on creation.
type line struct {
	content  LineContent
	finished bool
}

// Block owns one bounded terminal region. A single mutex guards its state
// (the lines slice, the window's start index, and finished flags); content
// mutation happens through each LineContent's own mutex instead, so a
// worker never needs the block's lock just to update its payload.
type Block struct {
	mu sync.Mutex

	out         io.Writer
	interactive bool
	jsonMode    bool
	colorOn     bool
	window      int

	lines []line
	start int // smallest index of an unfinished non-header line

	restoreRaw func() error
}

// Option configures a Block at construction time.
type Option func(*Block)

// WithJSON forces (or disables) JSON-Lines mode regardless of terminal
// detection. JSON mode and interactive redraws are mutually exclusive.
func WithJSON(enabled bool) Option {
	return func(b *Block) { b.jsonMode = enabled }
}

// WithColor forces (or disables) ANSI color in interactive output,
// overriding terminal-based color detection.
func WithColor(enabled bool) Option {
	return func(b *Block) { b.colorOn = enabled }
}

// WithWindow overrides the visible window size (W = R - 1 by default),
// primarily for tests that don't run inside a real terminal.
func WithWindow(rows int) Option {
	return func(b *Block) { b.window = rows }
}

// New constructs a Block writing to out. When out is a terminal, the window
// defaults to (terminal rows - 1) and color defaults on; otherwise the
// block defaults to JSON-Lines mode, since there is no terminal to redraw.
func New(out io.Writer, opts ...Option) *Block {
	b := &Block{out: out, start: 0}

	if f, ok := out.(*os.File); ok && isTerminal(f) {
		b.interactive = true
		b.colorOn = true
		if rows := terminalRows(f); rows > 1 {
			b.window = rows - 1
		} else {
			b.window = 19
		}
	} else {
		b.jsonMode = true
	}

	for _, opt := range opts {
		opt(b)
	}
	if b.jsonMode {
		b.interactive = false
	}
	if b.window <= 0 {
		b.window = 1
	}
	return b
}

// Start enables raw mode (interactive only) and hides the cursor. It is a
// no-op in JSON mode.
func (b *Block) Start() error {
	if !b.interactive {
		return nil
	}
	restore, err := enableRawMode()
	if err != nil {
		return err
	}
	b.restoreRaw = restore
	fmt.Fprint(b.out, hideCursor)
	return nil
}

// Handle is a worker's reference to its assigned line (§4.2). Content
// mutation happens directly on the LineContent the caller created; Update
// and Finish only drive the block's redraw/window bookkeeping.
type Handle struct {
	block *Block
	index int
}

// Update triggers a best-effort redraw. In the interactive renderer this is
// a try_lock: if the block is busy, the tick is dropped and the next tick
// or Finish will repaint. It is a no-op in JSON mode.
func (h *Handle) Update() {
	h.block.tryRedraw(h.index)
}

// Finish marks the line complete. In JSON mode, every contiguously finished
// line starting at the window's start is serialized and start advances past
// it; in the interactive renderer, the window is recomputed and repainted.
func (h *Handle) Finish() {
	h.block.finish(h.index)
}

// AddDirectory appends a directory header, always finished on creation.
func (b *Block) AddDirectory(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendLocked(NewDirectoryLine(path), true)
	b.repaintLocked()
}

// AddError appends an error header, always finished on creation.
func (b *Block) AddError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendLocked(NewErrorLine(err), true)
	b.repaintLocked()
}

// AddPending appends an unfinished line owned by a worker and returns its
// Handle.
func (b *Block) AddPending(content LineContent) *Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.appendLocked(content, false)
	b.repaintLocked()
	return &Handle{block: b, index: idx}
}

func (b *Block) appendLocked(content LineContent, finished bool) int {
	b.lines = append(b.lines, line{content: content, finished: finished})
	idx := len(b.lines) - 1
	if finished {
		b.advanceStartLocked()
	}
	return idx
}

// advanceStartLocked walks start forward over the contiguous run of
// finished lines, emitting JSON for each as it passes (JSON mode only).
func (b *Block) advanceStartLocked() {
	for b.start < len(b.lines) && b.lines[b.start].finished {
		if b.jsonMode {
			b.emitJSONLocked(b.lines[b.start].content)
		}
		b.start++
	}
}

func (b *Block) emitJSONLocked(content LineContent) {
	data, err := content.MarshalJSON()
	if err != nil {
		return
	}
	b.out.Write(data)
	fmt.Fprintln(b.out)
}

// tryRedraw is the best-effort update path (§4.3): if the line that
// triggered it isn't currently in the visible window, the worker is ahead
// of the window and there is nothing to repaint. If the block is busy, the
// tick is simply dropped — the next tick or Finish will repaint.
func (b *Block) tryRedraw(index int) {
	if !b.interactive {
		return
	}
	if !b.mu.TryLock() {
		return
	}
	defer b.mu.Unlock()
	start, end := b.windowBoundsLocked()
	if index < start || index >= end {
		return
	}
	b.redrawLocked()
}

func (b *Block) finish(i int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines[i].finished = true
	if i == b.start {
		b.advanceStartLocked()
	}
	b.repaintLocked()
}

// repaintLocked emits JSON for any newly contiguous-finished lines already
// handled by advanceStartLocked; all that remains here is the interactive
// repaint, since JSON mode never redraws.
func (b *Block) repaintLocked() {
	if b.interactive {
		b.redrawLocked()
	}
}

func (b *Block) windowBoundsLocked() (start, end int) {
	start = b.start
	end = start + b.window
	if end > len(b.lines) {
		end = len(b.lines)
	}
	return start, end
}

// redrawLocked implements the update-path algorithm (§4.3): for each index
// in the visible window, clear the current line, emit its content, and
// advance to a new line; then move the cursor back up to the window's top
// so the next redraw is idempotent.
func (b *Block) redrawLocked() {
	start, end := b.windowBoundsLocked()
	for i := start; i < end; i++ {
		fmt.Fprint(b.out, clearLine, b.lines[i].content.Render(b.colorOn), "\n")
	}
	fmt.Fprint(b.out, moveUp(end-start))
}

// Teardown repaints once more, moves past the block, restores cursor
// visibility, and disables raw mode. It is a no-op in JSON mode beyond
// flushing any remaining contiguous finished lines (handled already by
// Finish/advanceStartLocked).
func (b *Block) Teardown() error {
	b.mu.Lock()
	if b.interactive {
		start, end := b.windowBoundsLocked()
		for i := start; i < end; i++ {
			fmt.Fprint(b.out, clearLine, b.lines[i].content.Render(b.colorOn), "\n")
		}
		fmt.Fprint(b.out, moveDown(end-start), columnZero, showCursor)
	}
	b.mu.Unlock()

	if b.restoreRaw != nil {
		return b.restoreRaw()
	}
	return nil
}
