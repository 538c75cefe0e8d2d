// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package scheduler drives a fixed-size worker pool over a slice of items,
// in FIFO submission order, blocking the calling goroutine until every item
// has been processed. It never cancels in-flight work; a panicking worker
// is isolated to its own goroutine and reported through onPanic rather than
// bringing down the run.
package scheduler

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Worker processes one item. It is called once per item, from one of the
// pool's goroutines; ordering between concurrently running workers is
// unspecified.
type Worker[T any] func(item T)

// PanicHandler is invoked, from the goroutine that recovered it, when a
// Worker panics while processing item.
type PanicHandler[T any] func(item T, recovered any)

// Run executes fn once per entry in items across a pool bounded to
// workerCount concurrent goroutines, blocking until all items have been
// processed. workerCount <= 0 means "available cores" (runtime.NumCPU()).
//
// Items are submitted to the pool in the order they appear in items;
// errgroup.Group.SetLimit blocks a submission once the pool is full, so
// submission order is preserved even though completion order is not — the
// FIFO guarantee §4.2 requires for the output block's visible window.
func Run[T any](items []T, workerCount int, fn Worker[T], onPanic PanicHandler[T]) {
	if len(items) == 0 {
		return
	}
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	var g errgroup.Group
	g.SetLimit(workerCount)

	for _, item := range items {
		g.Go(func() error {
			runOne(item, fn, onPanic)
			return nil
		})
	}

	_ = g.Wait()
}

// runOne calls fn with item, recovering and forwarding any panic to onPanic
// so that a single misbehaving worker never aborts the rest of the pool.
func runOne[T any](item T, fn Worker[T], onPanic PanicHandler[T]) {
	defer func() {
		if r := recover(); r != nil && onPanic != nil {
			onPanic(item, r)
		}
	}()
	fn(item)
}
