// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgit-dev/mgit/internal/mgitconfig"
	"github.com/mgit-dev/mgit/internal/mgitlog"
	"github.com/mgit-dev/mgit/internal/render"
	"github.com/mgit-dev/mgit/internal/resolve"
	"github.com/mgit-dev/mgit/pkg/cliutil"
)

// runContext bundles the state every subcommand needs: the loaded config,
// the diagnostic logging sink, and the sticky output block.
type runContext struct {
	cfg     *mgitconfig.Config
	logger  mgitlog.Logger
	block   *render.Block
	jobs    int
	noAlias bool
}

// newRunContext loads the config from the environment and constructs the
// output block according to the global --json/--color flags.
func newRunContext(out io.Writer) (*runContext, error) {
	cfg, err := mgitconfig.LoadFromEnv()
	if err != nil {
		return nil, err
	}

	var logger mgitlog.Logger = mgitlog.NopLogger{}
	if !quiet {
		logger = mgitlog.New(os.Stderr, mgitlog.WithDebug(debug), mgitlog.WithTrace(trace))
	}

	var opts []render.Option
	if jsonOutput {
		opts = append(opts, render.WithJSON(true))
	}
	switch {
	case strings.ToLower(colorMode) == "never":
		opts = append(opts, render.WithColor(false))
	case cliutil.IsAlwaysColor(colorMode):
		opts = append(opts, render.WithColor(true))
	}

	return &runContext{
		cfg:     cfg,
		logger:  logger,
		block:   render.New(out, opts...),
		jobs:    jobs,
		noAlias: noAlias,
	}, nil
}

// targetPath resolves target — empty meaning the configured root itself —
// to an absolute path to walk from.
func (rt *runContext) targetPath(target string) (string, error) {
	if target == "" {
		return rt.cfg.Root, nil
	}
	rel, err := resolve.Resolve(rt.cfg, target, !rt.noAlias)
	if err != nil {
		return "", err
	}
	return filepath.Join(rt.cfg.Root, rel), nil
}

// display renders an absolute path relative to the config root for use as
// a line label, falling back to the path itself if it isn't under root.
func (rt *runContext) display(path string) string {
	rel, err := filepath.Rel(rt.cfg.Root, path)
	if err != nil {
		return path
	}
	if rel == "." {
		return "."
	}
	return filepath.ToSlash(rel)
}

// relativeTo is like display but returns "" at the config root, matching
// the convention mgitconfig.SettingsFor and the walker use for overlay
// glob matching (as opposed to display's "." for human-readable labels).
func (rt *runContext) relativeTo(path string) string {
	rel, err := filepath.Rel(rt.cfg.Root, path)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// fail renders err as an error line, tears down the block, and returns err
// unchanged so the caller can propagate it as the command's result — the
// process exit code becomes 1 without printing the error a second time.
func (rt *runContext) fail(err error) error {
	rt.block.AddError(err)
	_ = rt.block.Teardown()
	return err
}

// arg returns the first positional argument, or "" when none was given —
// every subcommand here takes at most one TARGET.
func arg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
