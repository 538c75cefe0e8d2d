// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgit-dev/mgit/internal/render"
	"github.com/mgit-dev/mgit/internal/resolve"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve TARGET",
		Short: "Print the resolved absolute path for an alias or path",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}
}

func runResolve(cmd *cobra.Command, args []string) error {
	rt, err := newRunContext(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer rt.block.Teardown()

	rel, via, err := resolve.ResolveWithSource(rt.cfg, args[0], !rt.noAlias)
	if err != nil {
		return rt.fail(err)
	}

	abs := filepath.Join(rt.cfg.Root, rel)
	text := fmt.Sprintf("%s (resolved via %s)", abs, via)

	content := render.NewMessageLine(rt.display(abs))
	handle := rt.block.AddPending(content)
	content.Set(text)
	handle.Finish()
	return nil
}
