// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgit-dev/mgit/internal/gitops"
	"github.com/mgit-dev/mgit/internal/render"
	"github.com/mgit-dev/mgit/internal/scheduler"
	"github.com/mgit-dev/mgit/internal/walker"
)

func newPullCmd() *cobra.Command {
	var switchBranch bool
	cmd := &cobra.Command{
		Use:   "pull [TARGET]",
		Short: "Fast-forward pull every repository under TARGET",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPull(cmd, args, switchBranch)
		},
	}
	cmd.Flags().BoolVar(&switchBranch, "switch", false, "move HEAD to the default branch first instead of erroring")
	return cmd
}

type pullJob struct {
	entry   walker.Entry
	handle  *render.Handle
	content *render.PullLineContent
}

func runPull(cmd *cobra.Command, args []string, switchBranch bool) error {
	rt, err := newRunContext(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer rt.block.Teardown()

	startPath, err := rt.targetPath(arg(args))
	if err != nil {
		return rt.fail(err)
	}

	if err := rt.block.Start(); err != nil {
		return rt.fail(err)
	}

	var jobs []pullJob
	walker.Walk(rt.cfg, startPath, walker.Callbacks{
		OnDir:   func(path string) { rt.block.AddDirectory(rt.display(path)) },
		OnError: func(err error) { rt.block.AddError(err) },
		OnRepo: func(e walker.Entry) {
			content := render.NewPullLine(rt.display(e.Path))
			handle := rt.block.AddPending(content)
			jobs = append(jobs, pullJob{entry: e, handle: handle, content: content})
		},
	})

	scheduler.Run(jobs, rt.jobs, func(j pullJob) {
		outcome, err := j.entry.Repo.Pull(gitops.PullOptions{
			Switch:     switchBranch,
			OnProgress: func(p gitops.FetchProgress) { j.content.SetProgress(p); j.handle.Update() },
		})
		j.content.SetOutcome(outcome, err)
		j.handle.Finish()
	}, func(j pullJob, recovered any) {
		j.content.SetOutcome(nil, fmt.Errorf("panic: %v", recovered))
		j.handle.Finish()
	})

	return nil
}
