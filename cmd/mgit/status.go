// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgit-dev/mgit/internal/render"
	"github.com/mgit-dev/mgit/internal/scheduler"
	"github.com/mgit-dev/mgit/internal/walker"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [TARGET]",
		Short: "Print status for every repository under TARGET",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStatus,
	}
}

type statusJob struct {
	entry   walker.Entry
	handle  *render.Handle
	content *render.StatusLineContent
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	var jobs []statusJob
	walker.Walk(rt.cfg, startPath, walker.Callbacks{
		OnDir:   func(path string) { rt.block.AddDirectory(rt.display(path)) },
		OnError: func(err error) { rt.block.AddError(err) },
		OnRepo: func(e walker.Entry) {
			content := render.NewStatusLine(rt.display(e.Path))
			handle := rt.block.AddPending(content)
			jobs = append(jobs, statusJob{entry: e, handle: handle, content: content})
		},
	})

	scheduler.Run(jobs, rt.jobs, func(j statusJob) {
		status, err := j.entry.Repo.Status()
		j.content.Set(status, err)
		j.handle.Finish()
	}, func(j statusJob, recovered any) {
		j.content.Set(nil, fmt.Errorf("panic: %v", recovered))
		j.handle.Finish()
	})

	return nil
}
