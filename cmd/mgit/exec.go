// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgit-dev/mgit/internal/procexec"
	"github.com/mgit-dev/mgit/internal/render"
	"github.com/mgit-dev/mgit/internal/scheduler"
	"github.com/mgit-dev/mgit/internal/walker"
)

func newExecCmd() *cobra.Command {
	var shellFlag string
	cmd := &cobra.Command{
		Use:   "exec [TARGET] -- COMMAND...",
		Short: "Run COMMAND in every repository under TARGET",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, args, shellFlag)
		},
	}
	cmd.Flags().StringVar(&shellFlag, "shell", "", "shell to run the command through (none|bash|sh|cmd|powershell|pwsh), default by platform")
	return cmd
}

type execJob struct {
	entry   walker.Entry
	handle  *render.Handle
	content *render.ExecLineContent
}

// splitExecArgs separates an optional leading TARGET from the command that
// follows it. Cobra's "--" already strips itself from args, so the only
// ambiguity is whether the first token is a target or the start of the
// command; exec always treats everything after the command's first token
// as the command, so a TARGET can only appear when cobra's ArgsLenAtDash
// reports a dash was present and there's at least one token before it.
func splitExecArgs(cmd *cobra.Command, args []string) (target string, command []string) {
	dash := cmd.ArgsLenAtDash()
	if dash <= 0 {
		return "", args
	}
	return args[0], args[dash:]
}

func runExec(cmd *cobra.Command, args []string, shellFlag string) error {
	rt, err := newRunContext(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer rt.block.Teardown()

	target, command := splitExecArgs(cmd, args)
	if len(command) == 0 {
		return rt.fail(fmt.Errorf("no command given"))
	}

	shell, err := procexec.ParseShell(shellFlag)
	if err != nil {
		return rt.fail(err)
	}

	startPath, err := rt.targetPath(target)
	if err != nil {
		return rt.fail(err)
	}

	if err := rt.block.Start(); err != nil {
		return rt.fail(err)
	}

	var jobs []execJob
	walker.Walk(rt.cfg, startPath, walker.Callbacks{
		OnDir:   func(path string) { rt.block.AddDirectory(rt.display(path)) },
		OnError: func(err error) { rt.block.AddError(err) },
		OnRepo: func(e walker.Entry) {
			content := render.NewExecLine(rt.display(e.Path))
			handle := rt.block.AddPending(content)
			jobs = append(jobs, execJob{entry: e, handle: handle, content: content})
		},
	})

	scheduler.Run(jobs, rt.jobs, func(j execJob) {
		result, err := procexec.Run(j.entry.Path, shell, command)
		if err != nil {
			j.content.SetResult(0, "", err)
		} else {
			j.content.SetResult(result.ExitCode, result.Output, nil)
		}
		j.handle.Finish()
	}, func(j execJob, recovered any) {
		j.content.SetResult(0, "", fmt.Errorf("panic: %v", recovered))
		j.handle.Finish()
	})

	return nil
}
