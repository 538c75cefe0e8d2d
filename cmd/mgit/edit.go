// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mgit-dev/mgit/internal/editor"
	"github.com/mgit-dev/mgit/internal/gitops"
	"github.com/mgit-dev/mgit/internal/mgitconfig"
	"github.com/mgit-dev/mgit/internal/mgiterr"
	"github.com/mgit-dev/mgit/internal/render"
)

func newEditCmd() *cobra.Command {
	var (
		editConfig bool
		editorFlag string
		branch     string
	)
	cmd := &cobra.Command{
		Use:   "edit (TARGET|--config)",
		Short: "Spawn an editor on TARGET, or on the config file with --config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args, editConfig, editorFlag, branch)
		},
	}
	cmd.Flags().BoolVar(&editConfig, "config", false, "edit the config file instead of a repository")
	cmd.Flags().StringVar(&editorFlag, "editor", "", "editor command to run, overriding $VISUAL/$EDITOR/settings.editor")
	cmd.Flags().StringVar(&branch, "branch", "", "create and switch to this branch first (errors if the working tree is dirty)")
	return cmd
}

func runEdit(cmd *cobra.Command, args []string, editConfig bool, editorFlag, branch string) error {
	rt, err := newRunContext(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer rt.block.Teardown()

	target, settings, repo, err := resolveEditTarget(rt, editConfig, arg(args))
	if err != nil {
		return rt.fail(err)
	}

	if branch != "" {
		if repo == nil {
			return rt.fail(mgiterr.New("--branch requires a repository target, not --config"))
		}
		if err := repo.CreateBranch(branch); err != nil {
			return rt.fail(err)
		}
	}

	command := editorFlag
	if command == "" && settings.Editor != nil {
		command = *settings.Editor
	}
	command = editor.Resolve(command)

	content := render.NewMessageLine(rt.display(target))
	handle := rt.block.AddPending(content)
	if err := editor.Open(command, target); err != nil {
		content.Set(err.Error())
		handle.Finish()
		return rt.fail(err)
	}
	content.Set("edited with " + command)
	handle.Finish()
	return nil
}

// resolveEditTarget picks the path to open and, when editing a repository
// rather than the config file, the repository handle --branch needs.
func resolveEditTarget(rt *runContext, editConfig bool, targetArg string) (path string, settings mgitconfig.Settings, repo *gitops.Repo, err error) {
	if editConfig {
		configPath := os.Getenv(mgitconfig.EnvConfigPath)
		if configPath == "" {
			return "", mgitconfig.Settings{}, nil, mgiterr.New("--config requires " + mgitconfig.EnvConfigPath + " to be set")
		}
		return configPath, mgitconfig.Settings{}, nil, nil
	}

	startPath, err := rt.targetPath(targetArg)
	if err != nil {
		return "", mgitconfig.Settings{}, nil, err
	}
	settings = rt.cfg.SettingsFor(rt.relativeTo(startPath))
	r, err := gitops.Open(startPath, settings)
	if err != nil {
		return "", mgitconfig.Settings{}, nil, mgiterr.WithContext(err, "opening "+startPath)
	}
	return startPath, settings, r, nil
}
