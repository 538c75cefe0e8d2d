// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgit-dev/mgit/internal/gitops"
	"github.com/mgit-dev/mgit/internal/mgitconfig"
	"github.com/mgit-dev/mgit/internal/mgiterr"
	"github.com/mgit-dev/mgit/internal/render"
)

func newCloneCmd() *cobra.Command {
	var name, alias string
	cmd := &cobra.Command{
		Use:   "clone [TARGET] REPO",
		Short: "Clone REPO into TARGET, optionally recording an alias",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClone(cmd, args, name, alias)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "directory name for the clone, default derived from REPO")
	cmd.Flags().StringVar(&alias, "alias", "", "record this name as an alias for the clone, once it succeeds")
	return cmd
}

func runClone(cmd *cobra.Command, args []string, name, alias string) error {
	rt, err := newRunContext(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer rt.block.Teardown()

	target, repoURL := "", args[0]
	if len(args) == 2 {
		target, repoURL = args[0], args[1]
	}

	base, err := rt.targetPath(target)
	if err != nil {
		return rt.fail(err)
	}
	if name == "" {
		name = cloneDirName(repoURL)
	}
	dest := filepath.Join(base, name)
	settings := rt.cfg.SettingsFor(rt.relativeTo(dest))

	if err := rt.block.Start(); err != nil {
		return rt.fail(err)
	}

	content := render.NewMessageLine(rt.display(dest))
	handle := rt.block.AddPending(content)
	content.Set("cloning " + repoURL)
	handle.Update()

	_, err = gitops.Clone(dest, repoURL, settings, gitops.CloneOptions{
		OnProgress: func(p gitops.FetchProgress) {
			if p.Indexed > 0 {
				content.Set(fmt.Sprintf("indexing %d/%d", p.Indexed, p.Total))
			} else {
				content.Set(fmt.Sprintf("downloading %d/%d", p.Received, p.Total))
			}
			handle.Update()
		},
	})
	if err != nil {
		content.Set(err.Error())
		handle.Finish()
		return rt.fail(err)
	}

	if alias != "" {
		if aliasErr := recordAlias(alias, rt.relativeTo(dest)); aliasErr != nil {
			content.Set("cloned, but alias not recorded: " + aliasErr.Error())
			handle.Finish()
			return rt.fail(aliasErr)
		}
	}

	content.Set("cloned")
	handle.Finish()
	return nil
}

// recordAlias writes alias -> relPath into the config file, after the
// clone itself has already succeeded (§ supplemented clone features).
func recordAlias(alias, relPath string) error {
	configPath := os.Getenv(mgitconfig.EnvConfigPath)
	if configPath == "" {
		return mgiterr.New("--alias requires " + mgitconfig.EnvConfigPath + " to be set")
	}
	return mgitconfig.AddAlias(configPath, alias, relPath)
}

// cloneDirName derives a directory name from a remote URL the way `git
// clone` does: the last path segment, with a trailing ".git" stripped.
func cloneDirName(repoURL string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(repoURL, "/"), ".git")
	if idx := strings.LastIndexAny(trimmed, "/:"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return trimmed
}
