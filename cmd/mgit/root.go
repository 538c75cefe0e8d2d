// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	mgit "github.com/mgit-dev/mgit"
	"github.com/mgit-dev/mgit/pkg/cliutil"
)

// Global flags, shared by every subcommand through the persistent flag set.
var (
	noAlias    bool
	jobs       int
	jsonOutput bool
	quiet      bool
	debug      bool
	trace      bool
	colorMode  string
)

var rootCmd = &cobra.Command{
	Use:   "mgit",
	Short: "Run Git operations across many repositories in parallel",
	Long: `mgit walks a directory tree, finds every Git repository under it, and
runs status, pull, or an arbitrary command across all of them concurrently,
rendering live progress in a sticky terminal block.
` + cliutil.QuickStartHelp(`  # Check status of every repository under the current directory
  mgit status

  # Fast-forward pull everything, switching to the default branch first
  mgit pull --switch

  # Run a command in every repository
  mgit exec -- git fetch --prune`),
	Version:       mgit.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
	rootCmd.PersistentFlags().BoolVarP(&noAlias, "no-alias", "A", false, "treat TARGET as a literal path, skipping alias resolution")
	rootCmd.PersistentFlags().IntVarP(&jobs, "jobs", "j", 0, "maximum concurrent workers (0 = available cores)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit JSON Lines instead of the interactive block")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress diagnostic logging")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug-level diagnostic logging")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "enable trace-level diagnostic logging (implies --debug)")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", fmt.Sprintf("color mode (%s)", strings.Join(cliutil.ColorModes, "|")))

	rootCmd.AddCommand(
		newStatusCmd(),
		newPullCmd(),
		newExecCmd(),
		newResolveCmd(),
		newEditCmd(),
		newCloneCmd(),
	)
}

// Execute runs the root command and returns any error for main to turn
// into a process exit code. Every subcommand has already rendered its own
// error line by the time an error reaches here, so main never prints it
// again — SilenceErrors above stops cobra from doing so either.
func Execute() error {
	if err := cliutil.ValidateFormat(colorMode, cliutil.ColorModes); err != nil {
		return err
	}
	if trace {
		debug = true
	}
	return rootCmd.Execute()
}
