// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package cliutil provides small CLI presentation helpers shared by every
// subcommand's root wiring: colored usage/help text and validation of
// flag values drawn from a fixed allowed set.
package cliutil
