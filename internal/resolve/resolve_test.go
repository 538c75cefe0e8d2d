// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mgit-dev/mgit/internal/mgitconfig"
	"github.com/mgit-dev/mgit/internal/mgiterr"
)

func writeConfig(t *testing.T, root, contents string) *mgitconfig.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mgit.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	cfg, err := mgitconfig.Load(path)
	require.NoError(t, err)
	_ = root
	return cfg
}

func TestResolveExactAliasWins(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "services", "billing"), 0o755))
	cfg := writeConfig(t, root, "root = \""+root+"\"\n\n[aliases]\nbill = \"services/billing\"\nbilling = \"services/billing2\"\n")

	path, err := Resolve(cfg, "bill", true)
	require.NoError(t, err)
	require.Equal(t, "services/billing", path)
}

func TestResolveUniquePrefixWins(t *testing.T) {
	root := t.TempDir()
	cfg := writeConfig(t, root, "root = \""+root+"\"\n\n[aliases]\nbackend-api = \"services/api\"\n")

	path, err := Resolve(cfg, "back", true)
	require.NoError(t, err)
	require.Equal(t, "services/api", path)
}

func TestResolveAmbiguousPrefixErrors(t *testing.T) {
	root := t.TempDir()
	cfg := writeConfig(t, root, "root = \""+root+"\"\n\n[aliases]\nbackend-api = \"services/api\"\nbackend-web = \"services/web\"\n")

	_, err := Resolve(cfg, "back", true)
	require.Error(t, err)
	require.True(t, mgiterr.Is(err, mgiterr.ErrAmbiguousAlias))
}

func TestResolveFallsBackToExistingPath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "tools", "linter"), 0o755))
	cfg := writeConfig(t, root, "root = \""+root+"\"\n")

	path, err := Resolve(cfg, "tools/linter", true)
	require.NoError(t, err)
	require.Equal(t, "tools/linter", path)
}

func TestResolveUnknownPathSuggestsNearMisses(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "billing"), 0o755))
	cfg := writeConfig(t, root, "root = \""+root+"\"\n\n[aliases]\nbillng = \"billing\"\n")

	_, err := Resolve(cfg, "biling", true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no such path")
}

func TestResolveDisabledAliasesTreatsInputAsPath(t *testing.T) {
	root := t.TempDir()
	cfg := writeConfig(t, root, "root = \""+root+"\"\n\n[aliases]\nbill = \"services/billing\"\n")

	_, err := Resolve(cfg, "bill", false)
	require.Error(t, err)
	require.False(t, errors.Is(err, mgiterr.ErrAmbiguousAlias))
}
