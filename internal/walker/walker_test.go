// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mgit-dev/mgit/internal/mgitconfig"
	"github.com/mgit-dev/mgit/internal/testutil"
)

func newConfig(t *testing.T, root string) *mgitconfig.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mgit.toml")
	require.NoError(t, os.WriteFile(path, []byte("root = \""+root+"\"\n"), 0o644))
	cfg, err := mgitconfig.Load(path)
	require.NoError(t, err)
	return cfg
}

func TestWalkStartPathIsRepository(t *testing.T) {
	dir := testutil.TempGitRepoWithCommit(t)
	cfg := newConfig(t, dir)

	var repos []Entry
	Walk(cfg, dir, Callbacks{
		OnRepo:  func(e Entry) { repos = append(repos, e) },
		OnDir:   func(string) { t.Fatal("unexpected on_dir when start_path is itself a repository") },
		OnError: func(err error) { t.Fatalf("unexpected error: %v", err) },
	})

	require.Len(t, repos, 1)
	require.Equal(t, dir, repos[0].Path)
	require.Equal(t, "", repos[0].RelativePath)
}

func TestWalkDiscoversNestedRepositoriesAndPrunes(t *testing.T) {
	root := t.TempDir()

	repoA := filepath.Join(root, "team", "repo-a")
	require.NoError(t, os.MkdirAll(filepath.Dir(repoA), 0o755))
	initRepoAt(t, repoA)

	// A repository inside another repository must never be visited: the
	// walker prunes at repository boundaries.
	nestedInRepoA := filepath.Join(repoA, "vendor", "nested-repo")
	require.NoError(t, os.MkdirAll(filepath.Dir(nestedInRepoA), 0o755))
	initRepoAt(t, nestedInRepoA)

	repoB := filepath.Join(root, "team", "repo-b")
	initRepoAt(t, repoB)

	plainDir := filepath.Join(root, "docs")
	require.NoError(t, os.MkdirAll(plainDir, 0o755))

	cfg := newConfig(t, root)

	var (
		dirs  []string
		repos []string
	)
	Walk(cfg, root, Callbacks{
		OnRepo:  func(e Entry) { repos = append(repos, e.RelativePath) },
		OnDir:   func(p string) { dirs = append(dirs, p) },
		OnError: func(err error) { t.Fatalf("unexpected error: %v", err) },
	})

	require.ElementsMatch(t, []string{"team/repo-a", "team/repo-b"}, repos)
	require.Contains(t, dirs, filepath.Join(root, "team"))
	for _, r := range repos {
		require.NotContains(t, r, "nested-repo")
	}
}

func TestWalkHonorsIgnoreSetting(t *testing.T) {
	root := t.TempDir()
	ignored := filepath.Join(root, "archived")
	initRepoAt(t, ignored)
	kept := filepath.Join(root, "active")
	initRepoAt(t, kept)

	configPath := filepath.Join(t.TempDir(), "mgit.toml")
	contents := "root = \"" + root + "\"\n\n[settings.\"archived\"]\nignore = true\n"
	require.NoError(t, os.WriteFile(configPath, []byte(contents), 0o644))
	cfg, err := mgitconfig.Load(configPath)
	require.NoError(t, err)

	var repos []string
	Walk(cfg, root, Callbacks{
		OnRepo:  func(e Entry) { repos = append(repos, e.RelativePath) },
		OnDir:   func(string) {},
		OnError: func(err error) { t.Fatalf("unexpected error: %v", err) },
	})

	require.Equal(t, []string{"active"}, repos)
}

func TestWalkHonorsMgitignoreFile(t *testing.T) {
	root := t.TempDir()
	ignored := filepath.Join(root, "archived")
	initRepoAt(t, ignored)
	kept := filepath.Join(root, "active")
	initRepoAt(t, kept)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".mgitignore"), []byte("archived/\n"), 0o644))
	cfg := newConfig(t, root)

	var repos []string
	Walk(cfg, root, Callbacks{
		OnRepo:  func(e Entry) { repos = append(repos, e.RelativePath) },
		OnDir:   func(string) {},
		OnError: func(err error) { t.Fatalf("unexpected error: %v", err) },
	})

	require.Equal(t, []string{"active"}, repos)
}

func initRepoAt(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
	testutil.InitRepoInPlace(t, path)
}
