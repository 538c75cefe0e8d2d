// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package mgitconfig loads the TOML configuration file and resolves the
// effective per-path Settings by merging the default settings with every
// glob-matched overlay, in file order.
package mgitconfig

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/mgit-dev/mgit/internal/mgiterr"
)

// EnvConfigPath names the environment variable holding the absolute path to
// the TOML config file.
const EnvConfigPath = "MULTIGIT_CONFIG_PATH"

// SSHSettings holds the SSH key material used by the credential state
// machine's first-choice credential.
type SSHSettings struct {
	PrivateKeyPath string  `toml:"private-key-path"`
	PublicKeyPath  *string `toml:"public-key-path"`
	Passphrase     *string `toml:"passphrase"`
}

// Settings holds every field that can appear at the top level or inside a
// [settings.*] overlay table. All fields are optional pointers so that
// merging can distinguish "unset" from "set to the zero value".
type Settings struct {
	DefaultBranch *string      `toml:"default-branch"`
	DefaultRemote *string      `toml:"default-remote"`
	Editor        *string      `toml:"editor"`
	Ignore        *bool        `toml:"ignore"`
	Prune         *bool        `toml:"prune"`
	SSH           *SSHSettings `toml:"ssh"`
}

// Merge returns a new Settings with every field of override that is set
// taking precedence over the receiver's fields (last-write-wins).
func (s Settings) Merge(override Settings) Settings {
	merged := s
	if override.DefaultBranch != nil {
		merged.DefaultBranch = override.DefaultBranch
	}
	if override.DefaultRemote != nil {
		merged.DefaultRemote = override.DefaultRemote
	}
	if override.Editor != nil {
		merged.Editor = override.Editor
	}
	if override.Ignore != nil {
		merged.Ignore = override.Ignore
	}
	if override.Prune != nil {
		merged.Prune = override.Prune
	}
	if override.SSH != nil {
		merged.SSH = override.SSH
	}
	return merged
}

// overlay is one (glob, Settings) pair, preserving its position in the file.
type overlay struct {
	glob     string
	settings Settings
}

// Config is immutable after Load.
type Config struct {
	Root            string
	DefaultSettings Settings
	// aliasNames is kept sorted lexicographically; §4.5 relies on this order.
	aliasNames []string
	aliases    map[string]string
	overlays   []overlay
}

// rawConfig mirrors the top-level TOML shape: Settings fields flattened in,
// plus root/aliases. [settings.*] tables are decoded by decodeOverlays.
type rawConfig struct {
	Root    string            `toml:"root"`
	Aliases map[string]string `toml:"aliases"`
	Settings
}

// Load reads and parses the TOML file at path. Unknown keys anywhere in the
// document are errors, matching the config error taxonomy (fatal, exit 1).
func Load(path string) (*Config, error) {
	var raw rawConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, mgiterr.WithContext(err, fmt.Sprintf("parsing config %s", path))
	}
	overlays, err := decodeOverlays(path, meta)
	if err != nil {
		return nil, err
	}
	// decodeOverlays marks every key inside a [settings.*] table as decoded;
	// only the table headers themselves remain in Undecoded.
	for _, key := range meta.Undecoded() {
		if key[0] == "settings" && len(key) <= 2 {
			continue
		}
		return nil, mgiterr.New(fmt.Sprintf("unknown config key %q in %s", key.String(), path))
	}

	cfg := &Config{
		Root:            raw.Root,
		DefaultSettings: raw.Settings,
		aliases:         raw.Aliases,
		overlays:        overlays,
	}
	cfg.aliasNames = make([]string, 0, len(raw.Aliases))
	for name := range raw.Aliases {
		cfg.aliasNames = append(cfg.aliasNames, name)
	}
	sort.Strings(cfg.aliasNames)
	return cfg, nil
}

// decodeOverlays walks meta.Keys() to recover the file order of [settings.*]
// tables — a plain map[string]Settings field would lose that order, and
// overlay merge order is an explicit invariant (§8).
func decodeOverlays(path string, meta toml.MetaData) ([]overlay, error) {
	seen := map[string]bool{}
	var globs []string
	for _, key := range meta.Keys() {
		if len(key) == 2 && key[0] == "settings" {
			glob := key[1]
			if !seen[glob] {
				seen[glob] = true
				globs = append(globs, glob)
			}
		}
	}

	// Re-decode the whole file into a structure that exposes each overlay
	// table as a toml.Primitive, keyed by glob, so we can decode it into a
	// Settings value without re-reading from disk.
	var withSettings struct {
		Settings map[string]toml.Primitive `toml:"settings"`
	}
	if _, err := toml.DecodeFile(path, &withSettings); err != nil {
		return nil, mgiterr.WithContext(err, fmt.Sprintf("parsing config %s", path))
	}

	overlays := make([]overlay, 0, len(globs))
	for _, glob := range globs {
		prim, ok := withSettings.Settings[glob]
		if !ok {
			continue
		}
		var s Settings
		if err := meta.PrimitiveDecode(prim, &s); err != nil {
			return nil, mgiterr.WithContext(err, fmt.Sprintf("parsing settings.%q in %s", glob, path))
		}
		overlays = append(overlays, overlay{glob: glob, settings: s})
	}
	return overlays, nil
}

// LoadFromEnv reads EnvConfigPath and loads that file, or returns the
// documented default (root = cwd, no aliases, no overlays) if unset.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, mgiterr.WithContext(err, "resolving current directory")
		}
		return &Config{Root: cwd, aliases: map[string]string{}}, nil
	}
	return Load(path)
}

// SettingsFor returns the effective Settings for a path relative to Root:
// DefaultSettings with every overlay whose glob matches applied, in file
// order.
func (c *Config) SettingsFor(relativePath string) Settings {
	effective := c.DefaultSettings
	for _, ov := range c.overlays {
		if matchesGlob(ov.glob, relativePath) {
			effective = effective.Merge(ov.settings)
		}
	}
	return effective
}

func matchesGlob(pattern, relativePath string) bool {
	ok, err := doublestar.Match(pattern, relativePath)
	return err == nil && ok
}

// AliasNames returns alias keys in lexicographic order.
func (c *Config) AliasNames() []string {
	return c.aliasNames
}

// AliasPath returns the relative path an alias maps to, and whether it exists.
func (c *Config) AliasPath(name string) (string, bool) {
	p, ok := c.aliases[name]
	return p, ok
}

// AliasCount reports how many aliases are configured.
func (c *Config) AliasCount() int {
	return len(c.aliases)
}

// AddAlias appends a new "name = \"relPath\"" entry to the [aliases] table
// of the config file at path, erroring if name is already taken. It edits
// the file textually rather than decode-then-re-encode so that unrelated
// formatting, comments, and [settings.*] table order survive untouched;
// clone (§ supplemented clone features) calls this only after the clone
// itself has succeeded, so a failed clone never mutates the config.
func AddAlias(path, name, relPath string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	if _, exists := cfg.AliasPath(name); exists {
		return mgiterr.New(fmt.Sprintf("alias %q already exists in %s", name, path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return mgiterr.WithContext(err, fmt.Sprintf("reading config %s", path))
	}
	entry := fmt.Sprintf("%s = %q", name, relPath)

	lines := strings.Split(string(raw), "\n")
	aliasesLine := -1
	insertAt := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "[aliases]" {
			aliasesLine = i
			insertAt = i + 1
			continue
		}
		if aliasesLine >= 0 && strings.HasPrefix(trimmed, "[") {
			insertAt = i
			break
		}
		if aliasesLine >= 0 {
			insertAt = i + 1
		}
	}

	var updated []string
	if aliasesLine < 0 {
		updated = append(append([]string{}, lines...), "", "[aliases]", entry)
	} else {
		updated = append([]string{}, lines[:insertAt]...)
		updated = append(updated, entry)
		updated = append(updated, lines[insertAt:]...)
	}

	if err := os.WriteFile(path, []byte(strings.Join(updated, "\n")), 0o644); err != nil {
		return mgiterr.WithContext(err, fmt.Sprintf("writing config %s", path))
	}
	return nil
}
