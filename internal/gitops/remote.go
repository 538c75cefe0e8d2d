// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package gitops

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/mgit-dev/mgit/internal/mgiterr"
)

const maxCredentialAttempts = 4

// remoteDefaultBranch connects to remoteName and asks for its advertised
// HEAD, stripping any refs/heads/ prefix. It retries across the same
// credential search order a fetch would use.
func (r *Repo) remoteDefaultBranch(remoteName string) (string, error) {
	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		return "", err
	}
	remoteURL := ""
	if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
		remoteURL = cfg.URLs[0]
	}

	var state credentialState
	var lastErr error
	for attempt := 0; attempt < maxCredentialAttempts; attempt++ {
		auth, ok := state.candidate(remoteURL, r.Settings)
		if !ok {
			break
		}
		refs, err := remote.List(&git.ListOptions{Auth: auth})
		if err == nil {
			for _, ref := range refs {
				if ref.Name() == plumbing.HEAD && ref.Type() == plumbing.SymbolicReference {
					return ref.Target().Short(), nil
				}
			}
			return "", mgiterr.New("remote did not advertise HEAD")
		}
		lastErr = err
		if !isAuthenticationError(err) {
			return "", err
		}
	}
	if lastErr == nil {
		lastErr = mgiterr.New("no credentials found")
	}
	return "", lastErr
}
