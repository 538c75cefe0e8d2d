// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package gitops

import (
	"errors"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/mgit-dev/mgit/internal/mgitconfig"
	"github.com/mgit-dev/mgit/internal/mgiterr"
)

// CloneOptions configures Clone.
type CloneOptions struct {
	// Branch, if set, checks out that branch instead of the remote's
	// default.
	Branch     string
	OnProgress ProgressFunc
}

// Clone clones remoteURL into path, driving the same credential search
// order as Pull (§4.4.3) and reporting transfer progress the same way.
func Clone(path, remoteURL string, settings mgitconfig.Settings, opts CloneOptions) (*Repo, error) {
	var state credentialState
	var lastErr error

	cloneOpts := &git.CloneOptions{
		URL:      remoteURL,
		Progress: newProgressWriter(opts.OnProgress),
		Tags:     git.AllTags,
	}
	if opts.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
		cloneOpts.SingleBranch = true
	}

	for attempt := 0; attempt < maxCredentialAttempts; attempt++ {
		auth, ok := state.candidate(remoteURL, settings)
		if !ok {
			break
		}
		cloneOpts.Auth = auth

		r, err := git.PlainClone(path, false, cloneOpts)
		if err == nil {
			return &Repo{Path: path, Settings: settings, repo: r}, nil
		}
		lastErr = err
		if !isAuthenticationError(err) {
			return nil, mgiterr.WithContext(err, "cloning "+remoteURL)
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no credentials found")
	}
	return nil, mgiterr.WithContext(lastErr, "cloning "+remoteURL)
}
