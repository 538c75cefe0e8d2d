// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package gitops

import (
	"errors"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/mgit-dev/mgit/internal/mgiterr"
)

// PullState names the pull state machine's states (§4.4.2). It is exposed
// for diagnostics only; callers drive Pull end to end and observe only
// PullOutcome or an error.
type PullState int

const (
	PullStart PullState = iota
	PullFetching
	PullPostFetchChecks
	PullResolveFetchHead
	PullAnalyze
	PullApply
)

// PullResultKind is the terminal outcome of a successful pull.
type PullResultKind int

const (
	PullUpToDate PullResultKind = iota
	PullCreatedUnborn
	PullFastForwarded
)

func (k PullResultKind) String() string {
	switch k {
	case PullUpToDate:
		return "up_to_date"
	case PullCreatedUnborn:
		return "created_unborn"
	case PullFastForwarded:
		return "fast_forwarded"
	default:
		return "unknown"
	}
}

// PullOutcome is the terminal result of a successful Pull.
type PullOutcome struct {
	State  PullResultKind
	Branch string
}

// PullOptions configures one Pull invocation.
type PullOptions struct {
	// Switch, when true, moves HEAD to the default branch first instead of
	// erroring when HEAD is on a non-default branch.
	Switch bool
	// OnProgress receives two-phase transfer progress during fetch.
	OnProgress ProgressFunc
}

// Pull drives the fast-forward pull state machine described in §4.4.2.
func (r *Repo) Pull(opts PullOptions) (*PullOutcome, error) {
	remoteName, err := r.selectRemoteName()
	if err != nil {
		return nil, mgiterr.WithContext(err, "no default remote")
	}
	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		return nil, mgiterr.WithContext(err, "no default remote")
	}
	remoteURL := ""
	if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
		remoteURL = cfg.URLs[0]
	}

	if err := r.fetch(remote, remoteURL, opts.OnProgress); err != nil {
		return nil, mgiterr.WithContext(err, "fetching "+remoteName)
	}

	head, localRef, err := r.classifyHead()
	if err != nil {
		return nil, mgiterr.WithContext(err, "resolving HEAD")
	}

	defaultBranch, err := r.requireDefaultBranch()
	if err != nil {
		return nil, err
	}

	// PostFetchChecks, in the order §4.4.2 step 3 specifies: upstream
	// exists, working tree clean, then on the default branch (switching
	// first if requested).
	if head.Kind == HeadBranch {
		upstream, err := r.classifyUpstream(head.Name, localRef)
		if err != nil {
			return nil, mgiterr.WithContext(err, "resolving upstream")
		}
		if upstream.State == UpstreamNone || upstream.State == UpstreamGone {
			return nil, mgiterr.New("no upstream branch")
		}
	}

	wt, err := r.workingTreeStatus()
	if err != nil {
		return nil, mgiterr.WithContext(err, "reading working tree status")
	}
	if wt.Dirty() {
		return nil, mgiterr.Wrap(errors.New("pull aborted"), mgiterr.ErrDirtyWorkingTree)
	}

	if head.Kind == HeadBranch || head.Kind == HeadDetached {
		if head.Name != defaultBranch {
			if !opts.Switch {
				return nil, mgiterr.New("not on default branch")
			}
			if err := r.switchToBranch(defaultBranch); err != nil {
				return nil, err
			}
			head, _, err = r.classifyHead()
			if err != nil {
				return nil, mgiterr.WithContext(err, "resolving HEAD")
			}
		}
	}

	upstreamRefName := plumbing.NewRemoteReferenceName(remoteName, defaultBranch)
	upstreamRef, err := r.repo.Reference(upstreamRefName, true)
	if err != nil {
		return nil, mgiterr.WithContext(err, "no upstream branch")
	}

	return r.analyzeAndApply(head, defaultBranch, upstreamRef.Hash())
}

// requireDefaultBranch is DefaultBranch, but Pull treats an unresolvable
// default branch as fatal rather than swallowing it.
func (r *Repo) requireDefaultBranch() (string, error) {
	name, _ := r.DefaultBranch()
	if name == nil {
		return "", mgiterr.New("cannot determine default branch")
	}
	return *name, nil
}

func (r *Repo) switchToBranch(name string) error {
	branchRef := plumbing.NewBranchReferenceName(name)
	if _, err := r.repo.Reference(branchRef, true); err != nil {
		return mgiterr.New("cannot locate local branch '" + name + "'")
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	return wt.Checkout(&git.CheckoutOptions{Branch: branchRef, Force: true})
}

// analyzeAndApply performs merge-analysis of HEAD against fetchedHash and
// applies the fast-forward, matching the Analyze/Apply states.
func (r *Repo) analyzeAndApply(head HeadStatus, branch string, fetchedHash plumbing.Hash) (*PullOutcome, error) {
	if head.Kind == HeadUnborn {
		if err := r.createUnborn(branch, fetchedHash); err != nil {
			return nil, err
		}
		return &PullOutcome{State: PullCreatedUnborn, Branch: branch}, nil
	}

	branchRef := plumbing.NewBranchReferenceName(branch)
	localRef, err := r.repo.Reference(branchRef, true)
	if err != nil {
		return nil, mgiterr.WithContext(err, "resolving local branch "+branch)
	}

	if localRef.Hash() == fetchedHash {
		return &PullOutcome{State: PullUpToDate, Branch: branch}, nil
	}

	ancestor, err := isAncestor(r.repo, localRef.Hash(), fetchedHash)
	if err != nil {
		return nil, err
	}
	if !ancestor {
		return nil, mgiterr.Wrap(errors.New("local and remote history differ"), mgiterr.ErrDiverged)
	}

	if err := r.fastForward(branchRef, fetchedHash); err != nil {
		return nil, err
	}
	return &PullOutcome{State: PullFastForwarded, Branch: branch}, nil
}

func (r *Repo) createUnborn(branch string, hash plumbing.Hash) error {
	branchRef := plumbing.NewBranchReferenceName(branch)
	ref := plumbing.NewHashReference(branchRef, hash)
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return mgiterr.WithContext(err, "creating branch "+branch)
	}
	if err := r.repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branchRef)); err != nil {
		return mgiterr.WithContext(err, "setting HEAD")
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: branchRef, Force: true}); err != nil {
		return mgiterr.WithContext(err, "checking out "+branch)
	}
	return nil
}

func (r *Repo) fastForward(branchRef plumbing.ReferenceName, hash plumbing.Hash) error {
	ref := plumbing.NewHashReference(branchRef, hash)
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return mgiterr.WithContext(err, "updating "+branchRef.Short())
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: branchRef, Force: true}); err != nil {
		return mgiterr.WithContext(err, "checking out "+branchRef.Short())
	}
	return nil
}

// isAncestor reports whether a is reachable by walking b's parents — i.e.
// whether fast-forwarding a to b is possible.
func isAncestor(repo *git.Repository, a, b plumbing.Hash) (bool, error) {
	if a == b {
		return true, nil
	}
	seen := map[plumbing.Hash]struct{}{}
	queue := []plumbing.Hash{b}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if h == a {
			return true, nil
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		commit, err := repo.CommitObject(h)
		if err != nil {
			return false, err
		}
		queue = append(queue, commit.ParentHashes...)
	}
	return false, nil
}

// fetch runs the credential search order against remote, retrying the
// whole fetch each time the previous candidate fails authentication, up
// to maxCredentialAttempts times.
func (r *Repo) fetch(remote *git.Remote, remoteURL string, onProgress ProgressFunc) error {
	prune := false
	if r.Settings.Prune != nil {
		prune = *r.Settings.Prune
	}

	var state credentialState
	var lastErr error
	for attempt := 0; attempt < maxCredentialAttempts; attempt++ {
		auth, ok := state.candidate(remoteURL, r.Settings)
		if !ok {
			break
		}

		fetchOpts := &git.FetchOptions{
			RemoteName: remote.Config().Name,
			Auth:       auth,
			Tags:       git.AllTags,
			Progress:   newProgressWriter(onProgress),
			RefSpecs: []gitconfig.RefSpec{
				gitconfig.RefSpec("+refs/heads/*:refs/remotes/" + remote.Config().Name + "/*"),
			},
		}
		if prune {
			fetchOpts.Prune = true
		}

		err := remote.Fetch(fetchOpts)
		if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}
		lastErr = err
		if !isAuthenticationError(err) {
			return err
		}
	}
	if lastErr == nil {
		lastErr = mgiterr.New("no credentials found")
	}
	return lastErr
}
