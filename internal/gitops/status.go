// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package gitops

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/mgit-dev/mgit/internal/mgiterr"
)

// HeadKind classifies how HEAD resolves.
type HeadKind int

const (
	HeadBranch HeadKind = iota
	HeadDetached
	HeadUnborn
)

func (k HeadKind) String() string {
	switch k {
	case HeadBranch:
		return "branch"
	case HeadDetached:
		return "detached"
	case HeadUnborn:
		return "unborn"
	default:
		return "unknown"
	}
}

// HeadStatus describes the current HEAD.
type HeadStatus struct {
	Name string
	Kind HeadKind
}

// UpstreamState classifies the relationship between a branch and its upstream.
type UpstreamState int

const (
	UpstreamNone UpstreamState = iota
	UpstreamGone
	UpstreamTracking
)

func (s UpstreamState) String() string {
	switch s {
	case UpstreamNone:
		return "none"
	case UpstreamGone:
		return "gone"
	case UpstreamTracking:
		return "upstream"
	default:
		return "unknown"
	}
}

// UpstreamStatus is a tagged union: None, Gone, or Tracking{Ahead, Behind}.
// Ahead and Behind are only meaningful when State is UpstreamTracking.
type UpstreamStatus struct {
	State  UpstreamState
	Ahead  int
	Behind int
}

// WorkingTreeStatus reports whether the worktree or the index carries
// uncommitted changes. Conflicted paths count toward IndexChanged.
type WorkingTreeStatus struct {
	WorkingChanged bool
	IndexChanged   bool
}

// Dirty reports whether either half of the working tree is changed.
func (w WorkingTreeStatus) Dirty() bool {
	return w.WorkingChanged || w.IndexChanged
}

// RepositoryStatus aggregates HEAD, upstream, and working-tree state plus
// the resolved default branch, if one could be determined.
type RepositoryStatus struct {
	Head          HeadStatus
	Upstream      UpstreamStatus
	WorkingTree   WorkingTreeStatus
	DefaultBranch *string
}

// Status computes the full RepositoryStatus for r.
func (r *Repo) Status() (*RepositoryStatus, error) {
	head, localRef, err := r.classifyHead()
	if err != nil {
		return nil, mgiterr.WithContext(err, "resolving HEAD")
	}

	upstream := UpstreamStatus{State: UpstreamNone}
	if head.Kind == HeadBranch {
		upstream, err = r.classifyUpstream(head.Name, localRef)
		if err != nil {
			return nil, mgiterr.WithContext(err, "resolving upstream")
		}
	}

	wt, err := r.workingTreeStatus()
	if err != nil {
		return nil, mgiterr.WithContext(err, "reading working tree status")
	}

	defaultBranch, _ := r.DefaultBranch()

	return &RepositoryStatus{
		Head:          head,
		Upstream:      upstream,
		WorkingTree:   wt,
		DefaultBranch: defaultBranch,
	}, nil
}

// classifyHead resolves HEAD per §4.4.1: Branch when it symbolically
// targets an existing local branch, Unborn when the target doesn't exist
// yet, Detached (described via tag or short oid) otherwise.
func (r *Repo) classifyHead() (HeadStatus, *plumbing.Reference, error) {
	sym, err := r.symbolicHead()
	if err != nil {
		return HeadStatus{}, nil, err
	}

	if sym.Type() != plumbing.SymbolicReference {
		// Detached: HEAD is a direct hash reference.
		name, describeErr := r.describe(sym.Hash())
		if describeErr != nil {
			name = sym.Hash().String()[:7]
		}
		return HeadStatus{Name: name, Kind: HeadDetached}, sym, nil
	}

	target := sym.Target()
	resolved, err := r.repo.Reference(target, true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return HeadStatus{Name: target.Short(), Kind: HeadUnborn}, nil, nil
		}
		return HeadStatus{}, nil, err
	}
	return HeadStatus{Name: target.Short(), Kind: HeadBranch}, resolved, nil
}

// describe mimics `git describe --tags` with a commit-oid fallback: prefer
// a tag pointing exactly at hash, otherwise the short hash.
func (r *Repo) describe(hash plumbing.Hash) (string, error) {
	tagRefs, err := r.repo.Tags()
	if err != nil {
		return hash.String()[:7], nil
	}
	defer tagRefs.Close()

	var match string
	_ = tagRefs.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		if tagObj, tagErr := r.repo.TagObject(ref.Hash()); tagErr == nil {
			target = tagObj.Target
		}
		if target == hash {
			match = ref.Name().Short()
			return errStopIteration
		}
		return nil
	})
	if match != "" {
		return match, nil
	}
	return hash.String()[:7], nil
}

var errStopIteration = errors.New("stop")

// classifyUpstream looks up the configured upstream for branchName and, if
// present, computes ahead/behind against localRef.
func (r *Repo) classifyUpstream(branchName string, localRef *plumbing.Reference) (UpstreamStatus, error) {
	cfg, err := r.repo.Config()
	if err != nil {
		return UpstreamStatus{}, err
	}
	branchCfg, ok := cfg.Branches[branchName]
	if !ok || branchCfg.Remote == "" || branchCfg.Merge == "" {
		return UpstreamStatus{State: UpstreamNone}, nil
	}

	upstreamRefName := plumbing.NewRemoteReferenceName(branchCfg.Remote, branchCfg.Merge.Short())
	upstreamRef, err := r.repo.Reference(upstreamRefName, true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return UpstreamStatus{State: UpstreamGone}, nil
		}
		return UpstreamStatus{}, err
	}

	if localRef == nil {
		return UpstreamStatus{State: UpstreamGone}, nil
	}

	ahead, behind, err := aheadBehind(r.repo, localRef.Hash(), upstreamRef.Hash())
	if err != nil {
		return UpstreamStatus{}, err
	}
	return UpstreamStatus{State: UpstreamTracking, Ahead: ahead, Behind: behind}, nil
}

// aheadBehind counts commits reachable from `from` but not `to`, and vice
// versa, by walking each side's reachable set.
func aheadBehind(repo *git.Repository, from, to plumbing.Hash) (ahead, behind int, err error) {
	if from == to {
		return 0, 0, nil
	}
	ahead, err = countReachableNotIn(repo, from, to)
	if err != nil {
		return 0, 0, err
	}
	behind, err = countReachableNotIn(repo, to, from)
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

func countReachableNotIn(repo *git.Repository, from, excludeFrom plumbing.Hash) (int, error) {
	excluded, err := reachableSet(repo, excludeFrom)
	if err != nil {
		return 0, err
	}

	count := 0
	iter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	err = iter.ForEach(func(c *object.Commit) error {
		if !excluded[c.Hash] {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func reachableSet(repo *git.Repository, from plumbing.Hash) (map[plumbing.Hash]bool, error) {
	set := map[plumbing.Hash]bool{}
	iter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	err = iter.ForEach(func(c *object.Commit) error {
		set[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// workingTreeStatus maps go-git's per-file status codes onto the two
// coarse flags the spec defines: WorkingChanged covers worktree-side
// changes (new/modified/deleted/renamed/typechange); IndexChanged covers
// staged changes and conflicts.
func (r *Repo) workingTreeStatus() (WorkingTreeStatus, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return WorkingTreeStatus{}, nil
		}
		return WorkingTreeStatus{}, err
	}

	status, err := wt.Status()
	if err != nil {
		return WorkingTreeStatus{}, err
	}

	var out WorkingTreeStatus
	for _, fileStatus := range status {
		if isWorktreeChange(fileStatus.Worktree) {
			out.WorkingChanged = true
		}
		if isIndexChange(fileStatus.Staging) {
			out.IndexChanged = true
		}
	}
	return out, nil
}

func isWorktreeChange(code git.StatusCode) bool {
	switch code {
	case git.Untracked, git.Modified, git.Deleted, git.Renamed, git.Copied, git.UpdatedButUnmerged:
		return true
	default:
		return false
	}
}

func isIndexChange(code git.StatusCode) bool {
	switch code {
	case git.Added, git.Modified, git.Deleted, git.Renamed, git.Copied, git.UpdatedButUnmerged:
		return true
	default:
		return false
	}
}

// DefaultBranch resolves the repository's default branch per §4.4.1: an
// explicit setting wins; otherwise, when exactly one remote (or an
// explicit default remote) exists, its advertised HEAD is asked for. Any
// failure is swallowed — default branch resolution never fails status.
func (r *Repo) DefaultBranch() (*string, error) {
	if r.Settings.DefaultBranch != nil {
		name := *r.Settings.DefaultBranch
		return &name, nil
	}

	remoteName, err := r.selectRemoteName()
	if err != nil {
		return nil, nil
	}

	name, err := r.remoteDefaultBranch(remoteName)
	if err != nil {
		return nil, nil
	}
	return &name, nil
}

func (r *Repo) selectRemoteName() (string, error) {
	if r.Settings.DefaultRemote != nil {
		return *r.Settings.DefaultRemote, nil
	}
	remotes, err := r.repo.Remotes()
	if err != nil {
		return "", err
	}
	if len(remotes) != 1 {
		return "", fmt.Errorf("no unambiguous default remote")
	}
	return remotes[0].Config().Name, nil
}
