// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package render

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/mgit-dev/mgit/internal/gitops"
)

// LineContent is the payload carried by one line of the output block. It is
// internally synchronized (its own mutex) because a worker goroutine writes
// to it while the block's redraw goroutine may read it concurrently.
//
// Render produces one line of styled terminal output, with no trailing
// newline. MarshalJSON produces the JSON-Lines representation, always
// carrying a "kind" field so consumers can dispatch on it without a schema.
type LineContent interface {
	Kind() string
	Render(colorOn bool) string
	json.Marshaler
}

var (
	styleDirectory = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	styleError     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	styleClean     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	styleDirty     = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleDim       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func styled(colorOn bool, style lipgloss.Style, text string) string {
	if !colorOn {
		return text
	}
	return style.Render(text)
}

// DirectoryLineContent is a synthetic header emitted for each directory that
// directly contains at least one repository. Headers are always finished on
// creation — there is nothing further to update.
type DirectoryLineContent struct {
	path string
}

func NewDirectoryLine(path string) *DirectoryLineContent {
	return &DirectoryLineContent{path: path}
}

func (c *DirectoryLineContent) Kind() string { return "directory" }

func (c *DirectoryLineContent) Render(colorOn bool) string {
	return styled(colorOn, styleDirectory, c.path+"/")
}

func (c *DirectoryLineContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Path string `json:"path"`
	}{Kind: c.Kind(), Path: c.path})
}

// ErrorLineContent reports a walker or worker failure as its own line.
// Headers (directory and error) are always finished on creation.
type ErrorLineContent struct {
	err error
}

func NewErrorLine(err error) *ErrorLineContent {
	return &ErrorLineContent{err: err}
}

func (c *ErrorLineContent) Kind() string { return "error" }

func (c *ErrorLineContent) Render(colorOn bool) string {
	return styled(colorOn, styleError, "error: "+c.err.Error())
}

// MarshalJSON nests the cause chain under "source" per the error line
// format: top-level message plus a {message,source} object per wrapped
// cause, terminating in a null source.
func (c *ErrorLineContent) MarshalJSON() ([]byte, error) {
	var source json.RawMessage
	message := c.err.Error()
	if marshaler, ok := c.err.(json.Marshaler); ok {
		if raw, err := marshaler.MarshalJSON(); err == nil {
			var chain struct {
				Message string          `json:"message"`
				Source  json.RawMessage `json:"source"`
			}
			if json.Unmarshal(raw, &chain) == nil {
				message = chain.Message
				source = chain.Source
			}
		}
	}
	return json.Marshal(struct {
		Kind    string          `json:"kind"`
		Message string          `json:"message"`
		Source  json.RawMessage `json:"source"`
	}{Kind: c.Kind(), Message: message, Source: source})
}

// MessageLineContent is a plain informational line (used by e.g. the clone
// subcommand, which has no per-repository status to report).
type MessageLineContent struct {
	mu   sync.Mutex
	repo string
	text string
}

func NewMessageLine(repo string) *MessageLineContent {
	return &MessageLineContent{repo: repo}
}

func (c *MessageLineContent) Kind() string { return "message" }

func (c *MessageLineContent) Set(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
}

func (c *MessageLineContent) Render(colorOn bool) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("%s %s", styled(colorOn, styleDim, c.repo), c.text)
}

func (c *MessageLineContent) MarshalJSON() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return json.Marshal(struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}{Kind: c.Kind(), Message: c.text})
}

// StatusLineContent reports one repository's status (§3 RepositoryStatus).
type StatusLineContent struct {
	mu     sync.Mutex
	repo   string
	status *gitops.RepositoryStatus
	err    error
}

func NewStatusLine(repo string) *StatusLineContent {
	return &StatusLineContent{repo: repo}
}

func (c *StatusLineContent) Kind() string { return "status" }

// Set records the computed status (or a terminal error) and is the only way
// a worker updates this line; it may be called at most once since status
// computation does not report incremental progress.
func (c *StatusLineContent) Set(status *gitops.RepositoryStatus, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
	c.err = err
}

func (c *StatusLineContent) Render(colorOn bool) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return fmt.Sprintf("%s %s", c.repo, styled(colorOn, styleError, c.err.Error()))
	}
	if c.status == nil {
		return fmt.Sprintf("%s %s", c.repo, styled(colorOn, styleDim, "..."))
	}
	summary := summarizeStatus(c.status)
	style := styleClean
	if c.status.WorkingTree.Dirty() {
		style = styleDirty
	}
	return fmt.Sprintf("%s %s", c.repo, styled(colorOn, style, summary))
}

func summarizeStatus(s *gitops.RepositoryStatus) string {
	head := s.Head.Name
	switch s.Head.Kind {
	case gitops.HeadDetached:
		head = "(detached " + head + ")"
	case gitops.HeadUnborn:
		head = head + " (unborn)"
	}

	upstream := ""
	switch s.Upstream.State {
	case gitops.UpstreamNone:
		upstream = "no upstream"
	case gitops.UpstreamGone:
		upstream = "upstream gone"
	case gitops.UpstreamTracking:
		upstream = fmt.Sprintf("+%d/-%d", s.Upstream.Ahead, s.Upstream.Behind)
	}

	dirty := "clean"
	if s.WorkingTree.Dirty() {
		dirty = "dirty"
	}

	return fmt.Sprintf("%s [%s] %s", head, upstream, dirty)
}

func (c *StatusLineContent) MarshalJSON() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload := struct {
		Kind        string           `json:"kind"`
		Head        *jsonHead        `json:"head,omitempty"`
		Upstream    *jsonUpstream    `json:"upstream,omitempty"`
		WorkingTree *jsonWorkingTree `json:"working_tree,omitempty"`
		Default     *string          `json:"default_branch,omitempty"`
		Error       string           `json:"error,omitempty"`
	}{Kind: c.Kind()}

	if c.err != nil {
		payload.Error = c.err.Error()
		return json.Marshal(payload)
	}
	if c.status != nil {
		payload.Head = &jsonHead{Name: c.status.Head.Name, Kind: c.status.Head.Kind.String()}
		upstream := &jsonUpstream{State: c.status.Upstream.State.String()}
		if c.status.Upstream.State == gitops.UpstreamTracking {
			ahead, behind := c.status.Upstream.Ahead, c.status.Upstream.Behind
			upstream.Ahead = &ahead
			upstream.Behind = &behind
		}
		payload.Upstream = upstream
		payload.WorkingTree = &jsonWorkingTree{
			WorkingChanged: c.status.WorkingTree.WorkingChanged,
			IndexChanged:   c.status.WorkingTree.IndexChanged,
		}
		payload.Default = c.status.DefaultBranch
	}
	return json.Marshal(payload)
}

type jsonHead struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type jsonUpstream struct {
	State  string `json:"state"`
	Ahead  *int   `json:"ahead,omitempty"`
	Behind *int   `json:"behind,omitempty"`
}

type jsonWorkingTree struct {
	WorkingChanged bool `json:"working_changed"`
	IndexChanged   bool `json:"index_changed"`
}

// PullLineContent reports fetch progress and the terminal pull outcome.
type PullLineContent struct {
	mu       sync.Mutex
	repo     string
	progress gitops.FetchProgress
	outcome  *gitops.PullOutcome
	err      error
}

func NewPullLine(repo string) *PullLineContent {
	return &PullLineContent{repo: repo}
}

func (c *PullLineContent) Kind() string { return "pull" }

// SetProgress records the latest two-phase transfer progress; safe to call
// from the fetch goroutine while the UI reads concurrently.
func (c *PullLineContent) SetProgress(p gitops.FetchProgress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = p
}

func (c *PullLineContent) SetOutcome(outcome *gitops.PullOutcome, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcome = outcome
	c.err = err
}

func (c *PullLineContent) Render(colorOn bool) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return fmt.Sprintf("%s %s", c.repo, styled(colorOn, styleError, c.err.Error()))
	}
	if c.outcome != nil {
		return fmt.Sprintf("%s %s", c.repo, styled(colorOn, styleClean, c.outcome.State.String()))
	}
	if c.progress.Total > 0 && c.progress.Received < c.progress.Total {
		return fmt.Sprintf("%s downloading %d/%d", c.repo, c.progress.Received, c.progress.Total)
	}
	if c.progress.Total > 0 {
		return fmt.Sprintf("%s indexing %d/%d", c.repo, c.progress.Indexed, c.progress.Total)
	}
	return fmt.Sprintf("%s %s", c.repo, styled(colorOn, styleDim, "fetching..."))
}

func (c *PullLineContent) MarshalJSON() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload := struct {
		Kind   string `json:"kind"`
		State  string `json:"state,omitempty"`
		Branch string `json:"branch,omitempty"`
		Error  string `json:"error,omitempty"`
	}{Kind: c.Kind()}
	if c.err != nil {
		payload.Error = c.err.Error()
	} else if c.outcome != nil {
		payload.State = c.outcome.State.String()
		payload.Branch = c.outcome.Branch
	}
	return json.Marshal(payload)
}

// ExecLineContent reports the outcome of one per-repository exec invocation.
type ExecLineContent struct {
	mu       sync.Mutex
	repo     string
	exitCode int
	output   string
	err      error
}

func NewExecLine(repo string) *ExecLineContent {
	return &ExecLineContent{repo: repo}
}

func (c *ExecLineContent) Kind() string { return "exec" }

func (c *ExecLineContent) SetResult(exitCode int, output string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exitCode = exitCode
	c.output = output
	c.err = err
}

func (c *ExecLineContent) Render(colorOn bool) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return fmt.Sprintf("%s %s", c.repo, styled(colorOn, styleError, c.err.Error()))
	}
	style := styleClean
	if c.exitCode != 0 {
		style = styleError
	}
	first := firstLine(c.output)
	return fmt.Sprintf("%s %s %s", c.repo, styled(colorOn, style, fmt.Sprintf("exit %d", c.exitCode)), first)
}

func (c *ExecLineContent) MarshalJSON() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload := struct {
		Kind  string `json:"kind"`
		Path  string `json:"path"`
		Code  *int   `json:"code"`
		Error string `json:"error,omitempty"`
	}{Kind: c.Kind(), Path: c.repo}
	if c.err != nil {
		payload.Error = c.err.Error()
	} else {
		code := c.exitCode
		payload.Code = &code
	}
	return json.Marshal(payload)
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
