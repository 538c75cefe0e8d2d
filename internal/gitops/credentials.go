// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package gitops

import (
	"os"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/mgit-dev/mgit/internal/mgitconfig"
	"github.com/mgit-dev/mgit/internal/mgiterr"
)

// credentialState tracks which credential sources have been tried for one
// fetch, mirroring the four-flag discipline of §4.4.3: it guarantees
// progress (no infinite retry) and a deterministic search order — config
// SSH key, then agent, then credential helper, then the default.
//
// go-git has no per-attempt credential callback the way the backend
// described in §6.3 does: an AuthMethod is chosen once per Fetch call, not
// renegotiated mid-transfer. candidate walks the same ordered search space
// by retrying the whole fetch with the next candidate whenever the
// previous one fails with an authentication error.
type credentialState struct {
	triedSSHFromConfig bool
	triedSSHFromAgent  bool
	triedCredHelper    bool
}

// candidate returns the next AuthMethod to try for remoteURL, or (nil,
// false) once every source has been exhausted. A nil, true result means
// "try with no credentials" (the DEFAULT case).
func (c *credentialState) candidate(remoteURL string, settings mgitconfig.Settings) (transport.AuthMethod, bool) {
	if !c.triedSSHFromConfig {
		c.triedSSHFromConfig = true
		if settings.SSH != nil {
			if auth, err := sshKeyAuth(settings.SSH); err == nil {
				return auth, true
			}
		}
	}
	if !c.triedSSHFromAgent && looksLikeSSH(remoteURL) {
		c.triedSSHFromAgent = true
		if auth, err := ssh.NewSSHAgentAuth("git"); err == nil {
			return auth, true
		}
	}
	if !c.triedCredHelper && looksLikeHTTP(remoteURL) {
		c.triedCredHelper = true
		if auth, err := credentialHelperAuth(remoteURL); err == nil {
			return auth, true
		}
	}
	if !c.exhausted() {
		c.triedSSHFromAgent = true
		c.triedCredHelper = true
		return nil, true
	}
	return nil, false
}

func (c *credentialState) exhausted() bool {
	return c.triedSSHFromConfig && c.triedSSHFromAgent && c.triedCredHelper
}

func sshKeyAuth(s *mgitconfig.SSHSettings) (transport.AuthMethod, error) {
	passphrase := ""
	if s.Passphrase != nil {
		passphrase = *s.Passphrase
	}
	return ssh.NewPublicKeysFromFile("git", s.PrivateKeyPath, passphrase)
}

// credentialHelperAuth shells out to `git credential fill`, the same
// mechanism the native git CLI uses, so configured credential helpers
// (keychain, manager-core, etc.) are honored without reimplementing them.
func credentialHelperAuth(remoteURL string) (transport.AuthMethod, error) {
	cmd := exec.Command("git", "credential", "fill")
	cmd.Stdin = strings.NewReader("url=" + remoteURL + "\n\n")
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.Output()
	if err != nil {
		return nil, mgiterr.WithContext(err, "git credential fill")
	}

	var username, password string
	for _, line := range strings.Split(string(out), "\n") {
		switch {
		case strings.HasPrefix(line, "username="):
			username = strings.TrimPrefix(line, "username=")
		case strings.HasPrefix(line, "password="):
			password = strings.TrimPrefix(line, "password=")
		}
	}
	if username == "" || password == "" {
		return nil, mgiterr.New("credential helper returned no credentials")
	}
	return &githttp.BasicAuth{Username: username, Password: password}, nil
}

func looksLikeSSH(url string) bool {
	return strings.HasPrefix(url, "ssh://") || strings.Contains(url, "git@")
}

func looksLikeHTTP(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// isAuthenticationError classifies a fetch/list failure as a credential
// problem worth retrying with the next candidate, versus a structural
// failure (network down, repository missing) that should abort immediately.
func isAuthenticationError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range authErrorPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// authErrorPatterns lists substrings seen in go-git/transport error text
// for authentication failures across the http and ssh transports.
var authErrorPatterns = []string{
	"authentication required",
	"authorization failed",
	"could not read Username",
	"could not read Password",
	"Invalid username or password",
	"permission denied (publickey)",
	"handshake failed",
}
