// --------------------------------------------------------------------------------
// Author: Thomas F McGeehan V
//
// This file is part of a software project developed by Thomas F McGeehan V.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
// For more information about the MIT License, please visit:
// https://opensource.org/licenses/MIT
//
// Acknowledgment appreciated but not required.
// --------------------------------------------------------------------------------

// Package github pins dataset sources hosted in git repositories to a commit
// SHA, so fetches stay reproducible even when the branch moves.
//
// A pinnable source is written github:owner/repo/path[@ref]; plain https://
// sources bypass this package entirely.
package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v64/github"
	"golang.org/x/oauth2"
)

// Prefix marks a dataset source as a pinnable GitHub reference.
const Prefix = "github:"

// defaultRef resolves to the repository's current default-branch head.
const defaultRef = "HEAD"

// Pinned is a dataset source resolved to an immutable revision.
type Pinned struct {
	Owner      string
	Repo       string
	Path       string
	Ref        string
	SHA        string
	CommitDate time.Time
}

// RawURL returns the raw.githubusercontent.com URL for the pinned revision.
func (p *Pinned) RawURL() string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s", p.Owner, p.Repo, p.SHA, p.Path)
}

// Revision is the short provenance string recorded in reports and the
// snapshot catalog.
func (p *Pinned) Revision() string {
	return fmt.Sprintf("%s/%s@%s", p.Owner, p.Repo, shortSHA(p.SHA))
}

// IsSpec reports whether source uses the github: scheme.
func IsSpec(source string) bool {
	return strings.HasPrefix(source, Prefix)
}

// Resolve turns a github:owner/repo/path[@ref] source into a Pinned revision
// by asking the GitHub API for the commit the ref points at. An empty token
// makes unauthenticated requests, subject to the lower rate limit.
func Resolve(ctx context.Context, source, token string) (*Pinned, error) {
	owner, repo, path, ref, err := parseSpec(source)
	if err != nil {
		return nil, err
	}

	client := NewClient(ctx, token)
	commit, _, err := client.Repositories.GetCommit(ctx, owner, repo, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("github: failed to resolve %s/%s@%s: %w", owner, repo, ref, err)
	}

	return &Pinned{
		Owner:      owner,
		Repo:       repo,
		Path:       path,
		Ref:        ref,
		SHA:        commit.GetSHA(),
		CommitDate: commit.GetCommit().GetCommitter().GetDate().Time,
	}, nil
}

// NewClient creates a GitHub client, authenticated with the OAuth token when
// one is provided.
func NewClient(ctx context.Context, token string) *github.Client {
	if token == "" {
		return github.NewClient(nil)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(ctx, ts))
}

// parseSpec splits github:owner/repo/path[@ref] into its components.
func parseSpec(source string) (owner, repo, path, ref string, err error) {
	if !IsSpec(source) {
		return "", "", "", "", fmt.Errorf("github: not a github: source: %s", source)
	}

	rest := strings.TrimPrefix(source, Prefix)
	ref = defaultRef
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		ref = rest[at+1:]
		rest = rest[:at]
		if ref == "" {
			return "", "", "", "", fmt.Errorf("github: empty ref in source: %s", source)
		}
	}

	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", "", fmt.Errorf("github: source must be github:owner/repo/path[@ref]: %s", source)
	}
	return parts[0], parts[1], parts[2], ref, nil
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
