package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jhleao/teapot-sub006/internal/git/runner"
)

const (
	unitSep   = "\x1f"
	recordSep = "\x1e"
)

// ExecClient implements Client using the git binary.
type ExecClient struct{ r runner.Runner }

func NewExecClient(bin string) *ExecClient { return &ExecClient{r: runner.NewExecRunner(bin)} }

func (c *ExecClient) ListBranches(ctx context.Context, root string) ([]BranchRecord, error) {
	out, err := c.r.Run(ctx, root, "for-each-ref",
		"--format=%(refname)%1f%(refname:short)%1f%(objectname)",
		"refs/heads", "refs/remotes")
	if err != nil {
		return nil, err
	}
	return parseBranchList(out), nil
}

func parseBranchList(out string) []BranchRecord {
	var branches []BranchRecord
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, unitSep)
		if len(parts) != 3 {
			continue
		}
		full, short, sha := parts[0], parts[1], parts[2]
		if short == "" || sha == "" {
			continue
		}
		remote := strings.HasPrefix(full, "refs/remotes/")
		// origin/HEAD is a symbolic pointer, not a branch of its own.
		if remote && strings.HasSuffix(full, "/HEAD") {
			continue
		}
		branches = append(branches, BranchRecord{Ref: short, HeadSHA: sha, IsRemote: remote})
	}
	return branches
}

func (c *ExecClient) Log(ctx context.Context, root, ref string) ([]CommitRecord, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, fmt.Errorf("log ref is required")
	}
	out, err := c.r.Run(ctx, root, "log", "--first-parent",
		"--format=%H%x1f%P%x1f%ct%x1f%B%x1e", ref, "--")
	if err != nil {
		return nil, err
	}
	return parseLogRecords(out), nil
}

func parseLogRecords(out string) []CommitRecord {
	var commits []CommitRecord
	for _, rec := range strings.Split(out, recordSep) {
		rec = strings.TrimLeft(rec, "\r\n")
		if strings.TrimSpace(rec) == "" {
			continue
		}
		parts := strings.SplitN(rec, unitSep, 4)
		if len(parts) != 4 {
			continue
		}
		sha := strings.TrimSpace(parts[0])
		if sha == "" {
			continue
		}
		parent := ""
		if fields := strings.Fields(parts[1]); len(fields) > 0 {
			parent = fields[0]
		}
		var timeMs int64
		if secs, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64); err == nil {
			timeMs = secs * 1000
		}
		commits = append(commits, CommitRecord{
			SHA:       sha,
			ParentSHA: parent,
			TimeMs:    timeMs,
			Message:   strings.TrimRight(parts[3], "\r\n"),
		})
	}
	return commits
}

func (c *ExecClient) RemoteHead(ctx context.Context, root string) (string, error) {
	out, err := c.r.Run(ctx, root, "symbolic-ref", "--short", "-q", "refs/remotes/origin/HEAD")
	if err != nil {
		// Not a symbolic ref or no remote; treated as "no signal".
		return "", nil
	}
	target := strings.TrimSpace(out)
	if idx := strings.Index(target, "/"); idx >= 0 {
		target = target[idx+1:]
	}
	return target, nil
}

func (c *ExecClient) ResolveRef(ctx context.Context, root, ref string) (string, error) {
	out, err := c.r.Run(ctx, root, "rev-parse", "--verify", "--quiet", ref)
	if err != nil {
		return "", err
	}
	sha := strings.TrimSpace(out)
	if sha == "" {
		return "", fmt.Errorf("ref %q did not resolve", ref)
	}
	return sha, nil
}

func (c *ExecClient) HeadExists(ctx context.Context, root string) bool {
	_, err := c.ResolveRef(ctx, root, "HEAD")
	return err == nil
}

func (c *ExecClient) Status(ctx context.Context, root string) (StatusRecord, error) {
	out, err := c.r.Run(ctx, root, "status", "--porcelain=v2", "--branch", "--untracked-files=all")
	if err != nil {
		return StatusRecord{}, err
	}
	status := parseStatusV2(out)
	status.Rebasing = c.rebaseInProgress(ctx, root)
	return status, nil
}

func parseStatusV2(out string) StatusRecord {
	var st StatusRecord
	appendOnce := func(list *[]string, path string) {
		if path != "" {
			*list = append(*list, path)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "# branch.oid "):
			if sha := strings.TrimPrefix(line, "# branch.oid "); sha != "(initial)" {
				st.HeadSHA = sha
			}
		case strings.HasPrefix(line, "# branch.head "):
			name := strings.TrimPrefix(line, "# branch.head ")
			if name == "(detached)" {
				st.Detached = true
			} else {
				st.Branch = name
			}
		case strings.HasPrefix(line, "# branch.upstream "):
			st.Upstream = strings.TrimPrefix(line, "# branch.upstream ")
		case strings.HasPrefix(line, "1 "):
			parts := strings.SplitN(line, " ", 9)
			if len(parts) != 9 {
				continue
			}
			classifyStatusCodes(&st, parts[1], parts[8])
		case strings.HasPrefix(line, "2 "):
			parts := strings.SplitN(line, " ", 10)
			if len(parts) != 10 {
				continue
			}
			path := parts[9]
			if idx := strings.Index(path, "\t"); idx >= 0 {
				path = path[:idx]
			}
			appendOnce(&st.Renamed, path)
			classifyStatusCodes(&st, parts[1], path)
		case strings.HasPrefix(line, "u "):
			parts := strings.SplitN(line, " ", 11)
			if len(parts) != 11 {
				continue
			}
			appendOnce(&st.Conflicted, parts[10])
		case strings.HasPrefix(line, "? "):
			appendOnce(&st.Untracked, strings.TrimPrefix(line, "? "))
		}
	}
	return st
}

// classifyStatusCodes buckets a porcelain XY pair into the status lists.
// The lists intentionally overlap (a staged modification is both staged
// and modified).
func classifyStatusCodes(st *StatusRecord, xy, path string) {
	if len(xy) != 2 || path == "" {
		return
	}
	index, worktree := xy[0], xy[1]
	if index != '.' {
		st.Staged = append(st.Staged, path)
	}
	if index == 'A' {
		st.Created = append(st.Created, path)
	}
	if index == 'M' || worktree == 'M' {
		st.Modified = append(st.Modified, path)
	}
	if index == 'D' || worktree == 'D' {
		st.Deleted = append(st.Deleted, path)
	}
}

func (c *ExecClient) rebaseInProgress(ctx context.Context, root string) bool {
	out, err := c.r.Run(ctx, root, "rev-parse", "--git-dir")
	if err != nil {
		return false
	}
	gitDir := strings.TrimSpace(out)
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(root, gitDir)
	}
	for _, marker := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(gitDir, marker)); err == nil {
			return true
		}
	}
	return false
}

func (c *ExecClient) Add(ctx context.Context, root string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	_, err := c.r.Run(ctx, root, args...)
	return err
}

func (c *ExecClient) ResetIndex(ctx context.Context, root string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"reset", "-q", "--"}, paths...)
	_, err := c.r.Run(ctx, root, args...)
	return err
}

func (c *ExecClient) RemoveCached(ctx context.Context, root string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"rm", "--cached", "-q", "--"}, paths...)
	_, err := c.r.Run(ctx, root, args...)
	return err
}

func (c *ExecClient) RepoRoot(ctx context.Context, path string) (string, error) {
	out, err := c.r.Run(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *ExecClient) IsRepoPath(ctx context.Context, path string) (bool, error) {
	_, err := c.r.Run(ctx, path, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false, nil
	}
	root, rErr := c.RepoRoot(ctx, path)
	if rErr != nil || root == "" {
		return false, nil
	}
	abs, aErr := filepath.Abs(path)
	if aErr != nil {
		return false, nil
	}
	rel, relErr := filepath.Rel(root, abs)
	if relErr != nil {
		return false, nil
	}
	if rel == "." || rel == "" {
		return true, nil
	}
	return !strings.HasPrefix(rel, ".."), nil
}
