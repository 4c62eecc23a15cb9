package client

import (
	"context"
	"fmt"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
)

// GoGitClient implements Client using go-git for object and ref access.
// Working tree status delegates to the git binary, whose porcelain output
// stays the canonical source for status semantics.
type GoGitClient struct{ exec *ExecClient }

func NewGoGitClient() *GoGitClient { return &GoGitClient{exec: NewExecClient("")} }

func (g *GoGitClient) open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	return repo, nil
}

func (g *GoGitClient) ListBranches(ctx context.Context, root string) ([]BranchRecord, error) {
	repo, err := g.open(root)
	if err != nil {
		return nil, err
	}
	iter, err := repo.References()
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	defer iter.Close()
	var branches []BranchRecord
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		// Symbolic refs (HEAD, origin/HEAD) are pointers, not branches.
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		switch {
		case name.IsBranch():
			branches = append(branches, BranchRecord{Ref: name.Short(), HeadSHA: ref.Hash().String()})
		case name.IsRemote():
			branches = append(branches, BranchRecord{Ref: name.Short(), HeadSHA: ref.Hash().String(), IsRemote: true})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return branches, nil
}

func (g *GoGitClient) Log(ctx context.Context, root, ref string) ([]CommitRecord, error) {
	repo, err := g.open(root)
	if err != nil {
		return nil, err
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", ref, err)
	}
	var commits []CommitRecord
	seen := map[plumbing.Hash]bool{}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", hash, err)
	}
	for commit != nil && !seen[commit.Hash] {
		seen[commit.Hash] = true
		rec := CommitRecord{
			SHA:     commit.Hash.String(),
			TimeMs:  commit.Committer.When.UnixMilli(),
			Message: strings.TrimRight(commit.Message, "\r\n"),
		}
		if len(commit.ParentHashes) > 0 {
			rec.ParentSHA = commit.ParentHashes[0].String()
		}
		commits = append(commits, rec)
		if len(commit.ParentHashes) == 0 {
			break
		}
		parent, err := commit.Parent(0)
		if err != nil {
			// History boundary (shallow clone); the parent stays dangling.
			break
		}
		commit = parent
	}
	return commits, nil
}

func (g *GoGitClient) RemoteHead(ctx context.Context, root string) (string, error) {
	repo, err := g.open(root)
	if err != nil {
		return "", nil
	}
	ref, err := repo.Reference(plumbing.ReferenceName("refs/remotes/origin/HEAD"), false)
	if err != nil || ref.Type() != plumbing.SymbolicReference {
		return "", nil
	}
	target := ref.Target().Short()
	if idx := strings.Index(target, "/"); idx >= 0 {
		target = target[idx+1:]
	}
	return target, nil
}

func (g *GoGitClient) ResolveRef(ctx context.Context, root, ref string) (string, error) {
	repo, err := g.open(root)
	if err != nil {
		return "", err
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", ref, err)
	}
	return hash.String(), nil
}

func (g *GoGitClient) HeadExists(ctx context.Context, root string) bool {
	repo, err := g.open(root)
	if err != nil {
		return false
	}
	head, err := repo.Head()
	return err == nil && head != nil
}

func (g *GoGitClient) Status(ctx context.Context, root string) (StatusRecord, error) {
	return g.exec.Status(ctx, root)
}

func (g *GoGitClient) Add(ctx context.Context, root string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	repo, err := g.open(root)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	for _, p := range paths {
		if _, err := wt.Add(p); err != nil {
			return fmt.Errorf("add %s: %w", p, err)
		}
	}
	return nil
}

func (g *GoGitClient) ResetIndex(ctx context.Context, root string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	repo, err := g.open(root)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if err := wt.Restore(&git.RestoreOptions{Staged: true, Files: paths}); err != nil {
		return fmt.Errorf("restore staged: %w", err)
	}
	return nil
}

func (g *GoGitClient) RemoveCached(ctx context.Context, root string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	repo, err := g.open(root)
	if err != nil {
		return err
	}
	idx, err := repo.Storer.Index()
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}
	drop := make(map[string]bool, len(paths))
	for _, p := range paths {
		drop[p] = true
	}
	kept := make([]*index.Entry, 0, len(idx.Entries))
	for _, entry := range idx.Entries {
		if !drop[entry.Name] {
			kept = append(kept, entry)
		}
	}
	idx.Entries = kept
	if err := repo.Storer.SetIndex(idx); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

func (g *GoGitClient) RepoRoot(ctx context.Context, path string) (string, error) {
	repo, err := g.open(path)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("open worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

func (g *GoGitClient) IsRepoPath(ctx context.Context, path string) (bool, error) {
	if _, err := g.open(path); err != nil {
		return false, nil
	}
	return true, nil
}
