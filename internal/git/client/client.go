package client

import "context"

// Client is the git backend boundary used by the app. Read queries feed
// snapshot construction; the index mutations back the stage controller.
// Implementations may use the git binary or a pure-Go library.
type Client interface {
	// ListBranches returns all local and remote-tracking branches.
	ListBranches(ctx context.Context, root string) ([]BranchRecord, error)
	// Log returns the first-parent history of ref, newest first.
	Log(ctx context.Context, root, ref string) ([]CommitRecord, error)
	// RemoteHead returns the branch name the remote's default-branch
	// pointer targets (e.g. "main"), or "" when unresolvable. The lookup
	// failing is not an error; it just means no signal.
	RemoteHead(ctx context.Context, root string) (string, error)
	// ResolveRef resolves a ref to a commit sha.
	ResolveRef(ctx context.Context, root, ref string) (string, error)
	// HeadExists reports whether HEAD resolves to a commit. False on a
	// repository with zero commits.
	HeadExists(ctx context.Context, root string) bool
	// Status reads the working tree status.
	Status(ctx context.Context, root string) (StatusRecord, error)

	// Add stages the given paths unconditionally.
	Add(ctx context.Context, root string, paths []string) error
	// ResetIndex resets the index entries for paths back to HEAD.
	ResetIndex(ctx context.Context, root string, paths []string) error
	// RemoveCached drops paths from the index without touching the
	// working tree. Used when there is no HEAD to reset against.
	RemoveCached(ctx context.Context, root string, paths []string) error

	// RepoRoot returns the repository toplevel for a path inside a repo.
	RepoRoot(ctx context.Context, path string) (string, error)
	// IsRepoPath reports whether path is inside a git work tree.
	IsRepoPath(ctx context.Context, path string) (bool, error)
}
