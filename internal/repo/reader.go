package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhleao/teapot-sub006/internal/git/client"
	"github.com/jhleao/teapot-sub006/internal/logging"
)

// Reader assembles immutable snapshots from the git backend.
type Reader struct {
	git    client.Client
	logger logging.Logger
}

func NewReader(git client.Client, logger logging.Logger) *Reader {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Reader{git: git, logger: logger}
}

// Read constructs a fresh snapshot of the repository at path. Commits are
// collected from every branch's first-parent history, deduplicated by sha
// in discovery order, and child back-links are computed by inverting the
// parent links across the full set. A parent missing from the set (shallow
// fetch boundary) stays dangling without error.
func (r *Reader) Read(ctx context.Context, path string) (*Snapshot, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("repository path is required")
	}
	rawBranches, err := r.git.ListBranches(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	status, err := r.git.Status(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read status: %w", err)
	}
	remoteHead, err := r.git.RemoteHead(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("resolve remote head: %w", err)
	}

	branches := make([]Branch, 0, len(rawBranches))
	for _, b := range rawBranches {
		branches = append(branches, Branch{Ref: b.Ref, IsRemote: b.IsRemote, HeadSHA: b.HeadSHA})
	}

	var commits []Commit
	byIndex := make(map[string]int)
	for _, b := range branches {
		records, err := r.git.Log(ctx, path, b.Ref)
		if err != nil {
			// A branch can disappear between the listing and the log
			// read; skip it rather than failing the whole snapshot.
			r.logger.Warn("log branch failed", "ref", b.Ref, "error", err)
			continue
		}
		for _, rec := range records {
			if _, ok := byIndex[rec.SHA]; ok {
				continue
			}
			byIndex[rec.SHA] = len(commits)
			commits = append(commits, Commit{
				SHA:       rec.SHA,
				Message:   rec.Message,
				TimeMs:    rec.TimeMs,
				ParentSHA: rec.ParentSHA,
			})
		}
	}

	// Invert parent links into child back-links, preserving discovery order.
	for i := range commits {
		parent := commits[i].ParentSHA
		if parent == "" {
			continue
		}
		if pi, ok := byIndex[parent]; ok {
			commits[pi].ChildrenSHA = append(commits[pi].ChildrenSHA, commits[i].SHA)
		}
	}

	if trunk := ResolveTrunk(remoteHead, branches); trunk != "" {
		for i := range branches {
			if branches[i].LocalName() == trunk {
				branches[i].IsTrunk = true
			}
		}
	}

	return &Snapshot{
		ID:         uuid.NewString(),
		Path:       path,
		RemoteHead: remoteHead,
		Commits:    commits,
		Branches:   branches,
		Status: WorkingTreeStatus{
			CurrentBranch: status.Branch,
			HeadSHA:       status.HeadSHA,
			Upstream:      status.Upstream,
			Detached:      status.Detached,
			Rebasing:      status.Rebasing,
			Staged:        status.Staged,
			Modified:      status.Modified,
			Created:       status.Created,
			Deleted:       status.Deleted,
			Renamed:       status.Renamed,
			Untracked:     status.Untracked,
			Conflicted:    status.Conflicted,
		},
	}, nil
}
