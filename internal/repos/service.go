package repos

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhleao/teapot-sub006/internal/git/client"
	"github.com/jhleao/teapot-sub006/internal/logging"
	"github.com/jhleao/teapot-sub006/internal/repo"
	"github.com/jhleao/teapot-sub006/internal/stacks"
	"github.com/jhleao/teapot-sub006/internal/staging"
)

// RepoDTO is the read-only view handed to the frontend: the snapshot
// essentials plus the derived stack forest.
type RepoDTO struct {
	Path       string                 `json:"path"`
	SnapshotID string                 `json:"snapshotId"`
	Trunk      string                 `json:"trunk,omitempty"`
	Status     repo.WorkingTreeStatus `json:"status"`
	Branches   []repo.Branch          `json:"branches,omitempty"`
	Stacks     []*stacks.Stack        `json:"stacks,omitempty"`
}

// Service reads snapshots and derives stack forests for the frontend.
type Service struct {
	git    client.Client
	reader *repo.Reader
	stage  *staging.Controller
	logger logging.Logger
}

func NewService(git client.Client, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{
		git:    git,
		reader: repo.NewReader(git, logger),
		stage:  staging.NewController(git, logger),
		logger: logger,
	}
}

// Resolve validates that path is inside a work tree and returns the
// repository toplevel.
func (s *Service) Resolve(ctx context.Context, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("repository path is required")
	}
	ok, err := s.git.IsRepoPath(ctx, path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%s is not inside a git repository", path)
	}
	root, err := s.git.RepoRoot(ctx, path)
	if err != nil {
		return "", err
	}
	return root, nil
}

// Load takes a fresh snapshot and rebuilds the stack forest. The previous
// forest is simply discarded; nothing is patched incrementally.
func (s *Service) Load(ctx context.Context, root string) (RepoDTO, error) {
	snap, err := s.reader.Read(ctx, root)
	if err != nil {
		return RepoDTO{}, fmt.Errorf("snapshot %s: %w", root, err)
	}
	return RepoDTO{
		Path:       snap.Path,
		SnapshotID: snap.ID,
		Trunk:      repo.ResolveTrunk(snap.RemoteHead, snap.Branches),
		Status:     snap.Status,
		Branches:   snap.Branches,
		Stacks:     stacks.Build(snap),
	}, nil
}

// SetStaged stages or unstages paths and returns the refreshed view. The
// mutation invalidates the previous snapshot, so a new one is always read.
func (s *Service) SetStaged(ctx context.Context, root string, paths []string, staged bool) (RepoDTO, error) {
	if err := s.stage.SetStaged(ctx, root, paths, staged); err != nil {
		return RepoDTO{}, err
	}
	return s.Load(ctx, root)
}
