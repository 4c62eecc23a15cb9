package staging

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhleao/teapot-sub006/internal/git/client"
	"github.com/jhleao/teapot-sub006/internal/logging"
)

// Controller applies stage/unstage operations through the git backend.
type Controller struct {
	git    client.Client
	logger logging.Logger
}

func NewController(git client.Client, logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Controller{git: git, logger: logger}
}

// SetStaged stages or unstages the given paths. Unstaging probes for HEAD
// first: on a repository with zero commits there is no HEAD to reset
// against, so the paths are dropped from the index instead. Probing up
// front turns the unborn-HEAD failure into control flow rather than a
// backend error surfacing mid-operation.
func (c *Controller) SetStaged(ctx context.Context, root string, paths []string, staged bool) error {
	if strings.TrimSpace(root) == "" {
		return fmt.Errorf("repository path is required")
	}
	if len(paths) == 0 {
		return nil
	}
	if staged {
		if err := c.git.Add(ctx, root, paths); err != nil {
			return fmt.Errorf("stage paths: %w", err)
		}
		return nil
	}
	if c.git.HeadExists(ctx, root) {
		if err := c.git.ResetIndex(ctx, root, paths); err != nil {
			return fmt.Errorf("unstage paths: %w", err)
		}
		return nil
	}
	c.logger.Debug("unstage without HEAD, removing from index", "paths", len(paths))
	if err := c.git.RemoveCached(ctx, root, paths); err != nil {
		return fmt.Errorf("unstage paths before initial commit: %w", err)
	}
	return nil
}
