package repos

import (
	"context"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/jhleao/teapot-sub006/internal/logging"
	"github.com/jhleao/teapot-sub006/internal/projects"
	"github.com/jhleao/teapot-sub006/internal/watchers"
)

// RepoChangedTopic is the event channel carrying refreshed RepoDTO
// payloads after the watcher sees the working directory change.
const RepoChangedTopic = "repo:changed"

// API exposes repository viewing and staging to the frontend via Wails
// binding. One repository is open at a time; opening a new one retargets
// the shared watcher.
type API struct {
	svc     *Service
	recents *projects.Service
	watcher *watchers.Service
	ctxFn   func() context.Context
	log     logging.Logger
}

func NewAPI(svc *Service, recents *projects.Service, watcher *watchers.Service, ctxProvider func() context.Context, logger logging.Logger) *API {
	if logger == nil {
		logger = logging.Nop()
	}
	return &API{svc: svc, recents: recents, watcher: watcher, ctxFn: ctxProvider, log: logger}
}

type SetStagedRequest struct {
	Path   string   `json:"path"`
	Paths  []string `json:"paths"`
	Staged bool     `json:"staged"`
}

// OpenRepository loads the repository at path, starts watching it, and
// records it in the recents catalog.
func (a *API) OpenRepository(path string) (RepoDTO, error) {
	ctx := context.Background()
	root, err := a.svc.Resolve(ctx, path)
	if err != nil {
		return RepoDTO{}, err
	}
	dto, err := a.svc.Load(ctx, root)
	if err != nil {
		return RepoDTO{}, err
	}
	if a.watcher != nil {
		if err := a.watcher.Watch(root); err != nil {
			a.log.Warn("watch repository failed", "path", root, "error", err)
		}
	}
	if a.recents != nil {
		if _, err := a.recents.Remember(ctx, root, dto.Status.CurrentBranch); err != nil {
			a.log.Warn("remember repository failed", "path", root, "error", err)
		}
	}
	return dto, nil
}

// RefreshRepository re-snapshots without touching the watcher.
func (a *API) RefreshRepository(path string) (RepoDTO, error) {
	ctx := context.Background()
	root, err := a.svc.Resolve(ctx, path)
	if err != nil {
		return RepoDTO{}, err
	}
	return a.svc.Load(ctx, root)
}

// SetStaged applies a stage/unstage request and returns the fresh view.
func (a *API) SetStaged(req SetStagedRequest) (RepoDTO, error) {
	ctx := context.Background()
	root, err := a.svc.Resolve(ctx, req.Path)
	if err != nil {
		return RepoDTO{}, err
	}
	return a.svc.SetStaged(ctx, root, req.Paths, req.Staged)
}

// CloseRepository stops watching the currently open repository.
func (a *API) CloseRepository() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
}

// EmitRepoChanged is the watcher callback: rebuild and push the new forest
// to the frontend. A failed rebuild pushes nothing; the UI keeps showing
// its last good state rather than a partial tree.
func (a *API) EmitRepoChanged(path string) {
	ctx := context.Background()
	dto, err := a.svc.Load(ctx, path)
	if err != nil {
		a.log.Warn("rebuild after change failed", "path", path, "error", err)
		return
	}
	if a.ctxFn == nil {
		return
	}
	appCtx := a.ctxFn()
	if appCtx == nil {
		return
	}
	wailsruntime.EventsEmit(appCtx, RepoChangedTopic, dto)
}
