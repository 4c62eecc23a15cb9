package projects

import (
	"context"

	"github.com/jhleao/teapot-sub006/internal/logging"
)

// API exposes the recent-repositories catalog to the frontend via Wails
// binding.
type API struct {
	svc *Service
	log logging.Logger
}

func NewAPI(svc *Service, logger logging.Logger) *API {
	if logger == nil {
		logger = logging.Nop()
	}
	return &API{svc: svc, log: logger}
}

func (a *API) ListRecentRepositories() ([]RepoEntryDTO, error) {
	return a.svc.List(context.Background())
}

func (a *API) ForgetRepository(id int64) error {
	return a.svc.Remove(context.Background(), id)
}

func (a *API) MarkRepositoryOpened(id int64) error {
	return a.svc.MarkOpened(context.Background(), id)
}
