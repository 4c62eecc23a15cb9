package projects

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jhleao/teapot-sub006/internal/logging"
	"github.com/jhleao/teapot-sub006/internal/storage/catalog"
)

// Service maintains the recently-opened repositories list shown on the
// start screen.
type Service struct {
	store  *catalog.Store
	logger logging.Logger
}

func NewService(store *catalog.Store, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{store: store, logger: logger}
}

type RepoEntryDTO struct {
	ID            int64     `json:"id"`
	Path          string    `json:"path"`
	DisplayName   string    `json:"displayName,omitempty"`
	CurrentBranch string    `json:"currentBranch,omitempty"`
	LastOpenedAt  time.Time `json:"lastOpenedAt,omitempty" ts_type:"string"`
	CreatedAt     time.Time `json:"createdAt" ts_type:"string"`
	UpdatedAt     time.Time `json:"updatedAt" ts_type:"string"`
}

func (s *Service) List(ctx context.Context) ([]RepoEntryDTO, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]RepoEntryDTO, 0, len(entries))
	for _, e := range entries {
		list = append(list, mapEntry(e))
	}
	return list, nil
}

// Remember records that a repository was opened, upserting its catalog row
// and bumping last-opened.
func (s *Service) Remember(ctx context.Context, path, currentBranch string) (RepoEntryDTO, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return RepoEntryDTO{}, errors.New("repository path is required")
	}
	now := time.Now().UTC()
	entry, err := s.store.Upsert(ctx, catalog.UpsertParams{
		Path:          path,
		DisplayName:   filepath.Base(path),
		CurrentBranch: currentBranch,
		LastOpened:    &now,
	})
	if err != nil {
		return RepoEntryDTO{}, fmt.Errorf("remember repository: %w", err)
	}
	return mapEntry(entry), nil
}

func (s *Service) MarkOpened(ctx context.Context, id int64) error {
	if err := s.store.MarkOpened(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("repository %d not found", id)
		}
		return err
	}
	return nil
}

func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := s.store.Remove(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			s.logger.Debug("remove of unknown repository", "id", id)
			return nil
		}
		return err
	}
	return nil
}

func mapEntry(e catalog.Entry) RepoEntryDTO {
	return RepoEntryDTO{
		ID:            e.ID,
		Path:          e.Path,
		DisplayName:   e.DisplayName,
		CurrentBranch: e.CurrentBranch,
		LastOpenedAt:  e.LastOpenedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
