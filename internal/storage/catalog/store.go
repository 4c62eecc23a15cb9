package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a catalog entry does not exist.
var ErrNotFound = errors.New("repository not found")

// Store persists the recently-opened repository catalog.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Entry is one known repository.
type Entry struct {
	ID            int64     `json:"id"`
	Path          string    `json:"path"`
	DisplayName   string    `json:"displayName,omitempty"`
	CurrentBranch string    `json:"currentBranch,omitempty"`
	LastOpenedAt  time.Time `json:"lastOpenedAt,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type UpsertParams struct {
	Path          string
	DisplayName   string
	CurrentBranch string
	LastOpened    *time.Time
}

func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, display_name, current_branch, last_opened_at, created_at, updated_at
		FROM repositories
		ORDER BY COALESCE(last_opened_at, updated_at) DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query repositories: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repositories: %w", err)
	}
	return entries, nil
}

func (s *Store) Upsert(ctx context.Context, params UpsertParams) (Entry, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO repositories (path, display_name, current_branch, last_opened_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			display_name = COALESCE(NULLIF(excluded.display_name, ''), repositories.display_name),
			current_branch = COALESCE(NULLIF(excluded.current_branch, ''), repositories.current_branch),
			last_opened_at = COALESCE(excluded.last_opened_at, repositories.last_opened_at),
			updated_at = CURRENT_TIMESTAMP
	`, params.Path, nullIfEmpty(params.DisplayName), nullIfEmpty(params.CurrentBranch), params.LastOpened)
	if err != nil {
		return Entry{}, fmt.Errorf("upsert repository: %w", err)
	}
	return s.GetByPath(ctx, params.Path)
}

func (s *Store) GetByPath(ctx context.Context, path string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, display_name, current_branch, last_opened_at, created_at, updated_at
		FROM repositories
		WHERE path = ?
	`, path)
	entry, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get repository: %w", err)
	}
	return entry, nil
}

func (s *Store) MarkOpened(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE repositories
		SET last_opened_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("mark repository opened: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark repository opened: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM repositories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove repository: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove repository: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEntry(scan func(...any) error) (Entry, error) {
	var (
		entry   Entry
		display sql.NullString
		branch  sql.NullString
		last    sql.NullTime
	)
	if err := scan(&entry.ID, &entry.Path, &display, &branch, &last, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return Entry{}, err
	}
	if display.Valid {
		entry.DisplayName = display.String
	}
	if branch.Valid {
		entry.CurrentBranch = branch.String
	}
	if last.Valid {
		entry.LastOpenedAt = last.Time
	}
	return entry, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
