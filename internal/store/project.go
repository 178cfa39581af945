package store

import (
	"database/sql"
	"fmt"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
)

type ProjectStore struct {
	db *sql.DB
}

func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func scanProject(scanner interface{ Scan(...any) error }) (*model.Project, error) {
	var p model.Project
	err := scanner.Scan(&p.ID, &p.Title, &p.Description, &p.UserOwner, &p.Status, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const projectCols = `id, title, description, user_owner, status, is_deleted, created_at, updated_at`

// Create inserts a project in proposal status owned by the given user. The
// caller never chooses status or owner.
func (s *ProjectStore) Create(title, description string, owner int64) (*model.Project, error) {
	result, err := s.db.Exec(
		`INSERT INTO project (title, description, user_owner, status) VALUES (?, ?, ?, ?)`,
		title, description, owner, model.ProjectProposal,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// GetByID returns the project, or nil if absent or soft-deleted.
func (s *ProjectStore) GetByID(id int64) (*model.Project, error) {
	row := s.db.QueryRow(`SELECT `+projectCols+` FROM project WHERE id = ? AND is_deleted = 0`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *ProjectStore) listQuery(query string, args ...any) ([]model.Project, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// ListAll returns every live project (administrator view).
func (s *ProjectStore) ListAll() ([]model.Project, error) {
	return s.listQuery(`SELECT ` + projectCols + ` FROM project WHERE is_deleted = 0 ORDER BY id`)
}

// ListByOwner returns the live projects owned by the given user.
func (s *ProjectStore) ListByOwner(owner int64) ([]model.Project, error) {
	return s.listQuery(`SELECT `+projectCols+` FROM project WHERE is_deleted = 0 AND user_owner = ? ORDER BY id`, owner)
}

// Update applies title/description/status changes. The current status is
// re-read inside the write transaction so two concurrent updates cannot both
// pass the transition check; the loser fails with a conflict.
func (s *ProjectStore) Update(id int64, title, description string, status model.ProjectStatus) (*model.Project, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+projectCols+` FROM project WHERE id = ? AND is_deleted = 0`, id)
	current, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Project not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	if status != current.Status && !current.Status.CanTransitionTo(status) {
		return nil, apperr.Conflict(fmt.Sprintf("The project can't move from %s to %s.", current.Status, status))
	}

	_, err = tx.Exec(
		`UPDATE project SET title = ?, description = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, description, status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

// Delete soft-deletes the project and cascades the flag to its tasks, all in
// one transaction. Refused while any task sits outside closed/cancelled.
func (s *ProjectStore) Delete(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+projectCols+` FROM project WHERE id = ? AND is_deleted = 0`, id)
	if _, err := scanProject(row); err == sql.ErrNoRows {
		return apperr.NotFound("Project not found.")
	} else if err != nil {
		return fmt.Errorf("get project: %w", err)
	}

	var active int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM task WHERE project_id = ? AND is_deleted = 0 AND status NOT IN (?, ?)`,
		id, model.TaskClosed, model.TaskCancelled,
	).Scan(&active)
	if err != nil {
		return fmt.Errorf("count active tasks: %w", err)
	}
	if active > 0 {
		return apperr.Conflict("The project still has active tasks.")
	}

	if _, err := tx.Exec(`UPDATE project SET is_deleted = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id); err != nil {
		return fmt.Errorf("soft-delete project: %w", err)
	}
	if _, err := tx.Exec(`UPDATE task SET is_deleted = 1, updated_at = CURRENT_TIMESTAMP WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("soft-delete project tasks: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
