package store

import (
	"database/sql"
	"fmt"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var executor sql.NullInt64
	err := scanner.Scan(&t.ID, &t.Title, &t.Description, &t.Progress, &t.ProjectID,
		&t.UserAuthor, &executor, &t.Status, &t.IsDeleted, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if executor.Valid {
		t.UserExecutor = &executor.Int64
	}
	return &t, nil
}

const taskCols = `id, title, description, progress, project_id, user_author, user_executor, status, is_deleted, created_at, updated_at`

// Create inserts an open task under the project, re-checking the project's
// status inside the insert transaction.
func (s *TaskStore) Create(title, description string, projectID, author int64) (*model.Task, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+projectCols+` FROM project WHERE id = ? AND is_deleted = 0`, projectID)
	project, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Project not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	switch {
	case project.Status == model.ProjectProposal:
		return nil, apperr.Conflict("The project doesn't accept tasks yet.")
	case !project.Status.AcceptsTasks():
		return nil, apperr.Conflict("The project doesn't accept more tasks.")
	}

	result, err := tx.Exec(
		`INSERT INTO task (title, description, progress, project_id, user_author, status) VALUES (?, ?, 0, ?, ?, ?)`,
		title, description, projectID, author, model.TaskOpen,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

// GetByID returns the task, or nil if absent or soft-deleted.
func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM task WHERE id = ? AND is_deleted = 0`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) listQuery(query string, args ...any) ([]model.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ListAll returns every live task (administrator view).
func (s *TaskStore) ListAll() ([]model.Task, error) {
	return s.listQuery(`SELECT ` + taskCols + ` FROM task WHERE is_deleted = 0 ORDER BY id`)
}

// ListForUser returns live tasks the user authored or executes.
func (s *TaskStore) ListForUser(userID int64) ([]model.Task, error) {
	return s.listQuery(
		`SELECT `+taskCols+` FROM task WHERE is_deleted = 0 AND (user_author = ? OR user_executor = ?) ORDER BY id`,
		userID, userID,
	)
}

// TaskUpdate carries the mutable task fields. Nil pointers leave the stored
// value untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Progress    *float64
	Status      *model.TaskStatus
	ProjectID   *int64
}

// Update applies field edits, status moves, and cross-project moves. All
// guards are re-evaluated against the row inside the write transaction, so a
// concurrent mutation makes the second writer fail with a conflict instead of
// overwriting.
func (s *TaskStore) Update(id int64, upd TaskUpdate) (*model.Task, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+taskCols+` FROM task WHERE id = ? AND is_deleted = 0`, id)
	current, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Task not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	next := *current
	fieldEdit := false
	if upd.Title != nil && *upd.Title != current.Title {
		next.Title = *upd.Title
		fieldEdit = true
	}
	if upd.Description != nil && *upd.Description != current.Description {
		next.Description = *upd.Description
		fieldEdit = true
	}
	if upd.Progress != nil && *upd.Progress != current.Progress {
		next.Progress = *upd.Progress
		fieldEdit = true
	}

	projectMove := upd.ProjectID != nil && *upd.ProjectID != current.ProjectID
	if (fieldEdit || projectMove) && !current.Status.Editable() {
		return nil, apperr.Conflict("The task can only be edited while open.")
	}

	if projectMove {
		prow := tx.QueryRow(`SELECT `+projectCols+` FROM project WHERE id = ? AND is_deleted = 0`, *upd.ProjectID)
		dest, err := scanProject(prow)
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("Project not found.")
		}
		if err != nil {
			return nil, fmt.Errorf("get destination project: %w", err)
		}
		if !dest.Status.AcceptsTaskMoves() {
			return nil, apperr.Conflict("The destination project doesn't accept task transfers.")
		}
		next.ProjectID = *upd.ProjectID
	}

	if upd.Status != nil && *upd.Status != current.Status {
		if !current.Status.CanTransitionTo(*upd.Status) {
			return nil, apperr.Conflict(fmt.Sprintf("The task can't move from %s to %s.", current.Status, *upd.Status))
		}
		next.Status = *upd.Status
	}

	_, err = tx.Exec(
		`UPDATE task SET title = ?, description = ?, progress = ?, project_id = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		next.Title, next.Description, next.Progress, next.ProjectID, next.Status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

// AssignExecutor sets the task's executor. Only open tasks take assignments;
// a cancelled task reports that specifically, anything else past open counts
// as already started.
func (s *TaskStore) AssignExecutor(id, executorID int64) (*model.Task, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+taskCols+` FROM task WHERE id = ? AND is_deleted = 0`, id)
	current, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Task not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	switch {
	case current.Status == model.TaskCancelled:
		return nil, apperr.Conflict("The task was cancelled.")
	case !current.Status.Editable():
		return nil, apperr.Conflict("The task has already started.")
	}

	var n int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM user WHERE id = ?`, executorID).Scan(&n); err != nil {
		return nil, fmt.Errorf("count executor: %w", err)
	}
	if n == 0 {
		return nil, apperr.NotFound("User not found.")
	}

	_, err = tx.Exec(`UPDATE task SET user_executor = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, executorID, id)
	if err != nil {
		return nil, fmt.Errorf("assign executor: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

// Delete soft-deletes the task inside a single transaction.
func (s *TaskStore) Delete(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+taskCols+` FROM task WHERE id = ? AND is_deleted = 0`, id)
	if _, err := scanTask(row); err == sql.ErrNoRows {
		return apperr.NotFound("Task not found.")
	} else if err != nil {
		return fmt.Errorf("get task: %w", err)
	}

	if _, err := tx.Exec(`UPDATE task SET is_deleted = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id); err != nil {
		return fmt.Errorf("soft-delete task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
