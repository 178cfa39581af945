package store

import (
	"database/sql"
	"strings"
	"testing"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
)

func createTestProject(t *testing.T, db *sql.DB, owner int64, status model.ProjectStatus) *model.Project {
	t.Helper()
	p, err := NewProjectStore(db).Create("proj", "desc", owner)
	if err != nil {
		t.Fatalf("create test project: %v", err)
	}
	if status != model.ProjectProposal {
		setProjectStatus(t, db, p.ID, status)
		p.Status = status
	}
	return p
}

func TestTaskCreateDefaults(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)
	u := createTestUser(t, db, "author", model.RoleEditor)
	p := createTestProject(t, db, u.ID, model.ProjectPlanning)

	task, err := ts.Create("task", "desc", p.ID, u.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != model.TaskOpen {
		t.Errorf("status = %s, want %s", task.Status, model.TaskOpen)
	}
	if task.Progress != 0 {
		t.Errorf("progress = %v, want 0", task.Progress)
	}
	if task.UserAuthor != u.ID {
		t.Errorf("author = %d, want %d", task.UserAuthor, u.ID)
	}
	if task.UserExecutor != nil {
		t.Error("executor should start unset")
	}
}

func TestTaskCreateProjectGuards(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)
	u := createTestUser(t, db, "author", model.RoleEditor)

	tests := []struct {
		status  model.ProjectStatus
		wantMsg string
	}{
		{model.ProjectProposal, "doesn't accept tasks yet"},
		{model.ProjectFinished, "doesn't accept more tasks"},
		{model.ProjectCancelled, "doesn't accept more tasks"},
	}

	for _, tt := range tests {
		p := createTestProject(t, db, u.ID, tt.status)
		_, err := ts.Create("task", "desc", p.ID, u.ID)
		if err == nil {
			t.Fatalf("status %s: expected conflict", tt.status)
		}
		if kindOf(t, err) != apperr.KindConflict {
			t.Errorf("status %s: kind = %v, want conflict", tt.status, kindOf(t, err))
		}
		if !strings.Contains(err.Error(), tt.wantMsg) {
			t.Errorf("status %s: message %q should contain %q", tt.status, err.Error(), tt.wantMsg)
		}
	}
}

func TestTaskCreateProjectNotFound(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)
	u := createTestUser(t, db, "author", model.RoleEditor)

	_, err := ts.Create("task", "desc", 999, u.ID)
	if err == nil {
		t.Fatal("expected not found")
	}
	if kindOf(t, err) != apperr.KindNotFound {
		t.Errorf("kind = %v, want not found", kindOf(t, err))
	}
}

func TestTaskUpdateFieldsWhileOpen(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)
	u := createTestUser(t, db, "author", model.RoleEditor)
	p := createTestProject(t, db, u.ID, model.ProjectPlanning)
	task, _ := ts.Create("task", "desc", p.ID, u.ID)

	title := "renamed"
	progress := 40.0
	got, err := ts.Update(task.ID, TaskUpdate{Title: &title, Progress: &progress})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "renamed" || got.Progress != 40 {
		t.Errorf("got title=%q progress=%v", got.Title, got.Progress)
	}
}

func TestTaskUpdateFieldsRejectedOnceStarted(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)
	u := createTestUser(t, db, "author", model.RoleEditor)
	p := createTestProject(t, db, u.ID, model.ProjectPlanning)
	task, _ := ts.Create("task", "desc", p.ID, u.ID)
	setTaskStatus(t, db, task.ID, model.TaskInProgress)

	title := "renamed"
	_, err := ts.Update(task.ID, TaskUpdate{Title: &title})
	if err == nil {
		t.Fatal("expected conflict editing a started task")
	}
	if kindOf(t, err) != apperr.KindConflict {
		t.Errorf("kind = %v, want conflict", kindOf(t, err))
	}
}

func TestTaskUpdateStatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)
	u := createTestUser(t, db, "author", model.RoleEditor)
	p := createTestProject(t, db, u.ID, model.ProjectPlanning)
	task, _ := ts.Create("task", "desc", p.ID, u.ID)

	inProgress := model.TaskInProgress
	got, err := ts.Update(task.ID, TaskUpdate{Status: &inProgress})
	if err != nil {
		t.Fatalf("open -> in-progress: %v", err)
	}
	if got.Status != model.TaskInProgress {
		t.Errorf("status = %s, want %s", got.Status, model.TaskInProgress)
	}

	closed := model.TaskClosed
	_, err = ts.Update(task.ID, TaskUpdate{Status: &closed})
	if err == nil {
		t.Fatal("expected conflict for in-progress -> closed")
	}
	if kindOf(t, err) != apperr.KindConflict {
		t.Errorf("kind = %v, want conflict", kindOf(t, err))
	}
}

func TestTaskCrossProjectMove(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)
	u := createTestUser(t, db, "author", model.RoleEditor)
	src := createTestProject(t, db, u.ID, model.ProjectPlanning)
	task, _ := ts.Create("task", "desc", src.ID, u.ID)

	// Destination still being scoped: allowed.
	dest, err := NewProjectStore(db).Create("dest", "desc", u.ID)
	if err != nil {
		t.Fatalf("create dest: %v", err)
	}
	got, err := ts.Update(task.ID, TaskUpdate{ProjectID: &dest.ID})
	if err != nil {
		t.Fatalf("move to proposal project: %v", err)
	}
	if got.ProjectID != dest.ID {
		t.Errorf("project = %d, want %d", got.ProjectID, dest.ID)
	}

	// Destination already running: refused.
	running := createTestProject(t, db, u.ID, model.ProjectInProgress)
	_, err = ts.Update(task.ID, TaskUpdate{ProjectID: &running.ID})
	if err == nil {
		t.Fatal("expected conflict moving into a running project")
	}
	if kindOf(t, err) != apperr.KindConflict {
		t.Errorf("kind = %v, want conflict", kindOf(t, err))
	}
}

func TestTaskAssignExecutor(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)
	author := createTestUser(t, db, "author", model.RoleEditor)
	worker := createTestUser(t, db, "worker", model.RoleUser)
	p := createTestProject(t, db, author.ID, model.ProjectPlanning)
	task, _ := ts.Create("task", "desc", p.ID, author.ID)

	got, err := ts.AssignExecutor(task.ID, worker.ID)
	if err != nil {
		t.Fatalf("assign executor: %v", err)
	}
	if got.UserExecutor == nil || *got.UserExecutor != worker.ID {
		t.Errorf("executor = %v, want %d", got.UserExecutor, worker.ID)
	}

	// Reassignment while still open is allowed.
	other := createTestUser(t, db, "other", model.RoleUser)
	got, err = ts.AssignExecutor(task.ID, other.ID)
	if err != nil {
		t.Fatalf("reassign executor: %v", err)
	}
	if *got.UserExecutor != other.ID {
		t.Errorf("executor = %d, want %d", *got.UserExecutor, other.ID)
	}
}

func TestTaskAssignExecutorGuards(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)
	author := createTestUser(t, db, "author", model.RoleEditor)
	worker := createTestUser(t, db, "worker", model.RoleUser)
	p := createTestProject(t, db, author.ID, model.ProjectPlanning)

	// Started task: "already started".
	started, _ := ts.Create("started", "desc", p.ID, author.ID)
	setTaskStatus(t, db, started.ID, model.TaskInProgress)
	_, err := ts.AssignExecutor(started.ID, worker.ID)
	if err == nil || kindOf(t, err) != apperr.KindConflict {
		t.Fatalf("expected conflict for started task, got %v", err)
	}
	if !strings.Contains(err.Error(), "already started") {
		t.Errorf("message %q should mention already started", err.Error())
	}

	// Cancelled task gets its own message.
	cancelled, _ := ts.Create("cancelled", "desc", p.ID, author.ID)
	setTaskStatus(t, db, cancelled.ID, model.TaskCancelled)
	_, err = ts.AssignExecutor(cancelled.ID, worker.ID)
	if err == nil || kindOf(t, err) != apperr.KindConflict {
		t.Fatalf("expected conflict for cancelled task, got %v", err)
	}
	if !strings.Contains(err.Error(), "cancelled") {
		t.Errorf("message %q should mention cancelled", err.Error())
	}

	// Unknown executor.
	open, _ := ts.Create("open", "desc", p.ID, author.ID)
	_, err = ts.AssignExecutor(open.ID, 999)
	if err == nil || kindOf(t, err) != apperr.KindNotFound {
		t.Fatalf("expected not found for unknown executor, got %v", err)
	}
}

func TestTaskDeleteSoft(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)
	u := createTestUser(t, db, "author", model.RoleEditor)
	p := createTestProject(t, db, u.ID, model.ProjectPlanning)
	task, _ := ts.Create("task", "desc", p.ID, u.ID)

	if err := ts.Delete(task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := ts.GetByID(task.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("soft-deleted task should not be visible")
	}

	var deleted bool
	if err := db.QueryRow(`SELECT is_deleted FROM task WHERE id = ?`, task.ID).Scan(&deleted); err != nil {
		t.Fatalf("read is_deleted: %v", err)
	}
	if !deleted {
		t.Error("is_deleted should be set")
	}

	if err := ts.Delete(task.ID); err == nil {
		t.Error("second delete should report not found")
	}
}

func TestTaskListForUser(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)
	author := createTestUser(t, db, "author", model.RoleEditor)
	worker := createTestUser(t, db, "worker", model.RoleUser)
	outsider := createTestUser(t, db, "outsider", model.RoleUser)
	p := createTestProject(t, db, author.ID, model.ProjectPlanning)

	if _, err := ts.Create("authored", "desc", p.ID, author.ID); err != nil {
		t.Fatalf("create: %v", err)
	}
	executed, _ := ts.Create("executed", "desc", p.ID, author.ID)
	if _, err := ts.AssignExecutor(executed.ID, worker.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	forAuthor, err := ts.ListForUser(author.ID)
	if err != nil {
		t.Fatalf("list for author: %v", err)
	}
	if len(forAuthor) != 2 {
		t.Errorf("author sees %d tasks, want 2", len(forAuthor))
	}

	forWorker, err := ts.ListForUser(worker.ID)
	if err != nil {
		t.Fatalf("list for worker: %v", err)
	}
	if len(forWorker) != 1 || forWorker[0].ID != executed.ID {
		t.Errorf("worker sees %+v, want just the executed task", forWorker)
	}

	forOutsider, err := ts.ListForUser(outsider.ID)
	if err != nil {
		t.Fatalf("list for outsider: %v", err)
	}
	if len(forOutsider) != 0 {
		t.Errorf("outsider sees %d tasks, want 0", len(forOutsider))
	}
}
