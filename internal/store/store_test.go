package store

import (
	"database/sql"
	"testing"

	"taskboard/internal/database"
	"taskboard/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, username string, role model.Role) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create(username, "$2a$10$fakefakefakefakefakefake", role)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return u
}

func setProjectStatus(t *testing.T, db *sql.DB, id int64, status model.ProjectStatus) {
	t.Helper()
	if _, err := db.Exec(`UPDATE project SET status = ? WHERE id = ?`, status, id); err != nil {
		t.Fatalf("set project status: %v", err)
	}
}

func setTaskStatus(t *testing.T, db *sql.DB, id int64, status model.TaskStatus) {
	t.Helper()
	if _, err := db.Exec(`UPDATE task SET status = ? WHERE id = ?`, status, id); err != nil {
		t.Fatalf("set task status: %v", err)
	}
}
