package model

import "time"

type TaskStatus string

const (
	TaskOpen       TaskStatus = "open"
	TaskInProgress TaskStatus = "in-progress"
	TaskBlocked    TaskStatus = "blocked"
	TaskInReview   TaskStatus = "in-review"
	TaskInTesting  TaskStatus = "in-testing"
	TaskCancelled  TaskStatus = "cancelled"
	TaskCompleted  TaskStatus = "completed"
	TaskClosed     TaskStatus = "closed"
	TaskInAudit    TaskStatus = "in-audit"
)

// TaskStatuses lists every valid task status, in lifecycle order.
var TaskStatuses = []TaskStatus{
	TaskOpen,
	TaskInProgress,
	TaskBlocked,
	TaskInReview,
	TaskInTesting,
	TaskCancelled,
	TaskCompleted,
	TaskClosed,
	TaskInAudit,
}

// taskTransitions is the full transition table. Rework routes back through
// in-progress; closed and cancelled are terminal.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskOpen:       {TaskInProgress, TaskCancelled},
	TaskInProgress: {TaskBlocked, TaskInReview, TaskCancelled},
	TaskBlocked:    {TaskInProgress, TaskCancelled},
	TaskInReview:   {TaskInProgress, TaskInTesting},
	TaskInTesting:  {TaskInProgress, TaskCompleted},
	TaskCompleted:  {TaskInAudit, TaskClosed},
	TaskInAudit:    {TaskClosed},
	TaskClosed:     {},
	TaskCancelled:  {},
}

func (s TaskStatus) Valid() bool {
	_, ok := taskTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is a legal transition.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, t := range taskTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Editable reports whether a task's fields (title, description, progress,
// executor, project) may still change. Anything past open is locked.
func (s TaskStatus) Editable() bool {
	return s == TaskOpen
}

type Task struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Progress     float64    `json:"progress"`
	ProjectID    int64      `json:"projectId"`
	UserAuthor   int64      `json:"userAuthor"`
	UserExecutor *int64     `json:"userExecutor"`
	Status       TaskStatus `json:"status"`
	IsDeleted    bool       `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
