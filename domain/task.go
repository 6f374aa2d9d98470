package domain

import "time"

// TaskStatus is the workflow state of a task. Each status is one board column.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
	StatusBlocked    TaskStatus = "blocked"
	StatusCancelled  TaskStatus = "cancelled"
)

// TaskStatuses lists every board column in display order.
var TaskStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone, StatusBlocked, StatusCancelled}

// Valid reports whether s names one of the fixed board columns.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusBlocked, StatusCancelled:
		return true
	}
	return false
}

// TaskPriority is the urgency of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Task represents a single board item mirrored from the remote store.
// ProjectID is a weak reference: a dangling target degrades to "no project".
type Task struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	ProjectID    string       `json:"project_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	DueDate      string       `json:"due_date,omitempty"`
	MarkdownFile string       `json:"markdown_file,omitempty"`
	GithubRepo   string       `json:"github_repo,omitempty"`
}

// TaskFields carries the writable fields of a task for inserts. Identity and
// timestamps are assigned by the remote store.
type TaskFields struct {
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	ProjectID    string       `json:"project_id,omitempty"`
	DueDate      string       `json:"due_date,omitempty"`
	MarkdownFile string       `json:"markdown_file,omitempty"`
	GithubRepo   string       `json:"github_repo,omitempty"`
}
