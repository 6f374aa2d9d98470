package domain

import "time"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// Project represents a project mirrored from the remote store. MarkdownFile
// is an informational file-path reference into the host note vault, never
// validated here.
type Project struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Status       ProjectStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	MarkdownFile string        `json:"markdown_file,omitempty"`
	GithubRepo   string        `json:"github_repo,omitempty"`
}

// ProjectFields carries the writable fields of a project for inserts.
type ProjectFields struct {
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Status       ProjectStatus `json:"status"`
	MarkdownFile string        `json:"markdown_file,omitempty"`
	GithubRepo   string        `json:"github_repo,omitempty"`
}

// ProjectName resolves a task's project against the given projects. An empty
// or dangling project reference degrades to "".
func ProjectName(projects []Project, t Task) string {
	if t.ProjectID == "" {
		return ""
	}
	for _, p := range projects {
		if p.ID == t.ProjectID {
			return p.Name
		}
	}
	return ""
}
