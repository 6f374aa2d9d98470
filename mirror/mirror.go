package mirror

import (
	"context"
	"fmt"
	"sync"

	"taskmirror/domain"
)

// Fetcher is the read side of the remote store consumed by the mirror.
type Fetcher interface {
	FetchProjects(ctx context.Context) ([]domain.Project, error)
	FetchTasks(ctx context.Context) ([]domain.Task, error)
}

// Collection names a mirrored collection.
type Collection string

const (
	Projects Collection = "projects"
	Tasks    Collection = "tasks"
)

// ReloadError indicates a reload fetch failed. The mirrored collection keeps
// its prior contents.
type ReloadError struct {
	Collection Collection
	Err        error
}

func (e ReloadError) Error() string {
	return "mirror: reload " + string(e.Collection) + ": " + e.Err.Error()
}

func (e ReloadError) Unwrap() error { return e.Err }

// Mirror holds the authoritative in-process copy of both remote collections,
// in the descending updated_at order the remote store returns. Contents
// change only through a wholesale reload, never in place, so readers always
// see the result of a completed remote read.
type Mirror struct {
	fetcher Fetcher

	mu       sync.RWMutex
	projects []domain.Project
	tasks    []domain.Task

	obsMu     sync.Mutex
	observers []func()
}

// New creates an empty Mirror backed by the given fetcher.
func New(fetcher Fetcher) *Mirror {
	return &Mirror{fetcher: fetcher}
}

// Projects returns a snapshot copy of the mirrored projects.
func (m *Mirror) Projects() []domain.Project {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Project(nil), m.projects...)
}

// Tasks returns a snapshot copy of the mirrored tasks.
func (m *Mirror) Tasks() []domain.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Task(nil), m.tasks...)
}

// Observe registers fn to run after every successful reload. Observers are
// expected to be idempotent re-renders; there is no unsubscribe.
func (m *Mirror) Observe(fn func()) {
	m.obsMu.Lock()
	m.observers = append(m.observers, fn)
	m.obsMu.Unlock()
}

// ReloadProjects replaces the mirrored projects with a fresh remote read.
// On failure the prior contents are kept and observers are not notified.
func (m *Mirror) ReloadProjects(ctx context.Context) error {
	projects, err := m.fetcher.FetchProjects(ctx)
	if err != nil {
		return ReloadError{Collection: Projects, Err: err}
	}
	m.mu.Lock()
	m.projects = projects
	m.mu.Unlock()
	m.notify()
	return nil
}

// ReloadTasks replaces the mirrored tasks with a fresh remote read.
func (m *Mirror) ReloadTasks(ctx context.Context) error {
	tasks, err := m.fetcher.FetchTasks(ctx)
	if err != nil {
		return ReloadError{Collection: Tasks, Err: err}
	}
	m.mu.Lock()
	m.tasks = tasks
	m.mu.Unlock()
	m.notify()
	return nil
}

// Reload refreshes the named collection.
func (m *Mirror) Reload(ctx context.Context, c Collection) error {
	switch c {
	case Projects:
		return m.ReloadProjects(ctx)
	case Tasks:
		return m.ReloadTasks(ctx)
	default:
		return ReloadError{Collection: c, Err: fmt.Errorf("unknown collection %q", c)}
	}
}

func (m *Mirror) notify() {
	m.obsMu.Lock()
	obs := make([]func(), len(m.observers))
	copy(obs, m.observers)
	m.obsMu.Unlock()
	for _, fn := range obs {
		fn()
	}
}
