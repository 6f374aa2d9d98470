package session

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"taskmirror/config"
	"taskmirror/domain"
	"taskmirror/mirror"
	"taskmirror/remote"
)

// Store is the remote mutation surface the session drives.
type Store interface {
	InsertProject(ctx context.Context, fields domain.ProjectFields) error
	InsertTask(ctx context.Context, fields domain.TaskFields) error
	UpdateProject(ctx context.Context, id string, patch map[string]any) error
	UpdateTask(ctx context.Context, id string, patch map[string]any) error
	RemoveTask(ctx context.Context, id string) error
}

// Canceler tears down a live change-feed subscription. Cancel must be
// idempotent.
type Canceler interface {
	Cancel()
}

// SubscribeFunc establishes the push subscription for the change
// notification bridge.
type SubscribeFunc func(ctx context.Context, onProjectsChanged, onTasksChanged func()) (Canceler, error)

// Session is the process-scoped context that owns the mirror, the change
// notification bridge and every mutation entry point. It is created once per
// host session and torn down with Close.
type Session struct {
	cfg       config.Config
	store     Store
	mirror    *mirror.Mirror
	subscribe SubscribeFunc
	sink      Sink
	logger    *log.Logger
	drag      *DragHandler

	mu       sync.Mutex
	selected string

	sub           Canceler
	stop          context.CancelFunc
	projectsDirty chan struct{}
	tasksDirty    chan struct{}
	workersDone   sync.WaitGroup
	closeOnce     sync.Once
}

// New creates a Session. subscribe may be nil when realtime is disabled.
func New(cfg config.Config, store Store, m *mirror.Mirror, subscribe SubscribeFunc, sink Sink, logger *log.Logger) *Session {
	s := &Session{
		cfg:           cfg,
		store:         store,
		mirror:        m,
		subscribe:     subscribe,
		sink:          sink,
		logger:        logger,
		projectsDirty: make(chan struct{}, 1),
		tasksDirty:    make(chan struct{}, 1),
	}
	s.drag = &DragHandler{session: s}
	return s
}

// Start establishes the remote session and, when realtime is enabled, the
// change notification bridge, then performs the initial reload of both
// collections. A reload failure leaves the session usable; the mirror simply
// stays at its prior (empty) contents.
func (s *Session) Start(ctx context.Context) error {
	if !s.cfg.HasSession() {
		s.sink.Notify(MsgMissingConfig)
		return remote.ConnectionError{Reason: "remote URL or key not configured"}
	}
	s.sink.Notify(MsgConnected)

	if s.cfg.EnableRealtime && s.subscribe != nil {
		runCtx, stop := context.WithCancel(context.Background())
		sub, err := s.subscribe(runCtx, s.markProjectsDirty, s.markTasksDirty)
		if err != nil {
			stop()
			// Without a live subscription no push event will ever arrive.
			// Re-arm the reload-after-write fallback instead of leaving the
			// mirror to go stale.
			s.cfg.EnableRealtime = false
			s.logger.Warnf("change feed unavailable, falling back to reload-after-write: %v", err)
		} else {
			s.sub = sub
			s.stop = stop
			s.workersDone.Add(2)
			go s.reloadWorker(runCtx, s.projectsDirty, s.mirror.ReloadProjects)
			go s.reloadWorker(runCtx, s.tasksDirty, s.mirror.ReloadTasks)
		}
	}

	if err := s.mirror.ReloadProjects(ctx); err != nil {
		return err
	}
	return s.mirror.ReloadTasks(ctx)
}

// Close tears the session down: the subscription is cancelled exactly once
// and the bridge workers are stopped. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.sub != nil {
			s.sub.Cancel()
		}
		if s.stop != nil {
			s.stop()
		}
		s.workersDone.Wait()
	})
}

func (s *Session) markProjectsDirty() {
	select {
	case s.projectsDirty <- struct{}{}:
	default:
	}
}

func (s *Session) markTasksDirty() {
	select {
	case s.tasksDirty <- struct{}{}:
	default:
	}
}

// reloadWorker coalesces change signals into reloads. A signal arriving while
// a reload is in flight stays pending in the buffered channel, so at least
// one more reload always follows a burst.
func (s *Session) reloadWorker(ctx context.Context, dirty <-chan struct{}, reload func(context.Context) error) {
	defer s.workersDone.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-dirty:
			if err := reload(ctx); err != nil {
				s.logger.Errorf("bridge reload: %v", err)
			}
		}
	}
}

// Projects returns the mirrored projects, newest update first.
func (s *Session) Projects() []domain.Project {
	return s.mirror.Projects()
}

// Tasks returns the mirrored tasks, newest update first.
func (s *Session) Tasks() []domain.Task {
	return s.mirror.Tasks()
}

// Observe registers fn to run after every successful mirror reload.
func (s *Session) Observe(fn func()) {
	s.mirror.Observe(fn)
}

// SelectProject sets the board filter. An empty id clears the selection.
func (s *Session) SelectProject(id string) {
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
}

// SelectedProject returns the current board filter.
func (s *Session) SelectedProject() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Board derives the per-status grouping for the current selection.
func (s *Session) Board() map[domain.TaskStatus][]domain.Task {
	return domain.ProjectBoard(s.mirror.Tasks(), s.SelectedProject())
}

// BeginDrag starts tracking a drag gesture for the given task.
func (s *Session) BeginDrag(taskID string) {
	s.drag.Begin(taskID)
}

// Drop ends the current drag gesture over the given target container.
func (s *Session) Drop(ctx context.Context, target string) error {
	return s.drag.Drop(ctx, target)
}

// CreateProject inserts a project.
func (s *Session) CreateProject(ctx context.Context, fields domain.ProjectFields) error {
	if fields.Status == "" {
		fields.Status = domain.ProjectActive
	}
	return s.mutate(ctx, "create_project", mirror.Projects, MsgProjectCreated, MsgProjectCreateFail,
		func(ctx context.Context) error { return s.store.InsertProject(ctx, fields) })
}

// UpdateProject applies a partial update to a project.
func (s *Session) UpdateProject(ctx context.Context, id string, patch map[string]any) error {
	return s.mutate(ctx, "update_project", mirror.Projects, MsgProjectUpdated, MsgProjectUpdateFail,
		func(ctx context.Context) error { return s.store.UpdateProject(ctx, id, patch) })
}

// LinkNoteToProject attaches a markdown file reference to a project. The
// path is stored verbatim, never validated.
func (s *Session) LinkNoteToProject(ctx context.Context, id, path string) error {
	return s.UpdateProject(ctx, id, map[string]any{"markdown_file": path})
}

// CreateTask inserts a task. When no explicit project is given, the
// currently selected project, if any, is pre-associated.
func (s *Session) CreateTask(ctx context.Context, fields domain.TaskFields) error {
	if fields.ProjectID == "" {
		fields.ProjectID = s.SelectedProject()
	}
	if fields.Status == "" {
		fields.Status = domain.StatusTodo
	}
	if fields.Priority == "" {
		fields.Priority = domain.PriorityMedium
	}
	return s.mutate(ctx, "create_task", mirror.Tasks, MsgTaskCreated, MsgTaskCreateFail,
		func(ctx context.Context) error { return s.store.InsertTask(ctx, fields) })
}

// UpdateTask applies a partial update to a task.
func (s *Session) UpdateTask(ctx context.Context, id string, patch map[string]any) error {
	return s.mutate(ctx, "update_task", mirror.Tasks, MsgTaskUpdated, MsgTaskUpdateFail,
		func(ctx context.Context) error { return s.store.UpdateTask(ctx, id, patch) })
}

// DeleteTask removes a task.
func (s *Session) DeleteTask(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_task", mirror.Tasks, MsgTaskDeleted, MsgTaskDeleteFail,
		func(ctx context.Context) error { return s.store.RemoveTask(ctx, id) })
}

// Refresh reloads both collections on explicit user request.
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.mirror.ReloadProjects(ctx); err != nil {
		s.sink.Notify(MsgRefreshFailed)
		return err
	}
	if err := s.mirror.ReloadTasks(ctx); err != nil {
		s.sink.Notify(MsgRefreshFailed)
		return err
	}
	s.sink.Notify(MsgDataRefreshed)
	return nil
}

// mutate runs one remote mutation, reports the outcome through the sink, and
// applies the fallback reload rule: without realtime no push event will
// arrive, so a successful mutation is followed by a reload of the affected
// collection. A mutation failure is terminal; nothing is retried and the
// mirror is left untouched.
func (s *Session) mutate(ctx context.Context, op string, coll mirror.Collection, okMsg, failMsg string, call func(context.Context) error) error {
	m := newOpMetrics(s.logger, op, string(coll))
	var err error
	defer func() { m.Log(err) }()

	remoteStart := time.Now()
	err = call(ctx)
	m.ObserveRemote(time.Since(remoteStart))
	if err != nil {
		m.SetErrorStage("remote")
		s.sink.Notify(failMsg)
		return err
	}
	s.sink.Notify(okMsg)

	if !s.cfg.EnableRealtime {
		reloadStart := time.Now()
		rerr := s.mirror.Reload(ctx, coll)
		m.ObserveReload(time.Since(reloadStart))
		if rerr != nil {
			m.SetErrorStage("reload")
			s.sink.Notify(MsgRefreshFailed)
			s.logger.Errorf("fallback reload: %v", rerr)
		}
	}
	return nil
}
