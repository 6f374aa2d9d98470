package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskmirror/domain"
	"taskmirror/mirror"
	"taskmirror/remote"
)

// Session is the surface the host application drives. Implemented by
// session.Session; faked in tests.
type Session interface {
	Projects() []domain.Project
	Tasks() []domain.Task
	Board() map[domain.TaskStatus][]domain.Task
	SelectProject(id string)
	SelectedProject() string
	Observe(fn func())
	CreateProject(ctx context.Context, fields domain.ProjectFields) error
	UpdateProject(ctx context.Context, id string, patch map[string]any) error
	CreateTask(ctx context.Context, fields domain.TaskFields) error
	UpdateTask(ctx context.Context, id string, patch map[string]any) error
	DeleteTask(ctx context.Context, id string) error
	Refresh(ctx context.Context) error
	BeginDrag(taskID string)
	Drop(ctx context.Context, target string) error
}

// Register wires up the host-facing routes on the provided Echo instance.
func Register(e *echo.Echo, sess Session, logger *log.Logger) {
	broker := newChangeBroker()
	sess.Observe(broker.notify)

	e.GET("/api/projects", getProjects(sess))
	e.GET("/api/tasks", getTasks(sess))
	e.GET("/api/board", getBoard(sess))
	e.GET("/api/select", getSelect(sess))
	e.POST("/api/select", postSelect(sess))
	e.POST("/api/projects", postProject(sess))
	e.PATCH("/api/projects/:id", patchProject(sess))
	e.POST("/api/tasks", postTask(sess))
	e.PATCH("/api/tasks/:id", patchTask(sess))
	e.DELETE("/api/tasks/:id", deleteTask(sess))
	e.POST("/api/refresh", postRefresh(sess))
	e.POST("/api/drag/start", postDragStart(sess))
	e.POST("/api/drag/drop", postDragDrop(sess))
	e.GET("/stream", streamBoard(sess, broker, logger))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func getProjects(sess Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, sess.Projects())
	}
}

func getTasks(sess Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, sess.Tasks())
	}
}

func getBoard(sess Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		if project := c.QueryParam("project"); project != "" {
			return c.JSON(http.StatusOK, domain.ProjectBoard(sess.Tasks(), project))
		}
		return c.JSON(http.StatusOK, sess.Board())
	}
}

func getSelect(sess Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"project_id": sess.SelectedProject()})
	}
}

func postSelect(sess Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			ProjectID string `json:"project_id"`
		}
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		sess.SelectProject(req.ProjectID)
		return c.NoContent(http.StatusNoContent)
	}
}

func postProject(sess Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		var fields domain.ProjectFields
		if err := decodeBody(c, &fields); err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		if fields.Name == "" {
			return c.String(http.StatusBadRequest, "name is required")
		}
		if err := sess.CreateProject(c.Request().Context(), fields); err != nil {
			return remoteStatus(c, err)
		}
		return c.NoContent(http.StatusCreated)
	}
}

func patchProject(sess Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		var patch map[string]any
		if err := decodeBody(c, &patch); err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		if len(patch) == 0 {
			return c.String(http.StatusBadRequest, "empty patch")
		}
		if err := sess.UpdateProject(c.Request().Context(), c.Param("id"), patch); err != nil {
			return remoteStatus(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func postTask(sess Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		var fields domain.TaskFields
		if err := decodeBody(c, &fields); err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		if fields.Title == "" {
			return c.String(http.StatusBadRequest, "title is required")
		}
		if err := sess.CreateTask(c.Request().Context(), fields); err != nil {
			return remoteStatus(c, err)
		}
		return c.NoContent(http.StatusCreated)
	}
}

func patchTask(sess Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		var patch map[string]any
		if err := decodeBody(c, &patch); err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		if len(patch) == 0 {
			return c.String(http.StatusBadRequest, "empty patch")
		}
		if err := sess.UpdateTask(c.Request().Context(), c.Param("id"), patch); err != nil {
			return remoteStatus(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func deleteTask(sess Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := sess.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
			return remoteStatus(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func postRefresh(sess Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := sess.Refresh(c.Request().Context()); err != nil {
			return remoteStatus(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func postDragStart(sess Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			TaskID string `json:"task_id"`
		}
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		if req.TaskID == "" {
			return c.String(http.StatusBadRequest, "task_id is required")
		}
		sess.BeginDrag(req.TaskID)
		return c.NoContent(http.StatusNoContent)
	}
}

func postDragDrop(sess Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			Target string `json:"target"`
		}
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		if err := sess.Drop(c.Request().Context(), req.Target); err != nil {
			return remoteStatus(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func decodeBody(c echo.Context, dst any) error {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(data, dst)
}

// remoteStatus maps sync-layer errors onto host-facing status codes.
func remoteStatus(c echo.Context, err error) error {
	var connErr remote.ConnectionError
	if errors.As(err, &connErr) {
		return c.String(http.StatusServiceUnavailable, err.Error())
	}
	var reloadErr mirror.ReloadError
	if errors.As(err, &reloadErr) {
		return c.String(http.StatusBadGateway, err.Error())
	}
	var remoteErr remote.RemoteError
	if errors.As(err, &remoteErr) {
		return c.String(http.StatusBadGateway, err.Error())
	}
	c.Logger().Error(err)
	return c.String(http.StatusInternalServerError, err.Error())
}
