package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskmirror/config"
	"taskmirror/domain"
)

func testClient(url string) *Client {
	return New(config.Config{RemoteURL: url, RemoteKey: "test-key"}, log.New())
}

func TestFetchTasksDecodesAndAuthenticates(t *testing.T) {
	var gotOrder, gotKey, gotAuth string
	e := echo.New()
	e.GET("/rest/v1/tasks", func(c echo.Context) error {
		gotOrder = c.QueryParam("order")
		gotKey = c.Request().Header.Get("apikey")
		gotAuth = c.Request().Header.Get("Authorization")
		return c.JSON(http.StatusOK, []domain.Task{
			{ID: "t2", Title: "newer", Status: domain.StatusDone},
			{ID: "t1", Title: "older", Status: domain.StatusTodo},
		})
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	tasks, err := testClient(srv.URL).FetchTasks(context.Background())
	if err != nil {
		t.Fatalf("fetch tasks: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "t2" || tasks[1].ID != "t1" {
		t.Fatalf("unexpected tasks, fetch order not preserved: %#v", tasks)
	}
	if gotOrder != "updated_at.desc" {
		t.Fatalf("unexpected order param: %s", gotOrder)
	}
	if gotKey != "test-key" || gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth headers: %q %q", gotKey, gotAuth)
	}
}

func TestClientWithoutSessionNeverTouchesTheNetwork(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := New(config.Config{RemoteURL: srv.URL}, log.New())
	_, err := c.FetchProjects(context.Background())
	var connErr ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if err := c.InsertTask(context.Background(), domain.TaskFields{Title: "x"}); !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("expected zero network attempts, got %d", hits.Load())
	}
}

func TestRemoteErrorCarriesBackendMessage(t *testing.T) {
	e := echo.New()
	e.GET("/rest/v1/projects", func(c echo.Context) error {
		return c.String(http.StatusInternalServerError, "relation does not exist")
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	_, err := testClient(srv.URL).FetchProjects(context.Background())
	var remoteErr RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remoteErr.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", remoteErr.Status)
	}
	if remoteErr.Message != "relation does not exist" {
		t.Fatalf("expected backend message to propagate, got %q", remoteErr.Message)
	}
}

func TestUpdateTaskSendsPartialPatch(t *testing.T) {
	var gotQuery string
	var gotBody map[string]any
	e := echo.New()
	e.PATCH("/rest/v1/tasks", func(c echo.Context) error {
		gotQuery = c.QueryString()
		data, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &gotBody); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	err := testClient(srv.URL).UpdateTask(context.Background(), "t1", map[string]any{"status": "done"})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if gotQuery != "id=eq.t1" {
		t.Fatalf("unexpected query: %s", gotQuery)
	}
	if len(gotBody) != 1 || gotBody["status"] != "done" {
		t.Fatalf("expected only the supplied field in the patch, got %#v", gotBody)
	}
}

func TestRemoveTaskIssuesDelete(t *testing.T) {
	var gotMethod, gotQuery string
	e := echo.New()
	e.DELETE("/rest/v1/tasks", func(c echo.Context) error {
		gotMethod = c.Request().Method
		gotQuery = c.QueryString()
		return c.NoContent(http.StatusNoContent)
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	if err := testClient(srv.URL).RemoveTask(context.Background(), "t9"); err != nil {
		t.Fatalf("remove task: %v", err)
	}
	if gotMethod != http.MethodDelete || gotQuery != "id=eq.t9" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotQuery)
	}
}
