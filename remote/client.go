package remote

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"taskmirror/config"
	"taskmirror/domain"
)

// Collection names understood by the remote store.
const (
	CollectionProjects = "projects"
	CollectionTasks    = "tasks"
)

// Client talks to the remote table API. Every call checks that a session is
// configured before touching the network. Mutations are not retried; a
// failure is terminal for that one call.
type Client struct {
	baseURL string
	key     string
	http    *http.Client
	logger  *log.Logger
}

// New creates a Client from the given configuration.
func New(cfg config.Config, logger *log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.RemoteURL, "/"),
		key:     cfg.RemoteKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (c *Client) session() error {
	if c.baseURL == "" || c.key == "" {
		return ConnectionError{Reason: "remote URL or key not configured"}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, collection, query string, body any) ([]byte, error) {
	if err := c.session(); err != nil {
		return nil, err
	}
	var rd io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(data)
	}
	target := c.baseURL + "/rest/v1/" + collection
	if query != "" {
		target += "?" + query
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, RemoteError{Message: err.Error()}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, RemoteError{Status: resp.StatusCode, Message: err.Error()}
	}
	c.logger.WithFields(log.Fields{
		"method":     method,
		"collection": collection,
		"status":     resp.StatusCode,
		"total_ms":   float64(time.Since(start)) / float64(time.Millisecond),
	}).Debug("remote.request")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = resp.Status
		}
		return nil, RemoteError{Status: resp.StatusCode, Message: msg}
	}
	return data, nil
}

// FetchProjects returns every project, newest update first. The order is
// produced by the remote store and preserved as-is.
func (c *Client) FetchProjects(ctx context.Context) ([]domain.Project, error) {
	data, err := c.do(ctx, http.MethodGet, CollectionProjects, "order=updated_at.desc", nil)
	if err != nil {
		return nil, err
	}
	projects := []domain.Project{}
	if err := sonic.Unmarshal(data, &projects); err != nil {
		return nil, RemoteError{Message: "decode projects: " + err.Error()}
	}
	return projects, nil
}

// FetchTasks returns every task, newest update first.
func (c *Client) FetchTasks(ctx context.Context) ([]domain.Task, error) {
	data, err := c.do(ctx, http.MethodGet, CollectionTasks, "order=updated_at.desc", nil)
	if err != nil {
		return nil, err
	}
	tasks := []domain.Task{}
	if err := sonic.Unmarshal(data, &tasks); err != nil {
		return nil, RemoteError{Message: "decode tasks: " + err.Error()}
	}
	return tasks, nil
}

// InsertProject creates a project. Identity and timestamps are assigned by
// the remote store.
func (c *Client) InsertProject(ctx context.Context, fields domain.ProjectFields) error {
	_, err := c.do(ctx, http.MethodPost, CollectionProjects, "", fields)
	return err
}

// InsertTask creates a task.
func (c *Client) InsertTask(ctx context.Context, fields domain.TaskFields) error {
	_, err := c.do(ctx, http.MethodPost, CollectionTasks, "", fields)
	return err
}

// UpdateProject applies a partial update: only the supplied fields change.
// The id is not checked locally; the remote store is authoritative.
func (c *Client) UpdateProject(ctx context.Context, id string, patch map[string]any) error {
	_, err := c.do(ctx, http.MethodPatch, CollectionProjects, idFilter(id), patch)
	return err
}

// UpdateTask applies a partial update to a task.
func (c *Client) UpdateTask(ctx context.Context, id string, patch map[string]any) error {
	_, err := c.do(ctx, http.MethodPatch, CollectionTasks, idFilter(id), patch)
	return err
}

// RemoveTask deletes a task.
func (c *Client) RemoveTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, CollectionTasks, idFilter(id), nil)
	return err
}

func idFilter(id string) string {
	return "id=eq." + url.QueryEscape(id)
}
