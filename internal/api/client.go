// Package api is a thin client for the TaskFlow backend REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Joseda-hg/taskflow/internal/model"
)

const DefaultBaseURL = "http://localhost:5000/api"

// Client holds HTTP state for backend calls. It keeps no domain state between calls.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
}

type TaskQuery struct {
	Page     int
	Limit    int
	ListID   int64
	Priority model.Priority
	Search   string
}

type TaskPage struct {
	Tasks []model.Task
	// Tags holds every distinct tag object seen on the returned tasks.
	Tags  []model.Tag
	Page  int
	Limit int
	Total int
	Pages int
}

type NewTask struct {
	Title       string
	Description string
	Priority    model.Priority
	DueDate     model.Date
	ListID      int64
}

type Created struct {
	ID        string
	CreatedAt time.Time
}

// TaskUpdate carries the fields the backend accepts on PUT /tasks/{id}. Nil fields are not sent.
// A non-nil zero DueDate clears the due date.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *model.Priority
	DueDate     *model.Date
	Completed   *bool
}

type ListUpdate struct {
	Name  *string
	Color *string
}

type Health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (c *Client) ListTasks(ctx context.Context, query TaskQuery) (TaskPage, error) {
	params := url.Values{}
	page := query.Page
	if page <= 0 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	if query.ListID > 0 {
		params.Set("list_id", strconv.FormatInt(query.ListID, 10))
	}
	if query.Priority != "" {
		params.Set("priority", string(query.Priority))
	}
	if query.Search != "" {
		params.Set("search", query.Search)
	}

	var payload wireTaskPage
	if err := c.do(ctx, http.MethodGet, "/tasks?"+params.Encode(), nil, &payload); err != nil {
		return TaskPage{}, fmt.Errorf("list tasks: %w", err)
	}
	result, err := payload.toDomain()
	if err != nil {
		return TaskPage{}, fmt.Errorf("list tasks: %w", err)
	}
	return result, nil
}

func (c *Client) CreateTask(ctx context.Context, input NewTask) (Created, error) {
	body := wireCreateTask{
		Title:       input.Title,
		Description: input.Description,
		Priority:    string(input.Priority),
		DueDate:     string(input.DueDate),
		ListID:      input.ListID,
	}

	var payload wireCreated
	if err := c.do(ctx, http.MethodPost, "/tasks", body, &payload); err != nil {
		return Created{}, fmt.Errorf("create task: %w", err)
	}
	created, err := payload.toDomain()
	if err != nil {
		return Created{}, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int64, update TaskUpdate) (model.Task, error) {
	body := map[string]any{}
	if update.Title != nil {
		body["title"] = *update.Title
	}
	if update.Description != nil {
		body["description"] = *update.Description
	}
	if update.Priority != nil {
		body["priority"] = string(*update.Priority)
	}
	if update.DueDate != nil {
		if update.DueDate.IsZero() {
			body["due_date"] = nil
		} else {
			body["due_date"] = string(*update.DueDate)
		}
	}
	if update.Completed != nil {
		body["completed"] = *update.Completed
	}

	var payload wireTask
	if err := c.do(ctx, http.MethodPut, "/tasks/"+strconv.FormatInt(id, 10), body, &payload); err != nil {
		return model.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	task, _, err := payload.toDomain()
	if err != nil {
		return model.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	return task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+strconv.FormatInt(id, 10), nil, nil); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

func (c *Client) BulkComplete(ctx context.Context, ids []int64) error {
	body := struct {
		IDs []int64 `json:"ids"`
	}{IDs: ids}
	if body.IDs == nil {
		body.IDs = []int64{}
	}
	if err := c.do(ctx, http.MethodPost, "/tasks/bulk-complete", body, nil); err != nil {
		return fmt.Errorf("bulk complete: %w", err)
	}
	return nil
}

func (c *Client) ListTemplates(ctx context.Context) ([]model.TaskTemplate, error) {
	var payload []wireTemplate
	if err := c.do(ctx, http.MethodGet, "/tasks/templates", nil, &payload); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	templates := make([]model.TaskTemplate, 0, len(payload))
	for _, item := range payload {
		template, err := item.toDomain()
		if err != nil {
			return nil, fmt.Errorf("list templates: %w", err)
		}
		templates = append(templates, template)
	}
	return templates, nil
}

func (c *Client) ListLists(ctx context.Context) ([]model.TaskList, error) {
	var payload []wireList
	if err := c.do(ctx, http.MethodGet, "/lists", nil, &payload); err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	lists := make([]model.TaskList, 0, len(payload))
	for _, item := range payload {
		list, err := item.toDomain()
		if err != nil {
			return nil, fmt.Errorf("list lists: %w", err)
		}
		lists = append(lists, list)
	}
	return lists, nil
}

func (c *Client) CreateList(ctx context.Context, name, color string) (model.TaskList, error) {
	body := struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}{Name: name, Color: color}

	var payload wireList
	if err := c.do(ctx, http.MethodPost, "/lists", body, &payload); err != nil {
		return model.TaskList{}, fmt.Errorf("create list: %w", err)
	}
	list, err := payload.toDomain()
	if err != nil {
		return model.TaskList{}, fmt.Errorf("create list: %w", err)
	}
	return list, nil
}

func (c *Client) UpdateList(ctx context.Context, id int64, update ListUpdate) (model.TaskList, error) {
	body := struct {
		Name  *string `json:"name,omitempty"`
		Color *string `json:"color,omitempty"`
	}{Name: update.Name, Color: update.Color}

	var payload wireList
	if err := c.do(ctx, http.MethodPut, "/lists/"+strconv.FormatInt(id, 10), body, &payload); err != nil {
		return model.TaskList{}, fmt.Errorf("update list %d: %w", id, err)
	}
	list, err := payload.toDomain()
	if err != nil {
		return model.TaskList{}, fmt.Errorf("update list %d: %w", id, err)
	}
	return list, nil
}

func (c *Client) DeleteList(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, "/lists/"+strconv.FormatInt(id, 10), nil, nil); err != nil {
		return fmt.Errorf("delete list %d: %w", id, err)
	}
	return nil
}

func (c *Client) GetStats(ctx context.Context) (model.UserStats, error) {
	var payload wireStats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &payload); err != nil {
		return model.UserStats{}, fmt.Errorf("get stats: %w", err)
	}
	stats, err := payload.toDomain()
	if err != nil {
		return model.UserStats{}, fmt.Errorf("get stats: %w", err)
	}
	return stats, nil
}

func (c *Client) ResetStreak(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/stats/reset-streak", nil, nil); err != nil {
		return fmt.Errorf("reset streak: %w", err)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var payload Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &payload); err != nil {
		return Health{}, fmt.Errorf("health: %w", err)
	}
	if payload.Status == "" {
		return Health{}, fmt.Errorf("health: %w: missing status", ErrMalformedResponse)
	}
	return payload, nil
}

// do sends one request and decodes a 2xx JSON body into out (skipped when out is nil).
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	c.Logger.Debug("api call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return newError(resp.StatusCode, data)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrMalformedResponse)
		}
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
