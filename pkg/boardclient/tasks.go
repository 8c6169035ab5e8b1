package boardclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Task struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	Assignees   []string   `json:"assignees"`
	Order       int        `json:"order"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type NewTask struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Assignees   []string   `json:"assignees"`
	Status      string     `json:"status,omitempty"`
	Order       *int       `json:"order,omitempty"`
}

// TaskPatch - nil fields are not sent. A non-nil Assignees pointing at an
// empty slice clears the list, ClearDueDate sends an explicit null.
type TaskPatch struct {
	Name         *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Assignees    *[]string
	Status       *string
	Order        *int
}

func (p TaskPatch) MarshalJSON() ([]byte, error) {
	body := make(map[string]any)
	if p.Name != nil {
		body["name"] = *p.Name
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	switch {
	case p.ClearDueDate:
		body["dueDate"] = nil
	case p.DueDate != nil:
		body["dueDate"] = *p.DueDate
	}
	if p.Assignees != nil {
		assignees := *p.Assignees
		if assignees == nil {
			assignees = []string{}
		}
		body["assignees"] = assignees
	}
	if p.Status != nil {
		body["status"] = *p.Status
	}
	if p.Order != nil {
		body["order"] = *p.Order
	}
	return json.Marshal(body)
}

type TaskQuery struct {
	Status string
	Search string
}

type AuditEntry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	OldValues  *string   `json:"oldValues"`
	NewValues  *string   `json:"newValues"`
	Changes    *string   `json:"changes"`
	ChangedAt  time.Time `json:"changedAt"`
}

func (c *Client) ListTasks(ctx context.Context, q TaskQuery) ([]Task, error) {
	path := "/tasks"
	values := url.Values{}
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if len(values) > 0 {
		path += "?" + values.Encode()
	}

	var tasks []Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	if id == "" {
		return nil, invalidInput(ErrTaskIDRequired)
	}
	var task Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, in NewTask) (*Task, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalidInput(ErrTaskNameRequired)
	}
	if in.Assignees == nil {
		in.Assignees = []string{}
	}
	var task Task
	if err := c.do(ctx, http.MethodPost, "/tasks", in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*Task, error) {
	if id == "" {
		return nil, invalidInput(ErrTaskIDRequired)
	}
	var task Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return invalidInput(ErrTaskIDRequired)
	}
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) TaskHistory(ctx context.Context, id string) ([]AuditEntry, error) {
	if id == "" {
		return nil, invalidInput(ErrTaskIDRequired)
	}
	var entries []AuditEntry
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id)+"/history", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
