package entity

import (
	"encoding/json"
	"time"
)

// Task field keys used in partial updates. Storage adapters map them onto
// columns or document keys.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldDueDate     = "due_date"
	FieldAssignees   = "assignees"
	FieldOrder       = "sort_order"
)

type Task struct {
	ID          string     `json:"id"`
	Name        string     `json:"name" validate:"required,max=255"`
	Description string     `json:"description" validate:"max=5000"`
	Status      string     `json:"status" validate:"required"`
	DueDate     *time.Time `json:"dueDate"`
	Assignees   []string   `json:"assignees" validate:"dive,max=100"`
	Order       int        `json:"order" validate:"min=0"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateTaskRequest keeps dueDate and assignees raw so the service can tell a
// missing value from a malformed one.
type CreateTaskRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	DueDate     json.RawMessage `json:"dueDate"`
	Assignees   json.RawMessage `json:"assignees"`
	Status      string          `json:"status"`
	Order       *int            `json:"order"`
}

// UpdateTaskRequest - nil fields are left untouched
type UpdateTaskRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	DueDate     json.RawMessage `json:"dueDate"`
	Assignees   json.RawMessage `json:"assignees"`
	Status      *string         `json:"status"`
	Order       *int            `json:"order"`
}

type TaskFilter struct {
	Status string
	Search string
}
