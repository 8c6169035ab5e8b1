package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const taskColumns = `id, name, description, status, due_date, assignees, sort_order, created_at, updated_at`

// taskUpdatable maps entity.Field* keys onto columns.
var taskUpdatable = map[string]string{
	entity.FieldName:        "name",
	entity.FieldDescription: "description",
	entity.FieldStatus:      "status",
	entity.FieldDueDate:     "due_date",
	entity.FieldAssignees:   "assignees",
	entity.FieldOrder:       "sort_order",
}

type TaskRepository struct {
	db DB
}

func NewTaskRepository(db DB) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func scanTask(row pgx.Row) (entity.Task, error) {
	var t entity.Task
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.Status,
		&t.DueDate,
		&t.Assignees,
		&t.Order,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if t.Assignees == nil {
		t.Assignees = []string{}
	}
	return t, err
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	query := `
	INSERT INTO tasks (id, name, description, status, due_date, assignees, sort_order)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING ` + taskColumns

	assignees := task.Assignees
	if assignees == nil {
		assignees = []string{}
	}

	created, err := scanTask(r.db.QueryRow(ctx, query,
		uuid.NewString(),
		task.Name,
		task.Description,
		task.Status,
		task.DueDate,
		assignees,
		task.Order,
	))
	if err != nil {
		return nil, entity.StoreError("create task", err)
	}
	return &created, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	t, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, entity.StoreError("get task", err)
	}
	return &t, nil
}

// Update - частичное обновление задачи
func (r *TaskRepository) Update(ctx context.Context, id string, updates map[string]any) (*entity.Task, error) {
	// Динамически строим SET часть запроса
	setClause := []string{}
	args := []any{}

	for _, field := range sortedKeys(updates) {
		column, ok := taskUpdatable[field]
		if !ok {
			return nil, fmt.Errorf("%w: unknown task field %q", entity.ErrValidation, field)
		}
		args = append(args, updates[field])
		setClause = append(setClause, column+" = $"+strconv.Itoa(len(args)))
	}
	setClause = append(setClause, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := `
	UPDATE tasks
	SET ` + strings.Join(setClause, ", ") + `
	WHERE id = $` + strconv.Itoa(len(args)) + `
	RETURNING ` + taskColumns

	t, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, entity.StoreError("update task", err)
	}
	return &t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return entity.StoreError("delete task", err)
	}
	return nil
}

// List - список задач с фильтрацией
func (r *TaskRepository) List(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	where := []string{}
	args := []any{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, likePattern(search))
		p := "$" + strconv.Itoa(len(args))
		where = append(where, "(name ILIKE "+p+" OR description ILIKE "+p+
			" OR EXISTS (SELECT 1 FROM unnest(assignees) AS a WHERE a ILIKE "+p+"))")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, entity.StoreError("list tasks", err)
	}
	defer rows.Close()

	tasks := []entity.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, entity.StoreError("scan task", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, entity.StoreError("list tasks", err)
	}
	return tasks, nil
}

func (r *TaskRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE status = $1`, status).Scan(&n); err != nil {
		return 0, entity.StoreError("count tasks", err)
	}
	return n, nil
}

func (r *TaskRepository) ReassignStatus(ctx context.Context, from, to string) (int64, error) {
	query := `UPDATE tasks SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE status = $2`
	tag, err := r.db.Exec(ctx, query, to, from)
	if err != nil {
		return 0, entity.StoreError("reassign tasks", err)
	}
	return tag.RowsAffected(), nil
}

func (r *TaskRepository) ReassignOrphans(ctx context.Context, valid []string, fallback string) (int64, error) {
	query := `UPDATE tasks SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE NOT (status = ANY($2))`
	tag, err := r.db.Exec(ctx, query, fallback, valid)
	if err != nil {
		return 0, entity.StoreError("reassign orphaned tasks", err)
	}
	return tag.RowsAffected(), nil
}
