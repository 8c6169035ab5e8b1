package repository

import (
	"context"

	"github.com/St1cky1/kanban-service/internal/entity"
)

// ISectionRepository - интерфейс для хранилища секций
type ISectionRepository interface {
	// List returns all sections sorted by order ascending.
	List(ctx context.Context) ([]entity.Section, error)
	// GetByID returns nil, nil when the id does not resolve.
	GetByID(ctx context.Context, id string) (*entity.Section, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, section *entity.Section) (*entity.Section, error)
	// CreateMany inserts the sections as one batch. A batch that collides with an
	// existing name fails with ErrDuplicate.
	CreateMany(ctx context.Context, sections []entity.Section) error
	Rename(ctx context.Context, id, name string) (*entity.Section, error)
	SetOrder(ctx context.Context, id string, order int) error
	Delete(ctx context.Context, id string) error
}

// ITaskRepository - интерфейс для хранилища задач
type ITaskRepository interface {
	Create(ctx context.Context, task *entity.Task) (*entity.Task, error)
	GetByID(ctx context.Context, id string) (*entity.Task, error)
	// Update applies the entity.Field* keyed updates and refreshes updated_at.
	Update(ctx context.Context, id string, updates map[string]any) (*entity.Task, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	// ReassignStatus moves every task with status from to status to.
	ReassignStatus(ctx context.Context, from, to string) (int64, error)
	// ReassignOrphans moves every task whose status is not in valid to fallback.
	ReassignOrphans(ctx context.Context, valid []string, fallback string) (int64, error)
}

// IAuditRepository - интерфейс для журнала изменений доски
type IAuditRepository interface {
	Create(ctx context.Context, audit *entity.BoardAudit) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]entity.BoardAudit, error)
}
