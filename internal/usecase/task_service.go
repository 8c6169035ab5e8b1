package usecase

import (
	"context"
	"strings"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/repository"
)

// SectionLister is the part of SectionService the task side depends on.
type SectionLister interface {
	ListSections(ctx context.Context) ([]entity.Section, error)
}

type TaskService struct {
	taskRepo  repository.ITaskRepository
	auditRepo repository.IAuditRepository
	sections  SectionLister
	publisher AuditPublisher
}

func NewTaskService(
	taskRepo repository.ITaskRepository,
	auditRepo repository.IAuditRepository,
	sections SectionLister,
	publisher AuditPublisher,
) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		auditRepo: auditRepo,
		sections:  sections,
		publisher: publisher,
	}
}

// resolveStatus checks status against the live sections. An empty status
// resolves to the starting section.
func (s *TaskService) resolveStatus(ctx context.Context, status string) (string, error) {
	sections, err := s.sections.ListSections(ctx)
	if err != nil {
		return "", err
	}
	if status == "" {
		start, err := startingSection(sections)
		if err != nil {
			return "", err
		}
		return start.Name, nil
	}
	if _, ok := entity.SectionNames(sections)[status]; !ok {
		return "", entity.ErrUnknownStatus
	}
	return status, nil
}

func (s *TaskService) CreateTask(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, entity.ErrTaskNameRequired
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	// anything but an array of strings becomes an empty list on create
	assignees, _, err := parseAssignees(req.Assignees)
	if err != nil || assignees == nil {
		assignees = []string{}
	}

	status, err := s.resolveStatus(ctx, strings.TrimSpace(req.Status))
	if err != nil {
		return nil, err
	}

	task := &entity.Task{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Status:      status,
		DueDate:     dueDate,
		Assignees:   assignees,
	}
	if req.Order != nil {
		task.Order = *req.Order
	} else {
		n, err := s.taskRepo.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		task.Order = n
	}
	if err := validateStruct(task); err != nil {
		return nil, err
	}

	created, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	publishAudit(s.publisher, &entity.AuditMessage{
		Action:     entity.ActionCreate,
		EntityType: entity.EntityTask,
		EntityID:   created.ID,
		NewValues:  taskValues(created),
	})

	return created, nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*entity.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}
	return task, nil
}

// UpdateTask merges the supplied fields into the task. updatedAt is refreshed
// even when nothing else changes.
func (s *TaskService) UpdateTask(ctx context.Context, id string, req *entity.UpdateTaskRequest) (*entity.Task, error) {
	// 1. Получаем текущую задачу
	oldTask, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if oldTask == nil {
		return nil, entity.ErrTaskNotFound
	}

	// 2. Подготавливаем обновления
	merged := *oldTask
	updates := make(map[string]any)

	if req.Name != nil {
		merged.Name = strings.TrimSpace(*req.Name)
		if merged.Name == "" {
			return nil, entity.ErrTaskNameRequired
		}
		updates[entity.FieldName] = merged.Name
	}

	if req.Description != nil {
		merged.Description = strings.TrimSpace(*req.Description)
		updates[entity.FieldDescription] = merged.Description
	}

	if len(req.DueDate) > 0 {
		dueDate, err := parseDueDate(req.DueDate)
		if err != nil {
			return nil, err
		}
		merged.DueDate = dueDate
		updates[entity.FieldDueDate] = dueDate
	}

	if assignees, present, err := parseAssignees(req.Assignees); err != nil {
		return nil, err
	} else if present {
		merged.Assignees = assignees
		updates[entity.FieldAssignees] = assignees
	}

	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if status == "" {
			return nil, entity.ErrUnknownStatus
		}
		if merged.Status, err = s.resolveStatus(ctx, status); err != nil {
			return nil, err
		}
		updates[entity.FieldStatus] = merged.Status
	}

	if req.Order != nil {
		merged.Order = *req.Order
		updates[entity.FieldOrder] = merged.Order
	}

	if err := validateStruct(&merged); err != nil {
		return nil, err
	}

	// 3. Обновляем задачу
	updatedTask, err := s.taskRepo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if updatedTask == nil {
		return nil, entity.ErrTaskNotFound
	}

	publishAudit(s.publisher, &entity.AuditMessage{
		Action:     entity.ActionUpdate,
		EntityType: entity.EntityTask,
		EntityID:   id,
		OldValues:  taskValues(oldTask),
		NewValues:  taskValues(updatedTask),
		Changes:    taskChanges(oldTask, updatedTask),
	})

	return updatedTask, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return entity.ErrTaskNotFound
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return err
	}

	publishAudit(s.publisher, &entity.AuditMessage{
		Action:     entity.ActionDelete,
		EntityType: entity.EntityTask,
		EntityID:   id,
		OldValues:  taskValues(task),
	})

	return nil
}

func (s *TaskService) ListTasks(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error) {
	filter.Status = strings.TrimSpace(filter.Status)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.taskRepo.List(ctx, filter)
}

// TaskHistory returns the audit trail recorded for a live task, newest first.
func (s *TaskService) TaskHistory(ctx context.Context, id string) ([]entity.BoardAudit, error) {
	if _, err := s.GetTask(ctx, id); err != nil {
		return nil, err
	}
	if s.auditRepo == nil {
		return []entity.BoardAudit{}, nil
	}
	return s.auditRepo.ListByEntity(ctx, entity.EntityTask, id)
}
