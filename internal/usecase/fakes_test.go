package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/repository"
)

// clock hands out strictly increasing timestamps.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// memSectionRepo - in-memory ISectionRepository
type memSectionRepo struct {
	clock    *clock
	sections []entity.Section
	seq      int
	writes   int

	CreateManyCalls int
}

var _ repository.ISectionRepository = (*memSectionRepo)(nil)

func newMemSectionRepo(c *clock) *memSectionRepo {
	return &memSectionRepo{clock: c}
}

func (r *memSectionRepo) List(ctx context.Context) ([]entity.Section, error) {
	out := make([]entity.Section, len(r.sections))
	copy(out, r.sections)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *memSectionRepo) GetByID(ctx context.Context, id string) (*entity.Section, error) {
	for _, s := range r.sections {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memSectionRepo) Count(ctx context.Context) (int, error) {
	return len(r.sections), nil
}

func (r *memSectionRepo) insert(s entity.Section) entity.Section {
	r.seq++
	now := r.clock.Now()
	s.ID = fmt.Sprintf("s%d", r.seq)
	s.CreatedAt = now
	s.UpdatedAt = now
	r.sections = append(r.sections, s)
	r.writes++
	return s
}

func (r *memSectionRepo) hasName(name string) bool {
	for _, s := range r.sections {
		if s.Name == name {
			return true
		}
	}
	return false
}

func (r *memSectionRepo) Create(ctx context.Context, section *entity.Section) (*entity.Section, error) {
	if r.hasName(section.Name) {
		return nil, repository.ErrDuplicate
	}
	created := r.insert(*section)
	return &created, nil
}

func (r *memSectionRepo) CreateMany(ctx context.Context, sections []entity.Section) error {
	r.CreateManyCalls++
	for _, s := range sections {
		if r.hasName(s.Name) {
			return repository.ErrDuplicate
		}
	}
	for _, s := range sections {
		r.insert(s)
	}
	return nil
}

func (r *memSectionRepo) Rename(ctx context.Context, id, name string) (*entity.Section, error) {
	for i := range r.sections {
		if r.sections[i].ID == id {
			r.sections[i].Name = name
			r.sections[i].UpdatedAt = r.clock.Now()
			r.writes++
			renamed := r.sections[i]
			return &renamed, nil
		}
	}
	return nil, nil
}

func (r *memSectionRepo) SetOrder(ctx context.Context, id string, order int) error {
	for i := range r.sections {
		if r.sections[i].ID == id {
			r.sections[i].Order = order
			r.writes++
		}
	}
	return nil
}

func (r *memSectionRepo) Delete(ctx context.Context, id string) error {
	for i := range r.sections {
		if r.sections[i].ID == id {
			r.sections = append(r.sections[:i], r.sections[i+1:]...)
			r.writes++
			return nil
		}
	}
	return nil
}

// memTaskRepo - in-memory ITaskRepository
type memTaskRepo struct {
	clock *clock
	tasks map[string]entity.Task
	seq   int
}

var _ repository.ITaskRepository = (*memTaskRepo)(nil)

func newMemTaskRepo(c *clock) *memTaskRepo {
	return &memTaskRepo{clock: c, tasks: make(map[string]entity.Task)}
}

func (r *memTaskRepo) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	r.seq++
	now := r.clock.Now()
	t := *task
	t.ID = fmt.Sprintf("t%d", r.seq)
	t.CreatedAt = now
	t.UpdatedAt = now
	r.tasks[t.ID] = t
	return &t, nil
}

func (r *memTaskRepo) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *memTaskRepo) Update(ctx context.Context, id string, updates map[string]any) (*entity.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	for field, value := range updates {
		switch field {
		case entity.FieldName:
			t.Name = value.(string)
		case entity.FieldDescription:
			t.Description = value.(string)
		case entity.FieldStatus:
			t.Status = value.(string)
		case entity.FieldDueDate:
			t.DueDate = value.(*time.Time)
		case entity.FieldAssignees:
			t.Assignees = value.([]string)
		case entity.FieldOrder:
			t.Order = value.(int)
		default:
			return nil, entity.Validationf("unknown task field %q", field)
		}
	}
	t.UpdatedAt = r.clock.Now()
	r.tasks[id] = t
	return &t, nil
}

func (r *memTaskRepo) Delete(ctx context.Context, id string) error {
	delete(r.tasks, id)
	return nil
}

func (r *memTaskRepo) List(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error) {
	search := strings.ToLower(filter.Search)
	out := []entity.Task{}
	for _, t := range r.tasks {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if search != "" && !taskMatches(t, search) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func taskMatches(t entity.Task, search string) bool {
	if strings.Contains(strings.ToLower(t.Name), search) ||
		strings.Contains(strings.ToLower(t.Description), search) {
		return true
	}
	for _, a := range t.Assignees {
		if strings.Contains(strings.ToLower(a), search) {
			return true
		}
	}
	return false
}

func (r *memTaskRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	n := 0
	for _, t := range r.tasks {
		if t.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *memTaskRepo) ReassignStatus(ctx context.Context, from, to string) (int64, error) {
	var n int64
	for id, t := range r.tasks {
		if t.Status == from {
			t.Status = to
			t.UpdatedAt = r.clock.Now()
			r.tasks[id] = t
			n++
		}
	}
	return n, nil
}

func (r *memTaskRepo) ReassignOrphans(ctx context.Context, valid []string, fallback string) (int64, error) {
	ok := make(map[string]bool, len(valid))
	for _, v := range valid {
		ok[v] = true
	}
	var n int64
	for id, t := range r.tasks {
		if !ok[t.Status] {
			t.Status = fallback
			t.UpdatedAt = r.clock.Now()
			r.tasks[id] = t
			n++
		}
	}
	return n, nil
}

// MockTaskRepository - мок для ITaskRepository, поверх in-memory хранилища
type MockTaskRepository struct {
	*memTaskRepo
	ReassignStatusFunc func(ctx context.Context, from, to string) (int64, error)
}

func (m *MockTaskRepository) ReassignStatus(ctx context.Context, from, to string) (int64, error) {
	if m.ReassignStatusFunc != nil {
		return m.ReassignStatusFunc(ctx, from, to)
	}
	return m.memTaskRepo.ReassignStatus(ctx, from, to)
}

// MockAuditRepository - мок для IAuditRepository
type MockAuditRepository struct {
	ListByEntityFunc func(ctx context.Context, entityType, entityID string) ([]entity.BoardAudit, error)
}

var _ repository.IAuditRepository = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) Create(ctx context.Context, audit *entity.BoardAudit) error {
	return nil
}

func (m *MockAuditRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]entity.BoardAudit, error) {
	if m.ListByEntityFunc != nil {
		return m.ListByEntityFunc(ctx, entityType, entityID)
	}
	return nil, nil
}

// MockAuditPublisher - мок для AuditPublisher
type MockAuditPublisher struct {
	messages chan *entity.AuditMessage
}

func newMockAuditPublisher() *MockAuditPublisher {
	return &MockAuditPublisher{messages: make(chan *entity.AuditMessage, 16)}
}

func (m *MockAuditPublisher) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	m.messages <- message
	return nil
}

type board struct {
	sectionRepo *memSectionRepo
	taskRepo    *memTaskRepo
	sections    *SectionService
	tasks       *TaskService
}

func newBoard() *board {
	c := newClock()
	sectionRepo := newMemSectionRepo(c)
	taskRepo := newMemTaskRepo(c)
	sections := NewSectionService(sectionRepo, taskRepo, nil)
	return &board{
		sectionRepo: sectionRepo,
		taskRepo:    taskRepo,
		sections:    sections,
		tasks:       NewTaskService(taskRepo, nil, sections, nil),
	}
}
