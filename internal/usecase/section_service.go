package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/logger"
	"github.com/St1cky1/kanban-service/internal/repository"
)

// SectionService owns the section list and pushes section changes into tasks.
//
// Rename and delete touch two collections without a transaction: the section
// write happens first and the task cascade right after it. If the cascade
// fails, tasks keep pointing at a name that no longer exists until Reconcile
// runs. Concurrent deletes may leave duplicate orders.
type SectionService struct {
	sectionRepo repository.ISectionRepository
	taskRepo    repository.ITaskRepository
	publisher   AuditPublisher
}

func NewSectionService(
	sectionRepo repository.ISectionRepository,
	taskRepo repository.ITaskRepository,
	publisher AuditPublisher,
) *SectionService {
	return &SectionService{
		sectionRepo: sectionRepo,
		taskRepo:    taskRepo,
		publisher:   publisher,
	}
}

// EnsureDefaults materializes the default sections when the board has none.
func (s *SectionService) EnsureDefaults(ctx context.Context) error {
	n, err := s.sectionRepo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	defaults := make([]entity.Section, 0, len(entity.DefaultSectionNames))
	for i, name := range entity.DefaultSectionNames {
		defaults = append(defaults, entity.Section{Name: name, Order: i, IsDefault: true})
	}

	if err := s.sectionRepo.CreateMany(ctx, defaults); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// another request initialized the board first
			return nil
		}
		return err
	}
	logger.Info("default sections created", "sections", strings.Join(entity.DefaultSectionNames, ", "))
	return nil
}

func (s *SectionService) ListSections(ctx context.Context) ([]entity.Section, error) {
	if err := s.EnsureDefaults(ctx); err != nil {
		return nil, err
	}
	return s.sectionRepo.List(ctx)
}

func (s *SectionService) AddSection(ctx context.Context, name string) ([]entity.Section, error) {
	section := entity.Section{Name: strings.TrimSpace(name)}
	if section.Name == "" {
		return nil, entity.ErrSectionNameRequired
	}
	if err := validateStruct(section); err != nil {
		return nil, err
	}

	sections, err := s.ListSections(ctx)
	if err != nil {
		return nil, err
	}
	if _, taken := entity.SectionNames(sections)[section.Name]; taken {
		return nil, entity.ErrSectionNameTaken
	}

	section.Order = len(sections)
	created, err := s.sectionRepo.Create(ctx, &section)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, entity.ErrSectionNameTaken
		}
		return nil, err
	}

	publishAudit(s.publisher, &entity.AuditMessage{
		Action:     entity.ActionCreate,
		EntityType: entity.EntitySection,
		EntityID:   created.ID,
		NewValues:  sectionValues(created),
	})

	return s.sectionRepo.List(ctx)
}

// RenameSection renames the section and moves its tasks to the new name.
func (s *SectionService) RenameSection(ctx context.Context, id, name string) ([]entity.Section, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, entity.ErrSectionNameRequired
	}
	if err := validateStruct(entity.Section{Name: name}); err != nil {
		return nil, err
	}

	section, err := s.sectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if section == nil {
		return nil, entity.ErrSectionNotFound
	}
	oldName := section.Name
	if oldName == name {
		return s.sectionRepo.List(ctx)
	}

	sections, err := s.sectionRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, other := range sections {
		if other.ID != id && other.Name == name {
			return nil, entity.ErrSectionNameTaken
		}
	}

	renamed, err := s.sectionRepo.Rename(ctx, id, name)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, entity.ErrSectionNameTaken
		}
		return nil, err
	}
	if renamed == nil {
		return nil, entity.ErrSectionNotFound
	}

	moved, err := s.taskRepo.ReassignStatus(ctx, oldName, name)
	if err != nil {
		logger.Error("section renamed but task cascade failed; tasks still reference the old name",
			"section", id, "old", oldName, "new", name, "error", err)
		return nil, err
	}

	publishAudit(s.publisher, &entity.AuditMessage{
		Action:     entity.ActionRename,
		EntityType: entity.EntitySection,
		EntityID:   id,
		OldValues:  sectionValues(section),
		NewValues:  sectionValues(renamed),
		Changes: map[string]any{
			"name":       map[string]any{"old": oldName, "new": name},
			"tasksMoved": moved,
		},
	})

	return s.sectionRepo.List(ctx)
}

// DeleteSection removes a non-default section, closes the gap in the ordering
// and moves its tasks to the fallback section.
func (s *SectionService) DeleteSection(ctx context.Context, id string) ([]entity.Section, error) {
	section, err := s.sectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if section == nil {
		return nil, entity.ErrSectionNotFound
	}
	if section.IsDefault {
		return nil, entity.ErrDefaultSection
	}

	sections, err := s.sectionRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	fallback, ok := entity.FallbackSection(sections, id)
	if !ok {
		return nil, entity.ErrNoFallbackSection
	}

	if err := s.sectionRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	order := 0
	for _, other := range sections {
		if other.ID == id {
			continue
		}
		if other.Order != order {
			if err := s.sectionRepo.SetOrder(ctx, other.ID, order); err != nil {
				return nil, err
			}
		}
		order++
	}

	moved, err := s.taskRepo.ReassignStatus(ctx, section.Name, fallback.Name)
	if err != nil {
		logger.Error("section deleted but task cascade failed; tasks still reference the deleted name",
			"section", id, "name", section.Name, "fallback", fallback.Name, "error", err)
		return nil, err
	}

	publishAudit(s.publisher, &entity.AuditMessage{
		Action:     entity.ActionDelete,
		EntityType: entity.EntitySection,
		EntityID:   id,
		OldValues:  sectionValues(section),
		Changes: map[string]any{
			"fallback":   fallback.Name,
			"tasksMoved": moved,
		},
	})

	return s.sectionRepo.List(ctx)
}

// startingSection is where new tasks land when no status is given.
func startingSection(sections []entity.Section) (entity.Section, error) {
	if fallback, ok := entity.FallbackSection(sections, ""); ok {
		return fallback, nil
	}
	if len(sections) > 0 {
		return sections[0], nil
	}
	return entity.Section{}, entity.ErrNoFallbackSection
}

// Reconcile moves tasks whose status names no section to the starting section.
// It repairs what an interrupted cascade leaves behind.
func (s *SectionService) Reconcile(ctx context.Context) (int64, error) {
	sections, err := s.ListSections(ctx)
	if err != nil {
		return 0, err
	}
	fallback, err := startingSection(sections)
	if err != nil {
		return 0, err
	}

	valid := make([]string, 0, len(sections))
	for _, sec := range sections {
		valid = append(valid, sec.Name)
	}

	moved, err := s.taskRepo.ReassignOrphans(ctx, valid, fallback.Name)
	if err != nil {
		return 0, err
	}
	if moved > 0 {
		logger.Warn("reassigned tasks with unknown status", "count", moved, "fallback", fallback.Name)
	}
	return moved, nil
}
