package usecase

import (
	"context"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/logger"
)

const publishTimeout = 5 * time.Second

// AuditPublisher интерфейс для публикации аудита (RabbitMQ)
type AuditPublisher interface {
	PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error
}

// publishAudit sends the message in the background. A nil publisher disables
// auditing.
func publishAudit(publisher AuditPublisher, msg *entity.AuditMessage) {
	if publisher == nil {
		return
	}
	msg.Timestamp = time.Now().UTC()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := publisher.PublishAuditMessage(ctx, msg); err != nil {
			logger.Error("failed to publish audit message",
				"action", msg.Action, "entity", msg.EntityType, "id", msg.EntityID, "error", err)
		}
	}()
}

func taskValues(t *entity.Task) map[string]any {
	return map[string]any{
		"name":        t.Name,
		"description": t.Description,
		"status":      t.Status,
		"dueDate":     t.DueDate,
		"assignees":   t.Assignees,
		"order":       t.Order,
	}
}

// taskChanges returns old/new pairs for every field that differs.
func taskChanges(oldTask, newTask *entity.Task) map[string]any {
	oldValues := taskValues(oldTask)
	newValues := taskValues(newTask)
	changes := make(map[string]any)
	for k, ov := range oldValues {
		nv := newValues[k]
		if !sameValue(ov, nv) {
			changes[k] = map[string]any{"old": ov, "new": nv}
		}
	}
	return changes
}

func sameValue(a, b any) bool {
	switch av := a.(type) {
	case *time.Time:
		bv := b.(*time.Time)
		if av == nil || bv == nil {
			return av == nil && bv == nil
		}
		return av.Equal(*bv)
	case []string:
		bv := b.([]string)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func sectionValues(s *entity.Section) map[string]any {
	return map[string]any{
		"name":      s.Name,
		"order":     s.Order,
		"isDefault": s.IsDefault,
	}
}
