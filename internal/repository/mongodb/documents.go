package mongodb

import (
	"regexp"
	"strings"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	sectionsCollection = "sections"
	tasksCollection    = "tasks"
	auditCollection    = "board_audit"
)

type sectionDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Order     int                `bson:"order"`
	IsDefault bool               `bson:"is_default"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d sectionDocument) toEntity() entity.Section {
	return entity.Section{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Order:     d.Order,
		IsDefault: d.IsDefault,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func newSectionDocument(s entity.Section, now time.Time) sectionDocument {
	return sectionDocument{
		ID:        primitive.NewObjectID(),
		Name:      s.Name,
		Order:     s.Order,
		IsDefault: s.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	DueDate     *time.Time         `bson:"due_date"`
	Assignees   []string           `bson:"assignees"`
	Order       int                `bson:"sort_order"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d taskDocument) toEntity() entity.Task {
	assignees := d.Assignees
	if assignees == nil {
		assignees = []string{}
	}
	return entity.Task{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Status:      d.Status,
		DueDate:     d.DueDate,
		Assignees:   assignees,
		Order:       d.Order,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type auditDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Action     string             `bson:"action"`
	EntityType string             `bson:"entity_type"`
	EntityID   string             `bson:"entity_id"`
	OldValues  *string            `bson:"old_values"`
	NewValues  *string            `bson:"new_values"`
	Changes    *string            `bson:"changes"`
	ChangedAt  time.Time          `bson:"changed_at"`
}

func (d auditDocument) toEntity() entity.BoardAudit {
	return entity.BoardAudit{
		ID:         d.ID.Hex(),
		Action:     entity.ActionType(d.Action),
		EntityType: d.EntityType,
		EntityID:   d.EntityID,
		OldValues:  d.OldValues,
		NewValues:  d.NewValues,
		Changes:    d.Changes,
		ChangedAt:  d.ChangedAt,
	}
}

// taskUpdatable lists the entity.Field* keys accepted by TaskRepository.Update.
// The keys double as document field names.
var taskUpdatable = map[string]struct{}{
	entity.FieldName:        {},
	entity.FieldDescription: {},
	entity.FieldStatus:      {},
	entity.FieldDueDate:     {},
	entity.FieldAssignees:   {},
	entity.FieldOrder:       {},
}

func taskUpdateDocument(updates map[string]any, now time.Time) (bson.M, error) {
	set := bson.M{"updated_at": now}
	for field, value := range updates {
		if _, ok := taskUpdatable[field]; !ok {
			return nil, entity.Validationf("unknown task field %q", field)
		}
		set[field] = value
	}
	return bson.M{"$set": set}, nil
}

// taskFilter translates a TaskFilter into a query document. Search is matched
// literally and case-insensitively against name, description and assignees.
func taskFilter(f entity.TaskFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"description": re},
			bson.M{"assignees": re},
		}
	}
	return filter
}

func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}
