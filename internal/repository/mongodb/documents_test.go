package mongodb

import (
	"errors"
	"testing"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTaskFilterEmpty(t *testing.T) {
	assert.Equal(t, bson.M{}, taskFilter(entity.TaskFilter{Search: "   "}))
}

func TestTaskFilterStatusAndSearch(t *testing.T) {
	f := taskFilter(entity.TaskFilter{Status: "In Progress", Search: "a.b"})

	assert.Equal(t, "In Progress", f["status"])
	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)

	re := or[2].(bson.M)["assignees"].(primitive.Regex)
	assert.Equal(t, `a\.b`, re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func TestTaskUpdateDocument(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	doc, err := taskUpdateDocument(map[string]any{
		entity.FieldStatus:    "Completed",
		entity.FieldAssignees: []string{"bob", "ann"},
	}, now)
	require.NoError(t, err)

	set := doc["$set"].(bson.M)
	assert.Equal(t, "Completed", set["status"])
	assert.Equal(t, []string{"bob", "ann"}, set["assignees"])
	assert.Equal(t, now, set["updated_at"])
}

func TestTaskUpdateDocumentRejectsUnknownField(t *testing.T) {
	_, err := taskUpdateDocument(map[string]any{"_id": "x"}, time.Now())
	assert.True(t, errors.Is(err, entity.ErrValidation))
}

func TestTaskDocumentToEntity(t *testing.T) {
	oid := primitive.NewObjectID()
	task := taskDocument{ID: oid, Name: "Write docs", Status: "Todo"}.toEntity()

	assert.Equal(t, oid.Hex(), task.ID)
	assert.NotNil(t, task.Assignees)
	assert.Empty(t, task.Assignees)
}

func TestObjectID(t *testing.T) {
	_, ok := objectID("not-an-id")
	assert.False(t, ok)

	oid := primitive.NewObjectID()
	got, ok := objectID(oid.Hex())
	assert.True(t, ok)
	assert.Equal(t, oid, got)
}
