package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TaskRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{
		coll: db.Collection(tasksCollection),
		now:  time.Now,
	}
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	now := r.now().UTC()
	assignees := task.Assignees
	if assignees == nil {
		assignees = []string{}
	}
	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		Name:        task.Name,
		Description: task.Description,
		Status:      task.Status,
		DueDate:     task.DueDate,
		Assignees:   assignees,
		Order:       task.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, entity.StoreError("create task", err)
	}
	t := doc.toEntity()
	return &t, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}

	var doc taskDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, entity.StoreError("get task", err)
	}
	t := doc.toEntity()
	return &t, nil
}

func (r *TaskRepository) Update(ctx context.Context, id string, updates map[string]any) (*entity.Task, error) {
	update, err := taskUpdateDocument(updates, r.now().UTC())
	if err != nil {
		return nil, err
	}
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc taskDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, entity.StoreError("update task", err)
	}
	t := doc.toEntity()
	return &t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return entity.StoreError("delete task", err)
	}
	return nil
}

func (r *TaskRepository) List(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.coll.Find(ctx, taskFilter(filter), opts)
	if err != nil {
		return nil, entity.StoreError("list tasks", err)
	}

	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, entity.StoreError("decode tasks", err)
	}

	tasks := make([]entity.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toEntity())
	}
	return tasks, nil
}

func (r *TaskRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, entity.StoreError("count tasks", err)
	}
	return int(n), nil
}

func (r *TaskRepository) ReassignStatus(ctx context.Context, from, to string) (int64, error) {
	update := bson.M{"$set": bson.M{"status": to, "updated_at": r.now().UTC()}}
	res, err := r.coll.UpdateMany(ctx, bson.M{"status": from}, update)
	if err != nil {
		return 0, entity.StoreError("reassign tasks", err)
	}
	return res.ModifiedCount, nil
}

func (r *TaskRepository) ReassignOrphans(ctx context.Context, valid []string, fallback string) (int64, error) {
	update := bson.M{"$set": bson.M{"status": fallback, "updated_at": r.now().UTC()}}
	res, err := r.coll.UpdateMany(ctx, bson.M{"status": bson.M{"$nin": valid}}, update)
	if err != nil {
		return 0, entity.StoreError("reassign orphaned tasks", err)
	}
	return res.ModifiedCount, nil
}
