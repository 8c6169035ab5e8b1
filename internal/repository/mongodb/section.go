package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SectionRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewSectionRepository(db *mongo.Database) *SectionRepository {
	return &SectionRepository{
		coll: db.Collection(sectionsCollection),
		now:  time.Now,
	}
}

func (r *SectionRepository) List(ctx context.Context) ([]entity.Section, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "created_at", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, entity.StoreError("list sections", err)
	}

	var docs []sectionDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, entity.StoreError("decode sections", err)
	}

	sections := make([]entity.Section, 0, len(docs))
	for _, d := range docs {
		sections = append(sections, d.toEntity())
	}
	return sections, nil
}

func (r *SectionRepository) GetByID(ctx context.Context, id string) (*entity.Section, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}

	var doc sectionDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, entity.StoreError("get section", err)
	}
	s := doc.toEntity()
	return &s, nil
}

func (r *SectionRepository) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, entity.StoreError("count sections", err)
	}
	return int(n), nil
}

func (r *SectionRepository) Create(ctx context.Context, section *entity.Section) (*entity.Section, error) {
	doc := newSectionDocument(*section, r.now().UTC())
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, entity.StoreError("create section", err)
	}
	s := doc.toEntity()
	return &s, nil
}

// CreateMany inserts the batch in order. Without a transaction a duplicate in
// the middle leaves the earlier documents in place.
func (r *SectionRepository) CreateMany(ctx context.Context, sections []entity.Section) error {
	now := r.now().UTC()
	docs := make([]any, 0, len(sections))
	for _, s := range sections {
		docs = append(docs, newSectionDocument(s, now))
	}

	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return entity.StoreError("create sections", err)
	}
	return nil
}

func (r *SectionRepository) Rename(ctx context.Context, id, name string) (*entity.Section, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}

	update := bson.M{"$set": bson.M{"name": name, "updated_at": r.now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc sectionDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, nil
		case mongo.IsDuplicateKeyError(err):
			return nil, repository.ErrDuplicate
		}
		return nil, entity.StoreError("rename section", err)
	}
	s := doc.toEntity()
	return &s, nil
}

func (r *SectionRepository) SetOrder(ctx context.Context, id string, order int) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}
	update := bson.M{"$set": bson.M{"order": order, "updated_at": r.now().UTC()}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update); err != nil {
		return entity.StoreError("reorder section", err)
	}
	return nil
}

func (r *SectionRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return entity.StoreError("delete section", err)
	}
	return nil
}
