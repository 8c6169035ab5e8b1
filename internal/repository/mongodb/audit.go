package mongodb

import (
	"context"

	"github.com/St1cky1/kanban-service/internal/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

func (r *AuditRepository) Create(ctx context.Context, audit *entity.BoardAudit) error {
	doc := auditDocument{
		ID:         primitive.NewObjectID(),
		Action:     string(audit.Action),
		EntityType: audit.EntityType,
		EntityID:   audit.EntityID,
		OldValues:  audit.OldValues,
		NewValues:  audit.NewValues,
		Changes:    audit.Changes,
		ChangedAt:  audit.ChangedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return entity.StoreError("create audit", err)
	}
	return nil
}

func (r *AuditRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]entity.BoardAudit, error) {
	filter := bson.M{"entity_type": entityType, "entity_id": entityID}
	opts := options.Find().SetSort(bson.D{{Key: "changed_at", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, entity.StoreError("list audit", err)
	}

	var docs []auditDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, entity.StoreError("decode audit", err)
	}

	audits := make([]entity.BoardAudit, 0, len(docs))
	for _, d := range docs {
		audits = append(audits, d.toEntity())
	}
	return audits, nil
}
