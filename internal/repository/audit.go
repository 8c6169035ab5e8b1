package repository

import (
	"context"
	"strconv"

	"github.com/St1cky1/kanban-service/internal/entity"
)

type AuditRepository struct {
	db DB
}

func NewAuditRepository(db DB) *AuditRepository {
	return &AuditRepository{
		db: db,
	}
}

func (r *AuditRepository) Create(ctx context.Context, audit *entity.BoardAudit) error {
	query := `
	INSERT INTO board_audit (action, entity_type, entity_id, old_values, new_values, changes, changed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		string(audit.Action),
		audit.EntityType,
		audit.EntityID,
		audit.OldValues,
		audit.NewValues,
		audit.Changes,
		audit.ChangedAt,
	)
	if err != nil {
		return entity.StoreError("create audit", err)
	}
	return nil
}

func (r *AuditRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]entity.BoardAudit, error) {
	query := `
	SELECT id, action, entity_type, entity_id, old_values::text, new_values::text, changes::text, changed_at
	FROM board_audit
	WHERE entity_type = $1 AND entity_id = $2
	ORDER BY changed_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, entity.StoreError("list audit", err)
	}
	defer rows.Close()

	audits := []entity.BoardAudit{}
	for rows.Next() {
		var (
			a      entity.BoardAudit
			id     int64
			action string
		)
		if err := rows.Scan(&id, &action, &a.EntityType, &a.EntityID, &a.OldValues, &a.NewValues, &a.Changes, &a.ChangedAt); err != nil {
			return nil, entity.StoreError("scan audit", err)
		}
		a.ID = strconv.FormatInt(id, 10)
		a.Action = entity.ActionType(action)
		audits = append(audits, a)
	}
	if err := rows.Err(); err != nil {
		return nil, entity.StoreError("list audit", err)
	}
	return audits, nil
}
