package repository

import (
	"context"
	"errors"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const sectionColumns = `id, name, sort_order, is_default, created_at, updated_at`

type SectionRepository struct {
	db DB
}

func NewSectionRepository(db DB) *SectionRepository {
	return &SectionRepository{
		db: db,
	}
}

func scanSection(row pgx.Row) (entity.Section, error) {
	var s entity.Section
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Order,
		&s.IsDefault,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

func (r *SectionRepository) List(ctx context.Context) ([]entity.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections ORDER BY sort_order ASC, created_at ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, entity.StoreError("list sections", err)
	}
	defer rows.Close()

	sections := []entity.Section{}
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, entity.StoreError("scan section", err)
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, entity.StoreError("list sections", err)
	}
	return sections, nil
}

func (r *SectionRepository) GetByID(ctx context.Context, id string) (*entity.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections WHERE id = $1`

	s, err := scanSection(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, entity.StoreError("get section", err)
	}
	return &s, nil
}

func (r *SectionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sections`).Scan(&n); err != nil {
		return 0, entity.StoreError("count sections", err)
	}
	return n, nil
}

func (r *SectionRepository) Create(ctx context.Context, section *entity.Section) (*entity.Section, error) {
	query := `
	INSERT INTO sections (id, name, sort_order, is_default)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + sectionColumns

	created, err := scanSection(r.db.QueryRow(ctx, query,
		uuid.NewString(),
		section.Name,
		section.Order,
		section.IsDefault,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, entity.StoreError("create section", err)
	}
	return &created, nil
}

// CreateMany inserts all sections in one transaction.
func (r *SectionRepository) CreateMany(ctx context.Context, sections []entity.Section) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return entity.StoreError("begin", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO sections (id, name, sort_order, is_default) VALUES ($1, $2, $3, $4)`
	for _, s := range sections {
		if _, err := tx.Exec(ctx, query, uuid.NewString(), s.Name, s.Order, s.IsDefault); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return entity.StoreError("create sections", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return entity.StoreError("commit", err)
	}
	return nil
}

func (r *SectionRepository) Rename(ctx context.Context, id, name string) (*entity.Section, error) {
	query := `
	UPDATE sections SET name = $1, updated_at = CURRENT_TIMESTAMP
	WHERE id = $2
	RETURNING ` + sectionColumns

	s, err := scanSection(r.db.QueryRow(ctx, query, name, id))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, nil
		case isUniqueViolation(err):
			return nil, ErrDuplicate
		}
		return nil, entity.StoreError("rename section", err)
	}
	return &s, nil
}

func (r *SectionRepository) SetOrder(ctx context.Context, id string, order int) error {
	query := `UPDATE sections SET sort_order = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	if _, err := r.db.Exec(ctx, query, order, id); err != nil {
		return entity.StoreError("reorder section", err)
	}
	return nil
}

func (r *SectionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sections WHERE id = $1`, id); err != nil {
		return entity.StoreError("delete section", err)
	}
	return nil
}
