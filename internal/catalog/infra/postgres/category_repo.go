package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/storefront-go/storefront/internal/apperr"
	"github.com/storefront-go/storefront/internal/catalog/domain"
)

type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	catID, err := uuid.Parse(id)
	if err != nil {
		return domain.Category{}, apperr.Validation("id", "invalid category id")
	}

	var c domain.Category
	var cid uuid.UUID
	err = r.db.QueryRowContext(ctx,
		`SELECT id, name, description, is_active, created_at, updated_at
		 FROM categories WHERE id = $1`, catID,
	).Scan(&cid, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, apperr.Businessf(apperr.CodeNotFound, "category %s not found", id)
	}
	if err != nil {
		return domain.Category{}, err
	}
	c.ID = cid.String()
	return c, nil
}

func (r *CategoryRepo) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	query := `SELECT id, name, description, is_active, created_at, updated_at
		  FROM categories`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		var cid uuid.UUID
		if err := rows.Scan(&cid, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.ID = cid.String()
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) Create(ctx context.Context, c domain.Category) (domain.Category, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, description, is_active)
		 VALUES ($1, $2, $3) RETURNING id`,
		c.Name, c.Description, c.IsActive,
	).Scan(&id)
	if err != nil {
		return domain.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return r.Get(ctx, id.String())
}

func (r *CategoryRepo) Update(ctx context.Context, c domain.Category) (domain.Category, error) {
	catID, err := uuid.Parse(c.ID)
	if err != nil {
		return domain.Category{}, apperr.Validation("id", "invalid category id")
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE categories
		 SET name = $2, description = $3, is_active = $4, updated_at = now()
		 WHERE id = $1`,
		catID, c.Name, c.Description, c.IsActive)
	if err != nil {
		return domain.Category{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Category{}, apperr.Businessf(apperr.CodeNotFound, "category %s not found", c.ID)
	}
	return r.Get(ctx, c.ID)
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	catID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validation("id", "invalid category id")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM product_categories WHERE category_id = $1`, catID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, catID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Businessf(apperr.CodeNotFound, "category %s not found", id)
	}

	return tx.Commit()
}
