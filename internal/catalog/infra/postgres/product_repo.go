package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/storefront-go/storefront/internal/apperr"
	"github.com/storefront-go/storefront/internal/catalog/domain"
)

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = `p.id, p.name, p.description, p.price_amount, p.currency, p.stock,
	p.image_url, p.is_active, p.created_at, p.updated_at,
	COALESCE((SELECT AVG(r.rating) FROM reviews r WHERE r.product_id = p.id), 0),
	(SELECT COUNT(*) FROM reviews r WHERE r.product_id = p.id)`

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	var id uuid.UUID
	err := row.Scan(
		&id, &p.Name, &p.Description, &p.Price.Amount, &p.Price.Currency, &p.Stock,
		&p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&p.AverageRating, &p.ReviewCount,
	)
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = id.String()
	return p, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	prodID, err := uuid.Parse(id)
	if err != nil {
		return domain.Product{}, apperr.Validation("id", "invalid product id")
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products p WHERE p.id = $1`, prodID)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperr.Businessf(apperr.CodeNotFound, "product %s not found", id)
	}
	if err != nil {
		return domain.Product{}, err
	}

	if p.Categories, err = r.categoriesOf(ctx, prodID); err != nil {
		return domain.Product{}, err
	}
	if p.Images, err = r.imagesOf(ctx, prodID); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (r *ProductRepo) categoriesOf(ctx context.Context, productID uuid.UUID) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.description, c.is_active, c.created_at, c.updated_at
		 FROM categories c
		 JOIN product_categories pc ON pc.category_id = c.id
		 WHERE pc.product_id = $1
		 ORDER BY c.name`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		var id uuid.UUID
		if err := rows.Scan(&id, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.ID = id.String()
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ProductRepo) imagesOf(ctx context.Context, productID uuid.UUID) ([]domain.ProductImage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, url, position FROM product_images
		 WHERE product_id = $1 ORDER BY position`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ProductImage
	for rows.Next() {
		var img domain.ProductImage
		var id, pid uuid.UUID
		if err := rows.Scan(&id, &pid, &img.URL, &img.Position); err != nil {
			return nil, err
		}
		img.ID = id.String()
		img.ProductID = pid.String()
		out = append(out, img)
	}
	return out, rows.Err()
}

// List applies the filter as a dynamically built WHERE clause and
// returns one page plus the unpaginated total.
func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		p := arg("%" + q + "%")
		conds = append(conds, fmt.Sprintf("(p.name ILIKE %s OR p.description ILIKE %s)", p, p))
	}
	if f.CategoryID != "" {
		cid, err := uuid.Parse(f.CategoryID)
		if err != nil {
			return nil, 0, apperr.Validation("categoryId", "invalid category id")
		}
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM product_categories pc WHERE pc.product_id = p.id AND pc.category_id = %s)",
			arg(cid)))
	}
	if f.MinPrice > 0 {
		conds = append(conds, "p.price_amount >= "+arg(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		conds = append(conds, "p.price_amount <= "+arg(f.MaxPrice))
	}
	if f.InStockOnly {
		conds = append(conds, "p.stock > 0")
	}
	if f.ActiveOnly {
		conds = append(conds, "p.is_active")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products p"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := orderClause(f)
	query := "SELECT " + productColumns + " FROM products p" + where + order +
		fmt.Sprintf(" LIMIT %s OFFSET %s", arg(f.Limit), arg(f.Offset()))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func orderClause(f domain.ProductFilter) string {
	col := map[string]string{
		domain.SortByName:    "p.name",
		domain.SortByPrice:   "p.price_amount",
		domain.SortByCreated: "p.created_at",
		domain.SortByRating:  "11", // positional: average rating column
	}[f.SortBy]
	if col == "" {
		col = "p.created_at"
	}
	dir := " ASC"
	if f.SortDesc {
		dir = " DESC"
	}
	return " ORDER BY " + col + dir
}

func (r *ProductRepo) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products p
		 WHERE p.is_active AND p.stock > 0
		 ORDER BY 11 DESC, p.created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *ProductRepo) ListRelated(ctx context.Context, productID string, limit int) ([]domain.Product, error) {
	prodID, err := uuid.Parse(productID)
	if err != nil {
		return nil, apperr.Validation("productId", "invalid product id")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT `+productColumns+` FROM products p
		 JOIN product_categories pc ON pc.product_id = p.id
		 WHERE pc.category_id IN (
			SELECT category_id FROM product_categories WHERE product_id = $1
		 )
		 AND p.id <> $1 AND p.is_active AND p.stock > 0
		 LIMIT $2`, prodID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]domain.Product, error) {
	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Product{}, err
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRowContext(ctx,
		`INSERT INTO products (name, description, price_amount, currency, stock, image_url, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		p.Name, p.Description, p.Price.Amount, p.Price.Currency, p.Stock, p.ImageURL, p.IsActive,
	).Scan(&id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}

	if err := replaceCategories(ctx, tx, id, p.Categories); err != nil {
		return domain.Product{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Product{}, err
	}
	return r.Get(ctx, id.String())
}

func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	prodID, err := uuid.Parse(p.ID)
	if err != nil {
		return domain.Product{}, apperr.Validation("id", "invalid product id")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Product{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE products
		 SET name = $2, description = $3, price_amount = $4, currency = $5,
		     stock = $6, image_url = $7, is_active = $8, updated_at = now()
		 WHERE id = $1`,
		prodID, p.Name, p.Description, p.Price.Amount, p.Price.Currency,
		p.Stock, p.ImageURL, p.IsActive)
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Product{}, apperr.Businessf(apperr.CodeNotFound, "product %s not found", p.ID)
	}

	if err := replaceCategories(ctx, tx, prodID, p.Categories); err != nil {
		return domain.Product{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Product{}, err
	}
	return r.Get(ctx, p.ID)
}

func replaceCategories(ctx context.Context, tx *sql.Tx, productID uuid.UUID, cats []domain.Category) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM product_categories WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for _, c := range cats {
		catID, err := uuid.Parse(c.ID)
		if err != nil {
			return apperr.Validation("categoryIds", "invalid category id")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`, productID, catID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes associations and images before the product row.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	prodID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validation("id", "invalid product id")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM product_categories WHERE product_id = $1`, prodID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM product_images WHERE product_id = $1`, prodID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, prodID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Businessf(apperr.CodeNotFound, "product %s not found", id)
	}

	return tx.Commit()
}

// DecrementStock applies only when enough stock remains; the guard in
// the WHERE clause is what keeps concurrent checkouts from driving
// stock negative.
func (r *ProductRepo) DecrementStock(ctx context.Context, productID string, qty int32) (bool, error) {
	prodID, err := uuid.Parse(productID)
	if err != nil {
		return false, apperr.Validation("productId", "invalid product id")
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = now()
		 WHERE id = $1 AND stock >= $2`, prodID, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ProductRepo) IncrementStock(ctx context.Context, productID string, qty int32) error {
	prodID, err := uuid.Parse(productID)
	if err != nil {
		return apperr.Validation("productId", "invalid product id")
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now()
		 WHERE id = $1`, prodID, qty)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Businessf(apperr.CodeNotFound, "product %s not found", productID)
	}
	return nil
}
