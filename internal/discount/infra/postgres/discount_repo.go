package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/storefront-go/storefront/internal/apperr"
	"github.com/storefront-go/storefront/internal/discount/domain"
)

type DiscountRepo struct {
	db *sql.DB
}

func NewDiscountRepo(db *sql.DB) *DiscountRepo {
	return &DiscountRepo{db: db}
}

const codeColumns = `code, type, value, min_order_amount, max_discount,
	expires_at, usage_limit, used_count, is_active, created_at, updated_at`

func scanCode(row interface{ Scan(...any) error }) (domain.Code, error) {
	var c domain.Code
	var expires sql.NullTime
	err := row.Scan(
		&c.Code, &c.Type, &c.Value, &c.MinOrderAmount, &c.MaxDiscount,
		&expires, &c.UsageLimit, &c.UsedCount, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Code{}, err
	}
	if expires.Valid {
		t := expires.Time
		c.ExpiresAt = &t
	}
	return c, nil
}

func (r *DiscountRepo) GetByCode(ctx context.Context, code string) (domain.Code, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+codeColumns+` FROM discount_codes WHERE UPPER(code) = UPPER($1)`, code)

	c, err := scanCode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Code{}, apperr.Businessf(apperr.CodeNotFound, "discount code %s not found", code)
	}
	if err != nil {
		return domain.Code{}, err
	}
	return c, nil
}

// Redeem is the check-and-increment in one statement: the WHERE clause
// keeps used_count from ever passing usage_limit no matter how many
// checkouts race.
func (r *DiscountRepo) Redeem(ctx context.Context, code string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE discount_codes
		 SET used_count = used_count + 1, updated_at = now()
		 WHERE UPPER(code) = UPPER($1)
		   AND is_active
		   AND (usage_limit = 0 OR used_count < usage_limit)`, code)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *DiscountRepo) Release(ctx context.Context, code string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE discount_codes
		 SET used_count = GREATEST(used_count - 1, 0), updated_at = now()
		 WHERE UPPER(code) = UPPER($1)`, code)
	return err
}

func (r *DiscountRepo) Create(ctx context.Context, c domain.Code) (domain.Code, error) {
	var expires sql.NullTime
	if c.ExpiresAt != nil {
		expires = sql.NullTime{Time: *c.ExpiresAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO discount_codes
		 (code, type, value, min_order_amount, max_discount, expires_at, usage_limit, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.Code, c.Type, c.Value, c.MinOrderAmount, c.MaxDiscount, expires, c.UsageLimit, c.IsActive)
	if err != nil {
		return domain.Code{}, fmt.Errorf("insert discount code: %w", err)
	}
	return r.GetByCode(ctx, c.Code)
}

func (r *DiscountRepo) List(ctx context.Context, activeOnly bool) ([]domain.Code, error) {
	query := `SELECT ` + codeColumns + ` FROM discount_codes`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Code
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *DiscountRepo) Deactivate(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE discount_codes SET is_active = false, updated_at = now()
		 WHERE UPPER(code) = UPPER($1)`, code)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Businessf(apperr.CodeNotFound, "discount code %s not found", code)
	}
	return nil
}
