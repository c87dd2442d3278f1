package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/storefront-go/storefront/internal/apperr"
	"github.com/storefront-go/storefront/internal/cart/domain"
)

type CartRepo struct {
	db *sql.DB
}

func NewCartRepo(db *sql.DB) *CartRepo {
	return &CartRepo{db: db}
}

// GetOrCreate upserts on the unique customer_id key, so two
// first-time adds racing each other converge on a single cart row.
func (r *CartRepo) GetOrCreate(ctx context.Context, customerID string) (domain.Cart, error) {
	custID, err := uuid.Parse(customerID)
	if err != nil {
		return domain.Cart{}, apperr.Validation("customerId", "invalid customer id")
	}

	var cart domain.Cart
	var id uuid.UUID
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO carts (customer_id, expires_at)
		 VALUES ($1, now() + interval '30 days')
		 ON CONFLICT (customer_id) DO UPDATE SET updated_at = now()
		 RETURNING id, expires_at, created_at, updated_at`, custID,
	).Scan(&id, &cart.ExpiresAt, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return domain.Cart{}, err
	}
	cart.ID = id.String()
	cart.CustomerID = customerID

	cart.Items, err = r.listItems(ctx, id)
	if err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

func (r *CartRepo) listItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, cart_id, product_id, quantity, price_snapshot, created_at, updated_at
		 FROM cart_items WHERE cart_id = $1 ORDER BY created_at`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		var id, cid, pid uuid.UUID
		if err := rows.Scan(&id, &cid, &pid, &it.Quantity, &it.PriceSnapshot, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		it.ID = id.String()
		it.CartID = cid.String()
		it.ProductID = pid.String()
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *CartRepo) GetItem(ctx context.Context, itemID string) (domain.CartItem, string, error) {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return domain.CartItem{}, "", apperr.Validation("itemId", "invalid cart item id")
	}

	var it domain.CartItem
	var iid, cid, pid, owner uuid.UUID
	err = r.db.QueryRowContext(ctx,
		`SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.price_snapshot,
		        ci.created_at, ci.updated_at, c.customer_id
		 FROM cart_items ci
		 JOIN carts c ON c.id = ci.cart_id
		 WHERE ci.id = $1`, id,
	).Scan(&iid, &cid, &pid, &it.Quantity, &it.PriceSnapshot, &it.CreatedAt, &it.UpdatedAt, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CartItem{}, "", apperr.Businessf(apperr.CodeNotFound, "cart item %s not found", itemID)
	}
	if err != nil {
		return domain.CartItem{}, "", err
	}

	it.ID = iid.String()
	it.CartID = cid.String()
	it.ProductID = pid.String()
	return it, owner.String(), nil
}

// AddItemGuarded merges in one statement. Both the insert path and the
// merge path are guarded against LEAST(maxQty, live stock), so the
// post-merge quantity can never oversell even when two requests race.
func (r *CartRepo) AddItemGuarded(ctx context.Context, cartID, productID string, qty, maxQty int32, priceSnapshot int64) (bool, error) {
	cID, err := uuid.Parse(cartID)
	if err != nil {
		return false, apperr.Validation("cartId", "invalid cart id")
	}
	pID, err := uuid.Parse(productID)
	if err != nil {
		return false, apperr.Validation("productId", "invalid product id")
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cart_items (cart_id, product_id, quantity, price_snapshot)
		 SELECT $1, $2, $3, $4
		 WHERE $3 <= LEAST($5::int, (SELECT stock FROM products WHERE id = $2))
		 ON CONFLICT (cart_id, product_id) DO UPDATE
		 SET quantity = cart_items.quantity + EXCLUDED.quantity,
		     price_snapshot = EXCLUDED.price_snapshot,
		     updated_at = now()
		 WHERE cart_items.quantity + EXCLUDED.quantity
		       <= LEAST($5::int, (SELECT stock FROM products WHERE id = $2))`,
		cID, pID, qty, priceSnapshot, maxQty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetItemQuantityGuarded rewrites the line quantity with the same
// live-stock guard as AddItemGuarded. A line that disappeared under
// the caller is reported as not found; a guard rejection as false.
func (r *CartRepo) SetItemQuantityGuarded(ctx context.Context, itemID string, qty, maxQty int32) (bool, error) {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return false, apperr.Validation("itemId", "invalid cart item id")
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $2, updated_at = now()
		 WHERE id = $1
		   AND $2 <= LEAST($3::int,
		       (SELECT stock FROM products WHERE id = cart_items.product_id))`,
		id, qty, maxQty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM cart_items WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, apperr.Businessf(apperr.CodeNotFound, "cart item %s not found", itemID)
	}
	return false, nil
}

func (r *CartRepo) RemoveItem(ctx context.Context, itemID string) error {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return apperr.Validation("itemId", "invalid cart item id")
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Businessf(apperr.CodeNotFound, "cart item %s not found", itemID)
	}
	return nil
}

func (r *CartRepo) Clear(ctx context.Context, cartID string) error {
	id, err := uuid.Parse(cartID)
	if err != nil {
		return apperr.Validation("cartId", "invalid cart id")
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, id)
	return err
}
