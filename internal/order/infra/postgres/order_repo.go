package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/storefront-go/storefront/internal/apperr"
	"github.com/storefront-go/storefront/internal/order/domain"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) execTX(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %w; rollback err: %v", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// CreateOrderTx writes the order header, every line and the payment
// stub in one transaction. Cash-on-delivery orders get no stub.
func (r *OrderRepo) CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error) {
	custID, err := uuid.Parse(order.CustomerID)
	if err != nil {
		return domain.Order{}, apperr.Validation("customerId", "invalid customer id")
	}
	addrID, err := uuid.Parse(order.ShippingAddressID)
	if err != nil {
		return domain.Order{}, apperr.Validation("shippingAddressId", "invalid address id")
	}

	var orderID uuid.UUID
	err = r.execTX(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO orders
			 (customer_id, status, currency, subtotal_amount, discount_amount,
			  shipping_amount, tax_amount, total_amount, shipping_address_id,
			  payment_method, discount_code)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 RETURNING id`,
			custID, order.Status, order.Currency, order.SubtotalAmount, order.DiscountAmount,
			order.ShippingAmount, order.TaxAmount, order.TotalAmount, addrID,
			order.PaymentMethod, order.DiscountCode,
		).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i, item := range order.Items {
			prodID, err := uuid.Parse(item.ProductID)
			if err != nil {
				return apperr.Validationf("items", "item %d: invalid product id", i)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO order_items
				 (order_id, product_id, name, unit_amount, quantity, line_total_amount)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				orderID, prodID, item.Name, item.UnitAmount, item.Quantity, item.LineTotalAmount)
			if err != nil {
				return fmt.Errorf("insert order item %d: %w", i, err)
			}
		}

		if order.PaymentMethod != domain.PaymentMethodCOD {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO payments (order_id, method, status, amount)
				 VALUES ($1, $2, $3, $4)`,
				orderID, order.PaymentMethod, domain.PaymentStatusPending, order.TotalAmount)
			if err != nil {
				return fmt.Errorf("insert payment stub: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	return r.Get(ctx, orderID.String())
}

const orderColumns = `id, customer_id, status, currency, subtotal_amount, discount_amount,
	shipping_amount, tax_amount, total_amount, shipping_address_id,
	payment_method, discount_code, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var o domain.Order
	var id, custID, addrID uuid.UUID
	err := row.Scan(
		&id, &custID, &o.Status, &o.Currency, &o.SubtotalAmount, &o.DiscountAmount,
		&o.ShippingAmount, &o.TaxAmount, &o.TotalAmount, &addrID,
		&o.PaymentMethod, &o.DiscountCode, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	o.ID = id.String()
	o.CustomerID = custID.String()
	o.ShippingAddressID = addrID.String()
	return o, nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return domain.Order{}, apperr.Validation("id", "invalid order id")
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, apperr.Businessf(apperr.CodeOrderNotFound, "order %s not found", id)
	}
	if err != nil {
		return domain.Order{}, err
	}

	if o.Items, err = r.itemsOf(ctx, orderID); err != nil {
		return domain.Order{}, err
	}
	if o.Payment, err = r.paymentOf(ctx, orderID); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *OrderRepo) itemsOf(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, product_id, name, unit_amount, quantity, line_total_amount
		 FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		var id, oid, pid uuid.UUID
		if err := rows.Scan(&id, &oid, &pid, &it.Name, &it.UnitAmount, &it.Quantity, &it.LineTotalAmount); err != nil {
			return nil, err
		}
		it.ID = id.String()
		it.OrderID = oid.String()
		it.ProductID = pid.String()
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *OrderRepo) paymentOf(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	var p domain.Payment
	var id, oid uuid.UUID
	err := r.db.QueryRowContext(ctx,
		`SELECT id, order_id, method, status, amount, created_at
		 FROM payments WHERE order_id = $1`, orderID,
	).Scan(&id, &oid, &p.Method, &p.Status, &p.Amount, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.ID = id.String()
	p.OrderID = oid.String()
	return &p, nil
}

func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID string, page, limit int) ([]domain.Order, int, error) {
	custID, err := uuid.Parse(customerID)
	if err != nil {
		return nil, 0, apperr.Validation("customerId", "invalid customer id")
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE customer_id = $1`, custID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE customer_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, custID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range out {
		oid, _ := uuid.Parse(out[i].ID)
		if out[i].Items, err = r.itemsOf(ctx, oid); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return false, apperr.Validation("id", "invalid order id")
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $3, updated_at = now()
		 WHERE id = $1 AND status = $2`, orderID, from, to)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CancelTx flips the status and restores stock in one transaction, so
// a cancellation can never restore stock twice or restore without
// cancelling.
func (r *OrderRepo) CancelTx(ctx context.Context, id string, from domain.Status) (bool, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return false, apperr.Validation("id", "invalid order id")
	}

	applied := false
	err = r.execTX(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = $3, updated_at = now()
			 WHERE id = $1 AND status = $2`, orderID, from, domain.StatusCancelled)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE products p SET stock = p.stock + oi.quantity, updated_at = now()
			 FROM order_items oi
			 WHERE oi.order_id = $1 AND oi.product_id = p.id`, orderID)
		if err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}

		applied = true
		return nil
	})
	return applied, err
}
