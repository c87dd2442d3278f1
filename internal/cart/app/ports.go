package app

import (
	"context"

	"github.com/storefront-go/storefront/internal/cart/domain"
)

type CartRepo interface {
	// GetOrCreate returns the customer's cart, creating it if absent.
	// One cart per customer is enforced by a unique key on
	// customer_id; concurrent first-time callers must converge on the
	// same row.
	GetOrCreate(ctx context.Context, customerID string) (domain.Cart, error)

	// GetItem returns the line together with the customer owning its
	// parent cart, so callers can enforce ownership.
	GetItem(ctx context.Context, itemID string) (domain.CartItem, string, error)

	// AddItemGuarded merges qty into the line for (cartID, productID)
	// in one statement, guarded so the post-merge quantity cannot
	// exceed maxQty. Returns false when the guard rejected the write.
	AddItemGuarded(ctx context.Context, cartID, productID string, qty, maxQty int32, priceSnapshot int64) (bool, error)

	// SetItemQuantityGuarded sets the line quantity in one statement,
	// guarded against LEAST(maxQty, live stock) like AddItemGuarded,
	// so a stock drop between the caller's check and the write cannot
	// persist an unfillable quantity. False means the guard rejected
	// the write.
	SetItemQuantityGuarded(ctx context.Context, itemID string, qty, maxQty int32) (bool, error)

	RemoveItem(ctx context.Context, itemID string) error

	// Clear deletes all line items but keeps the cart row.
	Clear(ctx context.Context, cartID string) error
}

// ProductReader is the slice of the catalog the cart needs: live
// price, stock and availability per product.
type ProductReader interface {
	GetProduct(ctx context.Context, productID string) (ProductView, error)
}

type ProductView struct {
	ID        string
	Name      string
	Currency  string
	Amount    int64
	Stock     int32
	IsActive  bool
	Available bool
}
