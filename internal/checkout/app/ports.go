package app

import (
	"context"

	"github.com/storefront-go/storefront/internal/checkout/domain"
)

// The orchestrator sees every collaborator through a narrow local
// view; the adapters translate from the owning services.

type CartReader interface {
	GetCart(ctx context.Context, customerID string) (Cart, error)
	Clear(ctx context.Context, customerID string) error
}

type Cart struct {
	ID    string
	Items []CartItem
}

type CartItem struct {
	ProductID string
	Quantity  int32
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (Product, error)
}

type Product struct {
	ID       string
	Name     string
	Currency string
	Amount   int64
	Stock    int32
	Active   bool
}

// StockReserver is the conditional decrement and its inverse.
type StockReserver interface {
	Reserve(ctx context.Context, productID string, qty int32) error
	Restore(ctx context.Context, productID string, qty int32) error
}

type DiscountLedger interface {
	Validate(ctx context.Context, code string, orderAmount int64) (Discount, error)
	Redeem(ctx context.Context, code string, orderAmount int64) (Discount, error)
	Release(ctx context.Context, code string) error
}

type Discount struct {
	Code   string
	Amount int64
}

type AddressReader interface {
	// BelongsTo reports whether the address exists and is owned by
	// the customer.
	BelongsTo(ctx context.Context, addressID, customerID string) (bool, error)
}

type OrderWriter interface {
	Create(ctx context.Context, draft domain.OrderDraft) (domain.Confirmation, error)
	Cancel(ctx context.Context, orderID, reason string) (domain.Confirmation, error)
	UpdateStatus(ctx context.Context, orderID, status string) (domain.Confirmation, error)
}
