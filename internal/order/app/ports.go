package app

import (
	"context"

	"github.com/storefront-go/storefront/internal/order/domain"
)

// CatalogInvalidator drops cached catalog reads. CancelTx restores
// stock with direct SQL, bypassing the catalog service's own write
// paths, so the cache must be told.
type CatalogInvalidator interface {
	InvalidateCache()
}

type OrderRepo interface {
	// CreateOrderTx writes header, lines and (unless cash on delivery)
	// the payment stub in a single transaction: all rows or none.
	CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error)

	Get(ctx context.Context, id string) (domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string, page, limit int) ([]domain.Order, int, error)

	// UpdateStatus flips the status only if the row still holds from;
	// false means another writer got there first.
	UpdateStatus(ctx context.Context, id string, from, to domain.Status) (bool, error)

	// CancelTx flips the status to CANCELLED (conditional on from) and
	// restores stock for every line in the same transaction.
	CancelTx(ctx context.Context, id string, from domain.Status) (bool, error)
}
