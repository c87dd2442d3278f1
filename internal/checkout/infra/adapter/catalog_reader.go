package adapter

import (
	"context"

	catalogapp "github.com/storefront-go/storefront/internal/catalog/app"
	checkoutapp "github.com/storefront-go/storefront/internal/checkout/app"
)

// CatalogServiceReader gives checkout live price, stock and
// availability, and doubles as the stock reserver.
type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) GetProduct(ctx context.Context, productID string) (checkoutapp.Product, error) {
	p, err := r.svc.GetProduct(ctx, productID)
	if err != nil {
		return checkoutapp.Product{}, err
	}

	return checkoutapp.Product{
		ID:       p.ID,
		Name:     p.Name,
		Currency: p.Price.Currency,
		Amount:   p.Price.Amount,
		Stock:    p.Stock,
		Active:   p.IsActive,
	}, nil
}

func (r *CatalogServiceReader) Reserve(ctx context.Context, productID string, qty int32) error {
	return r.svc.ReserveStock(ctx, productID, qty)
}

func (r *CatalogServiceReader) Restore(ctx context.Context, productID string, qty int32) error {
	return r.svc.RestoreStock(ctx, productID, qty)
}
