package adapter

import (
	"context"

	cartapp "github.com/storefront-go/storefront/internal/cart/app"
	catalogapp "github.com/storefront-go/storefront/internal/catalog/app"
)

// CatalogServiceReader adapts the catalog service to the narrow view
// the cart needs.
type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) GetProduct(ctx context.Context, productID string) (cartapp.ProductView, error) {
	p, err := r.svc.GetProduct(ctx, productID)
	if err != nil {
		return cartapp.ProductView{}, err
	}

	return cartapp.ProductView{
		ID:        p.ID,
		Name:      p.Name,
		Currency:  p.Price.Currency,
		Amount:    p.Price.Amount,
		Stock:     p.Stock,
		IsActive:  p.IsActive,
		Available: p.IsActive,
	}, nil
}
