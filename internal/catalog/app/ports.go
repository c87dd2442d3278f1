package app

import (
	"context"

	"github.com/storefront-go/storefront/internal/catalog/domain"
)

type ProductRepo interface {
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)
	ListFeatured(ctx context.Context, limit int) ([]domain.Product, error)
	ListRelated(ctx context.Context, productID string, limit int) ([]domain.Product, error)
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Update(ctx context.Context, p domain.Product) (domain.Product, error)
	// Delete cascades category associations and images before the row.
	Delete(ctx context.Context, id string) error

	// DecrementStock is the conditional decrement checkout relies on:
	// it must apply only when stock >= qty and report whether it did.
	DecrementStock(ctx context.Context, productID string, qty int32) (bool, error)
	IncrementStock(ctx context.Context, productID string, qty int32) error
}

type CategoryRepo interface {
	Get(ctx context.Context, id string) (domain.Category, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	Create(ctx context.Context, c domain.Category) (domain.Category, error)
	Update(ctx context.Context, c domain.Category) (domain.Category, error)
	Delete(ctx context.Context, id string) error
}
