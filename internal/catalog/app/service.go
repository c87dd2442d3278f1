package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/storefront-go/storefront/internal/apperr"
	"github.com/storefront-go/storefront/internal/catalog/domain"
	"github.com/storefront-go/storefront/pkg/cache"
)

// Service is the catalog read/write surface. Every read is served
// through the TTL cache keyed by (operation, serialized params); every
// write purges the whole cache so no stale read survives a write.
type Service struct {
	products   ProductRepo
	categories CategoryRepo
	cache      *cache.Cache[any]
	log        *slog.Logger
}

func NewService(products ProductRepo, categories CategoryRepo, c *cache.Cache[any], log *slog.Logger) *Service {
	return &Service{
		products:   products,
		categories: categories,
		cache:      c,
		log:        log,
	}
}

type ProductInput struct {
	Name        string
	Description string
	Currency    string
	PriceAmount int64
	Stock       int32
	ImageURL    string
	CategoryIDs []string
	IsActive    bool
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation("name", "name is required")
	}
	if strings.TrimSpace(in.Currency) == "" {
		return apperr.Validation("currency", "currency is required")
	}
	if in.PriceAmount <= 0 {
		return apperr.Validationf("price", "price must be positive, got %d", in.PriceAmount)
	}
	if in.Stock < 0 {
		return apperr.Validationf("stock", "stock cannot be negative, got %d", in.Stock)
	}
	return nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, apperr.Validation("id", "product id is required")
	}

	key := "catalog:product:" + id
	if v, ok := s.cache.Get(key); ok {
		s.log.Debug("cache hit", slog.String("key", key))
		return v.(domain.Product), nil
	}
	s.log.Debug("cache miss", slog.String("key", key))

	p, err := s.products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	s.cache.Set(key, p)
	return p, nil
}

func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error) {
	filter = filter.Normalize()

	key := fmt.Sprintf("catalog:products:%+v", filter)
	if v, ok := s.cache.Get(key); ok {
		s.log.Debug("cache hit", slog.String("key", key))
		return v.(domain.ProductPage), nil
	}
	s.log.Debug("cache miss", slog.String("key", key))

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return domain.ProductPage{}, err
	}

	page := domain.ProductPage{
		Products: products,
		Page:     filter.Page,
		Limit:    filter.Limit,
		Total:    total,
	}
	s.cache.Set(key, page)
	return page, nil
}

func (s *Service) SearchProducts(ctx context.Context, query string, filter domain.ProductFilter) (domain.ProductPage, error) {
	filter.Query = strings.TrimSpace(query)
	return s.ListProducts(ctx, filter)
}

func (s *Service) GetProductsByCategory(ctx context.Context, categoryID string, page, limit int) (domain.ProductPage, error) {
	if strings.TrimSpace(categoryID) == "" {
		return domain.ProductPage{}, apperr.Validation("categoryId", "category id is required")
	}
	return s.ListProducts(ctx, domain.ProductFilter{
		CategoryID: categoryID,
		ActiveOnly: true,
		Page:       page,
		Limit:      limit,
	})
}

func (s *Service) GetFeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 8
	}
	if limit > 50 {
		limit = 50
	}

	key := fmt.Sprintf("catalog:featured:%d", limit)
	if v, ok := s.cache.Get(key); ok {
		s.log.Debug("cache hit", slog.String("key", key))
		return v.([]domain.Product), nil
	}

	products, err := s.products.ListFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, products)
	return products, nil
}

// GetRelatedProducts returns in-stock products sharing a category with
// productID, excluding productID itself.
func (s *Service) GetRelatedProducts(ctx context.Context, productID string, limit int) ([]domain.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, apperr.Validation("productId", "product id is required")
	}
	if limit <= 0 {
		limit = 4
	}

	key := fmt.Sprintf("catalog:related:%s:%d", productID, limit)
	if v, ok := s.cache.Get(key); ok {
		s.log.Debug("cache hit", slog.String("key", key))
		return v.([]domain.Product), nil
	}

	products, err := s.products.ListRelated(ctx, productID, limit)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, products)
	return products, nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	if err := in.validate(); err != nil {
		s.log.Warn("create product rejected", slog.String("reason", err.Error()))
		return domain.Product{}, err
	}

	p := domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       domain.Money{Currency: strings.TrimSpace(in.Currency), Amount: in.PriceAmount},
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		IsActive:    in.IsActive,
	}
	for _, cid := range in.CategoryIDs {
		p.Categories = append(p.Categories, domain.Category{ID: cid})
	}

	created, err := s.products.Create(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}

	s.cache.Purge()
	s.log.Info("product created", slog.String("id", created.ID))
	return created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, apperr.Validation("id", "product id is required")
	}
	if err := in.validate(); err != nil {
		s.log.Warn("update product rejected", slog.String("id", id), slog.String("reason", err.Error()))
		return domain.Product{}, err
	}

	p := domain.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       domain.Money{Currency: strings.TrimSpace(in.Currency), Amount: in.PriceAmount},
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		IsActive:    in.IsActive,
	}
	for _, cid := range in.CategoryIDs {
		p.Categories = append(p.Categories, domain.Category{ID: cid})
	}

	updated, err := s.products.Update(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}

	s.cache.Purge()
	s.log.Info("product updated", slog.String("id", id))
	return updated, nil
}

// DeleteProduct removes the product and its associations. Open carts
// referencing the product are left alone; cart validation will surface
// those lines as unavailable.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("id", "product id is required")
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Purge()
	s.log.Info("product deleted", slog.String("id", id))
	return nil
}

func (s *Service) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Category{}, apperr.Validation("id", "category id is required")
	}

	key := "catalog:category:" + id
	if v, ok := s.cache.Get(key); ok {
		return v.(domain.Category), nil
	}

	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}

	s.cache.Set(key, c)
	return c, nil
}

func (s *Service) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	key := fmt.Sprintf("catalog:categories:%t", activeOnly)
	if v, ok := s.cache.Get(key); ok {
		return v.([]domain.Category), nil
	}

	cats, err := s.categories.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, cats)
	return cats, nil
}

func (s *Service) CreateCategory(ctx context.Context, name, description string) (domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Category{}, apperr.Validation("name", "name is required")
	}

	created, err := s.categories.Create(ctx, domain.Category{
		Name:        strings.TrimSpace(name),
		Description: description,
		IsActive:    true,
	})
	if err != nil {
		return domain.Category{}, err
	}

	s.cache.Purge()
	s.log.Info("category created", slog.String("id", created.ID))
	return created, nil
}

func (s *Service) UpdateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	if strings.TrimSpace(c.ID) == "" {
		return domain.Category{}, apperr.Validation("id", "category id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return domain.Category{}, apperr.Validation("name", "name is required")
	}

	updated, err := s.categories.Update(ctx, c)
	if err != nil {
		return domain.Category{}, err
	}

	s.cache.Purge()
	return updated, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("id", "category id is required")
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Purge()
	return nil
}

// InvalidateCache drops every cached read. For writers that mutate
// catalog rows outside this service, like the order cancel transaction
// restoring stock.
func (s *Service) InvalidateCache() {
	s.cache.Purge()
}

// ReserveStock applies the conditional decrement checkout depends on.
// Zero rows affected means someone else took the units first.
func (s *Service) ReserveStock(ctx context.Context, productID string, qty int32) error {
	if qty <= 0 {
		return apperr.Validationf("quantity", "quantity must be positive, got %d", qty)
	}

	applied, err := s.products.DecrementStock(ctx, productID, qty)
	if err != nil {
		return err
	}
	if !applied {
		s.log.Warn("stock reservation rejected",
			slog.String("productId", productID), slog.Int("qty", int(qty)))
		return apperr.Businessf(apperr.CodeInsufficientStock,
			"insufficient stock for product %s", productID)
	}

	s.cache.Purge()
	return nil
}

// RestoreStock adds units back after a cancellation or a failed
// checkout step.
func (s *Service) RestoreStock(ctx context.Context, productID string, qty int32) error {
	if qty <= 0 {
		return apperr.Validationf("quantity", "quantity must be positive, got %d", qty)
	}

	if err := s.products.IncrementStock(ctx, productID, qty); err != nil {
		return err
	}

	s.cache.Purge()
	return nil
}
