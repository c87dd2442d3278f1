package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/storefront-go/storefront/internal/apperr"
	"github.com/storefront-go/storefront/internal/cart/domain"
	"github.com/storefront-go/storefront/pkg/cache"
)

// Service owns the per-customer cart lifecycle. All stock checks here
// are advisory snapshots; the write path is guarded in SQL so the
// post-merge quantity can never exceed live stock even under
// concurrent adds.
type Service struct {
	repo     CartRepo
	products ProductReader
	cache    *cache.Cache[any]
	log      *slog.Logger
}

func NewService(repo CartRepo, products ProductReader, c *cache.Cache[any], log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		cache:    c,
		log:      log,
	}
}

func (s *Service) GetOrCreateCart(ctx context.Context, customerID string) (domain.Cart, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return domain.Cart{}, apperr.Validation("customerId", "customer id is required")
	}

	key := "cart:customer:" + customerID
	if v, ok := s.cache.Get(key); ok {
		s.log.Debug("cache hit", slog.String("key", key))
		return v.(domain.Cart), nil
	}

	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return domain.Cart{}, err
	}

	s.cache.Set(key, cart)
	return cart, nil
}

func (s *Service) AddItem(ctx context.Context, customerID, productID string, quantity int32) (domain.Cart, error) {
	if strings.TrimSpace(customerID) == "" {
		return domain.Cart{}, apperr.Validation("customerId", "customer id is required")
	}
	if strings.TrimSpace(productID) == "" {
		return domain.Cart{}, apperr.Validation("productId", "product id is required")
	}
	if quantity < domain.MinQuantity || quantity > domain.MaxQuantity {
		return domain.Cart{}, apperr.Validationf("quantity",
			"quantity must be between %d and %d, got %d",
			domain.MinQuantity, domain.MaxQuantity, quantity)
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return domain.Cart{}, err
	}
	if !product.Available {
		s.log.Warn("add to cart rejected, product unavailable",
			slog.String("productId", productID))
		return domain.Cart{}, apperr.Businessf(apperr.CodeProductUnavailable,
			"product %s is unavailable", productID)
	}
	if product.Stock < quantity {
		s.log.Warn("add to cart rejected, insufficient stock",
			slog.String("productId", productID),
			slog.Int("requested", int(quantity)),
			slog.Int("stock", int(product.Stock)))
		return domain.Cart{}, apperr.Businessf(apperr.CodeInsufficientStock,
			"only %d units of product %s available", product.Stock, productID)
	}

	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return domain.Cart{}, err
	}

	// The guard caps the post-merge quantity, not the delta: an item
	// already in the cart merges by summing and the sum must still
	// fit within live stock and the per-line maximum.
	maxQty := product.Stock
	if maxQty > domain.MaxQuantity {
		maxQty = domain.MaxQuantity
	}
	applied, err := s.repo.AddItemGuarded(ctx, cart.ID, productID, quantity, maxQty, product.Amount)
	if err != nil {
		return domain.Cart{}, err
	}
	if !applied {
		s.log.Warn("add to cart rejected by merge guard",
			slog.String("cartId", cart.ID),
			slog.String("productId", productID),
			slog.Int("requested", int(quantity)))
		return domain.Cart{}, apperr.Businessf(apperr.CodeInsufficientStock,
			"cannot add %d more units of product %s", quantity, productID)
	}

	s.invalidate(customerID)
	return s.GetOrCreateCart(ctx, customerID)
}

func (s *Service) UpdateItem(ctx context.Context, customerID, itemID string, quantity int32) (domain.Cart, error) {
	if quantity < domain.MinQuantity || quantity > domain.MaxQuantity {
		return domain.Cart{}, apperr.Validationf("quantity",
			"quantity must be between %d and %d, got %d",
			domain.MinQuantity, domain.MaxQuantity, quantity)
	}

	item, err := s.ownedItem(ctx, customerID, itemID)
	if err != nil {
		return domain.Cart{}, err
	}

	product, err := s.products.GetProduct(ctx, item.ProductID)
	if err != nil {
		return domain.Cart{}, err
	}
	if product.Stock < quantity {
		return domain.Cart{}, apperr.Businessf(apperr.CodeInsufficientStock,
			"only %d units of product %s available", product.Stock, item.ProductID)
	}

	// The stock check above is advisory; the write itself re-checks
	// live stock so a concurrent sale cannot slip an unfillable
	// quantity through.
	applied, err := s.repo.SetItemQuantityGuarded(ctx, itemID, quantity, domain.MaxQuantity)
	if err != nil {
		return domain.Cart{}, err
	}
	if !applied {
		s.log.Warn("quantity update rejected by stock guard",
			slog.String("itemId", itemID),
			slog.String("productId", item.ProductID),
			slog.Int("requested", int(quantity)))
		return domain.Cart{}, apperr.Businessf(apperr.CodeInsufficientStock,
			"cannot set %d units of product %s", quantity, item.ProductID)
	}

	s.invalidate(customerID)
	return s.GetOrCreateCart(ctx, customerID)
}

func (s *Service) RemoveItem(ctx context.Context, customerID, itemID string) (domain.Cart, error) {
	if _, err := s.ownedItem(ctx, customerID, itemID); err != nil {
		return domain.Cart{}, err
	}

	if err := s.repo.RemoveItem(ctx, itemID); err != nil {
		return domain.Cart{}, err
	}

	s.invalidate(customerID)
	return s.GetOrCreateCart(ctx, customerID)
}

// ownedItem loads the line joined to its parent cart and enforces that
// the cart belongs to customerID. The caller is pre-authenticated, but
// this check is the authorization boundary inside the cart subsystem
// and is never skipped.
func (s *Service) ownedItem(ctx context.Context, customerID, itemID string) (domain.CartItem, error) {
	if strings.TrimSpace(itemID) == "" {
		return domain.CartItem{}, apperr.Validation("itemId", "cart item id is required")
	}

	item, owner, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return domain.CartItem{}, err
	}
	if owner != customerID {
		s.log.Warn("cart item access denied",
			slog.String("itemId", itemID),
			slog.String("customerId", customerID))
		return domain.CartItem{}, apperr.Business(apperr.CodeUnauthorizedCartAccess,
			"cart item does not belong to customer")
	}
	return item, nil
}

// ClearCart deletes all line items; the cart row itself stays.
func (s *Service) ClearCart(ctx context.Context, customerID string) error {
	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return err
	}

	if err := s.repo.Clear(ctx, cart.ID); err != nil {
		return err
	}

	s.invalidate(customerID)
	s.log.Info("cart cleared", slog.String("cartId", cart.ID))
	return nil
}

// ValidateCart re-checks every line against live catalog state. The
// snapshot price on each line is only the comparison baseline; any
// displayed total is always recomputed from live prices. A price drop
// is treated as blocking while a rise is only a warning; the polarity
// mirrors the storefront's established behavior.
func (s *Service) ValidateCart(ctx context.Context, customerID string) (domain.ValidationReport, error) {
	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return domain.ValidationReport{}, err
	}

	var report domain.ValidationReport
	for _, item := range cart.Items {
		product, err := s.products.GetProduct(ctx, item.ProductID)
		if err != nil {
			if apperr.IsCode(err, apperr.CodeNotFound) {
				report.Errors = append(report.Errors, domain.Issue{
					Kind:      domain.IssueProductUnavailable,
					ProductID: item.ProductID,
					Message:   "product no longer exists",
				})
				continue
			}
			return domain.ValidationReport{}, err
		}

		if !product.Available {
			report.Errors = append(report.Errors, domain.Issue{
				Kind:      domain.IssueProductUnavailable,
				ProductID: item.ProductID,
				Message:   "product is no longer available",
			})
			continue
		}

		switch {
		case product.Stock == 0:
			report.Errors = append(report.Errors, domain.Issue{
				Kind:      domain.IssueOutOfStock,
				ProductID: item.ProductID,
				Message:   "product is out of stock",
			})
		case product.Stock < item.Quantity:
			report.Errors = append(report.Errors, domain.Issue{
				Kind:      domain.IssueInsufficientStock,
				ProductID: item.ProductID,
				Message: fmt.Sprintf("only %d of %d requested units available",
					product.Stock, item.Quantity),
			})
		case product.Stock <= domain.LowStockThreshold:
			report.Warnings = append(report.Warnings, domain.Issue{
				Kind:      domain.IssueLowStock,
				ProductID: item.ProductID,
				Message:   fmt.Sprintf("only %d units left", product.Stock),
			})
		}

		if item.PriceSnapshot > 0 && product.Amount != item.PriceSnapshot {
			if product.Amount < item.PriceSnapshot {
				report.Errors = append(report.Errors, domain.Issue{
					Kind:      domain.IssuePriceChanged,
					ProductID: item.ProductID,
					Message: fmt.Sprintf("price dropped from %d to %d",
						item.PriceSnapshot, product.Amount),
				})
			} else {
				report.Warnings = append(report.Warnings, domain.Issue{
					Kind:      domain.IssuePriceIncrease,
					ProductID: item.ProductID,
					Message: fmt.Sprintf("price rose from %d to %d",
						item.PriceSnapshot, product.Amount),
				})
			}
		}
	}

	if !report.Valid() {
		s.log.Warn("cart validation found blocking issues",
			slog.String("customerId", customerID),
			slog.Int("errors", len(report.Errors)),
			slog.Int("warnings", len(report.Warnings)))
	}
	return report, nil
}

// invalidate evicts every cached read for one customer.
func (s *Service) invalidate(customerID string) {
	s.cache.DeleteMatching(customerID)
}
