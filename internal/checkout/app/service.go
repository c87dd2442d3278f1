package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/storefront-go/storefront/internal/apperr"
	"github.com/storefront-go/storefront/internal/checkout/domain"
)

// Pricing carries the shipping rule knobs, amounts in cents. Shipping
// is waived strictly above FreeShippingThreshold.
type Pricing struct {
	FlatShippingFee       int64
	FreeShippingThreshold int64
}

// Service validates a cart against live catalog state, prices it and
// commits the checkout as a compensated saga: discount redemption,
// per-line stock reservation and the order write either all land or
// are all undone. Only the final cart clear is best-effort.
type Service struct {
	cart      CartReader
	catalog   CatalogReader
	stock     StockReserver
	discounts DiscountLedger
	addresses AddressReader
	orders    OrderWriter

	pricing       Pricing
	maxConcurrent int
	log           *slog.Logger
}

func NewService(
	cart CartReader,
	catalog CatalogReader,
	stock StockReserver,
	discounts DiscountLedger,
	addresses AddressReader,
	orders OrderWriter,
	pricing Pricing,
	maxConcurrent int,
	log *slog.Logger,
) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &Service{
		cart:          cart,
		catalog:       catalog,
		stock:         stock,
		discounts:     discounts,
		addresses:     addresses,
		orders:        orders,
		pricing:       pricing,
		maxConcurrent: maxConcurrent,
		log:           log,
	}
}

// Quote prices the customer's current cart: live unit prices, the
// shipping rule, the 0 tax placeholder and, when a code is supplied,
// the discount the ledger would grant right now.
func (s *Service) Quote(ctx context.Context, customerID, discountCode string) (domain.Quote, error) {
	if strings.TrimSpace(customerID) == "" {
		return domain.Quote{}, apperr.Validation("customerId", "customer id is required")
	}

	cart, err := s.cart.GetCart(ctx, customerID)
	if err != nil {
		return domain.Quote{}, err
	}
	if len(cart.Items) == 0 {
		return domain.Quote{}, apperr.Business(apperr.CodeCartEmpty, "cart is empty")
	}

	quote, err := s.priceLines(ctx, cart.Items)
	if err != nil {
		return domain.Quote{}, err
	}

	if code := strings.TrimSpace(discountCode); code != "" {
		d, err := s.discounts.Validate(ctx, code, quote.Subtotal)
		if err != nil {
			return domain.Quote{}, err
		}
		quote.DiscountCode = d.Code
		quote.Discount = d.Amount
	}

	s.applyTotals(&quote)
	return quote, nil
}

// priceLines fans out to the catalog with a bounded group and builds
// the priced lines in cart order.
func (s *Service) priceLines(ctx context.Context, items []CartItem) (domain.Quote, error) {
	lines := make([]domain.QuoteLine, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		g.Go(func() error {
			it := items[idx]
			if it.Quantity <= 0 {
				return apperr.Validationf("quantity",
					"quantity must be greater than zero: %d", it.Quantity)
			}

			product, err := s.catalog.GetProduct(gctx, it.ProductID)
			if err != nil {
				return fmt.Errorf("price product %s: %w", it.ProductID, err)
			}

			lineTotal := product.Amount * int64(it.Quantity)
			lines[idx] = domain.QuoteLine{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  it.Quantity,
				UnitPrice: domain.Money{Currency: product.Currency, Amount: product.Amount},
				LineTotal: domain.Money{Currency: product.Currency, Amount: lineTotal},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Quote{}, err
	}

	quote := domain.Quote{Lines: lines, Currency: lines[0].UnitPrice.Currency}
	for _, line := range lines {
		quote.Subtotal += line.LineTotal.Amount
	}
	return quote, nil
}

func (s *Service) applyTotals(q *domain.Quote) {
	if q.Subtotal > s.pricing.FreeShippingThreshold {
		q.Shipping = 0
	} else {
		q.Shipping = s.pricing.FlatShippingFee
	}
	q.Tax = 0
	q.Total = q.Subtotal - q.Discount + q.Tax + q.Shipping
}

// ValidateCheckout runs every pre-commit check and returns the priced
// quote the commit will use. Any error here must keep ProcessCheckout
// from writing anything.
func (s *Service) ValidateCheckout(ctx context.Context, req domain.CheckoutRequest) (domain.Quote, error) {
	if strings.TrimSpace(req.CustomerID) == "" {
		return domain.Quote{}, apperr.Validation("customerId", "customer id is required")
	}
	if strings.TrimSpace(req.ShippingAddressID) == "" {
		return domain.Quote{}, apperr.Validation("shippingAddressId", "shipping address is required")
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return domain.Quote{}, apperr.Validation("paymentMethod", "payment method is required")
	}

	if err := s.checkAddress(ctx, req.ShippingAddressID, req.CustomerID); err != nil {
		return domain.Quote{}, err
	}
	if b := strings.TrimSpace(req.BillingAddressID); b != "" && b != req.ShippingAddressID {
		if err := s.checkAddress(ctx, b, req.CustomerID); err != nil {
			return domain.Quote{}, err
		}
	}

	cart, err := s.cart.GetCart(ctx, req.CustomerID)
	if err != nil {
		return domain.Quote{}, err
	}
	if len(cart.Items) == 0 {
		return domain.Quote{}, apperr.Business(apperr.CodeCartEmpty, "cart is empty")
	}

	// Re-check stock and availability per line against the live
	// catalog; the cart was captured earlier and may be stale.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for _, it := range cart.Items {
		g.Go(func() error {
			product, err := s.catalog.GetProduct(gctx, it.ProductID)
			if err != nil {
				if apperr.IsCode(err, apperr.CodeNotFound) {
					return apperr.Businessf(apperr.CodeProductUnavailable,
						"product %s is no longer available", it.ProductID)
				}
				return err
			}
			if !product.Active {
				return apperr.Businessf(apperr.CodeProductUnavailable,
					"product %s is no longer available", it.ProductID)
			}
			if product.Stock < it.Quantity {
				return apperr.Businessf(apperr.CodeInsufficientStock,
					"only %d of %d requested units of product %s available",
					product.Stock, it.Quantity, it.ProductID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Warn("checkout validation failed",
			slog.String("customerId", req.CustomerID),
			slog.String("code", apperr.CodeOf(err)))
		return domain.Quote{}, err
	}

	quote, err := s.Quote(ctx, req.CustomerID, req.DiscountCode)
	if err != nil {
		return domain.Quote{}, err
	}
	return quote, nil
}

func (s *Service) checkAddress(ctx context.Context, addressID, customerID string) error {
	ok, err := s.addresses.BelongsTo(ctx, addressID, customerID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Businessf(apperr.CodeAddressNotFound,
			"address %s not found for customer", addressID)
	}
	return nil
}

// ProcessCheckout commits the cart into an order. The write sequence
// runs as a saga; a failure in any step undoes the earlier ones and
// nothing is half-committed. Clearing the cart afterwards is the one
// deliberate best-effort step: the order stands even if it fails.
func (s *Service) ProcessCheckout(ctx context.Context, req domain.CheckoutRequest) (domain.Confirmation, error) {
	quote, err := s.ValidateCheckout(ctx, req)
	if err != nil {
		return domain.Confirmation{}, err
	}

	var confirmation domain.Confirmation

	steps := make([]sagaStep, 0, len(quote.Lines)+2)

	if quote.DiscountCode != "" {
		code := quote.DiscountCode
		steps = append(steps, sagaStep{
			name: "redeem discount " + code,
			run: func(ctx context.Context) error {
				d, err := s.discounts.Redeem(ctx, code, quote.Subtotal)
				if err != nil {
					return err
				}
				// The redeemed amount is authoritative over the
				// earlier validation pass.
				quote.Discount = d.Amount
				s.applyTotals(&quote)
				return nil
			},
			compensate: func(ctx context.Context) error {
				return s.discounts.Release(ctx, code)
			},
		})
	}

	for _, line := range quote.Lines {
		steps = append(steps, sagaStep{
			name: "reserve stock " + line.ProductID,
			run: func(ctx context.Context) error {
				return s.stock.Reserve(ctx, line.ProductID, line.Quantity)
			},
			compensate: func(ctx context.Context) error {
				return s.stock.Restore(ctx, line.ProductID, line.Quantity)
			},
		})
	}

	steps = append(steps, sagaStep{
		name: "create order",
		run: func(ctx context.Context) error {
			c, err := s.orders.Create(ctx, domain.OrderDraft{
				CustomerID:        req.CustomerID,
				ShippingAddressID: req.ShippingAddressID,
				PaymentMethod:     req.PaymentMethod,
				Quote:             quote,
			})
			if err != nil {
				return err
			}
			confirmation = c
			return nil
		},
	})

	if err := runSaga(ctx, s.log, steps); err != nil {
		return domain.Confirmation{}, err
	}

	if err := s.cart.Clear(ctx, req.CustomerID); err != nil {
		s.log.Warn("order committed but cart clear failed",
			slog.String("orderId", confirmation.OrderID),
			slog.String("customerId", req.CustomerID),
			slog.Any("err", err))
	}

	s.log.Info("checkout committed",
		slog.String("orderId", confirmation.OrderID),
		slog.String("customerId", req.CustomerID),
		slog.Int64("total", confirmation.TotalAmount))
	return confirmation, nil
}

func (s *Service) CancelOrder(ctx context.Context, orderID, reason string) (domain.Confirmation, error) {
	if strings.TrimSpace(orderID) == "" {
		return domain.Confirmation{}, apperr.Validation("orderId", "order id is required")
	}
	return s.orders.Cancel(ctx, orderID, reason)
}

func (s *Service) UpdateOrderStatus(ctx context.Context, orderID, status string) (domain.Confirmation, error) {
	if strings.TrimSpace(orderID) == "" {
		return domain.Confirmation{}, apperr.Validation("orderId", "order id is required")
	}
	return s.orders.UpdateStatus(ctx, orderID, strings.ToUpper(strings.TrimSpace(status)))
}
