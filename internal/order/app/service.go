package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/storefront-go/storefront/internal/apperr"
	"github.com/storefront-go/storefront/internal/order/domain"
)

type Service struct {
	repo    OrderRepo
	catalog CatalogInvalidator
	log     *slog.Logger
}

func NewService(repo OrderRepo, catalog CatalogInvalidator, log *slog.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, log: log}
}

// CreateOrder persists a fully priced order. Pricing and stock
// reservation belong to checkout; this only validates shape and
// writes.
func (s *Service) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if strings.TrimSpace(order.CustomerID) == "" {
		return domain.Order{}, apperr.Validation("customerId", "customer id is required")
	}
	if len(order.Items) == 0 {
		return domain.Order{}, apperr.Validation("items", "order must have at least one item")
	}
	if strings.TrimSpace(order.ShippingAddressID) == "" {
		return domain.Order{}, apperr.Validation("shippingAddressId", "shipping address is required")
	}
	if strings.TrimSpace(order.PaymentMethod) == "" {
		return domain.Order{}, apperr.Validation("paymentMethod", "payment method is required")
	}
	if order.ShippingAmount < 0 {
		return domain.Order{}, apperr.Validationf("shippingAmount",
			"shipping amount cannot be negative, got %d", order.ShippingAmount)
	}

	for i, item := range order.Items {
		if item.Quantity <= 0 {
			return domain.Order{}, apperr.Validationf("items",
				"item %d: quantity must be positive, got %d", i, item.Quantity)
		}
		if item.UnitAmount < 0 {
			return domain.Order{}, apperr.Validationf("items",
				"item %d: unit amount cannot be negative, got %d", i, item.UnitAmount)
		}
		if item.LineTotalAmount != item.UnitAmount*int64(item.Quantity) {
			return domain.Order{}, apperr.Validationf("items",
				"item %d: line total mismatch", i)
		}
	}

	order.Status = domain.StatusPending

	created, err := s.repo.CreateOrderTx(ctx, order)
	if err != nil {
		return domain.Order{}, err
	}

	s.log.Info("order created",
		slog.String("orderId", created.ID),
		slog.String("customerId", created.CustomerID),
		slog.Int64("total", created.TotalAmount))
	return created, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Order{}, apperr.Validation("id", "order id is required")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, customerID string, page, limit int) ([]domain.Order, int, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, 0, apperr.Validation("customerId", "customer id is required")
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByCustomer(ctx, customerID, page, limit)
}

// UpdateStatus enforces the transition table and persists the flip
// conditionally on the status it read.
func (s *Service) UpdateStatus(ctx context.Context, id string, next domain.Status) (domain.Order, error) {
	if !next.Valid() {
		return domain.Order{}, apperr.Validationf("status", "unknown status %q", next)
	}
	if next == domain.StatusCancelled {
		return domain.Order{}, apperr.Validation("status", "use cancel to reach CANCELLED")
	}

	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	if !order.Status.CanTransition(next) {
		s.log.Warn("status transition rejected",
			slog.String("orderId", id),
			slog.String("from", string(order.Status)),
			slog.String("to", string(next)))
		return domain.Order{}, apperr.Businessf(apperr.CodeInvalidTransition,
			"cannot move order from %s to %s", order.Status, next)
	}

	applied, err := s.repo.UpdateStatus(ctx, id, order.Status, next)
	if err != nil {
		return domain.Order{}, err
	}
	if !applied {
		return domain.Order{}, apperr.Businessf(apperr.CodeInvalidTransition,
			"order %s changed status concurrently", id)
	}

	s.log.Info("order status updated",
		slog.String("orderId", id),
		slog.String("from", string(order.Status)),
		slog.String("to", string(next)))
	return s.repo.Get(ctx, id)
}

// Cancel moves the order to CANCELLED and restores stock for every
// line in one transaction. Delivered or already-cancelled orders are
// rejected without touching stock.
func (s *Service) Cancel(ctx context.Context, id, reason string) (domain.Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	switch order.Status {
	case domain.StatusDelivered:
		return domain.Order{}, apperr.Businessf(apperr.CodeOrderAlreadyDelivered,
			"order %s has been delivered and cannot be cancelled", id)
	case domain.StatusCancelled:
		return domain.Order{}, apperr.Businessf(apperr.CodeOrderAlreadyCancelled,
			"order %s is already cancelled", id)
	}

	applied, err := s.repo.CancelTx(ctx, id, order.Status)
	if err != nil {
		return domain.Order{}, err
	}
	if !applied {
		return domain.Order{}, apperr.Businessf(apperr.CodeInvalidTransition,
			"order %s changed status concurrently", id)
	}

	// CancelTx just restored stock behind the catalog service's back.
	s.catalog.InvalidateCache()

	s.log.Info("order cancelled",
		slog.String("orderId", id),
		slog.String("reason", reason))
	return s.repo.Get(ctx, id)
}
