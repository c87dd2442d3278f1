package adapter

import (
	"context"

	checkoutdomain "github.com/storefront-go/storefront/internal/checkout/domain"
	orderapp "github.com/storefront-go/storefront/internal/order/app"
	orderdomain "github.com/storefront-go/storefront/internal/order/domain"
)

// OrderServiceWriter translates checkout's order draft into the order
// service's domain and delegates the lifecycle operations.
type OrderServiceWriter struct {
	svc *orderapp.Service
}

func NewOrderServiceWriter(svc *orderapp.Service) *OrderServiceWriter {
	return &OrderServiceWriter{svc: svc}
}

func (w *OrderServiceWriter) Create(ctx context.Context, draft checkoutdomain.OrderDraft) (checkoutdomain.Confirmation, error) {
	q := draft.Quote

	order := orderdomain.Order{
		CustomerID:        draft.CustomerID,
		Currency:          q.Currency,
		SubtotalAmount:    q.Subtotal,
		DiscountAmount:    q.Discount,
		ShippingAmount:    q.Shipping,
		TaxAmount:         q.Tax,
		TotalAmount:       q.Total,
		ShippingAddressID: draft.ShippingAddressID,
		PaymentMethod:     draft.PaymentMethod,
		DiscountCode:      q.DiscountCode,
	}
	for _, line := range q.Lines {
		order.Items = append(order.Items, orderdomain.OrderItem{
			ProductID:       line.ProductID,
			Name:            line.Name,
			UnitAmount:      line.UnitPrice.Amount,
			Quantity:        line.Quantity,
			LineTotalAmount: line.LineTotal.Amount,
		})
	}

	created, err := w.svc.CreateOrder(ctx, order)
	if err != nil {
		return checkoutdomain.Confirmation{}, err
	}
	return confirmation(created), nil
}

func (w *OrderServiceWriter) Cancel(ctx context.Context, orderID, reason string) (checkoutdomain.Confirmation, error) {
	cancelled, err := w.svc.Cancel(ctx, orderID, reason)
	if err != nil {
		return checkoutdomain.Confirmation{}, err
	}
	return confirmation(cancelled), nil
}

func (w *OrderServiceWriter) UpdateStatus(ctx context.Context, orderID, status string) (checkoutdomain.Confirmation, error) {
	updated, err := w.svc.UpdateStatus(ctx, orderID, orderdomain.Status(status))
	if err != nil {
		return checkoutdomain.Confirmation{}, err
	}
	return confirmation(updated), nil
}

func confirmation(o orderdomain.Order) checkoutdomain.Confirmation {
	return checkoutdomain.Confirmation{
		OrderID:     o.ID,
		Status:      string(o.Status),
		Currency:    o.Currency,
		TotalAmount: o.TotalAmount,
	}
}
