package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-go/storefront/internal/apperr"
	checkoutapp "github.com/storefront-go/storefront/internal/checkout/app"
	checkoutadapter "github.com/storefront-go/storefront/internal/checkout/infra/adapter"
	orderapp "github.com/storefront-go/storefront/internal/order/app"
	orderdomain "github.com/storefront-go/storefront/internal/order/domain"
	"github.com/storefront-go/storefront/pkg/logger"
)

type stubOrderRepo struct {
	orders map[string]*orderdomain.Order
}

func (r *stubOrderRepo) CreateOrderTx(_ context.Context, order orderdomain.Order) (orderdomain.Order, error) {
	r.orders[order.ID] = &order
	return order, nil
}

func (r *stubOrderRepo) Get(_ context.Context, id string) (orderdomain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return orderdomain.Order{}, apperr.Businessf(apperr.CodeOrderNotFound, "order %s not found", id)
	}
	return *o, nil
}

func (r *stubOrderRepo) ListByCustomer(_ context.Context, customerID string, _, _ int) ([]orderdomain.Order, int, error) {
	var out []orderdomain.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id string, from, to orderdomain.Status) (bool, error) {
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (r *stubOrderRepo) CancelTx(_ context.Context, id string, from orderdomain.Status) (bool, error) {
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = orderdomain.StatusCancelled
	return true, nil
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateCache() {}

// noopPorts satisfies every checkout collaborator the order routes
// never reach.
type noopPorts struct{}

func (noopPorts) GetCart(context.Context, string) (checkoutapp.Cart, error) {
	return checkoutapp.Cart{}, nil
}
func (noopPorts) Clear(context.Context, string) error { return nil }
func (noopPorts) GetProduct(context.Context, string) (checkoutapp.Product, error) {
	return checkoutapp.Product{}, nil
}
func (noopPorts) Reserve(context.Context, string, int32) error { return nil }
func (noopPorts) Restore(context.Context, string, int32) error { return nil }
func (noopPorts) Validate(context.Context, string, int64) (checkoutapp.Discount, error) {
	return checkoutapp.Discount{}, nil
}
func (noopPorts) Redeem(context.Context, string, int64) (checkoutapp.Discount, error) {
	return checkoutapp.Discount{}, nil
}
func (noopPorts) Release(context.Context, string) error { return nil }
func (noopPorts) BelongsTo(context.Context, string, string) (bool, error) {
	return true, nil
}

func orderTestRouter(t *testing.T) (*gin.Engine, *stubOrderRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &stubOrderRepo{orders: map[string]*orderdomain.Order{
		"o-1": {
			ID:          "o-1",
			CustomerID:  "cust-b",
			Status:      orderdomain.StatusPending,
			Currency:    "USD",
			TotalAmount: 10500,
			Items: []orderdomain.OrderItem{
				{ProductID: "p-1", Quantity: 2, UnitAmount: 5000, LineTotalAmount: 10000},
			},
		},
	}}
	orderSvc := orderapp.NewService(repo, noopInvalidator{}, logger.Discard())

	np := noopPorts{}
	checkoutSvc := checkoutapp.NewService(
		np, np, np, np, np,
		checkoutadapter.NewOrderServiceWriter(orderSvc),
		checkoutapp.Pricing{FlatShippingFee: 500, FreeShippingThreshold: 10000},
		1, logger.Discard(),
	)

	router := NewRouter(Services{Orders: orderSvc, Checkout: checkoutSvc}, logger.Discard())
	return router, repo
}

func doJSON(router *gin.Engine, method, path, customerID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if customerID != "" {
		req.Header.Set(customerHeader, customerID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestOrderRoutesAreOwnerScoped(t *testing.T) {
	router, repo := orderTestRouter(t)

	t.Run("foreign order read answers not found", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/api/orders/o-1", "cust-a", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("foreign order cannot be cancelled", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/orders/o-1/cancel", "cust-a", `{"reason":"not mine"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, orderdomain.StatusPending, repo.orders["o-1"].Status,
			"a rejected cancel must leave the order untouched")
	})

	t.Run("foreign order status cannot be flipped", func(t *testing.T) {
		rec := doJSON(router, http.MethodPut, "/api/orders/o-1/status", "cust-a", `{"status":"CONFIRMED"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, orderdomain.StatusPending, repo.orders["o-1"].Status)
	})

	t.Run("owner reads and cancels", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/api/orders/o-1", "cust-b", "")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(router, http.MethodPost, "/api/orders/o-1/cancel", "cust-b", `{"reason":"changed my mind"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, orderdomain.StatusCancelled, repo.orders["o-1"].Status)
	})
}
