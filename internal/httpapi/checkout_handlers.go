package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/storefront-go/storefront/internal/apperr"
	"github.com/storefront-go/storefront/internal/checkout/domain"
	orderdomain "github.com/storefront-go/storefront/internal/order/domain"
)

type quoteRequest struct {
	DiscountCode string `json:"discountCode"`
}

func (h *handlers) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c)
		return
	}
	q, err := h.services.Checkout.Quote(c.Request.Context(), h.customerID(c), req.DiscountCode)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, toQuoteView(q))
}

type checkoutRequest struct {
	ShippingAddressID string `json:"shippingAddressId"`
	BillingAddressID  string `json:"billingAddressId"`
	PaymentMethod     string `json:"paymentMethod"`
	DiscountCode      string `json:"discountCode"`
}

func (h *handlers) processCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c)
		return
	}
	conf, err := h.services.Checkout.ProcessCheckout(c.Request.Context(), domain.CheckoutRequest{
		CustomerID:        h.customerID(c),
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		PaymentMethod:     req.PaymentMethod,
		DiscountCode:      req.DiscountCode,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondCreated(c, toConfirmationView(conf))
}

func (h *handlers) listOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	orders, total, err := h.services.Orders.ListOrders(c.Request.Context(), h.customerID(c), page, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	respondOK(c, paginated{
		Data:       toOrderViews(orders),
		Pagination: pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages},
	})
}

func (h *handlers) getOrder(c *gin.Context) {
	order, ok := h.ownedOrder(c)
	if !ok {
		return
	}
	respondOK(c, toOrderView(order))
}

// ownedOrder loads the path order and scopes it to the calling
// customer. Other customers' orders answer as not found rather than
// confirming they exist; every order read AND write goes through this.
func (h *handlers) ownedOrder(c *gin.Context) (orderdomain.Order, bool) {
	order, err := h.services.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return orderdomain.Order{}, false
	}
	if order.CustomerID != h.customerID(c) {
		respondErr(c, apperr.Businessf(apperr.CodeOrderNotFound, "order %s not found", c.Param("id")))
		return orderdomain.Order{}, false
	}
	return order, true
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *handlers) cancelOrder(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c)
		return
	}
	if _, ok := h.ownedOrder(c); !ok {
		return
	}
	conf, err := h.services.Checkout.CancelOrder(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, toConfirmationView(conf))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *handlers) updateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c)
		return
	}
	if _, ok := h.ownedOrder(c); !ok {
		return
	}
	conf, err := h.services.Checkout.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, toConfirmationView(conf))
}
