package httpapi

import (
	"github.com/gin-gonic/gin"
)

func (h *handlers) getCart(c *gin.Context) {
	cart, err := h.services.Cart.GetOrCreateCart(c.Request.Context(), h.customerID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, toCartView(cart))
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c)
		return
	}
	cart, err := h.services.Cart.AddItem(c.Request.Context(), h.customerID(c), req.ProductID, req.Quantity)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, toCartView(cart))
}

type updateItemRequest struct {
	Quantity int32 `json:"quantity"`
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c)
		return
	}
	cart, err := h.services.Cart.UpdateItem(c.Request.Context(), h.customerID(c), c.Param("itemId"), req.Quantity)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, toCartView(cart))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	cart, err := h.services.Cart.RemoveItem(c.Request.Context(), h.customerID(c), c.Param("itemId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, toCartView(cart))
}

func (h *handlers) clearCart(c *gin.Context) {
	if err := h.services.Cart.ClearCart(c.Request.Context(), h.customerID(c)); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"cleared": true})
}

func (h *handlers) validateCart(c *gin.Context) {
	report, err := h.services.Cart.ValidateCart(c.Request.Context(), h.customerID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, toReportView(report))
}
