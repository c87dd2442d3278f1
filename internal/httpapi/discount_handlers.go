package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storefront-go/storefront/internal/discount/domain"
)

type discountRequest struct {
	Code           string     `json:"code"`
	Type           string     `json:"type"`
	Value          int64      `json:"value"`
	MinOrderAmount int64      `json:"minOrderAmount"`
	MaxDiscount    int64      `json:"maxDiscount"`
	ExpiresAt      *time.Time `json:"expiresAt"`
	UsageLimit     int32      `json:"usageLimit"`
}

func (h *handlers) createDiscount(c *gin.Context) {
	var req discountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c)
		return
	}
	created, err := h.services.Discounts.Create(c.Request.Context(), domain.Code{
		Code:           req.Code,
		Type:           domain.Type(req.Type),
		Value:          req.Value,
		MinOrderAmount: req.MinOrderAmount,
		MaxDiscount:    req.MaxDiscount,
		ExpiresAt:      req.ExpiresAt,
		UsageLimit:     req.UsageLimit,
		IsActive:       true,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondCreated(c, toDiscountView(created))
}

func (h *handlers) listDiscounts(c *gin.Context) {
	codes, err := h.services.Discounts.List(c.Request.Context(), c.Query("all") != "true")
	if err != nil {
		respondErr(c, err)
		return
	}
	views := make([]discountView, 0, len(codes))
	for _, code := range codes {
		views = append(views, toDiscountView(code))
	}
	respondOK(c, views)
}

type validateDiscountRequest struct {
	Code        string `json:"code"`
	OrderAmount int64  `json:"orderAmount"`
}

func (h *handlers) validateDiscount(c *gin.Context) {
	var req validateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c)
		return
	}
	applied, err := h.services.Discounts.Validate(c.Request.Context(), req.Code, req.OrderAmount)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"code": applied.Code, "amount": applied.Amount})
}

func (h *handlers) deactivateDiscount(c *gin.Context) {
	if err := h.services.Discounts.Deactivate(c.Request.Context(), c.Param("code")); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"deactivated": true})
}
