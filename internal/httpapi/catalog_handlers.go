package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/storefront-go/storefront/internal/catalog/app"
	"github.com/storefront-go/storefront/internal/catalog/domain"
)

func filterFromQuery(c *gin.Context) domain.ProductFilter {
	f := domain.ProductFilter{
		Query:      c.Query("q"),
		CategoryID: c.Query("category"),
		SortBy:     c.Query("sortBy"),
		SortDesc:   c.Query("order") == "desc",
		ActiveOnly: true,
	}
	f.MinPrice, _ = strconv.ParseInt(c.Query("minPrice"), 10, 64)
	f.MaxPrice, _ = strconv.ParseInt(c.Query("maxPrice"), 10, 64)
	f.InStockOnly = c.Query("inStock") == "true"
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return f
}

func (h *handlers) listProducts(c *gin.Context) {
	page, err := h.services.Catalog.ListProducts(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, paginated{
		Data: toProductViews(page.Products),
		Pagination: pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages(),
		},
	})
}

func (h *handlers) searchProducts(c *gin.Context) {
	page, err := h.services.Catalog.SearchProducts(c.Request.Context(), c.Query("q"), filterFromQuery(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, paginated{
		Data: toProductViews(page.Products),
		Pagination: pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages(),
		},
	})
}

func (h *handlers) featuredProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	products, err := h.services.Catalog.GetFeaturedProducts(c.Request.Context(), limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, toProductViews(products))
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.services.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, toProductView(p))
}

func (h *handlers) relatedProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "4"))
	products, err := h.services.Catalog.GetRelatedProducts(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, toProductViews(products))
}

type productRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Currency    string   `json:"currency"`
	PriceAmount int64    `json:"priceAmount"`
	Stock       int32    `json:"stock"`
	ImageURL    string   `json:"imageUrl"`
	CategoryIDs []string `json:"categoryIds"`
	IsActive    bool     `json:"isActive"`
}

func (r productRequest) input() app.ProductInput {
	return app.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Currency:    r.Currency,
		PriceAmount: r.PriceAmount,
		Stock:       r.Stock,
		ImageURL:    r.ImageURL,
		CategoryIDs: r.CategoryIDs,
		IsActive:    r.IsActive,
	}
}

func (h *handlers) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c)
		return
	}
	p, err := h.services.Catalog.CreateProduct(c.Request.Context(), req.input())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondCreated(c, toProductView(p))
}

func (h *handlers) updateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c)
		return
	}
	p, err := h.services.Catalog.UpdateProduct(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, toProductView(p))
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.services.Catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

func (h *handlers) listCategories(c *gin.Context) {
	categories, err := h.services.Catalog.ListCategories(c.Request.Context(), c.Query("all") != "true")
	if err != nil {
		respondErr(c, err)
		return
	}
	views := make([]categoryView, 0, len(categories))
	for _, cat := range categories {
		views = append(views, toCategoryView(cat))
	}
	respondOK(c, views)
}

func (h *handlers) getCategory(c *gin.Context) {
	cat, err := h.services.Catalog.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, toCategoryView(cat))
}

func (h *handlers) productsByCategory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	result, err := h.services.Catalog.GetProductsByCategory(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, paginated{
		Data: toProductViews(result.Products),
		Pagination: pagination{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: result.TotalPages(),
		},
	})
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

func (h *handlers) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c)
		return
	}
	cat, err := h.services.Catalog.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondCreated(c, toCategoryView(cat))
}

func (h *handlers) updateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c)
		return
	}
	cat := domain.Category{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}
	updated, err := h.services.Catalog.UpdateCategory(c.Request.Context(), cat)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, toCategoryView(updated))
}

func (h *handlers) deleteCategory(c *gin.Context) {
	if err := h.services.Catalog.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}
