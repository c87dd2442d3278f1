package httpapi

import (
	"time"

	cartdomain "github.com/storefront-go/storefront/internal/cart/domain"
	catalogdomain "github.com/storefront-go/storefront/internal/catalog/domain"
	checkoutdomain "github.com/storefront-go/storefront/internal/checkout/domain"
	discountdomain "github.com/storefront-go/storefront/internal/discount/domain"
	orderdomain "github.com/storefront-go/storefront/internal/order/domain"
)

// View types keep the wire shape independent from the domain structs.
// All monetary amounts are integer cents.

type moneyView struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

type productView struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Price         moneyView          `json:"price"`
	Stock         int32              `json:"stock"`
	ImageURL      string             `json:"imageUrl,omitempty"`
	Categories    []categoryView     `json:"categories,omitempty"`
	Images        []productImageView `json:"images,omitempty"`
	AverageRating float64            `json:"averageRating"`
	ReviewCount   int32              `json:"reviewCount"`
	IsActive      bool               `json:"isActive"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type productImageView struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Position int32  `json:"position"`
}

type categoryView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

func toProductView(p catalogdomain.Product) productView {
	v := productView{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         moneyView{Currency: p.Price.Currency, Amount: p.Price.Amount},
		Stock:         p.Stock,
		ImageURL:      p.ImageURL,
		AverageRating: p.AverageRating,
		ReviewCount:   p.ReviewCount,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	for _, c := range p.Categories {
		v.Categories = append(v.Categories, toCategoryView(c))
	}
	for _, img := range p.Images {
		v.Images = append(v.Images, productImageView{ID: img.ID, URL: img.URL, Position: img.Position})
	}
	return v
}

func toProductViews(ps []catalogdomain.Product) []productView {
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProductView(p))
	}
	return out
}

func toCategoryView(c catalogdomain.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, Description: c.Description, IsActive: c.IsActive}
}

type cartItemView struct {
	ID            string `json:"id"`
	ProductID     string `json:"productId"`
	Quantity      int32  `json:"quantity"`
	PriceSnapshot int64  `json:"priceSnapshot"`
}

type cartView struct {
	ID         string         `json:"id"`
	CustomerID string         `json:"customerId"`
	Items      []cartItemView `json:"items"`
	ExpiresAt  time.Time      `json:"expiresAt"`
}

func toCartView(c cartdomain.Cart) cartView {
	v := cartView{ID: c.ID, CustomerID: c.CustomerID, Items: []cartItemView{}, ExpiresAt: c.ExpiresAt}
	for _, it := range c.Items {
		v.Items = append(v.Items, cartItemView{
			ID:            it.ID,
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			PriceSnapshot: it.PriceSnapshot,
		})
	}
	return v
}

type issueView struct {
	Kind      string `json:"kind"`
	ProductID string `json:"productId"`
	Message   string `json:"message"`
}

type validationReportView struct {
	Valid    bool        `json:"valid"`
	Errors   []issueView `json:"errors"`
	Warnings []issueView `json:"warnings"`
}

func toReportView(r cartdomain.ValidationReport) validationReportView {
	v := validationReportView{Valid: r.Valid(), Errors: []issueView{}, Warnings: []issueView{}}
	for _, is := range r.Errors {
		v.Errors = append(v.Errors, issueView{Kind: string(is.Kind), ProductID: is.ProductID, Message: is.Message})
	}
	for _, is := range r.Warnings {
		v.Warnings = append(v.Warnings, issueView{Kind: string(is.Kind), ProductID: is.ProductID, Message: is.Message})
	}
	return v
}

type quoteLineView struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	LineTotal int64  `json:"lineTotal"`
}

type quoteView struct {
	Lines        []quoteLineView `json:"lines"`
	Currency     string          `json:"currency"`
	Subtotal     int64           `json:"subtotal"`
	DiscountCode string          `json:"discountCode,omitempty"`
	Discount     int64           `json:"discount"`
	Shipping     int64           `json:"shipping"`
	Tax          int64           `json:"tax"`
	Total        int64           `json:"total"`
}

func toQuoteView(q checkoutdomain.Quote) quoteView {
	v := quoteView{
		Lines:        []quoteLineView{},
		Currency:     q.Currency,
		Subtotal:     q.Subtotal,
		DiscountCode: q.DiscountCode,
		Discount:     q.Discount,
		Shipping:     q.Shipping,
		Tax:          q.Tax,
		Total:        q.Total,
	}
	for _, l := range q.Lines {
		v.Lines = append(v.Lines, quoteLineView{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.Amount,
			LineTotal: l.LineTotal.Amount,
		})
	}
	return v
}

type confirmationView struct {
	OrderID     string `json:"orderId"`
	Status      string `json:"status"`
	Currency    string `json:"currency"`
	TotalAmount int64  `json:"totalAmount"`
}

func toConfirmationView(c checkoutdomain.Confirmation) confirmationView {
	return confirmationView{OrderID: c.OrderID, Status: c.Status, Currency: c.Currency, TotalAmount: c.TotalAmount}
}

type orderItemView struct {
	ID         string `json:"id"`
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	UnitAmount int64  `json:"unitAmount"`
	Quantity   int32  `json:"quantity"`
	LineTotal  int64  `json:"lineTotal"`
}

type orderView struct {
	ID                string          `json:"id"`
	CustomerID        string          `json:"customerId"`
	Status            string          `json:"status"`
	Currency          string          `json:"currency"`
	Subtotal          int64           `json:"subtotal"`
	Discount          int64           `json:"discount"`
	Shipping          int64           `json:"shipping"`
	Tax               int64           `json:"tax"`
	Total             int64           `json:"total"`
	ShippingAddressID string          `json:"shippingAddressId"`
	PaymentMethod     string          `json:"paymentMethod"`
	DiscountCode      string          `json:"discountCode,omitempty"`
	Items             []orderItemView `json:"items"`
	CreatedAt         time.Time       `json:"createdAt"`
}

func toOrderView(o orderdomain.Order) orderView {
	v := orderView{
		ID:                o.ID,
		CustomerID:        o.CustomerID,
		Status:            string(o.Status),
		Currency:          o.Currency,
		Subtotal:          o.SubtotalAmount,
		Discount:          o.DiscountAmount,
		Shipping:          o.ShippingAmount,
		Tax:               o.TaxAmount,
		Total:             o.TotalAmount,
		ShippingAddressID: o.ShippingAddressID,
		PaymentMethod:     o.PaymentMethod,
		DiscountCode:      o.DiscountCode,
		Items:             []orderItemView{},
		CreatedAt:         o.CreatedAt,
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, orderItemView{
			ID:         it.ID,
			ProductID:  it.ProductID,
			Name:       it.Name,
			UnitAmount: it.UnitAmount,
			Quantity:   it.Quantity,
			LineTotal:  it.LineTotalAmount,
		})
	}
	return v
}

func toOrderViews(os []orderdomain.Order) []orderView {
	out := make([]orderView, 0, len(os))
	for _, o := range os {
		out = append(out, toOrderView(o))
	}
	return out
}

type discountView struct {
	Code           string     `json:"code"`
	Type           string     `json:"type"`
	Value          int64      `json:"value"`
	MinOrderAmount int64      `json:"minOrderAmount"`
	MaxDiscount    int64      `json:"maxDiscount"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	UsageLimit     int32      `json:"usageLimit"`
	UsedCount      int32      `json:"usedCount"`
	IsActive       bool       `json:"isActive"`
}

func toDiscountView(c discountdomain.Code) discountView {
	return discountView{
		Code:           c.Code,
		Type:           string(c.Type),
		Value:          c.Value,
		MinOrderAmount: c.MinOrderAmount,
		MaxDiscount:    c.MaxDiscount,
		ExpiresAt:      c.ExpiresAt,
		UsageLimit:     c.UsageLimit,
		UsedCount:      c.UsedCount,
		IsActive:       c.IsActive,
	}
}
