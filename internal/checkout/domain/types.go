package domain

type Money struct {
	Currency string
	Amount   int64
}

type QuoteLine struct {
	ProductID string
	Name      string
	Quantity  int32
	UnitPrice Money
	LineTotal Money
}

// Quote is a cart priced against the live catalog at one instant.
// Totals are cents; Tax is a 0 placeholder until tax rules exist.
type Quote struct {
	Lines        []QuoteLine
	Currency     string
	Subtotal     int64
	DiscountCode string
	Discount     int64
	Shipping     int64
	Tax          int64
	Total        int64
}

type CheckoutRequest struct {
	CustomerID        string
	ShippingAddressID string
	BillingAddressID  string
	PaymentMethod     string
	DiscountCode      string
}

// OrderDraft is everything the order writer needs to commit a quote.
type OrderDraft struct {
	CustomerID        string
	ShippingAddressID string
	PaymentMethod     string
	Quote             Quote
}

// Confirmation is the caller-facing result of a committed checkout.
type Confirmation struct {
	OrderID     string
	Status      string
	Currency    string
	TotalAmount int64
}
