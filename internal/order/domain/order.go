package domain

import "time"

type Order struct {
	ID                string
	CustomerID        string
	Status            Status
	Currency          string
	SubtotalAmount    int64
	DiscountAmount    int64
	ShippingAmount    int64
	TaxAmount         int64
	TotalAmount       int64
	ShippingAddressID string
	PaymentMethod     string
	DiscountCode      string
	Items             []OrderItem
	Payment           *Payment
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderItem freezes the unit price at creation; later catalog price
// changes never touch it.
type OrderItem struct {
	ID              string
	OrderID         string
	ProductID       string
	Name            string
	UnitAmount      int64
	Quantity        int32
	LineTotalAmount int64
}

// Payment is a stub record; no gateway is involved.
type Payment struct {
	ID        string
	OrderID   string
	Method    string
	Status    string
	Amount    int64
	CreatedAt time.Time
}

// PaymentMethodCOD orders skip the payment stub entirely.
const PaymentMethodCOD = "cash_on_delivery"

const PaymentStatusPending = "PENDING"
