package domain

// IssueKind classifies a finding from cart validation.
type IssueKind string

// Checkout-blocking findings.
const (
	IssueProductUnavailable IssueKind = "product_unavailable"
	IssueOutOfStock         IssueKind = "out_of_stock"
	IssueInsufficientStock  IssueKind = "insufficient_stock"
	IssuePriceChanged       IssueKind = "price_changed"
)

// Non-blocking findings.
const (
	IssueLowStock      IssueKind = "low_stock"
	IssuePriceIncrease IssueKind = "price_increase"
)

// LowStockThreshold is the remaining-stock level at or below which a
// low_stock warning is raised.
const LowStockThreshold = 5

type Issue struct {
	Kind      IssueKind
	ProductID string
	Message   string
}

// ValidationReport separates blocking errors from advisory warnings.
// A cart is checkout-ready only when Errors is empty.
type ValidationReport struct {
	Errors   []Issue
	Warnings []Issue
}

func (r ValidationReport) Valid() bool { return len(r.Errors) == 0 }
