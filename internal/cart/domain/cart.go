package domain

import "time"

// Quantity bounds for a single cart line.
const (
	MinQuantity = 1
	MaxQuantity = 100
)

type CartItem struct {
	ID        string
	CartID    string
	ProductID string
	Quantity  int32
	// PriceSnapshot is the unit price (cents) last shown to the
	// customer. It is never authoritative: totals always use the live
	// product price. It only serves as the baseline for price-change
	// findings during validation.
	PriceSnapshot int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Cart struct {
	ID         string
	CustomerID string
	Items      []CartItem
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (c Cart) ItemQuantity(productID string) int32 {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it.Quantity
		}
	}
	return 0
}

func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }
