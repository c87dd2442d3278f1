package domain

import "time"

type Type string

const (
	TypePercentage Type = "percentage"
	TypeFixed      Type = "fixed"
)

// Code is one discount code. Codes are matched case-insensitively;
// UsedCount against UsageLimit is the sole admission control.
type Code struct {
	Code           string
	Type           Type
	Value          int64 // percent points, or cents for fixed
	MinOrderAmount int64 // cents, 0 = no minimum
	MaxDiscount    int64 // cents, caps percentage discounts, 0 = no cap
	ExpiresAt      *time.Time
	UsageLimit     int32 // 0 = unlimited
	UsedCount      int32
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DiscountFor computes the discount amount for orderAmount, assuming
// the code itself has already been accepted. Never exceeds orderAmount.
func (c Code) DiscountFor(orderAmount int64) int64 {
	var d int64
	switch c.Type {
	case TypeFixed:
		d = c.Value
	case TypePercentage:
		d = orderAmount * c.Value / 100
		if c.MaxDiscount > 0 && d > c.MaxDiscount {
			d = c.MaxDiscount
		}
	}
	if d > orderAmount {
		d = orderAmount
	}
	return d
}

// Applied is the outcome of a successful validation or redemption.
type Applied struct {
	Code   string
	Amount int64
}
