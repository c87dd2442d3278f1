package adapter

import (
	"context"

	checkoutapp "github.com/storefront-go/storefront/internal/checkout/app"
	discountapp "github.com/storefront-go/storefront/internal/discount/app"
)

type DiscountServiceLedger struct {
	svc *discountapp.Ledger
}

func NewDiscountServiceLedger(svc *discountapp.Ledger) *DiscountServiceLedger {
	return &DiscountServiceLedger{svc: svc}
}

func (l *DiscountServiceLedger) Validate(ctx context.Context, code string, orderAmount int64) (checkoutapp.Discount, error) {
	applied, err := l.svc.Validate(ctx, code, orderAmount)
	if err != nil {
		return checkoutapp.Discount{}, err
	}
	return checkoutapp.Discount{Code: applied.Code, Amount: applied.Amount}, nil
}

func (l *DiscountServiceLedger) Redeem(ctx context.Context, code string, orderAmount int64) (checkoutapp.Discount, error) {
	applied, err := l.svc.Redeem(ctx, code, orderAmount)
	if err != nil {
		return checkoutapp.Discount{}, err
	}
	return checkoutapp.Discount{Code: applied.Code, Amount: applied.Amount}, nil
}

func (l *DiscountServiceLedger) Release(ctx context.Context, code string) error {
	return l.svc.Release(ctx, code)
}
