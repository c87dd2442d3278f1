package app

import (
	"context"

	"github.com/storefront-go/storefront/internal/discount/domain"
)

type DiscountRepo interface {
	// GetByCode matches case-insensitively.
	GetByCode(ctx context.Context, code string) (domain.Code, error)

	// Redeem increments used_count only while the usage limit still
	// has headroom, in a single conditional update. Returns false when
	// the limit was already exhausted.
	Redeem(ctx context.Context, code string) (bool, error)

	// Release decrements used_count; the compensation for Redeem.
	Release(ctx context.Context, code string) error

	Create(ctx context.Context, c domain.Code) (domain.Code, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Code, error)
	Deactivate(ctx context.Context, code string) error
}
