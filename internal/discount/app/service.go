package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/storefront-go/storefront/internal/apperr"
	"github.com/storefront-go/storefront/internal/discount/domain"
)

// Ledger is the discount-code lookup and usage accounting service.
// Validation and redemption are separate reads of the same rules; the
// usage-limit admission itself happens inside the repo's conditional
// update, so two concurrent checkouts cannot overrun the limit.
type Ledger struct {
	repo DiscountRepo
	log  *slog.Logger
	now  func() time.Time
}

func NewLedger(repo DiscountRepo, log *slog.Logger) *Ledger {
	return &Ledger{repo: repo, log: log, now: time.Now}
}

// Validate checks eligibility against orderAmount without consuming a
// use. The returned amount is what redemption would grant right now.
func (l *Ledger) Validate(ctx context.Context, code string, orderAmount int64) (domain.Applied, error) {
	c, err := l.lookup(ctx, code)
	if err != nil {
		return domain.Applied{}, err
	}
	if err := l.eligible(c, orderAmount); err != nil {
		l.log.Warn("discount code rejected",
			slog.String("code", c.Code),
			slog.String("reason", apperr.CodeOf(err)))
		return domain.Applied{}, err
	}
	return domain.Applied{Code: c.Code, Amount: c.DiscountFor(orderAmount)}, nil
}

// Redeem validates and consumes one use. The increment is conditional
// on remaining headroom, so passing Validate first is no guarantee; a
// concurrent checkout may take the last use in between, and this
// surfaces as DISCOUNT_LIMIT_REACHED.
func (l *Ledger) Redeem(ctx context.Context, code string, orderAmount int64) (domain.Applied, error) {
	applied, err := l.Validate(ctx, code, orderAmount)
	if err != nil {
		return domain.Applied{}, err
	}

	ok, err := l.repo.Redeem(ctx, applied.Code)
	if err != nil {
		return domain.Applied{}, err
	}
	if !ok {
		l.log.Warn("discount redemption lost the race for the last use",
			slog.String("code", applied.Code))
		return domain.Applied{}, apperr.Businessf(apperr.CodeDiscountLimitReached,
			"discount code %s has reached its usage limit", applied.Code)
	}

	l.log.Info("discount redeemed",
		slog.String("code", applied.Code),
		slog.Int64("amount", applied.Amount))
	return applied, nil
}

// Release hands a use back after a failed checkout.
func (l *Ledger) Release(ctx context.Context, code string) error {
	code = normalize(code)
	if code == "" {
		return apperr.Validation("code", "discount code is required")
	}
	return l.repo.Release(ctx, code)
}

func (l *Ledger) lookup(ctx context.Context, code string) (domain.Code, error) {
	code = normalize(code)
	if code == "" {
		return domain.Code{}, apperr.Validation("code", "discount code is required")
	}

	c, err := l.repo.GetByCode(ctx, code)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return domain.Code{}, apperr.Businessf(apperr.CodeDiscountNotFound,
				"discount code %s does not exist", code)
		}
		return domain.Code{}, err
	}
	return c, nil
}

func (l *Ledger) eligible(c domain.Code, orderAmount int64) error {
	if !c.IsActive {
		return apperr.Businessf(apperr.CodeDiscountInactive,
			"discount code %s is not active", c.Code)
	}
	if c.ExpiresAt != nil && l.now().After(*c.ExpiresAt) {
		return apperr.Businessf(apperr.CodeDiscountExpired,
			"discount code %s expired", c.Code)
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return apperr.Businessf(apperr.CodeDiscountLimitReached,
			"discount code %s has reached its usage limit", c.Code)
	}
	if c.MinOrderAmount > 0 && orderAmount < c.MinOrderAmount {
		return apperr.Businessf(apperr.CodeDiscountMinOrder,
			"order amount %d is below the %d minimum for code %s",
			orderAmount, c.MinOrderAmount, c.Code)
	}
	return nil
}

func (l *Ledger) Create(ctx context.Context, c domain.Code) (domain.Code, error) {
	c.Code = normalize(c.Code)
	if c.Code == "" {
		return domain.Code{}, apperr.Validation("code", "discount code is required")
	}
	if c.Type != domain.TypePercentage && c.Type != domain.TypeFixed {
		return domain.Code{}, apperr.Validationf("type", "unknown discount type %q", c.Type)
	}
	if c.Value <= 0 {
		return domain.Code{}, apperr.Validationf("value", "value must be positive, got %d", c.Value)
	}
	if c.Type == domain.TypePercentage && c.Value > 100 {
		return domain.Code{}, apperr.Validationf("value", "percentage cannot exceed 100, got %d", c.Value)
	}

	created, err := l.repo.Create(ctx, c)
	if err != nil {
		return domain.Code{}, err
	}
	l.log.Info("discount code created", slog.String("code", created.Code))
	return created, nil
}

func (l *Ledger) List(ctx context.Context, activeOnly bool) ([]domain.Code, error) {
	return l.repo.List(ctx, activeOnly)
}

func (l *Ledger) Deactivate(ctx context.Context, code string) error {
	code = normalize(code)
	if code == "" {
		return apperr.Validation("code", "discount code is required")
	}
	return l.repo.Deactivate(ctx, code)
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
