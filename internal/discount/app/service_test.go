package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/storefront-go/storefront/internal/apperr"
	"github.com/storefront-go/storefront/internal/discount/domain"
	"github.com/storefront-go/storefront/pkg/logger"
)

type fakeDiscountRepo struct {
	mu    sync.Mutex
	codes map[string]*domain.Code
}

func newFakeDiscountRepo(codes ...domain.Code) *fakeDiscountRepo {
	r := &fakeDiscountRepo{codes: map[string]*domain.Code{}}
	for i := range codes {
		c := codes[i]
		r.codes[c.Code] = &c
	}
	return r
}

func (r *fakeDiscountRepo) GetByCode(_ context.Context, code string) (domain.Code, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[code]
	if !ok {
		return domain.Code{}, apperr.Businessf(apperr.CodeNotFound, "discount code %s not found", code)
	}
	return *c, nil
}

func (r *fakeDiscountRepo) Redeem(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[code]
	if !ok {
		return false, nil
	}
	if !c.IsActive {
		return false, nil
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return false, nil
	}
	c.UsedCount++
	return true, nil
}

func (r *fakeDiscountRepo) Release(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.codes[code]; ok && c.UsedCount > 0 {
		c.UsedCount--
	}
	return nil
}

func (r *fakeDiscountRepo) Create(_ context.Context, c domain.Code) (domain.Code, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := c
	r.codes[c.Code] = &stored
	return c, nil
}

func (r *fakeDiscountRepo) List(_ context.Context, activeOnly bool) ([]domain.Code, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Code
	for _, c := range r.codes {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeDiscountRepo) Deactivate(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.codes[code]; ok {
		c.IsActive = false
	}
	return nil
}

func welcome10() domain.Code {
	return domain.Code{
		Code:           "WELCOME10",
		Type:           domain.TypePercentage,
		Value:          10,
		MinOrderAmount: 5000,
		MaxDiscount:    2000,
		UsageLimit:     100,
		IsActive:       true,
	}
}

func TestValidatePercentageCap(t *testing.T) {
	ledger := NewLedger(newFakeDiscountRepo(welcome10()), logger.Discard())

	// 10% of 30000 is 3000, but the cap holds it at 2000.
	applied, err := ledger.Validate(context.Background(), "WELCOME10", 30000)
	require.NoError(t, err)
	assert.EqualValues(t, 2000, applied.Amount)
}

func TestValidateCaseInsensitive(t *testing.T) {
	ledger := NewLedger(newFakeDiscountRepo(welcome10()), logger.Discard())

	applied, err := ledger.Validate(context.Background(), "  welcome10 ", 10000)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", applied.Code)
	assert.EqualValues(t, 1000, applied.Amount)
}

func TestValidateFixedClampedToOrder(t *testing.T) {
	repo := newFakeDiscountRepo(domain.Code{
		Code: "FIVEOFF", Type: domain.TypeFixed, Value: 500, IsActive: true,
	})
	ledger := NewLedger(repo, logger.Discard())

	applied, err := ledger.Validate(context.Background(), "FIVEOFF", 300)
	require.NoError(t, err)
	assert.EqualValues(t, 300, applied.Amount, "a fixed discount never exceeds the order amount")
}

func TestValidateRejections(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	repo := newFakeDiscountRepo(
		domain.Code{Code: "INACTIVE", Type: domain.TypeFixed, Value: 100, IsActive: false},
		domain.Code{Code: "EXPIRED", Type: domain.TypeFixed, Value: 100, IsActive: true, ExpiresAt: &past},
		domain.Code{Code: "SPENT", Type: domain.TypeFixed, Value: 100, IsActive: true, UsageLimit: 5, UsedCount: 5},
		welcome10(),
	)
	ledger := NewLedger(repo, logger.Discard())
	ctx := context.Background()

	cases := []struct {
		code   string
		amount int64
		want   string
	}{
		{"MISSING", 10000, apperr.CodeDiscountNotFound},
		{"INACTIVE", 10000, apperr.CodeDiscountInactive},
		{"EXPIRED", 10000, apperr.CodeDiscountExpired},
		{"SPENT", 10000, apperr.CodeDiscountLimitReached},
		{"WELCOME10", 4999, apperr.CodeDiscountMinOrder},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			_, err := ledger.Validate(ctx, tc.code, tc.amount)
			assert.Equal(t, tc.want, apperr.CodeOf(err))
		})
	}
}

func TestRedeemConsumesUse(t *testing.T) {
	repo := newFakeDiscountRepo(welcome10())
	ledger := NewLedger(repo, logger.Discard())

	_, err := ledger.Redeem(context.Background(), "WELCOME10", 10000)
	require.NoError(t, err)
	assert.EqualValues(t, 1, repo.codes["WELCOME10"].UsedCount)

	require.NoError(t, ledger.Release(context.Background(), "WELCOME10"))
	assert.EqualValues(t, 0, repo.codes["WELCOME10"].UsedCount)
}

func TestConcurrentRedeemRespectsLimit(t *testing.T) {
	code := welcome10()
	code.UsageLimit = 3
	repo := newFakeDiscountRepo(code)
	ledger := NewLedger(repo, logger.Discard())

	const N = 20
	var succeeded int32
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			_, err := ledger.Redeem(ctx, "WELCOME10", 10000)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return nil
			}
			if apperr.IsCode(err, apperr.CodeDiscountLimitReached) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 3, succeeded)
	assert.EqualValues(t, 3, repo.codes["WELCOME10"].UsedCount,
		"used_count must never overrun the usage limit")
}

func TestCreateValidation(t *testing.T) {
	ledger := NewLedger(newFakeDiscountRepo(), logger.Discard())
	ctx := context.Background()

	_, err := ledger.Create(ctx, domain.Code{Type: domain.TypeFixed, Value: 100})
	assert.True(t, apperr.IsValidation(err), "missing code")

	_, err = ledger.Create(ctx, domain.Code{Code: "X", Type: "weird", Value: 100})
	assert.True(t, apperr.IsValidation(err), "unknown type")

	_, err = ledger.Create(ctx, domain.Code{Code: "X", Type: domain.TypePercentage, Value: 150})
	assert.True(t, apperr.IsValidation(err), "percentage over 100")

	created, err := ledger.Create(ctx, domain.Code{Code: "ok10", Type: domain.TypePercentage, Value: 10, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "OK10", created.Code, "codes are stored upper-cased")
}
