package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/storefront-go/storefront/internal/apperr"
	"github.com/storefront-go/storefront/internal/cart/domain"
	"github.com/storefront-go/storefront/pkg/cache"
	"github.com/storefront-go/storefront/pkg/logger"
)

// fakeStore backs both the cart repo and the product reader so the
// add-item guard can consult live stock the way the SQL guard does.
type fakeStore struct {
	mu       sync.Mutex
	products map[string]ProductView
	carts    map[string]*domain.Cart // customerID -> cart
	items    map[string]*domain.CartItem
	nextID   int
}

func newFakeStore(products ...ProductView) *fakeStore {
	s := &fakeStore{
		products: map[string]ProductView{},
		carts:    map[string]*domain.Cart{},
		items:    map[string]*domain.CartItem{},
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *fakeStore) GetProduct(_ context.Context, productID string) (ProductView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return ProductView{}, apperr.Businessf(apperr.CodeNotFound, "product %s not found", productID)
	}
	return p, nil
}

func (s *fakeStore) setStock(productID string, stock int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[productID]
	p.Stock = stock
	s.products[productID] = p
}

func (s *fakeStore) setPrice(productID string, amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[productID]
	p.Amount = amount
	s.products[productID] = p
}

func (s *fakeStore) GetOrCreate(_ context.Context, customerID string) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[customerID]
	if !ok {
		c = &domain.Cart{ID: s.id("cart"), CustomerID: customerID}
		s.carts[customerID] = c
	}
	out := *c
	out.Items = append([]domain.CartItem(nil), c.Items...)
	return out, nil
}

func (s *fakeStore) GetItem(_ context.Context, itemID string) (domain.CartItem, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	if !ok {
		return domain.CartItem{}, "", apperr.Businessf(apperr.CodeNotFound, "cart item %s not found", itemID)
	}
	for _, c := range s.carts {
		if c.ID == it.CartID {
			return *it, c.CustomerID, nil
		}
	}
	return domain.CartItem{}, "", apperr.Businessf(apperr.CodeNotFound, "cart %s not found", it.CartID)
}

func (s *fakeStore) AddItemGuarded(_ context.Context, cartID, productID string, qty, maxQty int32, priceSnapshot int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := maxQty
	if p, ok := s.products[productID]; ok && p.Stock < limit {
		limit = p.Stock
	}

	for _, c := range s.carts {
		if c.ID != cartID {
			continue
		}
		for i := range c.Items {
			if c.Items[i].ProductID == productID {
				if c.Items[i].Quantity+qty > limit {
					return false, nil
				}
				c.Items[i].Quantity += qty
				c.Items[i].PriceSnapshot = priceSnapshot
				s.items[c.Items[i].ID].Quantity = c.Items[i].Quantity
				return true, nil
			}
		}
		if qty > limit {
			return false, nil
		}
		it := domain.CartItem{
			ID:            s.id("item"),
			CartID:        cartID,
			ProductID:     productID,
			Quantity:      qty,
			PriceSnapshot: priceSnapshot,
		}
		c.Items = append(c.Items, it)
		stored := it
		s.items[it.ID] = &stored
		return true, nil
	}
	return false, apperr.Businessf(apperr.CodeNotFound, "cart %s not found", cartID)
}

func (s *fakeStore) SetItemQuantityGuarded(_ context.Context, itemID string, qty, maxQty int32) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	if !ok {
		return false, apperr.Businessf(apperr.CodeNotFound, "cart item %s not found", itemID)
	}
	limit := maxQty
	if p, ok := s.products[it.ProductID]; ok && p.Stock < limit {
		limit = p.Stock
	}
	if qty > limit {
		return false, nil
	}
	it.Quantity = qty
	for _, c := range s.carts {
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items[i].Quantity = qty
			}
		}
	}
	return true, nil
}

func (s *fakeStore) RemoveItem(_ context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	if !ok {
		return apperr.Businessf(apperr.CodeNotFound, "cart item %s not found", itemID)
	}
	delete(s.items, itemID)
	for _, c := range s.carts {
		if c.ID != it.CartID {
			continue
		}
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (s *fakeStore) Clear(_ context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.carts {
		if c.ID == cartID {
			for _, it := range c.Items {
				delete(s.items, it.ID)
			}
			c.Items = nil
		}
	}
	return nil
}

func newCartService(store *fakeStore) *Service {
	return NewService(store, store, cache.New[any](time.Minute), logger.Discard())
}

func TestAddItemMergesQuantities(t *testing.T) {
	store := newFakeStore(ProductView{ID: "p-1", Amount: 5000, Stock: 10, IsActive: true, Available: true})
	svc := newCartService(store)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "cust-1", "p-1", 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.EqualValues(t, 2, cart.Items[0].Quantity)

	cart, err = svc.AddItem(ctx, "cust-1", "p-1", 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "merge must never create a duplicate line")
	assert.EqualValues(t, 5, cart.Items[0].Quantity)
}

func TestAddItemQuantityBounds(t *testing.T) {
	store := newFakeStore(ProductView{ID: "p-1", Amount: 5000, Stock: 200, IsActive: true, Available: true})
	svc := newCartService(store)
	ctx := context.Background()

	for _, qty := range []int32{0, -1, 101} {
		_, err := svc.AddItem(ctx, "cust-1", "p-1", qty)
		assert.True(t, apperr.IsValidation(err), "quantity %d must be rejected", qty)
	}
}

func TestAddItemInsufficientStockDoesNotMutate(t *testing.T) {
	store := newFakeStore(ProductView{ID: "p-1", Amount: 5000, Stock: 3, IsActive: true, Available: true})
	svc := newCartService(store)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "cust-1", "p-1", 5)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInsufficientStock, apperr.CodeOf(err))

	cart, err := svc.GetOrCreateCart(ctx, "cust-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items, "failed add must not touch the cart")
}

func TestAddItemMergeGuardUsesSummedQuantity(t *testing.T) {
	store := newFakeStore(ProductView{ID: "p-1", Amount: 5000, Stock: 4, IsActive: true, Available: true})
	svc := newCartService(store)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "cust-1", "p-1", 3)
	require.NoError(t, err)

	// Delta alone fits the stock; the post-merge sum does not.
	_, err = svc.AddItem(ctx, "cust-1", "p-1", 2)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInsufficientStock, apperr.CodeOf(err))

	cart, err := svc.GetOrCreateCart(ctx, "cust-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, cart.Items[0].Quantity)
}

func TestUpdateAndRemoveEnforceOwnership(t *testing.T) {
	store := newFakeStore(ProductView{ID: "p-1", Amount: 5000, Stock: 10, IsActive: true, Available: true})
	svc := newCartService(store)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "cust-1", "p-1", 1)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	_, err = svc.UpdateItem(ctx, "cust-2", itemID, 2)
	assert.Equal(t, apperr.CodeUnauthorizedCartAccess, apperr.CodeOf(err))

	_, err = svc.RemoveItem(ctx, "cust-2", itemID)
	assert.Equal(t, apperr.CodeUnauthorizedCartAccess, apperr.CodeOf(err))

	// The owner can still mutate.
	updated, err := svc.UpdateItem(ctx, "cust-1", itemID, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.Items[0].Quantity)
}

// staleStockReader hands the service one stock figure and then drops
// the store's real stock, modelling a sale landing between the
// service's check and its write.
type staleStockReader struct {
	*fakeStore
	pendingMu   sync.Mutex
	pendingDrop *int32
}

func (r *staleStockReader) dropAfterNextRead(stock int32) {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	r.pendingDrop = &stock
}

func (r *staleStockReader) GetProduct(ctx context.Context, productID string) (ProductView, error) {
	p, err := r.fakeStore.GetProduct(ctx, productID)
	if err != nil {
		return p, err
	}
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	if r.pendingDrop != nil {
		r.fakeStore.setStock(productID, *r.pendingDrop)
		r.pendingDrop = nil
	}
	return p, nil
}

func TestUpdateItemGuardClosesStockRace(t *testing.T) {
	store := newFakeStore(ProductView{ID: "p-1", Amount: 5000, Stock: 10, IsActive: true, Available: true})
	reader := &staleStockReader{fakeStore: store}
	svc := NewService(store, reader, cache.New[any](time.Minute), logger.Discard())
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "cust-1", "p-1", 2)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	// The update's own stock check will still see 10 units; the
	// store drains to 1 before the write lands.
	reader.dropAfterNextRead(1)

	_, err = svc.UpdateItem(ctx, "cust-1", itemID, 5)
	assert.Equal(t, apperr.CodeInsufficientStock, apperr.CodeOf(err))

	refreshed, err := svc.GetOrCreateCart(ctx, "cust-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, refreshed.Items[0].Quantity,
		"a write rejected by the guard must leave the quantity alone")
}

func TestClearCartKeepsCartRow(t *testing.T) {
	store := newFakeStore(ProductView{ID: "p-1", Amount: 5000, Stock: 10, IsActive: true, Available: true})
	svc := newCartService(store)
	ctx := context.Background()

	before, err := svc.AddItem(ctx, "cust-1", "p-1", 1)
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, "cust-1"))

	after, err := svc.GetOrCreateCart(ctx, "cust-1")
	require.NoError(t, err)
	assert.Empty(t, after.Items)
	assert.Equal(t, before.ID, after.ID)
}

func TestValidateCartClassifications(t *testing.T) {
	store := newFakeStore(
		ProductView{ID: "p-ok", Amount: 1000, Stock: 50, IsActive: true, Available: true},
		ProductView{ID: "p-gone", Amount: 1000, Stock: 50, IsActive: true, Available: true},
		ProductView{ID: "p-empty", Amount: 1000, Stock: 10, IsActive: true, Available: true},
		ProductView{ID: "p-short", Amount: 1000, Stock: 10, IsActive: true, Available: true},
		ProductView{ID: "p-low", Amount: 1000, Stock: 10, IsActive: true, Available: true},
		ProductView{ID: "p-cheaper", Amount: 1000, Stock: 50, IsActive: true, Available: true},
		ProductView{ID: "p-dearer", Amount: 1000, Stock: 50, IsActive: true, Available: true},
	)
	svc := newCartService(store)
	ctx := context.Background()

	for _, pid := range []string{"p-ok", "p-gone", "p-empty", "p-short", "p-low", "p-cheaper", "p-dearer"} {
		_, err := svc.AddItem(ctx, "cust-1", pid, 4)
		require.NoError(t, err)
	}

	// Mutate the catalog behind the cart's back.
	store.mu.Lock()
	delete(store.products, "p-gone")
	store.mu.Unlock()
	store.setStock("p-empty", 0)
	store.setStock("p-short", 2)
	store.setStock("p-low", 5)
	store.setPrice("p-cheaper", 800)
	store.setPrice("p-dearer", 1200)

	report, err := svc.ValidateCart(ctx, "cust-1")
	require.NoError(t, err)

	kinds := func(issues []domain.Issue) map[domain.IssueKind]string {
		m := map[domain.IssueKind]string{}
		for _, i := range issues {
			m[i.Kind] = i.ProductID
		}
		return m
	}

	errs := kinds(report.Errors)
	warns := kinds(report.Warnings)

	assert.Equal(t, "p-gone", errs[domain.IssueProductUnavailable])
	assert.Equal(t, "p-empty", errs[domain.IssueOutOfStock])
	assert.Equal(t, "p-short", errs[domain.IssueInsufficientStock])
	assert.Equal(t, "p-cheaper", errs[domain.IssuePriceChanged])
	assert.Equal(t, "p-low", warns[domain.IssueLowStock])
	assert.Equal(t, "p-dearer", warns[domain.IssuePriceIncrease])
	assert.False(t, report.Valid())
}

func TestValidateCartIdempotent(t *testing.T) {
	store := newFakeStore(
		ProductView{ID: "p-1", Amount: 1000, Stock: 10, IsActive: true, Available: true},
		ProductView{ID: "p-2", Amount: 2000, Stock: 10, IsActive: true, Available: true},
	)
	svc := newCartService(store)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "cust-1", "p-1", 4)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "cust-1", "p-2", 1)
	require.NoError(t, err)

	store.setStock("p-1", 2)
	store.setPrice("p-2", 2500)

	first, err := svc.ValidateCart(ctx, "cust-1")
	require.NoError(t, err)
	second, err := svc.ValidateCart(ctx, "cust-1")
	require.NoError(t, err)

	assert.Equal(t, first, second, "validation must be idempotent with no catalog change in between")
}

func TestConcurrentAddItemNeverOversells(t *testing.T) {
	const stock = 20
	store := newFakeStore(ProductView{ID: "p-1", Amount: 1000, Stock: stock, IsActive: true, Available: true})
	svc := newCartService(store)
	ctx := context.Background()

	// stock - 1 free units remain after the first add; every goroutine
	// asks for one more.
	_, err := svc.AddItem(ctx, "cust-1", "p-1", 1)
	require.NoError(t, err)

	const N = 40
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < N; i++ {
		g.Go(func() error {
			_, err := svc.AddItem(ctx, "cust-1", "p-1", 1)
			if err != nil && apperr.CodeOf(err) != apperr.CodeInsufficientStock {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	cart, err := svc.GetOrCreateCart(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.EqualValues(t, stock, cart.Items[0].Quantity,
		"all %d units must be reservable, and not one more", stock)
}
