package adapter

import (
	"context"

	cartapp "github.com/storefront-go/storefront/internal/cart/app"
	checkoutapp "github.com/storefront-go/storefront/internal/checkout/app"
)

// CartServiceReader adapts the cart service to checkout's view.
type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

func (r *CartServiceReader) GetCart(ctx context.Context, customerID string) (checkoutapp.Cart, error) {
	cart, err := r.svc.GetOrCreateCart(ctx, customerID)
	if err != nil {
		return checkoutapp.Cart{}, err
	}

	out := checkoutapp.Cart{ID: cart.ID}
	for _, it := range cart.Items {
		out.Items = append(out.Items, checkoutapp.CartItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return out, nil
}

func (r *CartServiceReader) Clear(ctx context.Context, customerID string) error {
	return r.svc.ClearCart(ctx, customerID)
}
