package httpapi

import (
	"errors"
	"net/http"
	"testing"

	"github.com/storefront-go/storefront/internal/apperr"
)

func TestHTTPStatusFromErr(t *testing.T) {
	t.Run("validation -> 400", func(t *testing.T) {
		err := apperr.Validation("quantity", "out of range")
		gotStatus, gotCode, _ := httpStatusFromErr(err)
		if gotStatus != http.StatusBadRequest || gotCode != "INVALID_INPUT" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("not found -> 404", func(t *testing.T) {
		err := apperr.Business(apperr.CodeNotFound, "missing")
		gotStatus, gotCode, _ := httpStatusFromErr(err)
		if gotStatus != http.StatusNotFound || gotCode != "NOT_FOUND" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("ownership -> 403", func(t *testing.T) {
		err := apperr.Business(apperr.CodeUnauthorizedCartAccess, "not yours")
		gotStatus, gotCode, _ := httpStatusFromErr(err)
		if gotStatus != http.StatusForbidden || gotCode != "UNAUTHORIZED_CART_ACCESS" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("business conflicts -> 409", func(t *testing.T) {
		for _, code := range []string{
			apperr.CodeInsufficientStock,
			apperr.CodeCartEmpty,
			apperr.CodeDiscountLimitReached,
			apperr.CodeOrderAlreadyDelivered,
			apperr.CodeInvalidTransition,
		} {
			err := apperr.Business(code, "rejected")
			gotStatus, gotCode, _ := httpStatusFromErr(err)
			if gotStatus != http.StatusConflict || gotCode != code {
				t.Fatalf("%s: got (%d,%s)", code, gotStatus, gotCode)
			}
		}
	})

	t.Run("unclassified -> 500 without leaking", func(t *testing.T) {
		err := errors.New("pq: connection refused")
		gotStatus, gotCode, gotMsg := httpStatusFromErr(err)
		if gotStatus != http.StatusInternalServerError || gotCode != "UNKNOWN_ERROR" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
		if gotMsg != "internal error" {
			t.Fatalf("internal detail leaked: %q", gotMsg)
		}
	})
}
