package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront-go/storefront/internal/apperr"
)

// Every endpoint answers with the same discriminated envelope so UI
// callers never have to sniff response shapes.

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type paginated struct {
	Data       any        `json:"data"`
	Pagination pagination `json:"pagination"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

func respondBadJSON(c *gin.Context) {
	c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Error:   &errorBody{Message: "malformed request body", Code: apperr.CodeInvalidInput},
	})
}

func respondErr(c *gin.Context, err error) {
	status, code, msg := httpStatusFromErr(err)
	c.JSON(status, envelope{Success: false, Error: &errorBody{Message: msg, Code: code}})
}

// httpStatusFromErr maps the service error taxonomy onto HTTP. An
// unclassified error stays a 500 with a generic message so internals
// never leak.
func httpStatusFromErr(err error) (int, string, string) {
	code := apperr.CodeOf(err)

	switch code {
	case apperr.CodeInvalidInput:
		return http.StatusBadRequest, code, err.Error()
	case apperr.CodeNotFound, apperr.CodeOrderNotFound,
		apperr.CodeDiscountNotFound, apperr.CodeAddressNotFound:
		return http.StatusNotFound, code, err.Error()
	case apperr.CodeUnauthorizedCartAccess:
		return http.StatusForbidden, code, err.Error()
	case apperr.CodeInsufficientStock, apperr.CodeCartEmpty, apperr.CodeCartInvalid,
		apperr.CodeProductUnavailable,
		apperr.CodeDiscountInactive, apperr.CodeDiscountExpired,
		apperr.CodeDiscountLimitReached, apperr.CodeDiscountMinOrder,
		apperr.CodeOrderAlreadyDelivered, apperr.CodeOrderAlreadyCancelled,
		apperr.CodeInvalidTransition:
		return http.StatusConflict, code, err.Error()
	default:
		return http.StatusInternalServerError, apperr.CodeUnknown, "internal error"
	}
}
