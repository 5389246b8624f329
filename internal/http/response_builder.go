// Package http serves the point-of-sale JSON API.
//
// Every JSON response uses one envelope: {"data": ..., "warning": "..."} on
// success, {"error": {"code": ..., "message": ...}} on failure.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"cassa/internal/catalog"
	"cassa/internal/core"
	"cassa/internal/services"
)

// Error codes returned in the error envelope.
const (
	CodeBadRequest         = "bad_request"
	CodeValidation         = "validation_error"
	CodeInsufficientStock  = "insufficient_stock"
	CodeEmptyCart          = "empty_cart"
	CodeItemNotFound       = "item_not_found"
	CodeSaleNotFound       = "sale_not_found"
	CodeUnknownView        = "unknown_view"
	CodeRateLimited        = "rate_limited"
	CodeStorageUnavailable = "storage_unavailable"
	CodeInternal           = "internal_error"
)

type dataEnvelope struct {
	Data    any    `json:"data"`
	Warning string `json:"warning,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSONResponseBuilder provides a fluent API for building enveloped responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	data       any
	warning    string
	err        *errorBody
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// Warning attaches err's message when err is a degradation warning. Other
// errors are ignored.
func (b *JSONResponseBuilder) Warning(err error) *JSONResponseBuilder {
	if err != nil && core.IsWarning(err) {
		b.warning = err.Error()
	}
	return b
}

func (b *JSONResponseBuilder) WarningText(msg string) *JSONResponseBuilder {
	b.warning = msg
	return b
}

func (b *JSONResponseBuilder) Error(code, message string) *JSONResponseBuilder {
	b.err = &errorBody{Code: code, Message: message}
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	var body any = dataEnvelope{Data: b.data, Warning: b.warning}
	if b.err != nil {
		body = errorEnvelope{Error: *b.err}
	}
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Error(code, message)
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, CodeBadRequest, message)
}

func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, CodeInternal, "internal server error")
}

// FromError maps a service error onto a status code and an error code. The
// second result reports whether the error was caused by the request.
func FromError(err error) (*JSONResponseBuilder, bool) {
	var (
		validation *core.ValidationError
		stock      *core.InsufficientStockError
	)
	switch {
	case errors.As(err, &validation):
		return ErrorResponse(http.StatusUnprocessableEntity, CodeValidation, validation.Error()), true
	case errors.As(err, &stock):
		return ErrorResponse(http.StatusConflict, CodeInsufficientStock, stock.Error()), true
	case errors.Is(err, catalog.ErrInvalidSeed):
		return BadRequestError(err.Error()), true
	case errors.Is(err, core.ErrEmptyCart):
		return ErrorResponse(http.StatusConflict, CodeEmptyCart, "cart is empty"), true
	case errors.Is(err, core.ErrItemNotFound):
		return ErrorResponse(http.StatusNotFound, CodeItemNotFound, rootMessage(err)), true
	case errors.Is(err, core.ErrSaleNotFound):
		return ErrorResponse(http.StatusNotFound, CodeSaleNotFound, "sale not found"), true
	case errors.Is(err, services.ErrUnknownView):
		return ErrorResponse(http.StatusNotFound, CodeUnknownView, err.Error()), true
	case errors.Is(err, core.ErrStorageInit):
		return ErrorResponse(http.StatusServiceUnavailable, CodeStorageUnavailable, "storage is unavailable"), false
	}
	return InternalServerError(), false
}

// rootMessage returns the message of the innermost typed error.
func rootMessage(err error) string {
	var nf *core.ItemNotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return err.Error()
}
