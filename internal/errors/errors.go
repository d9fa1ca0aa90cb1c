// Package errors defines the service error taxonomy shared by the gateway and
// the backend services. Every failure crossing a handler boundary is resolved
// into a ServiceError before it is written to the wire.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a failure kind.
type ErrorCode string

const (
	CodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	CodeInvalidToken         ErrorCode = "INVALID_TOKEN"
	CodeInvalidIssuer        ErrorCode = "INVALID_ISSUER"
	CodeAccessDenied         ErrorCode = "ACCESS_DENIED"
	CodeRouteNotFound        ErrorCode = "ROUTE_NOT_FOUND"
	CodeNotFound             ErrorCode = "NOT_FOUND"
	CodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	CodeEmptyOrder           ErrorCode = "EMPTY_ORDER"
	CodeInsufficientStock    ErrorCode = "INSUFFICIENT_STOCK"
	CodeProductNotFound      ErrorCode = "PRODUCT_NOT_FOUND"
	CodeDownstreamFailure    ErrorCode = "DOWNSTREAM_UNAVAILABLE"
	CodePersistenceFailed    ErrorCode = "PERSISTENCE_FAILED"
	CodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// ServiceError is the canonical error type carried between layers. It knows
// the HTTP status it maps to and never exposes its wrapped cause on the wire.
type ServiceError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	cause      error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is/As.
func (e *ServiceError) Unwrap() error { return e.cause }

// WithDetails attaches a detail key/value and returns the error for chaining.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newError(code ErrorCode, status int, message string, cause error) *ServiceError {
	return &ServiceError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		cause:      cause,
	}
}

// Unauthorized reports a failed authentication.
func Unauthorized(message string) *ServiceError {
	if message == "" {
		message = "Authentication required"
	}
	return newError(CodeAuthenticationFailed, http.StatusUnauthorized, message, nil)
}

// InvalidToken reports a token that failed signature or timestamp validation.
func InvalidToken(cause error) *ServiceError {
	return newError(CodeInvalidToken, http.StatusUnauthorized, "Invalid or expired token", cause)
}

// InvalidIssuer reports a token issued by an unexpected realm.
func InvalidIssuer(issuer string) *ServiceError {
	return newError(CodeInvalidIssuer, http.StatusUnauthorized, "Invalid token issuer", nil).
		WithDetails("issuer", issuer)
}

// Forbidden reports a valid principal lacking a required role.
func Forbidden(message string) *ServiceError {
	if message == "" {
		message = "Access denied"
	}
	return newError(CodeAccessDenied, http.StatusForbidden, message, nil)
}

// RouteNotFound reports a request path with no configured route.
func RouteNotFound(path string) *ServiceError {
	return newError(CodeRouteNotFound, http.StatusNotFound, "No route for path", nil).
		WithDetails("path", path)
}

// NotFound reports an absent (or not owned) resource.
func NotFound(message string) *ServiceError {
	if message == "" {
		message = "Resource not found"
	}
	return newError(CodeNotFound, http.StatusNotFound, message, nil)
}

// InvalidInput reports malformed or failed-validation input.
func InvalidInput(message string) *ServiceError {
	if message == "" {
		message = "Invalid request"
	}
	return newError(CodeValidationFailed, http.StatusBadRequest, message, nil)
}

// EmptyOrder reports an order request without any lines.
func EmptyOrder() *ServiceError {
	return newError(CodeEmptyOrder, http.StatusBadRequest, "Order must contain at least one item", nil)
}

// InsufficientStock reports a line whose requested quantity exceeds the
// available stock.
func InsufficientStock(productName string, available, requested int) *ServiceError {
	msg := fmt.Sprintf("Insufficient stock for product: %s. Available: %d, Requested: %d",
		productName, available, requested)
	return newError(CodeInsufficientStock, http.StatusConflict, msg, nil).
		WithDetails("available", available).
		WithDetails("requested", requested)
}

// ProductNotFound reports a missing product referenced by an order line.
func ProductNotFound(productID string) *ServiceError {
	return newError(CodeProductNotFound, http.StatusNotFound,
		fmt.Sprintf("Product not found with id: %s", productID), nil)
}

// DownstreamUnavailable reports an unreachable or timed-out collaborator.
func DownstreamUnavailable(service string, cause error) *ServiceError {
	return newError(CodeDownstreamFailure, http.StatusBadGateway,
		fmt.Sprintf("Service %s is unavailable", service), cause)
}

// PersistenceFailed reports a failed storage write.
func PersistenceFailed(cause error) *ServiceError {
	return newError(CodePersistenceFailed, http.StatusInternalServerError,
		"Failed to persist changes", cause)
}

// Internal reports an unclassified failure.
func Internal(message string, cause error) *ServiceError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return newError(CodeInternal, http.StatusInternalServerError, message, cause)
}

// GetServiceError extracts a ServiceError from err's chain, or nil.
func GetServiceError(err error) *ServiceError {
	var se *ServiceError
	if stderrors.As(err, &se) {
		return se
	}
	return nil
}

// Is reports whether err resolves to a ServiceError with the given code.
func Is(err error, code ErrorCode) bool {
	se := GetServiceError(err)
	return se != nil && se.Code == code
}
