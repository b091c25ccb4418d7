// Package http serves the JSON API.
//
// This file implements the builder used by every handler to write JSON
// bodies and the mapping from domain errors to status codes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"finanzas/internal/core"
	"finanzas/internal/dashboard"
	"finanzas/internal/identity"
)

// errBadRequest marks request data that could not be read at all, as opposed
// to data that was read but failed validation.
var errBadRequest = errors.New("bad request")

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a builder for a 200 response.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the status code.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header sets a response header.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body. A nil body writes none.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the response. A nil body sends the status only.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

// ErrorResponse builds the JSON error envelope.
func ErrorResponse(statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(errorBody{Error: errorDetail{Code: code, Message: message}})
}

// BadRequestError builds a 400 response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, "bad_request", message)
}

// UnprocessableEntityError builds a 422 response for a rejected record.
func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, "invalid_transaction", message)
}

// NotFoundError builds a 404 response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, "not_found", message)
}

// UnauthorizedError builds a 401 response with a Bearer challenge.
func UnauthorizedError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, "unauthorized", message).
		Header("WWW-Authenticate", `Bearer realm="finanzas"`)
}

// TooManyRequestsError builds a 429 response.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, try again later")
}

// UnavailableError builds a 503 response.
func UnavailableError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusServiceUnavailable, "unavailable", message)
}

// InternalServerError builds a 500 response without details.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal", "internal error")
}

// ErrorFor maps err to the response a client should see. Store failures are
// not described to the client.
func ErrorFor(err error) *JSONResponseBuilder {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, core.ErrInvalidFilterMode),
		errors.Is(err, core.ErrInvalidPageSize):
		return BadRequestError(err.Error())
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrSignMismatch),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrDescriptionTooLong),
		errors.Is(err, core.ErrMissingOwner),
		errors.Is(err, core.ErrInvalidTransaction):
		return UnprocessableEntityError(err.Error())
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError(core.ErrNotFound.Error())
	case errors.Is(err, identity.ErrMissingToken),
		errors.Is(err, identity.ErrMalformed),
		errors.Is(err, identity.ErrExpiredToken):
		return UnauthorizedError(err.Error())
	case errors.Is(err, identity.ErrInvalidToken):
		return UnauthorizedError(identity.ErrInvalidToken.Error())
	case errors.Is(err, dashboard.ErrStopped),
		errors.Is(err, context.DeadlineExceeded):
		return UnavailableError("dashboard not available, retry")
	default:
		return InternalServerError()
	}
}
