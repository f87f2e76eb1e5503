// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for JSON responses so every
// handler sets status, headers and error bodies the same way.

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"smartfinance/internal/core"
	"smartfinance/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// errorBody is the shape of every error response.
type errorBody struct {
	Error string `json:"error"`
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

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response. 204 responses never carry a body.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.statusCode == http.StatusNoContent || b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		log.ForComponent(log.ComponentHTTP).Error("Failed to encode response body", "error", err)
	}
}

// ErrorResponse creates an error response with a {"error": message} body.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// InternalServerError creates a 500 response. Details stay in the logs.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal server error")
}

func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later")
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError(allowedMethods string) *JSONResponseBuilder {
	b := ErrorResponse(http.StatusMethodNotAllowed, "method not allowed")
	if allowedMethods != "" {
		b.Header("Allow", allowedMethods)
	}
	return b
}

// ErrorFromDomain maps service errors to status codes: not found is 404,
// validation is 422, anything else is 500.
func ErrorFromDomain(err error) *JSONResponseBuilder {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError(err.Error())
	case errors.Is(err, core.ErrValidation):
		return UnprocessableEntityError(validationMessage(err))
	default:
		return InternalServerError()
	}
}

// validationMessage drops the sentinel prefix: "amount must be greater than 0".
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, core.ErrValidation.Error()+": "); i >= 0 {
		return msg[i+len(core.ErrValidation.Error())+2:]
	}
	return msg
}
