// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating request data:
// JSON bodies, path ids and the query parameters shared by the list
// endpoints. Malformed input yields a 400 response builder.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"smartfinance/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// DecodeJSON reads one JSON document into v. Syntax errors are 400; values
// that parse but fail domain rules (a negative amount, an impossible date)
// are 422.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) *JSONResponseBuilder {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return BadRequestError("request body is empty")
		case errors.As(err, &tooLarge):
			return ErrorResponse(http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, core.ErrValidation):
			return UnprocessableEntityError(validationMessage(err))
		default:
			return BadRequestError("invalid JSON body")
		}
	}
	if dec.More() {
		return BadRequestError("request body must be a single JSON object")
	}
	return nil
}

// ParseID reads the {id} path parameter. Ids are positive integers.
func ParseID(r *http.Request) (int64, *JSONResponseBuilder) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, BadRequestError(fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

// ParseMonthParam reads a YYYY-MM query parameter; absent means "".
func ParseMonthParam(query url.Values, key string) (core.Month, *JSONResponseBuilder) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return "", nil
	}
	m, err := core.ParseMonth(v)
	if err != nil {
		return "", BadRequestError(fmt.Sprintf("%s must be YYYY-MM", key))
	}
	return m, nil
}

// ParseDateParam reads a YYYY-MM-DD query parameter; absent means zero.
func ParseDateParam(query url.Values, key string) (core.Date, *JSONResponseBuilder) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, BadRequestError(fmt.Sprintf("%s must be YYYY-MM-DD", key))
	}
	return d, nil
}

// ParseIntParam reads an integer query parameter; absent means 0.
func ParseIntParam(query url.Values, key string) (int64, *JSONResponseBuilder) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, BadRequestError(fmt.Sprintf("%s must be an integer", key))
	}
	return n, nil
}

// ParseTypeParam reads an income|expense query parameter; absent means "".
func ParseTypeParam(query url.Values, key string) (core.TransactionType, *JSONResponseBuilder) {
	v := core.TransactionType(strings.ToLower(strings.TrimSpace(query.Get(key))))
	if v != "" && !v.Valid() {
		return "", BadRequestError(fmt.Sprintf("%s must be income or expense", key))
	}
	return v, nil
}
