// Package http serves the JSON API.
//
// This file implements utilities for parsing request bodies and query
// parameters into domain values.
package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/engine"
)

const maxBodyBytes = 1 << 20

// PageParams holds the requested page (1-based) and page size.
type PageParams struct {
	Page int
	Size int
}

// ParsePageParams reads page and size, defaulting to the first page of
// defaultSize. Non-numeric values are rejected; range checks belong to the
// engine.
func ParsePageParams(query url.Values, defaultSize int) (PageParams, error) {
	params := PageParams{Page: 1, Size: defaultSize}
	if v := strings.TrimSpace(query.Get("page")); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return PageParams{}, fmt.Errorf("%w: page must be an integer", errBadRequest)
		}
		params.Page = p
	}
	if v := strings.TrimSpace(query.Get("size")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return PageParams{}, fmt.Errorf("%w: size must be an integer", errBadRequest)
		}
		params.Size = n
	}
	return params, nil
}

// ParseFilter reads the filter parameter. ok is false when it is absent.
func ParseFilter(query url.Values) (mode engine.Mode, ok bool, err error) {
	v := strings.TrimSpace(query.Get("filter"))
	if v == "" {
		return "", false, nil
	}
	mode, err = engine.ParseMode(v)
	return mode, err == nil, err
}

// RequestBodyParser reads a JSON or form-encoded body once.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads up to 1MB of r's body.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body as JSON when it looks like an object, otherwise as
// form values.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errBadRequest, p.err)
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}
	if strings.HasPrefix(trimmed, "{") || strings.Contains(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: malformed JSON body", errBadRequest)
			return p.err
		}
		return nil
	}

	form, err := url.ParseQuery(trimmed)
	if err != nil {
		p.err = fmt.Errorf("%w: malformed form body", errBadRequest)
		return p.err
	}
	p.formData = form
	return nil
}

// Get returns the sanitized value of key from the JSON object or the form.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON reports whether the body was decoded as JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseTransactionInput builds a record for ownerID from the fields a user
// enters: description, a positive amount, type, category and an optional
// YYYY-MM-DD date that defaults to today.
func ParseTransactionInput(p *RequestBodyParser, ownerID string, today core.Date) (core.Transaction, error) {
	if err := p.Parse(); err != nil {
		return core.Transaction{}, err
	}

	kind, err := parseType(p.Get("type"))
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return core.Transaction{}, err
	}
	date := today
	if v := p.Get("date"); v != "" {
		if date, err = core.ParseDate(v); err != nil {
			return core.Transaction{}, err
		}
	}

	return core.NewTransaction(ownerID, kind, p.Get("description"), amount,
		core.Category(p.Get("category")), date), nil
}

func parseType(s string) (core.Type, error) {
	switch strings.ToLower(s) {
	case "income", "ingreso":
		return core.TypeIncome, nil
	case "expense", "gasto":
		return core.TypeExpense, nil
	}
	return "", core.ErrInvalidType
}

// today returns the current calendar date in loc.
func today(now time.Time, loc *time.Location) core.Date {
	return core.DateOf(now.In(loc))
}
