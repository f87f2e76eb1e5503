package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"smartfinance/internal/core"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Amount core.Money `json:"amount"`
		Date   core.Date  `json:"date"`
	}
	tests := []struct {
		name       string
		body       string
		wantStatus int // 0 means success
	}{
		{"valid", `{"amount":"12.50","date":"2025-01-31"}`, 0},
		{"number amount", `{"amount":12.5}`, 0},
		{"empty", ``, http.StatusBadRequest},
		{"syntax error", `{"amount":`, http.StatusBadRequest},
		{"wrong shape", `[1,2]`, http.StatusBadRequest},
		{"two documents", `{} {}`, http.StatusBadRequest},
		{"bad amount", `{"amount":"abc"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"date":"31/01/2025"}`, http.StatusUnprocessableEntity},
		{"too large", `{"date":"` + strings.Repeat("x", maxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			bad := DecodeJSON(w, r, &p)
			switch {
			case tt.wantStatus == 0 && bad != nil:
				t.Fatalf("unexpected error response %d", bad.statusCode)
			case tt.wantStatus != 0 && bad == nil:
				t.Fatalf("expected status %d, got success", tt.wantStatus)
			case tt.wantStatus != 0 && bad.statusCode != tt.wantStatus:
				t.Errorf("status = %d, want %d", bad.statusCode, tt.wantStatus)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.raw)
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

			got, bad := ParseID(r)
			if (bad != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", bad != nil, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("id = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestQueryParams(t *testing.T) {
	q := url.Values{
		"month":  {"2025-02"},
		"badm":   {"2025-2"},
		"start":  {"2025-02-01"},
		"bads":   {"yesterday"},
		"months": {"12"},
		"badn":   {"twelve"},
		"type":   {" Income "},
		"badt":   {"transfer"},
	}

	if m, bad := ParseMonthParam(q, "month"); bad != nil || m != "2025-02" {
		t.Errorf("ParseMonthParam = %q, %v", m, bad)
	}
	if _, bad := ParseMonthParam(q, "badm"); bad == nil || bad.statusCode != http.StatusBadRequest {
		t.Error("ParseMonthParam accepted 2025-2")
	}
	if m, bad := ParseMonthParam(q, "missing"); bad != nil || m != "" {
		t.Errorf("missing month = %q, %v", m, bad)
	}

	if d, bad := ParseDateParam(q, "start"); bad != nil || d.String() != "2025-02-01" {
		t.Errorf("ParseDateParam = %s, %v", d, bad)
	}
	if _, bad := ParseDateParam(q, "bads"); bad == nil {
		t.Error("ParseDateParam accepted yesterday")
	}

	if n, bad := ParseIntParam(q, "months"); bad != nil || n != 12 {
		t.Errorf("ParseIntParam = %d, %v", n, bad)
	}
	if _, bad := ParseIntParam(q, "badn"); bad == nil {
		t.Error("ParseIntParam accepted twelve")
	}

	if typ, bad := ParseTypeParam(q, "type"); bad != nil || typ != core.Income {
		t.Errorf("ParseTypeParam = %q, %v", typ, bad)
	}
	if _, bad := ParseTypeParam(q, "badt"); bad == nil {
		t.Error("ParseTypeParam accepted transfer")
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Groceries  ", "Groceries"},
		{"Coffee\x00 beans", "Coffee beans"},
		{"line one\nline two", "line one\nline two"},
		{"\x07bell", "bell"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
