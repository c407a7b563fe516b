package revenue

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"outlay/internal/core"
)

func TestClientRevenueForPeriod(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/revenue" {
			t.Errorf("path = %s, want /revenue", r.URL.Path)
		}
		if got := r.URL.Query().Get("from"); got != "2026-01-01" {
			t.Errorf("from = %s, want 2026-01-01", got)
		}
		if got := r.URL.Query().Get("to"); got != "2026-01-31" {
			t.Errorf("to = %s, want 2026-01-31", got)
		}
		fmt.Fprint(w, `{"total_cents": 10000000}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.RevenueForPeriod(context.Background(), core.NewDate(2026, 1, 1), core.NewDate(2026, 1, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cents != 10000000 {
		t.Errorf("total = %d, want 10000000", got.Cents)
	}
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"total_cents": `)
		}},
		{"negative total", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"total_cents": -5}`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL)
			_, err := c.RevenueForPeriod(context.Background(), core.NewDate(2026, 1, 1), core.NewDate(2026, 1, 31))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestStatic(t *testing.T) {
	s := Static{Total: core.Money{Cents: 42}}
	got, err := s.RevenueForPeriod(context.Background(), core.Date{}, core.Date{})
	if err != nil || got.Cents != 42 {
		t.Fatalf("got %d, %v", got.Cents, err)
	}
}
