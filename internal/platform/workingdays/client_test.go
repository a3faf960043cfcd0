package workingdays

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWorkingDays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/workingdays" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("country"); got != "bg" {
			t.Errorf("expected lower-case country, got %q", got)
		}
		if got := r.URL.Query().Get("month"); got != "3" {
			t.Errorf("expected month 3, got %q", got)
		}
		if r.Header.Get("X-Api-Key") != "key" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"num_working_days": 21, "country": "bg"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "key")
	days, err := client.WorkingDays(context.Background(), "BG", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 21 {
		t.Fatalf("expected 21 working days, got %d", days)
	}
}

func TestWorkingDaysUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "key").WorkingDays(context.Background(), "de", 1); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestWorkingDaysRejectsBadInput(t *testing.T) {
	client := NewClient("http://unused", "key")
	tests := []struct {
		name    string
		country string
		month   int
		want    error
	}{
		{"month zero", "de", 0, ErrInvalidMonth},
		{"month thirteen", "de", 13, ErrInvalidMonth},
		{"long country", "deu", 5, ErrInvalidCountry},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := client.WorkingDays(context.Background(), tc.country, tc.month); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := NewClient("http://unused", "").WorkingDays(context.Background(), "de", 1); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
