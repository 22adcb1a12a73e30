package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ngmaloney/surf-spotter/internal/models"
)

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "SurfSpotter/test" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := NewClient("test", "SurfSpotter/test", 5*time.Second)
	body, err := c.Get(context.Background(), server.URL, http.Header{"Accept": {"application/json"}})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantTemporary bool
	}{
		{"404 not found", http.StatusNotFound, false},
		{"429 rate limited", http.StatusTooManyRequests, true},
		{"503 unavailable", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("error"))
			}))
			defer server.Close()

			c := NewClient("test", "", time.Second)
			_, err := c.Get(context.Background(), server.URL, nil)

			var pte *models.ProviderTransportError
			if !errors.As(err, &pte) {
				t.Fatalf("error = %v, want ProviderTransportError", err)
			}
			if pte.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", pte.StatusCode, tt.status)
			}
			if IsTemporary(err) != tt.wantTemporary {
				t.Errorf("IsTemporary() = %v, want %v", IsTemporary(err), tt.wantTemporary)
			}
		})
	}
}

func TestClient_NetworkErrorIsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient("test", "", time.Second)
	_, err := c.Get(context.Background(), url, nil)
	if !IsTemporary(err) {
		t.Errorf("error = %v, want temporary transport error", err)
	}
}

func TestClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		w.Write([]byte("done"))
	}))
	defer server.Close()

	c := NewClient("test", "", time.Second)
	body, err := c.PostJSON(context.Background(), server.URL, map[string]string{"a": "b"}, nil)
	if err != nil {
		t.Fatalf("PostJSON() error = %v", err)
	}
	if string(body) != "done" {
		t.Errorf("body = %s", body)
	}
}

func TestRetry(t *testing.T) {
	temporary := &models.ProviderTransportError{Provider: "p", StatusCode: 503, Err: errors.New("busy")}
	permanent := &models.ProviderTransportError{Provider: "p", StatusCode: 404, Err: errors.New("gone")}

	tests := []struct {
		name      string
		errs      []error
		wantCalls int32
		wantErr   bool
	}{
		{"success first try", []error{nil}, 1, false},
		{"temporary then success", []error{temporary, nil}, 2, false},
		{"temporary twice", []error{temporary, temporary}, 2, true},
		{"permanent not retried", []error{permanent}, 1, true},
		{"plain error not retried", []error{errors.New("boom")}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			got, err := Retry(context.Background(), time.Millisecond, func(ctx context.Context) (int, error) {
				n := atomic.AddInt32(&calls, 1)
				if e := tt.errs[n-1]; e != nil {
					return 0, e
				}
				return 42, nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != 42 {
				t.Errorf("value = %d, want 42", got)
			}
		})
	}
}

func TestRetry_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Retry(ctx, time.Hour, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, &models.ProviderTransportError{Provider: "p", Err: errors.New("reset")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBreaker_OpensOnTemporaryFailures(t *testing.T) {
	b := NewBreaker[int]("test-breaker", time.Hour)
	fail := func() (int, error) {
		return 0, &models.ProviderTransportError{Provider: "p", StatusCode: 502, Err: errors.New("bad gateway")}
	}
	for i := 0; i < 5; i++ {
		b.Execute(fail)
	}

	calls := 0
	_, err := b.Execute(func() (int, error) {
		calls++
		return 1, nil
	})
	if err == nil {
		t.Fatal("expected breaker to reject the call")
	}
	if calls != 0 {
		t.Error("breaker let a call through while open")
	}
}

func TestBreaker_IgnoresPermanentErrors(t *testing.T) {
	b := NewBreaker[int]("test-breaker-permanent", time.Hour)
	for i := 0; i < 10; i++ {
		b.Execute(func() (int, error) {
			return 0, &models.ProviderTransportError{Provider: "p", StatusCode: 404, Err: errors.New("missing")}
		})
	}
	v, err := b.Execute(func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("Execute() = %v, %v; want 7, nil", v, err)
	}
}
