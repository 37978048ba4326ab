package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quotewise/quotewise-backend/pkg/logger"
)

func TestSessionIDMiddlewareStoresHeader(t *testing.T) {
	var got string
	h := SessionID(logger.Nop())(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconcile", nil)
	req.Header.Set(SessionIDHeader, "  tab-1 ")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "tab-1" {
		t.Fatalf("expected tab-1 got %q", got)
	}

	got = "unset"
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != "" {
		t.Fatalf("expected empty session got %q", got)
	}
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	h := RequestID(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get(requestIDHeader) != "req-1" {
		t.Fatalf("expected request id to be echoed")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestRecovererWritesInternalError(t *testing.T) {
	h := Recoverer(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}

func TestLoggingRecordsStatus(t *testing.T) {
	h := Logging(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected 418 got %d", rec.Code)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	h := CORS([]string{"https://admin.example.com"})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/reconcile", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", SessionIDHeader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://admin.example.com" {
		t.Fatalf("expected origin to be allowed, headers=%v", rec.Header())
	}
}
