package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, rr.Body.String())
	}
	return body
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, http.StatusTeapot, "short and stout")

	if rr.Code != http.StatusTeapot {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusTeapot)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := decodeEnvelope(t, rr)
	if body["success"] != false || body["error"] != "short and stout" {
		t.Errorf("body = %v", body)
	}
}

func TestRequireSecret(t *testing.T) {
	const secret = "s3cret-value-for-tests"

	tests := []struct {
		name       string
		configured string
		header     string
		query      string
		wantStatus int
	}{
		{"not configured", "", secret, "", http.StatusServiceUnavailable},
		{"missing", secret, "", "", http.StatusUnauthorized},
		{"wrong header", secret, "nope", "", http.StatusUnauthorized},
		{"valid header", secret, secret, "", http.StatusOK},
		{"valid query", secret, "", secret, http.StatusOK},
		{"header wins over query", secret, "nope", secret, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/api/revalidate"
			if tt.query != "" {
				target += "?secret=" + tt.query
			}
			req := httptest.NewRequest(http.MethodPost, target, nil)
			if tt.header != "" {
				req.Header.Set(SecretHeader, tt.header)
			}
			rr := httptest.NewRecorder()

			RequireSecret(tt.configured)(okHandler()).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				if body := decodeEnvelope(t, rr); body["success"] != false {
					t.Errorf("body = %v", body)
				}
			}
		})
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	handler := rl.Middleware()(okHandler())

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/search?q=okr", nil)
		req.RemoteAddr = ip + ":1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := call("10.0.0.1"); code != http.StatusOK {
		t.Fatalf("first request = %d", code)
	}
	if code := call("10.0.0.1"); code != http.StatusOK {
		t.Fatalf("second request (burst) = %d", code)
	}
	if code := call("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", code)
	}
	if code := call("10.0.0.2"); code != http.StatusOK {
		t.Errorf("other client = %d, want 200", code)
	}
}

func TestLimiterCache(t *testing.T) {
	lc := newLimiterCache[string](1, 1)

	a := lc.get("a")
	if lc.get("a") != a {
		t.Error("get() should return the same limiter for a key")
	}
	lc.get("b")

	if lc.clearIfExceeds(5) {
		t.Error("clearIfExceeds() cleared a small cache")
	}
	if !lc.clearIfExceeds(1) {
		t.Error("clearIfExceeds() should clear when over the limit")
	}
	if lc.get("a") == a {
		t.Error("limiter should be recreated after clearing")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"remote without port", nil, "192.0.2.1", "192.0.2.1"},
		{"x-real-ip ignored", map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.1:1", "10.0.0.1"},
		{"x-forwarded-for ignored", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}, "10.0.0.1:1", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
