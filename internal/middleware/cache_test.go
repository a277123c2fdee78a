// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCacheControl(t *testing.T) {
	tests := []struct {
		name   string
		maxAge int
		swr    int
		method string
		want   string
	}{
		{
			name:   "one minute",
			maxAge: 60,
			method: http.MethodGet,
			want:   "public, max-age=60",
		},
		{
			name:   "with stale while revalidate",
			maxAge: 60,
			swr:    300,
			method: http.MethodGet,
			want:   "public, max-age=60, stale-while-revalidate=300",
		},
		{
			name:   "head",
			maxAge: 0,
			method: http.MethodHead,
			want:   "public, max-age=0",
		},
		{
			name:   "post is not cached",
			maxAge: 60,
			method: http.MethodPost,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CacheControl(tt.maxAge, tt.swr)(okHandler())

			req := httptest.NewRequest(tt.method, "/api/posts", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if got := rr.Header().Get("Cache-Control"); got != tt.want {
				t.Errorf("Cache-Control = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNoStore(t *testing.T) {
	rr := httptest.NewRecorder()
	NoStore(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := rr.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
}
